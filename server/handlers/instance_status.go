package handlers

import (
	"fmt"
	"net/http"
)

// InstanceStatusHandler handles requests for one instance's status:
// GET /runtime/instances/{id}.
type InstanceStatusHandler struct {
	provider InstanceProvider
}

// NewInstanceStatusHandler creates a new InstanceStatusHandler.
func NewInstanceStatusHandler(provider InstanceProvider) *InstanceStatusHandler {
	return &InstanceStatusHandler{
		provider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *InstanceStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	status, ok := h.provider.Instance(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("no instance %q", id),
		})
		return
	}

	writeJSON(w, http.StatusOK, status)
}
