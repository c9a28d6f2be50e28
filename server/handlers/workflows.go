package handlers

import (
	"net/http"
	"sort"
)

// AvailableWorkflowsResponse is the JSON response for /api/workflows.
type AvailableWorkflowsResponse struct {
	Workflows []string `json:"workflows"`
}

// AvailableWorkflowsHandler handles requests for the available workflows
// endpoint.
type AvailableWorkflowsHandler struct {
	workflows []string
}

// NewAvailableWorkflowsHandler creates a new AvailableWorkflowsHandler.
func NewAvailableWorkflowsHandler(workflows []string) *AvailableWorkflowsHandler {
	names := make([]string, len(workflows))
	copy(names, workflows)
	sort.Strings(names)
	return &AvailableWorkflowsHandler{
		workflows: names,
	}
}

// ServeHTTP implements http.Handler.
func (h *AvailableWorkflowsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AvailableWorkflowsResponse{
		Workflows: h.workflows,
	})
}
