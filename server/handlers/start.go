package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/azrulhm/eplingest/server/runner"
)

// StartResponse is the JSON response for a successfully started run.
type StartResponse struct {
	ID        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// StartHandler handles requests to start an ingestion run:
// GET|POST /startOrchestrator/{workflow}?epl_season=YYYY.
type StartHandler struct {
	starter   SeasonStarter
	available map[string]bool
}

// NewStartHandler creates a new StartHandler accepting the named workflows.
func NewStartHandler(starter SeasonStarter, workflows []string) *StartHandler {
	available := make(map[string]bool, len(workflows))
	for _, name := range workflows {
		available[name] = true
	}
	return &StartHandler{
		starter:   starter,
		available: available,
	}
}

// ServeHTTP implements http.Handler.
func (h *StartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("workflow")
	if !h.available[name] {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("unknown workflow %q", name),
		})
		return
	}

	rawSeason := r.URL.Query().Get("epl_season")
	if rawSeason == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "epl_season query parameter is required",
		})
		return
	}
	season, err := strconv.Atoi(rawSeason)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid epl_season %q", rawSeason),
		})
		return
	}

	id, err := h.starter.Start(season)
	if err != nil {
		if errors.Is(err, runner.ErrSeasonInProgress) {
			// Point the caller at the in-flight run instead of starting
			// a second one.
			writeJSON(w, http.StatusConflict, StartResponse{
				ID:        id,
				StatusURL: statusURL(id),
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusAccepted, StartResponse{
		ID:        id,
		StatusURL: statusURL(id),
	})
}

func statusURL(id string) string {
	return "/runtime/instances/" + id
}
