package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/common"
	"github.com/akashstwt/scraper-backend/internal/registry"
)

// StatusHandler serves job status polling
type StatusHandler struct {
	registry *registry.Registry
	logger   arbor.ILogger
}

func NewStatusHandler(reg *registry.Registry) *StatusHandler {
	return &StatusHandler{
		registry: reg,
		logger:   common.GetLogger(),
	}
}

// GetHandler handles GET /api/status/{id}, returning the job snapshot as
// JSON. Unknown ids get a JSON 404 so pollers can distinguish a bad id from
// a dead server.
func (h *StatusHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/status/")
	if jobID == "" || strings.Contains(jobID, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid job id")
		return
	}

	job, err := h.registry.Get(jobID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load job")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}
