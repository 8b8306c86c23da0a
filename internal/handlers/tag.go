package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vigilops/vigil-api/internal/auth"
	"github.com/vigilops/vigil-api/internal/repository"
)

type TagHandler struct {
	tags   repository.TagRepository
	alerts repository.AlertRepository
	logger zerolog.Logger
}

func NewTagHandler(tags repository.TagRepository, alerts repository.AlertRepository, logger zerolog.Logger) *TagHandler {
	return &TagHandler{
		tags:   tags,
		alerts: alerts,
		logger: logger,
	}
}

func (h *TagHandler) ListAlertTags(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	alertID := mux.Vars(r)["alertID"]

	alert, err := h.alerts.Get(r.Context(), wid, alertID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	tags, err := h.tags.ListForAlert(r.Context(), alert.ID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// AddAlertTag attaches a tag by id or ref slug. Re-adding a tag the alert
// already carries succeeds and returns the tag unchanged.
func (h *TagHandler) AddAlertTag(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	alert, err := h.alerts.Get(r.Context(), wid, vars["alertID"])
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	tag, err := h.tags.AddAlertTag(r.Context(), wid, alert.ID, vars["tagRef"])
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) RemoveAlertTag(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	if err := h.tags.RemoveAlertTag(r.Context(), wid, vars["alertID"], vars["tagRef"]); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
