package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vigilops/vigil-api/internal/auth"
	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/repository"
)

type CaseLinkHandler struct {
	links  repository.CaseLinkRepository
	logger zerolog.Logger
}

func NewCaseLinkHandler(links repository.CaseLinkRepository, logger zerolog.Logger) *CaseLinkHandler {
	return &CaseLinkHandler{
		links:  links,
		logger: logger,
	}
}

func (h *CaseLinkHandler) ListCaseAlerts(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	caseID := mux.Vars(r)["caseID"]

	alerts, err := h.links.ListAlertsForCase(r.Context(), wid, caseID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// LinkAlert attaches an alert to a case. Linking an already-linked pair
// succeeds and returns the alert unchanged.
func (h *CaseLinkHandler) LinkAlert(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	caseID := mux.Vars(r)["caseID"]

	var payload models.CaseAlertCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(h.logger, w, err)
		return
	}

	alert, err := h.links.Add(r.Context(), wid, caseID, payload.AlertID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (h *CaseLinkHandler) UnlinkAlert(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	if err := h.links.Remove(r.Context(), wid, vars["caseID"], vars["alertID"]); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
