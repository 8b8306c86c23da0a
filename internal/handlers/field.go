package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/repository"
)

// FieldHandler manages custom field definitions. Definitions are global to
// the deployment's alert table, not per-workspace; the identity middleware
// still gates access.
type FieldHandler struct {
	fields repository.FieldRepository
	logger zerolog.Logger
}

func NewFieldHandler(fields repository.FieldRepository, logger zerolog.Logger) *FieldHandler {
	return &FieldHandler{
		fields: fields,
		logger: logger,
	}
}

func (h *FieldHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.fields.ListFields(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

func (h *FieldHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	var payload models.AlertFieldCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(h.logger, w, err)
		return
	}

	if err := h.fields.CreateField(r.Context(), payload); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *FieldHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	fieldID := mux.Vars(r)["fieldID"]

	var payload models.AlertFieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(h.logger, w, err)
		return
	}

	if err := h.fields.UpdateField(r.Context(), fieldID, payload); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FieldHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	fieldID := mux.Vars(r)["fieldID"]

	if err := h.fields.DeleteField(r.Context(), fieldID); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
