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

type CommentHandler struct {
	comments repository.CommentRepository
	alerts   repository.AlertRepository
	logger   zerolog.Logger
}

func NewCommentHandler(comments repository.CommentRepository, alerts repository.AlertRepository, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		alerts:   alerts,
		logger:   logger,
	}
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	alertID := mux.Vars(r)["alertID"]

	// Resolve the alert first so a bad alert id is a 404, not an empty list.
	alert, err := h.alerts.Get(r.Context(), wid, alertID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	comments, err := h.comments.ListForAlert(r.Context(), alert.ID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	alertID := mux.Vars(r)["alertID"]

	var payload models.AlertCommentCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(h.logger, w, err)
		return
	}

	alert, err := h.alerts.Get(r.Context(), wid, alertID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	var userID *string
	if uid, ok := auth.UserIDFromRequest(r); ok {
		userID = &uid
	}

	comment, err := h.comments.Create(r.Context(), wid, alert.ID, userID, payload)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	uid, ok := auth.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "User identity required", http.StatusForbidden)
		return
	}
	commentID := mux.Vars(r)["commentID"]

	var payload models.AlertCommentUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(h.logger, w, err)
		return
	}

	if _, err := h.comments.Update(r.Context(), wid, commentID, uid, payload); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	uid, ok := auth.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "User identity required", http.StatusForbidden)
		return
	}
	commentID := mux.Vars(r)["commentID"]

	if err := h.comments.Delete(r.Context(), wid, commentID, uid); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
