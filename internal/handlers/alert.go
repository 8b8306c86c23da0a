package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/vigilops/vigil-api/internal/auth"
	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/pagination"
	"github.com/vigilops/vigil-api/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type AlertHandler struct {
	alerts repository.AlertRepository
	fields repository.FieldRepository
	tags   repository.TagRepository
	logger zerolog.Logger
}

func NewAlertHandler(alerts repository.AlertRepository, fields repository.FieldRepository, tags repository.TagRepository, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		fields: fields,
		tags:   tags,
		logger: logger,
	}
}

// alertPage is the listing envelope: the page items plus cursor metadata.
type alertPage struct {
	Items []models.AlertSummary `json:"items"`
	pagination.Meta
}

func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}

	params, err := h.parsePageParams(r)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	filters, err := h.parseFilters(r, wid)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	items, meta, err := h.alerts.ListPaginated(r.Context(), wid, params, filters)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, alertPage{Items: items, Meta: meta})
}

func (h *AlertHandler) SearchAlerts(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}

	filters, err := h.parseFilters(r, wid)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	q := models.AlertSearch{
		AlertFilters: filters,
		OrderBy:      r.URL.Query().Get("order_by"),
		Sort:         r.URL.Query().Get("sort"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		q.Limit = v
	}
	for param, dest := range map[string]**time.Time{
		"created_after":  &q.CreatedAfter,
		"created_before": &q.CreatedBefore,
		"updated_after":  &q.UpdatedAfter,
		"updated_before": &q.UpdatedBefore,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "Invalid "+param+": expected RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		*dest = &t
	}

	items, err := h.alerts.Search(r.Context(), wid, q)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}

	var payload models.AlertCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	payload.WorkspaceID = wid
	if err := validate.Struct(payload); err != nil {
		writeError(h.logger, w, err)
		return
	}

	alert, err := h.alerts.Create(r.Context(), payload)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

// GetAlert returns the full read model: every defined custom field appears,
// value null when the alert carries none.
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
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

	defs, err := h.fields.ListFields(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	values, err := h.fields.GetValues(r.Context(), alert.ID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	fields := make([]models.AlertCustomField, 0, len(defs))
	for _, def := range defs {
		fields = append(fields, models.AlertCustomField{
			AlertField: def,
			Value:      values[def.ID],
		})
	}

	detail := models.AlertDetail{
		ID:          alert.ID,
		ShortID:     alert.ShortID(),
		Summary:     alert.Summary,
		Description: alert.Description,
		Status:      alert.Status,
		Priority:    alert.Priority,
		Severity:    alert.Severity,
		Fields:      fields,
		Payload:     alert.Payload,
		Tags:        alert.Tags,
		CreatedAt:   alert.CreatedAt,
		UpdatedAt:   alert.UpdatedAt,
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *AlertHandler) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	alertID := mux.Vars(r)["alertID"]

	var payload models.AlertUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(h.logger, w, err)
		return
	}

	alert, diffs, err := h.alerts.Update(r.Context(), wid, alertID, payload)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	if diffs == nil {
		diffs = []models.FieldDiff{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alert":       alert,
		"field_diffs": diffs,
	})
}

func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	wid, ok := auth.WorkspaceIDFromRequest(r)
	if !ok {
		http.Error(w, "Workspace scope required", http.StatusUnauthorized)
		return
	}
	alertID := mux.Vars(r)["alertID"]

	if err := h.alerts.Delete(r.Context(), wid, alertID); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AlertHandler) parsePageParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{Limit: defaultPageLimit}

	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 || v > maxPageLimit {
			return pagination.Params{}, &models.ValidationError{Msg: "limit must be between 1 and 100"}
		}
		params.Limit = v
	}
	if token := r.URL.Query().Get("cursor"); token != "" {
		c, err := pagination.DecodeCursor(token)
		if err != nil {
			return pagination.Params{}, &models.ValidationError{Msg: "invalid cursor"}
		}
		params.Cursor = &c
	}
	params.Reverse = r.URL.Query().Get("reverse") == "true"
	return params, nil
}

// parseFilters builds the shared filter set. Tag references that do not
// resolve are skipped rather than failing the request.
func (h *AlertHandler) parseFilters(r *http.Request, workspaceID string) (models.AlertFilters, error) {
	q := r.URL.Query()
	filters := models.AlertFilters{
		SearchTerm: q.Get("search_term"),
		Status:     models.AlertStatus(q.Get("status")),
		Priority:   models.AlertPriority(q.Get("priority")),
		Severity:   models.AlertSeverity(q.Get("severity")),
	}
	if err := filters.Validate(); err != nil {
		return models.AlertFilters{}, err
	}

	for _, ref := range q["tag"] {
		tag, err := h.tags.Resolve(r.Context(), workspaceID, ref)
		if errors.Is(err, repository.ErrTagNotFound) {
			continue
		}
		if err != nil {
			return models.AlertFilters{}, err
		}
		filters.TagIDs = append(filters.TagIDs, tag.ID)
	}
	return filters, nil
}
