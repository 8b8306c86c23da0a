package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilops/vigil-api/internal/auth"
	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/repository"
)

const testCommentID = "d0000000-0000-4000-8000-000000000001"

type stubCommentRepo struct {
	getFn    func(ctx context.Context, workspaceID, commentID string) (models.AlertComment, error)
	listFn   func(ctx context.Context, alertID string) ([]models.AlertCommentRead, error)
	createFn func(ctx context.Context, workspaceID, alertID string, userID *string, params models.AlertCommentCreate) (models.AlertComment, error)
	updateFn func(ctx context.Context, workspaceID, commentID, actingUserID string, params models.AlertCommentUpdate) (models.AlertComment, error)
	deleteFn func(ctx context.Context, workspaceID, commentID, actingUserID string) error
}

func (s *stubCommentRepo) Get(ctx context.Context, workspaceID, commentID string) (models.AlertComment, error) {
	return s.getFn(ctx, workspaceID, commentID)
}

func (s *stubCommentRepo) ListForAlert(ctx context.Context, alertID string) ([]models.AlertCommentRead, error) {
	return s.listFn(ctx, alertID)
}

func (s *stubCommentRepo) Create(ctx context.Context, workspaceID, alertID string, userID *string, params models.AlertCommentCreate) (models.AlertComment, error) {
	return s.createFn(ctx, workspaceID, alertID, userID, params)
}

func (s *stubCommentRepo) Update(ctx context.Context, workspaceID, commentID, actingUserID string, params models.AlertCommentUpdate) (models.AlertComment, error) {
	return s.updateFn(ctx, workspaceID, commentID, actingUserID, params)
}

func (s *stubCommentRepo) Delete(ctx context.Context, workspaceID, commentID, actingUserID string) error {
	return s.deleteFn(ctx, workspaceID, commentID, actingUserID)
}

func alertExists() *stubAlertRepo {
	return &stubAlertRepo{
		getFn: func(_ context.Context, wid, id string) (models.Alert, error) {
			return models.Alert{ID: id, WorkspaceID: wid, Tags: []models.Tag{}}, nil
		},
	}
}

func TestListComments(t *testing.T) {
	author := &models.CommentAuthor{ID: testUser, Email: "analyst@example.com", DisplayName: "Analyst"}
	comments := &stubCommentRepo{
		listFn: func(_ context.Context, alertID string) ([]models.AlertCommentRead, error) {
			assert.Equal(t, testAlertID, alertID)
			return []models.AlertCommentRead{
				{AlertComment: models.AlertComment{ID: testCommentID, AlertID: alertID, Content: "looks legit"}, User: author},
			}, nil
		},
	}
	h := NewCommentHandler(comments, alertExists(), testLogger())

	req := authed(httptest.NewRequest(http.MethodGet, "/api/alerts/"+testAlertID+"/comments", nil))
	req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID})
	rec := httptest.NewRecorder()
	h.ListComments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.AlertCommentRead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.NotNil(t, got[0].User)
	assert.Equal(t, "analyst@example.com", got[0].User.Email)
}

func TestListCommentsAlertMissing(t *testing.T) {
	alerts := &stubAlertRepo{
		getFn: func(context.Context, string, string) (models.Alert, error) {
			return models.Alert{}, repository.ErrAlertNotFound
		},
	}
	h := NewCommentHandler(&stubCommentRepo{}, alerts, testLogger())

	req := authed(httptest.NewRequest(http.MethodGet, "/api/alerts/"+testAlertID+"/comments", nil))
	req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID})
	rec := httptest.NewRecorder()
	h.ListComments(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateComment(t *testing.T) {
	comments := &stubCommentRepo{
		createFn: func(_ context.Context, wid, alertID string, userID *string, params models.AlertCommentCreate) (models.AlertComment, error) {
			assert.Equal(t, testWorkspace, wid)
			require.NotNil(t, userID)
			assert.Equal(t, testUser, *userID)
			return models.AlertComment{ID: testCommentID, AlertID: alertID, Content: params.Content, UserID: userID}, nil
		},
	}
	h := NewCommentHandler(comments, alertExists(), testLogger())

	body := `{"content":"escalating to tier 2"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/alerts/"+testAlertID+"/comments", strings.NewReader(body)))
	req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID})
	rec := httptest.NewRecorder()
	h.CreateComment(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AlertComment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "escalating to tier 2", created.Content)
}

func TestCreateCommentValidation(t *testing.T) {
	h := NewCommentHandler(&stubCommentRepo{}, alertExists(), testLogger())

	tests := []struct {
		name string
		body string
	}{
		{"empty content", `{"content":""}`},
		{"content too long", `{"content":"` + strings.Repeat("a", 5001) + `"}`},
		{"bad parent id", `{"content":"x","parent_id":"not-a-uuid"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := authed(httptest.NewRequest(http.MethodPost, "/api/alerts/"+testAlertID+"/comments", strings.NewReader(tc.body)))
			req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID})
			rec := httptest.NewRecorder()
			h.CreateComment(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateCommentOwnership(t *testing.T) {
	comments := &stubCommentRepo{
		updateFn: func(_ context.Context, _, _, actingUserID string, _ models.AlertCommentUpdate) (models.AlertComment, error) {
			assert.Equal(t, testUser, actingUserID)
			return models.AlertComment{}, repository.ErrCommentForbidden
		},
	}
	h := NewCommentHandler(comments, alertExists(), testLogger())

	body := `{"content":"edited"}`
	req := authed(httptest.NewRequest(http.MethodPatch, "/api/alerts/"+testAlertID+"/comments/"+testCommentID, strings.NewReader(body)))
	req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID, "commentID": testCommentID})
	rec := httptest.NewRecorder()
	h.UpdateComment(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateComment(t *testing.T) {
	comments := &stubCommentRepo{
		updateFn: func(_ context.Context, wid, commentID, actingUserID string, params models.AlertCommentUpdate) (models.AlertComment, error) {
			assert.Equal(t, testCommentID, commentID)
			return models.AlertComment{ID: commentID, Content: params.Content}, nil
		},
	}
	h := NewCommentHandler(comments, alertExists(), testLogger())

	body := `{"content":"edited"}`
	req := authed(httptest.NewRequest(http.MethodPatch, "/api/alerts/"+testAlertID+"/comments/"+testCommentID, strings.NewReader(body)))
	req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID, "commentID": testCommentID})
	rec := httptest.NewRecorder()
	h.UpdateComment(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpdateCommentRequiresUser(t *testing.T) {
	h := NewCommentHandler(&stubCommentRepo{}, alertExists(), testLogger())

	// Workspace identity without a user claim cannot mutate comments.
	req := httptest.NewRequest(http.MethodPatch, "/api/alerts/"+testAlertID+"/comments/"+testCommentID, strings.NewReader(`{"content":"x"}`))
	req = req.WithContext(auth.WithIdentity(req.Context(), testWorkspace, ""))
	req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID, "commentID": testCommentID})
	rec := httptest.NewRecorder()
	h.UpdateComment(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteComment(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"owner deletes", nil, http.StatusNoContent},
		{"non-owner forbidden", repository.ErrCommentForbidden, http.StatusForbidden},
		{"missing comment", repository.ErrCommentNotFound, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			comments := &stubCommentRepo{
				deleteFn: func(context.Context, string, string, string) error { return tc.err },
			}
			h := NewCommentHandler(comments, alertExists(), testLogger())

			req := authed(httptest.NewRequest(http.MethodDelete, "/api/alerts/"+testAlertID+"/comments/"+testCommentID, nil))
			req = mux.SetURLVars(req, map[string]string{"alertID": testAlertID, "commentID": testCommentID})
			rec := httptest.NewRecorder()
			h.DeleteComment(rec, req)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
