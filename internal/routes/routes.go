package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vigilops/vigil-api/internal/auth"
	"github.com/vigilops/vigil-api/internal/handlers"
)

// NewRouter sets up the API routes. Everything under /api passes the
// identity middleware.
func NewRouter(
	jwtSecret string,
	alerts *handlers.AlertHandler,
	comments *handlers.CommentHandler,
	tags *handlers.TagHandler,
	fields *handlers.FieldHandler,
	caseLinks *handlers.CaseLinkHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(jwtSecret))

	// Alerts
	api.HandleFunc("/alerts", alerts.ListAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", alerts.CreateAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/search", alerts.SearchAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{alertID}", alerts.GetAlert).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{alertID}", alerts.UpdateAlert).Methods(http.MethodPatch)
	api.HandleFunc("/alerts/{alertID}", alerts.DeleteAlert).Methods(http.MethodDelete)

	// Comments
	api.HandleFunc("/alerts/{alertID}/comments", comments.ListComments).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{alertID}/comments", comments.CreateComment).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{alertID}/comments/{commentID}", comments.UpdateComment).Methods(http.MethodPatch)
	api.HandleFunc("/alerts/{alertID}/comments/{commentID}", comments.DeleteComment).Methods(http.MethodDelete)

	// Tags
	api.HandleFunc("/alerts/{alertID}/tags", tags.ListAlertTags).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{alertID}/tags/{tagRef}", tags.AddAlertTag).Methods(http.MethodPut)
	api.HandleFunc("/alerts/{alertID}/tags/{tagRef}", tags.RemoveAlertTag).Methods(http.MethodDelete)

	// Custom field definitions
	api.HandleFunc("/alert-fields", fields.ListFields).Methods(http.MethodGet)
	api.HandleFunc("/alert-fields", fields.CreateField).Methods(http.MethodPost)
	api.HandleFunc("/alert-fields/{fieldID}", fields.UpdateField).Methods(http.MethodPatch)
	api.HandleFunc("/alert-fields/{fieldID}", fields.DeleteField).Methods(http.MethodDelete)

	// Case-alert links
	api.HandleFunc("/cases/{caseID}/alerts", caseLinks.ListCaseAlerts).Methods(http.MethodGet)
	api.HandleFunc("/cases/{caseID}/alerts", caseLinks.LinkAlert).Methods(http.MethodPost)
	api.HandleFunc("/cases/{caseID}/alerts/{alertID}", caseLinks.UnlinkAlert).Methods(http.MethodDelete)

	return router
}
