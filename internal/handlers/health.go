package handlers

import "net/http"

// HealthCheck reports liveness; it sits outside the identity middleware.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
