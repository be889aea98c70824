package api

import "net/http"

// handleHealth is a liveness probe; it never checks dependencies.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, s.logger)
}
