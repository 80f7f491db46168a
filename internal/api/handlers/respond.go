package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	middleware "github.com/markdave123-py/Pagewise/internal/api/middlewares"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "session not found in context", http.StatusUnauthorized)
	}
	return sid, ok
}
