package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/HammerMeetNail/watchtogether/internal/handlers"
)

// writeError writes the same envelope the handlers use.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(handlers.Envelope{Success: false, Message: message})
}
