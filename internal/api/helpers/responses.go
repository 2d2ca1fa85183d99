package helpers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

// RespondError writes a {"error": name} body with the given status.
// name is one of the core's typed error names (e.g. "InvalidPassword",
// "VerifySession"), never a free-text message, so clients can switch on
// it.
func RespondError(w http.ResponseWriter, status int, name string) {
	RespondJSON(w, status, map[string]string{"error": name})
}
