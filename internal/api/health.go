package api

import (
	"net/http"

	"github.com/inkwell-journal/authcore/internal/api/helpers"
)

// Health reports pool connectivity, used by deploy tooling for
// zero-downtime rollouts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Pool.Ping(r.Context()); err != nil {
		helpers.RespondError(w, http.StatusServiceUnavailable, "DatabaseUnavailable")
		return
	}
	helpers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
