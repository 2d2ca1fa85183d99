package middleware

import (
	"log/slog"
	"net/http"

	"github.com/inkwell-journal/authcore/internal/api/helpers"
	"github.com/inkwell-journal/authcore/internal/security/permission"
	"github.com/inkwell-journal/authcore/internal/storage"
)

// ResourceIDFunc extracts the resource id a permission check should be
// scoped to, e.g. from a chi URL parameter. Returning (_, false) checks
// the roll's global grant instead.
type ResourceIDFunc func(r *http.Request) (int32, bool)

// RequirePermission enforces that the authenticated user (set in
// context by RequireSession) holds roll with one of abilities,
// optionally scoped to a resource resolved by resourceID. Must run
// after RequireSession.
func RequirePermission(q *storage.Queries, roll string, abilities []storage.Ability, resourceID ResourceIDFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := GetUserID(r.Context())
			if err != nil {
				helpers.RespondError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}

			var resource *int32
			if resourceID != nil {
				if id, ok := resourceID(r); ok {
					resource = &id
				}
			}

			ok, err := permission.HasPermission(r.Context(), q, userID, roll, abilities, resource)
			if err != nil {
				slog.Error("permission check failed", "error", err, "roll", roll, "user_id", userID)
				helpers.RespondError(w, http.StatusInternalServerError, "Internal")
				return
			}
			if !ok {
				slog.Warn("permission denied", "roll", roll, "user_id", userID)
				helpers.RespondError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
