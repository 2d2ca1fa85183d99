package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/inkwell-journal/authcore/internal/api/helpers"
	"github.com/inkwell-journal/authcore/internal/security/session"
	"github.com/inkwell-journal/authcore/internal/storage"
)

// RequireSession is the single entry point every authenticated handler
// funnels through. It runs the initiator lookup and maps every
// non-Found outcome to the tabulated HTTP response, stashing the
// resolved user id in context on success.
func RequireSession(q *storage.Queries, st session.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lookup, err := session.LookupInitiator(r.Context(), q, st, r, time.Now())
			if err != nil {
				helpers.RespondError(w, http.StatusInternalServerError, "Internal")
				return
			}

			switch lookup.Outcome {
			case session.CookieMissing, session.InvalidFormat, session.InvalidMac, session.VerifyFailed:
				helpers.RespondError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			case session.SessionNotFound:
				helpers.RespondError(w, http.StatusNotFound, "SessionNotFound")
				return
			case session.UserNotFound:
				helpers.RespondError(w, http.StatusNotFound, "UserNotFound")
				return
			case session.SessionExpired:
				helpers.RespondError(w, http.StatusUnauthorized, "SessionExpired")
				return
			case session.SessionUnverified:
				helpers.RespondError(w, http.StatusUnauthorized, "VerifySession")
				return
			case session.Found:
				ctx := context.WithValue(r.Context(), UserIDKey, lookup.User.ID)
				SetSentryUser(lookup.User.ID, helpers.GetRealIP(r).String())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		})
	}
}
