package middleware

import (
	"strconv"

	"github.com/getsentry/sentry-go"
)

// SetSentryUser attaches the authenticated user to the current Sentry
// scope so panics and captured errors carry that context.
func SetSentryUser(userID int32, ip string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: strconv.Itoa(int(userID)), IPAddress: ip})
	})
}
