package api

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/inkwell-journal/authcore/internal/api/middleware"
	"github.com/inkwell-journal/authcore/internal/storage"
)

// NewRouter wires the seven endpoints the core owns onto a chi router,
// with the ambient middleware stack (request id, Sentry capture, panic
// recovery, structured logging, per-IP rate limiting) applied ahead of
// them.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	r.Use(sentryHandler.Handle)

	r.Use(middleware.RequestLogger)
	r.Use(middleware.PanicRecovery)
	r.Use(chimw.Timeout(30 * time.Second))

	limiter := middleware.NewIPRateLimiter(rate.Limit(5), 10)
	r.Use(limiter.Middleware)

	r.Get("/health", h.Health)

	q := storage.New(h.Pool)
	requireSession := middleware.RequireSession(q, h.Session)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/session", h.Login)
		r.Post("/session/verify", h.VerifySession)
		r.Delete("/session", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Post("/totp", h.EnrollTotp)
			r.Post("/totp/verify", h.ActivateTotp)
			r.Delete("/totp", h.RemoveTotp)
			r.Post("/change", h.ChangePassword)
		})
	})

	return r
}
