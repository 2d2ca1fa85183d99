// Package api is the HTTP shell around the authentication core: it
// decodes requests, funnels every authenticated call through the
// Session Manager's initiator lookup, converts core outcomes into the
// status codes and error names of the external interface, and is the
// only layer permitted to log internal errors.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-journal/authcore/internal/api/helpers"
	"github.com/inkwell-journal/authcore/internal/api/middleware"
	"github.com/inkwell-journal/authcore/internal/audit"
	"github.com/inkwell-journal/authcore/internal/security/otp"
	"github.com/inkwell-journal/authcore/internal/security/password"
	"github.com/inkwell-journal/authcore/internal/security/session"
	"github.com/inkwell-journal/authcore/internal/storage"
)

// Handler holds the dependencies every auth endpoint needs.
type Handler struct {
	Pool    *pgxpool.Pool
	Session session.State
	Audit   audit.Logger
}

func (h *Handler) audit() audit.Logger {
	if h.Audit == nil {
		return audit.NoopLogger{}
	}
	return h.Audit
}

// Login handles POST /auth/session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.RespondError(w, http.StatusBadRequest, "Validation")
		return
	}

	ip := helpers.GetRealIP(r).String()
	ctx := r.Context()
	q := storage.New(h.Pool)

	user, err := q.GetUserByUsername(ctx, req.Username)
	if err != nil {
		slog.Error("login: lookup failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}
	if user == nil {
		helpers.RespondError(w, http.StatusNotFound, "UsernameNotFound")
		return
	}

	if !password.Verify(user.PasswordHash, req.Password) {
		h.audit().Log(ctx, user.ID, audit.EventLoginFailed, "session", map[string]string{"ip": ip})
		helpers.RespondError(w, http.StatusUnauthorized, "InvalidPassword")
		return
	}

	enrollment, err := q.GetAuthOtpByUserID(ctx, user.ID)
	if err != nil {
		slog.Error("login: otp lookup failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}
	hasVerifiedOTP := enrollment != nil && enrollment.Verified

	s, err := session.Issue(ctx, q, user.ID, hasVerifiedOTP, time.Now())
	if err != nil {
		slog.Error("login: session issuance failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}

	http.SetCookie(w, h.Session.Cookie(s))

	if !s.Verified {
		h.audit().Log(ctx, user.ID, audit.EventLoginSuccess, "session", map[string]string{"ip": ip, "pending_2fa": "true"})
		helpers.RespondJSON(w, http.StatusUnauthorized, struct {
			Error string `json:"error"`
			TotpHint
		}{
			Error:    "VerifySession",
			TotpHint: TotpHint{Method: "Totp", Digits: int(enrollment.Digits)},
		})
		return
	}

	h.audit().Log(ctx, user.ID, audit.EventLoginSuccess, "session", map[string]string{"ip": ip})
	helpers.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// VerifySession handles POST /auth/session/verify.
func (h *Handler) VerifySession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := storage.New(h.Pool)
	now := time.Now()

	lookup, err := session.LookupInitiator(ctx, q, h.Session, r, now)
	if err != nil {
		slog.Error("verify session: lookup failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}

	switch lookup.Outcome {
	case session.SessionUnverified:
	case session.Found:
		helpers.RespondJSON(w, http.StatusOK, toUserResponse(lookup.User))
		return
	default:
		helpers.RespondError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	var req VerifySessionRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.RespondError(w, http.StatusBadRequest, "Validation")
		return
	}

	var outcome session.VerifyOutcome
	err = storage.WithTx(ctx, h.Pool, func(txq *storage.Queries) error {
		var verifyErr error
		outcome, verifyErr = session.VerifySecondFactor(ctx, txq, lookup.Session.Owner, lookup.Session.Token, session.VerifyMethod(req.Method), req.Value, now)
		return verifyErr
	})
	if err != nil {
		slog.Error("verify session: transition failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}

	ip := helpers.GetRealIP(r).String()
	if outcome != session.VerifyOK {
		h.audit().Log(ctx, lookup.Session.Owner, audit.EventSessionVerifyFailed, "session", map[string]string{"ip": ip, "reason": string(outcome)})
		helpers.RespondError(w, http.StatusUnauthorized, string(outcome))
		return
	}

	user, err := q.GetUserByID(ctx, lookup.Session.Owner)
	if err != nil || user == nil {
		helpers.RespondError(w, http.StatusNotFound, "UserNotFound")
		return
	}

	if session.VerifyMethod(req.Method) == session.MethodTotpHash {
		h.audit().Log(ctx, user.ID, audit.EventBackupCodeConsumed, "totp", map[string]string{"ip": ip})
	}
	h.audit().Log(ctx, user.ID, audit.EventSessionVerified, "session", map[string]string{"ip": ip})
	helpers.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout handles DELETE /auth/session. Tolerant of Found,
// SessionExpired, and SessionUnverified per the revocation contract.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := storage.New(h.Pool)

	lookup, err := session.LookupInitiator(ctx, q, h.Session, r, time.Now())
	if err != nil {
		slog.Error("logout: lookup failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}

	switch lookup.Outcome {
	case session.Found, session.SessionExpired, session.SessionUnverified:
		if err := session.Revoke(ctx, q, lookup.Session.Token); err != nil {
			slog.Error("logout: revoke failed", "error", err)
		} else if lookup.Outcome == session.Found {
			h.audit().Log(ctx, lookup.User.ID, audit.EventLogout, "session", nil)
		}
	}

	http.SetCookie(w, h.Session.LogoutCookie())
	w.WriteHeader(http.StatusOK)
}

// EnrollTotp handles POST /auth/totp. Requires an authenticated,
// verified session (wired via middleware.RequireSession).
func (h *Handler) EnrollTotp(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		helpers.RespondError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	var req EnrollTotpRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.RespondError(w, http.StatusBadRequest, "Validation")
		return
	}

	q := storage.New(h.Pool)
	enrollment, err := otp.Enroll(r.Context(), q, userID, otp.EnrollRequest{
		Algo:   otp.Algo(req.Algo),
		Digits: req.Digits,
		Step:   req.Step,
	})
	if err != nil {
		helpers.RespondError(w, http.StatusBadRequest, "Validation")
		return
	}

	h.audit().Log(r.Context(), userID, audit.EventTotpEnrolled, "totp", nil)

	helpers.RespondJSON(w, http.StatusOK, EnrollTotpResponse{
		Algo:         string(enrollment.Settings.Algo),
		Digits:       enrollment.Settings.Digits,
		Step:         enrollment.Settings.Step,
		SecretBase32: enrollment.SecretBase32,
	})
}

// ActivateTotp handles POST /auth/totp/verify.
func (h *Handler) ActivateTotp(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		helpers.RespondError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	var req ActivateTotpRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.RespondError(w, http.StatusBadRequest, "Validation")
		return
	}

	ctx := r.Context()
	q := storage.New(h.Pool)

	enrollment, err := q.GetAuthOtpByUserID(ctx, userID)
	if err != nil {
		slog.Error("activate totp: lookup failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}
	if enrollment == nil {
		helpers.RespondError(w, http.StatusNotFound, "TotpNotFound")
		return
	}

	var codes []string
	err = storage.WithTx(ctx, h.Pool, func(txq *storage.Queries) error {
		outcome, c, err := otp.Activate(ctx, txq, *enrollment, req.Value, time.Now())
		if err != nil {
			return err
		}
		switch outcome {
		case otp.ActivateAlreadyActivated:
			return errActivateAlready
		case otp.ActivateInvalidCode:
			return errActivateInvalidCode
		}
		codes = c
		return nil
	})

	switch err {
	case nil:
		h.audit().Log(ctx, userID, audit.EventTotpActivated, "totp", nil)
		helpers.RespondJSON(w, http.StatusOK, ActivateTotpResponse{Hashes: codes})
	case errActivateAlready:
		helpers.RespondError(w, http.StatusBadRequest, "TotpAlreadyVerified")
	case errActivateInvalidCode:
		helpers.RespondError(w, http.StatusUnauthorized, "InvalidTotpCode")
	default:
		slog.Error("activate totp: transaction failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
	}
}

// RemoveTotp handles DELETE /auth/totp.
func (h *Handler) RemoveTotp(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		helpers.RespondError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	q := storage.New(h.Pool)
	if err := q.DeleteAuthOtp(r.Context(), userID); err != nil {
		slog.Error("remove totp: failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}

	h.audit().Log(r.Context(), userID, audit.EventTotpRemoved, "totp", nil)
	w.WriteHeader(http.StatusOK)
}

// ChangePassword handles POST /auth/change.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		helpers.RespondError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	var req ChangePasswordRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.RespondError(w, http.StatusBadRequest, "Validation")
		return
	}

	ctx := r.Context()
	q := storage.New(h.Pool)

	user, err := q.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		helpers.RespondError(w, http.StatusNotFound, "UserNotFound")
		return
	}

	if !password.Verify(user.PasswordHash, req.CurrentPassword) {
		helpers.RespondError(w, http.StatusUnauthorized, "InvalidPassword")
		return
	}

	newHash, err := password.Hash(req.NewPassword)
	if err != nil {
		slog.Error("change password: hash failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}

	if err := q.UpdateUserPassword(ctx, userID, newHash); err != nil {
		slog.Error("change password: update failed", "error", err)
		helpers.RespondError(w, http.StatusInternalServerError, "Internal")
		return
	}

	h.audit().Log(ctx, userID, audit.EventPasswordChanged, "user", nil)
	w.WriteHeader(http.StatusOK)
}

var (
	errActivateAlready     = &handlerError{"totp already activated"}
	errActivateInvalidCode = &handlerError{"invalid totp code"}
)

type handlerError struct{ msg string }

func (e *handlerError) Error() string { return e.msg }
