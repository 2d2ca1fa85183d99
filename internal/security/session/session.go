// Package session is the Session Manager: cookie issuance, the
// initiator lookup every authenticated handler funnels through, the
// verify transition that promotes a pending-2FA session, and logout.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/inkwell-journal/authcore/internal/security/mac"
	"github.com/inkwell-journal/authcore/internal/storage"
)

// CookieName is the name of the session cookie every handler reads.
const CookieName = "session_id"

// TokenChars is the fixed length of the token portion of a cookie
// value, base64url-encoded from 48 random bytes (384 bits, comfortably
// over the 256-bit floor).
const TokenChars = 64

// Lifetime is how long a freshly issued session is valid for.
const Lifetime = 7 * 24 * time.Hour

// State is the process-wide configuration the session manager needs:
// the secret used to MAC cookie tokens, the algorithm choice, and the
// cookie domain.
type State struct {
	Secret           []byte
	Algo             mac.Algo
	Domain           string
	CookieOverSecure bool
}

// Outcome enumerates every result of an initiator lookup.
type Outcome int

const (
	CookieMissing Outcome = iota
	InvalidFormat
	InvalidMac
	VerifyFailed
	SessionNotFound
	SessionExpired
	SessionUnverified
	UserNotFound
	Found
)

// Lookup is the result of an initiator lookup: the Outcome plus
// whatever state was resolved along the way. Session and User are only
// populated for outcomes that reached that far (SessionUnverified and
// Found always carry Session; Found always carries User).
type Lookup struct {
	Outcome Outcome
	Session *storage.UserSession
	User    *storage.User
}

// generateToken returns a cryptographically random token, base64url
// encoded to exactly TokenChars characters.
func generateToken() (string, error) {
	// base64 emits 4 chars per 3 bytes; 48 bytes -> 64 chars exactly.
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue creates and persists a new session for userID, re-rolling the
// token on the vanishingly unlikely collision with an existing one.
// verified is set to NOT hasVerifiedOTP per the issuance rule: a user
// without activated TOTP starts out session-verified.
func Issue(ctx context.Context, q *storage.Queries, userID int32, hasVerifiedOTP bool, now time.Time) (*storage.UserSession, error) {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		token, err := generateToken()
		if err != nil {
			return nil, err
		}

		existing, err := q.GetSessionByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		s := storage.UserSession{
			Token:    token,
			Owner:    userID,
			IssuedOn: now,
			Expires:  now.Add(Lifetime),
			Dropped:  false,
			Verified: !hasVerifiedOTP,
			UseCSRF:  false,
		}

		if err := q.InsertSession(ctx, s); err != nil {
			return nil, err
		}

		return &s, nil
	}

	return nil, errors.New("session: failed to mint a unique token")
}

// Cookie builds the session_id cookie for a newly issued or
// already-loaded session.
func (st State) Cookie(s *storage.UserSession) *http.Cookie {
	tag := mac.Sign(st.Algo, st.Secret, []byte(s.Token))
	value := s.Token + base64.RawURLEncoding.EncodeToString(tag)

	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Domain:   st.Domain,
		Path:     "/",
		MaxAge:   int(time.Until(s.Expires).Seconds()),
		SameSite: http.SameSiteStrictMode,
		HttpOnly: true,
		Secure:   st.CookieOverSecure,
	}
}

// LogoutCookie builds the cookie that clears session_id on logout:
// same attributes, empty value, Max-Age=0.
func (st State) LogoutCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Domain:   st.Domain,
		Path:     "/",
		MaxAge:   0,
		SameSite: http.SameSiteStrictMode,
		HttpOnly: true,
		Secure:   st.CookieOverSecure,
	}
}

// LookupInitiator is the single entry point every authenticated
// handler funnels through: parse the cookie, verify its MAC, load and
// validate the session, and resolve the owning user.
func LookupInitiator(ctx context.Context, q *storage.Queries, st State, r *http.Request, now time.Time) (Lookup, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Lookup{Outcome: CookieMissing}, nil
	}

	if len(cookie.Value) <= TokenChars {
		return Lookup{Outcome: InvalidFormat}, nil
	}

	token := cookie.Value[:TokenChars]
	macSuffix := cookie.Value[TokenChars:]

	tag, err := base64.RawURLEncoding.DecodeString(macSuffix)
	if err != nil {
		return Lookup{Outcome: InvalidMac}, nil
	}

	if mac.Verify(st.Algo, st.Secret, []byte(token), tag) != mac.Valid {
		return Lookup{Outcome: VerifyFailed}, nil
	}

	s, err := q.GetSessionByToken(ctx, token)
	if err != nil {
		return Lookup{}, err
	}
	if s == nil {
		return Lookup{Outcome: SessionNotFound}, nil
	}

	if s.Dropped || !now.Before(s.Expires) {
		return Lookup{Outcome: SessionExpired, Session: s}, nil
	}

	if !s.Verified {
		return Lookup{Outcome: SessionUnverified, Session: s}, nil
	}

	user, err := q.GetUserByID(ctx, s.Owner)
	if err != nil {
		return Lookup{}, err
	}
	if user == nil {
		return Lookup{Outcome: UserNotFound, Session: s}, nil
	}

	return Lookup{Outcome: Found, Session: s, User: user}, nil
}

// Revoke tolerantly deletes a session row. Safe to call for any
// outcome that carried a Session (Found, SessionExpired,
// SessionUnverified); deleting an already-gone token is not an error.
func Revoke(ctx context.Context, q *storage.Queries, token string) error {
	return q.DeleteSession(ctx, token)
}
