package session_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwell-journal/authcore/internal/security/mac"
	"github.com/inkwell-journal/authcore/internal/security/session"
	"github.com/inkwell-journal/authcore/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() session.State {
	return session.State{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Algo:   mac.SHA256,
		Domain: "example.test",
	}
}

func TestCookie_ShapeAndAttributes(t *testing.T) {
	st := testState()
	s := &storage.UserSession{
		Token:   "0123456789012345678901234567890123456789012345678901234567890ABC",
		Owner:   1,
		Expires: time.Now().Add(time.Hour),
	}
	require.Len(t, s.Token, session.TokenChars)

	c := st.Cookie(s)
	assert.Equal(t, session.CookieName, c.Name)
	assert.True(t, len(c.Value) > session.TokenChars)
	assert.Equal(t, s.Token, c.Value[:session.TokenChars])
	assert.Equal(t, "example.test", c.Domain)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestLogoutCookie_EmptyValueZeroMaxAge(t *testing.T) {
	st := testState()
	c := st.LogoutCookie()
	assert.Empty(t, c.Value)
	assert.Equal(t, 0, c.MaxAge)
	assert.Equal(t, session.CookieName, c.Name)
}

func requestWithCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	}
	return r
}

func TestLookupInitiator_CookieMissing(t *testing.T) {
	r := requestWithCookie("")
	lookup, err := session.LookupInitiator(nil, nil, testState(), r, time.Now())
	require.NoError(t, err)
	assert.Equal(t, session.CookieMissing, lookup.Outcome)
}

func TestLookupInitiator_InvalidFormat(t *testing.T) {
	r := requestWithCookie("tooshort")
	lookup, err := session.LookupInitiator(nil, nil, testState(), r, time.Now())
	require.NoError(t, err)
	assert.Equal(t, session.InvalidFormat, lookup.Outcome)
}

func TestLookupInitiator_InvalidMac(t *testing.T) {
	token := "0123456789012345678901234567890123456789012345678901234567890ABC"
	r := requestWithCookie(token + "not-base64url!!!")
	lookup, err := session.LookupInitiator(nil, nil, testState(), r, time.Now())
	require.NoError(t, err)
	assert.Equal(t, session.InvalidMac, lookup.Outcome)
}

func TestLookupInitiator_VerifyFailed(t *testing.T) {
	token := "0123456789012345678901234567890123456789012345678901234567890ABC"
	st := testState()
	wrongTag := mac.Sign(st.Algo, []byte("some-other-secret-entirely-different"), []byte(token))
	value := token + base64.RawURLEncoding.EncodeToString(wrongTag)

	r := requestWithCookie(value)
	lookup, err := session.LookupInitiator(nil, nil, st, r, time.Now())
	require.NoError(t, err)
	assert.Equal(t, session.VerifyFailed, lookup.Outcome)
}
