package api

import "github.com/inkwell-journal/authcore/internal/storage"

// UserResponse is the public shape of a User returned from the 2xx
// bodies of §6's endpoint table. Password hash never leaves the core.
type UserResponse struct {
	ID            int32   `json:"id"`
	Username      string  `json:"username"`
	Email         *string `json:"email"`
	EmailVerified bool    `json:"email_verified"`
	Level         int32   `json:"level"`
}

// TotpHint is the structured body a login response carries when the
// user has activated TOTP, so clients know to call the verify
// endpoint.
type TotpHint struct {
	Method string `json:"method"`
	Digits int    `json:"digits"`
}

// LoginRequest is the body of POST /auth/session.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VerifySessionRequest is the body of POST /auth/session/verify.
type VerifySessionRequest struct {
	Method string `json:"method"`
	Value  string `json:"value"`
}

// EnrollTotpRequest is the body of POST /auth/totp.
type EnrollTotpRequest struct {
	Algo   string `json:"algo,omitempty"`
	Digits int    `json:"digits,omitempty"`
	Step   int    `json:"step,omitempty"`
}

// EnrollTotpResponse is the 2xx body of POST /auth/totp.
type EnrollTotpResponse struct {
	Algo         string `json:"algo"`
	Digits       int    `json:"digits"`
	Step         int    `json:"step"`
	SecretBase32 string `json:"secret_base32"`
}

// ActivateTotpRequest is the body of POST /auth/totp/verify.
type ActivateTotpRequest struct {
	Value string `json:"value"`
}

// ActivateTotpResponse is the 2xx body of POST /auth/totp/verify.
type ActivateTotpResponse struct {
	Hashes []string `json:"hashes"`
}

// ChangePasswordRequest is the body of POST /auth/change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func toUserResponse(u *storage.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Level:         u.Level,
	}
}
