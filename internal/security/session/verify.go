package session

import (
	"context"
	"errors"
	"time"

	"github.com/inkwell-journal/authcore/internal/security/otp"
	"github.com/inkwell-journal/authcore/internal/storage"
)

// VerifyMethod names which credential a verify request is presenting.
type VerifyMethod string

const (
	MethodTotp     VerifyMethod = "Totp"
	MethodTotpHash VerifyMethod = "TotpHash"
)

// VerifyOutcome is the result of the second-factor verification
// transition. Every non-Verified outcome maps to 401 with the named,
// non-leaky error per the core's verify contract.
type VerifyOutcome string

const (
	VerifyOK              VerifyOutcome = "ok"
	VerifyTotpNotFound    VerifyOutcome = "TotpNotFound"
	VerifyTotpUnverified  VerifyOutcome = "TotpUnverified"
	VerifyInvalidTotpCode VerifyOutcome = "InvalidTotpCode"
	VerifyTotpHashInvalid VerifyOutcome = "TotpHashInvalid"
)

var errUnknownMethod = errors.New("session: unknown verify method")

// VerifySecondFactor promotes an unverified session to verified, given
// either a TOTP code or a still-unused backup code. The whole operation
// — including, for the backup-code path, marking the code used — runs
// in a single transaction so a concurrent redemption of the same code
// can never both succeed.
func VerifySecondFactor(ctx context.Context, q *storage.Queries, userID int32, token string, method VerifyMethod, value string, now time.Time) (VerifyOutcome, error) {
	enrollment, err := q.GetAuthOtpByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if enrollment == nil {
		return VerifyTotpNotFound, nil
	}
	if !enrollment.Verified {
		return VerifyTotpUnverified, nil
	}

	switch method {
	case MethodTotp:
		settings, err := otp.SettingsFromStorage(*enrollment)
		if err != nil {
			return "", err
		}

		if otp.VerifyTotp(settings, value, now) != otp.Valid {
			return VerifyInvalidTotpCode, nil
		}

		if err := q.SetSessionVerified(ctx, token); err != nil {
			return "", err
		}

		return VerifyOK, nil

	case MethodTotpHash:
		hash := otp.HashBackupCode(value)

		code, err := q.GetUnusedBackupCode(ctx, enrollment.ID, hash)
		if err != nil {
			return "", err
		}
		if code == nil {
			return VerifyTotpHashInvalid, nil
		}

		if err := q.MarkBackupCodeUsed(ctx, enrollment.ID, hash); err != nil {
			return "", err
		}
		if err := q.SetSessionVerified(ctx, token); err != nil {
			return "", err
		}

		return VerifyOK, nil

	default:
		return "", errUnknownMethod
	}
}

