package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-journal/authcore/internal/storage"
)

// EnrollRequest is the caller-supplied parameter set for a new
// enrollment; Algo, Digits, and Step fall back to the package defaults
// when the zero value is supplied.
type EnrollRequest struct {
	Algo   Algo
	Digits int
	Step   int
}

func (r EnrollRequest) withDefaults() EnrollRequest {
	if r.Algo == "" {
		r.Algo = DefaultAlgo
	}
	if r.Digits == 0 {
		r.Digits = DefaultDigits
	}
	if r.Step == 0 {
		r.Step = DefaultStep
	}
	return r
}

// Enrollment is the result of a successful Enroll call: the persisted
// row id and the secret, returned to the caller exactly once.
type Enrollment struct {
	ID           int32
	SecretBase32 string
	Settings     Settings
}

// Enroll creates a new, unverified AuthOtp row for userID. It is the
// caller's responsibility to reject a second enrollment attempt for a
// user who already has one (the unique index on users_id enforces this
// at the database level as a backstop).
func Enroll(ctx context.Context, q *storage.Queries, userID int32, req EnrollRequest) (*Enrollment, error) {
	req = req.withDefaults()

	secret, err := GenerateSecret()
	if err != nil {
		return nil, err
	}

	settings := Settings{Algo: req.Algo, Secret: secret, Digits: req.Digits, Step: req.Step}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	algo, err := toStorageAlgo(req.Algo)
	if err != nil {
		return nil, err
	}

	id, err := q.InsertAuthOtp(ctx, storage.AuthOtp{
		UsersID: userID,
		Algo:    algo,
		Secret:  secret,
		Digits:  int16(req.Digits),
		Step:    int16(req.Step),
	})
	if err != nil {
		return nil, err
	}

	return &Enrollment{ID: id, SecretBase32: settings.base32Secret(), Settings: settings}, nil
}

// ActivateOutcome is the result of an activation attempt.
type ActivateOutcome int

const (
	ActivateOK ActivateOutcome = iota
	ActivateInvalidCode
	ActivateAlreadyActivated
)

// Activate checks candidate against the pending enrollment; on success
// it flips verified to true and generates exactly BackupCodeCount
// backup codes, returning their plaintext once. Callers must run this
// inside a storage.WithTx closure so activation and backup-code
// insertion commit atomically.
func Activate(ctx context.Context, q *storage.Queries, enrollment storage.AuthOtp, candidate string, now time.Time) (ActivateOutcome, []string, error) {
	if enrollment.Verified {
		return ActivateAlreadyActivated, nil, nil
	}

	settings, err := SettingsFromStorage(enrollment)
	if err != nil {
		return ActivateInvalidCode, nil, err
	}

	if VerifyTotp(settings, candidate, now) != Valid {
		return ActivateInvalidCode, nil, nil
	}

	if err := q.ActivateAuthOtp(ctx, enrollment.ID); err != nil {
		return 0, nil, err
	}

	codes, err := GenerateBackupCodes()
	if err != nil {
		return 0, nil, err
	}

	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = HashBackupCode(c)
	}

	if err := q.InsertBackupCodes(ctx, enrollment.ID, hashes); err != nil {
		return 0, nil, err
	}

	return ActivateOK, codes, nil
}

func toStorageAlgo(a Algo) (storage.AuthOtpAlgo, error) {
	switch a {
	case SHA1:
		return storage.AuthOtpAlgoSHA1, nil
	case SHA256:
		return storage.AuthOtpAlgoSHA256, nil
	case SHA512:
		return storage.AuthOtpAlgoSHA512, nil
	default:
		return 0, fmt.Errorf("otp: unknown algorithm %q", a)
	}
}

// SettingsFromStorage reconstructs the Settings a persisted enrollment
// represents.
func SettingsFromStorage(o storage.AuthOtp) (Settings, error) {
	var algo Algo
	switch o.Algo {
	case storage.AuthOtpAlgoSHA1:
		algo = SHA1
	case storage.AuthOtpAlgoSHA256:
		algo = SHA256
	case storage.AuthOtpAlgoSHA512:
		algo = SHA512
	default:
		return Settings{}, fmt.Errorf("otp: unknown stored algorithm %d", o.Algo)
	}

	return Settings{
		Algo:   algo,
		Secret: o.Secret,
		Digits: int(o.Digits),
		Step:   int(o.Step),
	}, nil
}
