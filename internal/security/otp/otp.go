// Package otp implements RFC 6238 time-based one-time passcodes plus the
// enrollment/activation/backup-code lifecycle layered on top of them.
//
// Code generation and validation delegate to github.com/pquerna/otp; this
// package owns the policy around it: parameter validation, the
// current-step/previous-step tolerance window, and single-use backup
// codes.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Algo is the keyed-hash family underlying the HOTP counter.
type Algo string

const (
	SHA1   Algo = "SHA1"
	SHA256 Algo = "SHA256"
	SHA512 Algo = "SHA512"
)

func (a Algo) valid() bool {
	switch a {
	case SHA1, SHA256, SHA512:
		return true
	default:
		return false
	}
}

func (a Algo) otpAlgorithm() otp.Algorithm {
	switch a {
	case SHA256:
		return otp.AlgorithmSHA256
	case SHA512:
		return otp.AlgorithmSHA512
	default:
		return otp.AlgorithmSHA1
	}
}

// Policy constants, named so callers and tests can refer to them. They
// are compile-time constants; changing a value means editing it here.
const (
	DefaultAlgo   = SHA1
	DefaultDigits = 6
	DefaultStep   = 30 // seconds

	MinSecretBytes = 20
	MaxSecretBytes = 32

	BackupCodeCount = 10
	BackupCodeBytes = 5
)

// Settings is the parameter set for one user's enrolled TOTP.
type Settings struct {
	Algo   Algo
	Secret []byte // raw bytes, not base32-encoded
	Digits int
	Step   int // seconds
}

// Validate checks that Settings fall within the ranges the engine accepts.
func (s Settings) Validate() error {
	if !s.Algo.valid() {
		return fmt.Errorf("otp: invalid algorithm %q", s.Algo)
	}
	if s.Digits < 1 || s.Digits > 10 {
		return fmt.Errorf("otp: digits must be between 1 and 10, got %d", s.Digits)
	}
	if s.Step <= 0 {
		return fmt.Errorf("otp: step must be greater than 0, got %d", s.Step)
	}
	if len(s.Secret) < MinSecretBytes || len(s.Secret) > MaxSecretBytes {
		return fmt.Errorf("otp: secret must be between %d and %d bytes, got %d", MinSecretBytes, MaxSecretBytes, len(s.Secret))
	}

	return nil
}

func (s Settings) base32Secret() string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(s.Secret)
}

// GenerateSecret returns MinSecretBytes..MaxSecretBytes of random data
// suitable for a new Settings.Secret.
func GenerateSecret() ([]byte, error) {
	buf := make([]byte, MaxSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("otp: failed to generate secret: %w", err)
	}
	return buf, nil
}

// Generate returns the TOTP code for settings at instant t.
func Generate(settings Settings, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(settings.base32Secret(), t, totp.ValidateOpts{
		Period:    uint(settings.Step),
		Digits:    otp.Digits(settings.Digits),
		Algorithm: settings.Algo.otpAlgorithm(),
	})
	if err != nil {
		return "", fmt.Errorf("otp: failed to generate code: %w", err)
	}

	return code, nil
}

// VerifyResult is the outcome of checking a submitted TOTP code.
type VerifyResult int

const (
	Valid VerifyResult = iota
	Invalid
	InvalidCharacters
	InvalidLength
)

// VerifyTotp checks candidate against settings at the current step and,
// to tolerate clock drift between client and server, the immediately
// preceding step. It deliberately does not accept the *next* step: a
// code that hasn't been valid yet should not authenticate early.
func VerifyTotp(settings Settings, candidate string, now time.Time) VerifyResult {
	if len(candidate) != settings.Digits {
		return InvalidLength
	}
	for _, r := range candidate {
		if r < '0' || r > '9' {
			return InvalidCharacters
		}
	}

	current, err := Generate(settings, now)
	if err != nil {
		return Invalid
	}
	if candidate == current {
		return Valid
	}

	previous, err := Generate(settings, now.Add(-time.Duration(settings.Step)*time.Second))
	if err != nil {
		return Invalid
	}
	if candidate == previous {
		return Valid
	}

	return Invalid
}

// GenerateBackupCodes returns BackupCodeCount freshly generated, unique,
// base32-encoded single-use codes.
func GenerateBackupCodes() ([]string, error) {
	seen := make(map[string]struct{}, BackupCodeCount)
	codes := make([]string, 0, BackupCodeCount)

	for len(codes) < BackupCodeCount {
		buf := make([]byte, BackupCodeBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("otp: failed to generate backup code: %w", err)
		}

		code := strings.ToUpper(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf))
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes, nil
}

// HashBackupCode is the stored form of a backup code: a code is
// user-presented plaintext but persisted only as a hash, so consumption
// never compares plaintext against plaintext.
func HashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
