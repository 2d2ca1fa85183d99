package otp_test

import (
	"testing"
	"time"

	"github.com/inkwell-journal/authcore/internal/security/otp"
)

func testSettings(t *testing.T) otp.Settings {
	t.Helper()
	secret, err := otp.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret returned error: %v", err)
	}

	return otp.Settings{
		Algo:   otp.DefaultAlgo,
		Secret: secret,
		Digits: otp.DefaultDigits,
		Step:   otp.DefaultStep,
	}
}

func TestGenerateAndVerify_SameStep(t *testing.T) {
	settings := testSettings(t)
	now := time.Unix(1_700_000_000, 0)

	code, err := otp.Generate(settings, now)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if got := otp.VerifyTotp(settings, code, now); got != otp.Valid {
		t.Errorf("VerifyTotp(Generate(t), t) = %v, want Valid", got)
	}
}

func TestVerifyTotp_PreviousStepAccepted(t *testing.T) {
	settings := testSettings(t)
	now := time.Unix(1_700_000_000, 0)
	previousStep := now.Add(-time.Duration(settings.Step) * time.Second)

	code, err := otp.Generate(settings, previousStep)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if got := otp.VerifyTotp(settings, code, now); got != otp.Valid {
		t.Errorf("VerifyTotp with previous-step code = %v, want Valid (documented clock-skew tolerance)", got)
	}
}

func TestVerifyTotp_TwoStepsBackRejected(t *testing.T) {
	settings := testSettings(t)
	now := time.Unix(1_700_000_000, 0)
	twoStepsBack := now.Add(-2 * time.Duration(settings.Step) * time.Second)

	code, err := otp.Generate(settings, twoStepsBack)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if got := otp.VerifyTotp(settings, code, now); got != otp.Invalid {
		t.Errorf("VerifyTotp with two-steps-back code = %v, want Invalid", got)
	}
}

func TestVerifyTotp_NextStepRejected(t *testing.T) {
	settings := testSettings(t)
	now := time.Unix(1_700_000_000, 0)
	nextStep := now.Add(time.Duration(settings.Step) * time.Second)

	code, err := otp.Generate(settings, nextStep)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if got := otp.VerifyTotp(settings, code, now); got != otp.Invalid {
		t.Errorf("VerifyTotp with next-step code = %v, want Invalid (no forward tolerance)", got)
	}
}

func TestVerifyTotp_InvalidLength(t *testing.T) {
	settings := testSettings(t)
	if got := otp.VerifyTotp(settings, "123", time.Now()); got != otp.InvalidLength {
		t.Errorf("VerifyTotp with short candidate = %v, want InvalidLength", got)
	}
}

func TestVerifyTotp_InvalidCharacters(t *testing.T) {
	settings := testSettings(t)
	if got := otp.VerifyTotp(settings, "12345a", time.Now()); got != otp.InvalidCharacters {
		t.Errorf("VerifyTotp with non-digit candidate = %v, want InvalidCharacters", got)
	}
}

func TestSettings_ValidateRanges(t *testing.T) {
	secret, _ := otp.GenerateSecret()

	cases := []struct {
		name    string
		s       otp.Settings
		wantErr bool
	}{
		{"valid", otp.Settings{Algo: otp.SHA1, Secret: secret, Digits: 6, Step: 30}, false},
		{"bad algo", otp.Settings{Algo: "MD5", Secret: secret, Digits: 6, Step: 30}, true},
		{"zero digits", otp.Settings{Algo: otp.SHA1, Secret: secret, Digits: 0, Step: 30}, true},
		{"too many digits", otp.Settings{Algo: otp.SHA1, Secret: secret, Digits: 11, Step: 30}, true},
		{"zero step", otp.Settings{Algo: otp.SHA1, Secret: secret, Digits: 6, Step: 0}, true},
		{"short secret", otp.Settings{Algo: otp.SHA1, Secret: secret[:10], Digits: 6, Step: 30}, true},
	}

	for _, c := range cases {
		err := c.s.Validate()
		if (err != nil) != c.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestGenerateBackupCodes(t *testing.T) {
	codes, err := otp.GenerateBackupCodes()
	if err != nil {
		t.Fatalf("GenerateBackupCodes returned error: %v", err)
	}

	if len(codes) != otp.BackupCodeCount {
		t.Fatalf("len(codes) = %d, want %d", len(codes), otp.BackupCodeCount)
	}

	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			t.Errorf("duplicate backup code generated: %s", c)
		}
		seen[c] = struct{}{}
	}
}
