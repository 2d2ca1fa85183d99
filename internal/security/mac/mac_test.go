package mac_test

import (
	"testing"

	"github.com/inkwell-journal/authcore/internal/security/mac"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	for _, algo := range []mac.Algo{mac.SHA1, mac.SHA256, mac.SHA512} {
		secret := []byte("super-secret-key-material")
		message := []byte("token-value-goes-here")

		tag := mac.Sign(algo, secret, message)
		if got := mac.Verify(algo, secret, message, tag); got != mac.Valid {
			t.Errorf("algo %v: Verify(Sign(...)) = %v, want Valid", algo, got)
		}
	}
}

func TestVerify_WrongLength(t *testing.T) {
	secret := []byte("secret")
	message := []byte("message")

	got := mac.Verify(mac.SHA256, secret, message, []byte("too-short"))
	if got != mac.InvalidLength {
		t.Errorf("Verify with wrong-length tag = %v, want InvalidLength", got)
	}
}

func TestVerify_TamperedTag(t *testing.T) {
	secret := []byte("secret")
	message := []byte("message")

	tag := mac.Sign(mac.SHA256, secret, message)
	tag[0] ^= 0xFF

	if got := mac.Verify(mac.SHA256, secret, message, tag); got != mac.Invalid {
		t.Errorf("Verify with tampered tag = %v, want Invalid", got)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	message := []byte("message")
	tag := mac.Sign(mac.SHA256, []byte("secret-a"), message)

	if got := mac.Verify(mac.SHA256, []byte("secret-b"), message, tag); got != mac.Invalid {
		t.Errorf("Verify with wrong secret = %v, want Invalid", got)
	}
}

func TestParseAlgo(t *testing.T) {
	cases := map[string]mac.Algo{
		"":             mac.SHA256,
		"hmac-sha256":  mac.SHA256,
		"hmac-sha1":    mac.SHA1,
		"hmac-sha512":  mac.SHA512,
	}

	for input, want := range cases {
		got, err := mac.ParseAlgo(input)
		if err != nil {
			t.Errorf("ParseAlgo(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseAlgo(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := mac.ParseAlgo("hmac-md5"); err == nil {
		t.Error("expected error for unknown signing algo")
	}
}
