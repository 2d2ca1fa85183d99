package password_test

import (
	"testing"

	"github.com/inkwell-journal/authcore/internal/security/password"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	hash, err := password.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !password.Verify(hash, "correct horse battery staple") {
		t.Error("expected Verify to accept the original password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	hash, err := password.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if password.Verify(hash, "wrong password") {
		t.Error("expected Verify to reject a different password")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	if password.Verify("not-a-real-hash", "anything") {
		t.Error("expected Verify to fail closed on a malformed hash")
	}
	if password.Verify("", "anything") {
		t.Error("expected Verify to fail closed on an empty hash")
	}
}

func TestHash_DistinctSaltsPerCall(t *testing.T) {
	a, err := password.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	b, err := password.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if a == b {
		t.Error("expected two hashes of the same password to differ due to random salt")
	}
}

func TestVerify_DistinctPasswordsNeverMatch(t *testing.T) {
	passwords := []string{"alpha", "bravo", "charlie"}

	for _, p := range passwords {
		hash, err := password.Hash(p)
		if err != nil {
			t.Fatalf("Hash returned error: %v", err)
		}

		for _, q := range passwords {
			got := password.Verify(hash, q)
			want := p == q
			if got != want {
				t.Errorf("Verify(Hash(%q), %q) = %v, want %v", p, q, got, want)
			}
		}
	}
}
