// Package password implements one-way password hashing and verification.
//
// Hashes are Argon2id, encoded in a self-describing string so that the
// parameters used to produce a hash travel with it. This lets tunable
// cost increase over time without invalidating hashes created under an
// older parameter set.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Parameters controls the cost of the Argon2id hash. Defaults target
// roughly 100ms per verification on modern server hardware.
type Parameters struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParameters is tuned for interactive login, not bulk verification.
var DefaultParameters = Parameters{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  32,
	KeyLength:   32,
}

const hashFormat = "argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"

// Hash produces an encoded Argon2id hash of password using a freshly
// generated random salt. RNG failure is fatal to the call.
func Hash(plaintextPassword string) (string, error) {
	return HashWithParams(plaintextPassword, DefaultParameters)
}

// HashWithParams is Hash with an explicit cost parameter set, exposed so
// tests and migrations can exercise non-default costs.
func HashWithParams(plaintextPassword string, p Parameters) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: failed to generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(plaintextPassword), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	encoded := fmt.Sprintf(hashFormat,
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify reports whether plaintextPassword matches the given encoded
// hash. Malformed hashes fail closed (false, no error) rather than
// raising, per the authentication contract: verification is never
// allowed to be indeterminate.
func Verify(encodedHash string, plaintextPassword string) bool {
	params, salt, digest, err := decode(encodedHash)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(plaintextPassword), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(digest)))

	return subtle.ConstantTimeCompare(candidate, digest) == 1
}

func decode(encodedHash string) (Parameters, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 || parts[0] != "argon2id" {
		return Parameters{}, nil, nil, fmt.Errorf("password: malformed hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil {
		return Parameters{}, nil, nil, fmt.Errorf("password: malformed version segment")
	}
	if version != argon2.Version {
		return Parameters{}, nil, nil, fmt.Errorf("password: unsupported argon2 version %d", version)
	}

	var p Parameters
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Parameters{}, nil, nil, fmt.Errorf("password: malformed parameter segment")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return Parameters{}, nil, nil, fmt.Errorf("password: malformed salt: %w", err)
	}
	p.SaltLength = uint32(len(salt))

	digest, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Parameters{}, nil, nil, fmt.Errorf("password: malformed digest: %w", err)
	}
	p.KeyLength = uint32(len(digest))

	return p, salt, digest, nil
}
