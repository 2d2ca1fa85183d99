// Package mac implements keyed-hash message authentication used to make
// session cookies unforgeable without a database round trip at the edge.
package mac

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// Algo selects the hash function underlying the HMAC.
type Algo int

const (
	SHA256 Algo = iota
	SHA1
	SHA512
)

// ParseAlgo maps a config string to an Algo. Defaults to SHA256 when
// given the empty string.
func ParseAlgo(name string) (Algo, error) {
	switch name {
	case "", "hmac-sha256":
		return SHA256, nil
	case "hmac-sha1":
		return SHA1, nil
	case "hmac-sha512":
		return SHA512, nil
	default:
		return SHA256, fmt.Errorf("mac: unknown signing algo %q", name)
	}
}

func (a Algo) newHash() func() hash.Hash {
	switch a {
	case SHA1:
		return sha1.New
	case SHA512:
		return sha512.New
	default:
		return sha256.New
	}
}

// Size returns the tag length in bytes produced by this algorithm.
func (a Algo) Size() int {
	switch a {
	case SHA1:
		return sha1.Size
	case SHA512:
		return sha512.Size
	default:
		return sha256.Size
	}
}

// Sign returns the HMAC tag of message under secret.
func Sign(algo Algo, secret, message []byte) []byte {
	h := hmac.New(algo.newHash(), secret)
	h.Write(message)
	return h.Sum(nil)
}

// VerifyResult is the outcome of a tag verification.
type VerifyResult int

const (
	Valid VerifyResult = iota
	Invalid
	InvalidLength
)

// Verify checks tag against the HMAC of message under secret. It is
// constant-time with respect to tag content; a wrong-length tag is
// rejected before any comparison happens and so is not timing-sensitive
// with respect to the correct tag's bytes.
func Verify(algo Algo, secret, message, tag []byte) VerifyResult {
	if len(tag) != algo.Size() {
		return InvalidLength
	}

	expected := Sign(algo, secret, message)
	if hmac.Equal(expected, tag) {
		return Valid
	}

	return Invalid
}
