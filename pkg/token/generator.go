// Package token provides random identifier generation and hashing helpers.
//
// Identifiers are drawn from crypto/rand and encoded as unpadded base64url,
// so they are safe in cookies, headers and URLs without escaping.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// DefaultLength is the default number of random bytes (256 bits).
	DefaultLength = 32

	// MinLength is the smallest accepted length (128 bits).
	MinLength = 16
)

// ErrTooShort is returned when a caller asks for fewer than MinLength bytes.
var ErrTooShort = errors.New("token: length below 128 bits")

// Generate returns DefaultLength random bytes, base64url encoded.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength returns length random bytes, base64url encoded.
func GenerateWithLength(length int) (string, error) {
	b, err := GenerateBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateWithPrefix returns prefix followed by a DefaultLength token.
func GenerateWithPrefix(prefix string) (string, error) {
	body, err := Generate()
	if err != nil {
		return "", err
	}
	return prefix + body, nil
}

// GenerateBytes returns length bytes read from crypto/rand.
func GenerateBytes(length int) ([]byte, error) {
	if length < MinLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrTooShort, length)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("token: read random: %w", err)
	}
	return b, nil
}

// EncodedLength reports the encoded size of a token of n random bytes.
func EncodedLength(n int) int {
	return base64.RawURLEncoding.EncodedLen(n)
}
