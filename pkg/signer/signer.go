// Package signer issues and verifies tamper-evident, expiring tokens.
//
// Tokens are HS256 JWTs carrying the caller's payload under the "data" claim
// and the issue time under "iat". The HMAC key is derived from the process
// secret with HKDF, so the raw secret never keys the MAC directly.
package signer

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// DefaultSalt namespaces derived keys so one secret can serve several signers.
const DefaultSalt = "linkauth.signer"

// NoMaxAge disables the age check in Verify.
const NoMaxAge time.Duration = -1

const keySize = 32

var (
	// ErrEmptySecret is returned by New when no secret is configured.
	ErrEmptySecret = errors.New("signer: secret must not be empty")

	// ErrBadSignature is returned for malformed tokens and MAC mismatches.
	ErrBadSignature = errors.New("signer: bad signature")

	// ErrSignatureExpired is returned for authentic tokens older than maxAge.
	ErrSignatureExpired = errors.New("signer: signature expired")
)

var signingMethod = jwt.SigningMethodHS256

// tokenClaims is the JWT body.
type tokenClaims struct {
	jwt.RegisteredClaims
	Data json.RawMessage `json:"data,omitempty"`
}

// Signer issues and verifies tokens. It is immutable and safe for concurrent use.
type Signer struct {
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
}

type options struct {
	salt string
	now  func() time.Time
}

// Option configures a Signer.
type Option func(*options)

// WithSalt sets the HKDF salt used to derive the MAC key.
func WithSalt(salt string) Option {
	return func(o *options) {
		o.salt = salt
	}
}

// WithNowFunc overrides the clock used for issuing and age checks.
func WithNowFunc(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a Signer keyed by secret.
func New(secret string, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	o := options{
		salt: DefaultSalt,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, []byte(secret), []byte(o.salt), []byte("hmac-sha256"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("signer: derive key: %w", err)
	}

	return &Signer{
		key: key,
		now: o.now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithTimeFunc(o.now),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Issue encodes payload as JSON, binds it to the current time and signs it.
func (s *Signer) Issue(payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("signer: encode payload: %w", err)
	}

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(s.now())},
		Data:             data,
	}
	tok, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signer: sign: %w", err)
	}
	return tok, nil
}

// Verify checks the signature and age of token and decodes its payload into dst.
//
// A malformed token or a signature mismatch yields ErrBadSignature. An
// authentic token older than maxAge, or stamped in the future, yields
// ErrSignatureExpired. dst may be nil when only validity matters.
func (s *Signer) Verify(token string, maxAge time.Duration, dst any) error {
	var claims tokenClaims
	if _, err := s.parser.ParseWithClaims(token, &claims, s.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", ErrSignatureExpired, err)
		}
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if claims.IssuedAt == nil {
		return fmt.Errorf("%w: missing iat", ErrBadSignature)
	}

	if maxAge >= 0 {
		age := time.Duration(s.now().Unix()-claims.IssuedAt.Unix()) * time.Second
		if age < 0 {
			return fmt.Errorf("%w: issued in the future", ErrSignatureExpired)
		}
		if age > maxAge {
			return fmt.Errorf("%w: age %s > %s", ErrSignatureExpired, age, maxAge)
		}
	}

	if dst == nil {
		return nil
	}
	if len(claims.Data) == 0 {
		return fmt.Errorf("%w: missing payload", ErrBadSignature)
	}
	if err := json.Unmarshal(claims.Data, dst); err != nil {
		return fmt.Errorf("%w: payload: %v", ErrBadSignature, err)
	}
	return nil
}

func (s *Signer) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.key, nil
}
