package domain

import (
	"strings"
	"time"

	"github.com/yndnr/linkauth-go/pkg/token"
)

// SessionIDPrefix marks session ids so log redaction can recognise them.
const SessionIDPrefix = "lass_"

// SessionIDLength is the encoded length of a session id, prefix included.
var SessionIDLength = len(SessionIDPrefix) + token.EncodedLength(token.DefaultLength)

// Session is a server-side login record.
type Session struct {
	ID     string `json:"session_id"`
	UserID int64  `json:"user_id"`

	// CreatedAt and ExpiresAt are Unix milliseconds. ExpiresAt == 0 never expires.
	CreatedAt int64 `json:"created_at"`
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// NewSession creates a session for userID with a fresh 256-bit random id.
// A zero ttl yields a session that never expires.
func NewSession(userID int64, ttl time.Duration, now time.Time) (*Session, error) {
	id, err := GenerateSessionID()
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now.UnixMilli(),
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl).UnixMilli()
	}
	return s, nil
}

// GenerateSessionID returns SessionIDPrefix followed by 32 CSPRNG bytes.
func GenerateSessionID() (string, error) {
	id, err := token.GenerateWithPrefix(SessionIDPrefix)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return id, nil
}

// ValidateSessionID performs a cheap shape check before touching a store.
func ValidateSessionID(id string) bool {
	return len(id) == SessionIDLength && strings.HasPrefix(id, SessionIDPrefix)
}

// IsExpiredAt reports whether the session has expired at now.
func (s *Session) IsExpiredAt(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() >= s.ExpiresAt
}

// TTLAt returns the remaining lifetime at now, 0 when expired or unbounded.
func (s *Session) TTLAt(now time.Time) time.Duration {
	if s.ExpiresAt == 0 {
		return 0
	}
	remaining := s.ExpiresAt - now.UnixMilli()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}

// Validate checks that the session can be stored.
func (s *Session) Validate() error {
	if !ValidateSessionID(s.ID) {
		return ErrSessionValidation.WithDetails("malformed session id")
	}
	if s.ExpiresAt != 0 && s.ExpiresAt <= s.CreatedAt {
		return ErrSessionValidation.WithDetails("expires_at must be after created_at")
	}
	return nil
}

// Clone returns a copy that can be handed out without sharing state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
