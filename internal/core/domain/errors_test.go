package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "plain",
			err:      ErrTokenExpired,
			expected: "[LA-TOKN-4011] Token expired",
		},
		{
			name:     "with details",
			err:      ErrSessionValidation.WithDetails("malformed session id"),
			expected: "[LA-SESS-4000] session validation failed: malformed session id",
		},
		{
			name:     "with cause",
			err:      ErrInternal.WithCause(errors.New("disk on fire")),
			expected: "[LA-SYS-5000] Internal Server Error: disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("verify: %w", ErrTokenInvalid.WithDetails("bad mac"))

	if !errors.Is(wrapped, ErrTokenInvalid) {
		t.Error("errors.Is should match on code through wrapping")
	}
	if errors.Is(wrapped, ErrTokenExpired) {
		t.Error("errors.Is should not match a different code")
	}
	if errors.Is(ErrTokenInvalid, errors.New("Invalid token")) {
		t.Error("errors.Is should not match a plain error")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := ErrInternal.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if ErrInternal.Cause != nil {
		t.Error("WithCause must not modify the sentinel")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(fmt.Errorf("x: %w", ErrNotAuthenticated)); got != "LA-SESS-4010" {
		t.Errorf("GetErrorCode() = %q, want LA-SESS-4010", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
	if !IsDomainError(ErrTokenExpired, "") {
		t.Error("IsDomainError(any code) should be true")
	}
	if IsDomainError(ErrTokenExpired, "LA-TOKN-4010") {
		t.Error("IsDomainError with other code should be false")
	}
}
