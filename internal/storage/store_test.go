package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/linkauth-go/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"default", "", false},
		{"memory", BackendMemory, false},
		{"badger", BackendBadger, false},
		{"unknown", "redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(Config{Backend: tt.backend, Logger: discardLogger()})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				_ = store.Close()
			}
		})
	}
}

// TestSessionStoreContract runs the same checks against every backend.
func TestSessionStoreContract(t *testing.T) {
	for _, backend := range []string{BackendMemory, BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			store, err := New(Config{Backend: backend, Shards: 8, Logger: discardLogger()})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer store.Close()

			s, err := domain.NewSession(7, 0, time.Now())
			if err != nil {
				t.Fatalf("NewSession() error = %v", err)
			}

			if _, err := store.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
				t.Errorf("Get() before create error = %v, want ErrSessionNotFound", err)
			}

			if err := store.Create(ctx, s); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			got, err := store.Get(ctx, s.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.ID != s.ID || got.UserID != 7 || got.CreatedAt != s.CreatedAt {
				t.Errorf("Get() = %+v, want %+v", got, s)
			}

			if n, err := store.Count(ctx); err != nil || n != 1 {
				t.Errorf("Count() = %d, %v, want 1", n, err)
			}

			if err := store.Delete(ctx, s.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := store.Delete(ctx, s.ID); err != nil {
				t.Errorf("Delete() absent error = %v", err)
			}
			if _, err := store.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
			}
			if n, _ := store.Count(ctx); n != 0 {
				t.Errorf("Count() = %d, want 0", n)
			}

			if err := store.Create(ctx, &domain.Session{ID: "nope"}); !errors.Is(err, domain.ErrSessionValidation) {
				t.Errorf("Create() malformed error = %v, want ErrSessionValidation", err)
			}
		})
	}
}

func TestBadgerStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }

	store, err := NewBadgerStore(BadgerConfig{Logger: discardLogger(), NowFunc: clock})
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	defer store.Close()

	s, _ := domain.NewSession(1, time.Hour, now)
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Get(ctx, s.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	now = now.Add(time.Hour)

	if _, err := store.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get() expired error = %v, want ErrSessionNotFound", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestEntryTTL(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{time.Millisecond, time.Second},
		{1500 * time.Millisecond, 2 * time.Second},
		{2 * time.Second, 3 * time.Second},
		{time.Hour, time.Hour + time.Second},
	}
	for _, tt := range tests {
		if got := entryTTL(tt.ttl); got != tt.want {
			t.Errorf("entryTTL(%v) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

func TestBadgerStore_TTLNotBeforeSessionExpiry(t *testing.T) {
	store, err := NewBadgerStore(BadgerConfig{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	defer store.Close()

	s, _ := domain.NewSession(1, 1500*time.Millisecond, time.Now())
	if err := store.Create(context.Background(), s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var expiresAt uint64
	err = store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(s.ID))
		if err != nil {
			return err
		}
		expiresAt = item.ExpiresAt()
		return nil
	})
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if got := int64(expiresAt) * 1000; got < s.ExpiresAt {
		t.Errorf("badger expiry %d ms is before session expiry %d ms", got, s.ExpiresAt)
	}
}

func TestBadgerStore_KeysAreHashed(t *testing.T) {
	store, err := NewBadgerStore(BadgerConfig{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	defer store.Close()

	s, _ := domain.NewSession(1, 0, time.Now())
	key := string(sessionKey(s.ID))
	if key == sessionKeyPrefix+s.ID {
		t.Error("session id stored in clear")
	}
	if len(key) != len(sessionKeyPrefix)+64 {
		t.Errorf("key length = %d, want %d", len(key), len(sessionKeyPrefix)+64)
	}
}
