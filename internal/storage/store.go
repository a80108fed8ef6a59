// Package storage provides session store backends for linkauth.
//
// Two backends are available and neither writes to disk:
//
//   - memory: a sharded concurrent map (package memory)
//   - badger: Badger v3 running in in-memory mode with native TTL
//
// Both satisfy SessionStore and share the same contract: Get never returns
// an expired session, and deleting an absent id is not an error.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/linkauth-go/internal/core/domain"
	"github.com/yndnr/linkauth-go/internal/storage/memory"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// SessionStore is the process-wide session_id -> Session mapping.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	Backend string

	// Shards is the memory backend shard count (power of two).
	Shards int

	// SweepInterval is how often the memory backend drops expired sessions.
	// Zero disables the sweeper; expired sessions are still never returned.
	SweepInterval time.Duration

	Logger *slog.Logger
}

// New opens the configured backend.
func New(cfg Config) (SessionStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return memory.New(
			memory.WithShards(cfg.Shards),
			memory.WithHasher(murmurHash),
			memory.WithSweepInterval(cfg.SweepInterval),
			memory.WithLogger(logger),
		), nil
	case BackendBadger:
		return NewBadgerStore(BadgerConfig{Logger: logger})
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

// murmurHash routes session ids to shards. Ids are already uniformly random,
// so a fast non-cryptographic hash is enough.
func murmurHash(id string) uint64 {
	return murmur3.Sum64([]byte(id))
}
