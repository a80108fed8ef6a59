// Package memory provides the in-memory session store for linkauth.
//
// Sessions live in a sharded concurrent map keyed by session id. Nothing is
// persisted; a restart drops every session.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/linkauth-go/internal/core/domain"
	"github.com/yndnr/linkauth-go/pkg/cmap"
)

// Store is a concurrent-safe session store.
type Store struct {
	sessions *cmap.Map[string, *domain.Session]

	shards        int
	hasher        cmap.Hasher[string]
	sweepInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option configures the Store.
type Option func(*Store)

// WithShards sets the shard count. Invalid counts fall back to the cmap default.
func WithShards(n int) Option {
	return func(s *Store) {
		s.shards = n
	}
}

// WithHasher sets the function that routes session ids to shards.
func WithHasher(h cmap.Hasher[string]) Option {
	return func(s *Store) {
		s.hasher = h
	}
}

// WithSweepInterval enables a background sweeper that removes expired
// sessions every d. Zero disables it.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		s.sweepInterval = d
	}
}

// WithNowFunc overrides the clock used for expiry checks.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a store and starts the sweeper if one is configured.
func New(opts ...Option) *Store {
	s := &Store{
		shards: cmap.DefaultShardCount,
		now:    time.Now,
		logger: slog.Default(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.hasher != nil {
		s.sessions = cmap.NewWithHasher[string, *domain.Session](s.shards, s.hasher)
	} else {
		s.sessions = cmap.NewWithShards[string, *domain.Session](s.shards)
	}

	if s.sweepInterval > 0 {
		go s.sweepLoop()
	} else {
		close(s.done)
	}
	return s
}

// Create stores session under its id. Ids carry 256 bits of entropy, so an
// existing entry is simply overwritten.
func (s *Store) Create(_ context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	s.sessions.Set(session.ID, session.Clone())
	return nil
}

// Get returns a copy of the session for id, or domain.ErrSessionNotFound if
// it is absent or expired.
func (s *Store) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok || session.IsExpiredAt(s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Delete removes id. Deleting an absent id is a no-op.
func (s *Store) Delete(_ context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

// Count returns the number of live sessions.
func (s *Store) Count(_ context.Context) (int, error) {
	now := s.now()
	n := 0
	s.sessions.Range(func(_ string, session *domain.Session) bool {
		if !session.IsExpiredAt(now) {
			n++
		}
		return true
	})
	return n, nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	now := s.now()
	return s.sessions.RemoveIf(func(_ string, session *domain.Session) bool {
		return session.IsExpiredAt(now)
	})
}

// Close stops the sweeper and drops all sessions.
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	s.sessions.Clear()
	return nil
}

func (s *Store) sweepLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}
