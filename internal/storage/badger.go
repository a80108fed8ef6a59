package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/linkauth-go/internal/core/domain"
	"github.com/yndnr/linkauth-go/pkg/token"
)

// sessionKeyPrefix namespaces session records. Keys carry the SHA-256 of the
// session id rather than the id itself.
const sessionKeyPrefix = "sess/"

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	Logger *slog.Logger

	// NowFunc overrides the clock used for expiry checks.
	NowFunc func() time.Time
}

// BadgerStore is a SessionStore on Badger in in-memory mode.
//
// Sessions with ExpiresAt get a Badger TTL, so they disappear without a
// sweeper. Badger stores expiry in whole seconds, so the TTL is rounded up
// and Get re-checks ExpiresAt against the store clock for exact expiry.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewBadgerStore opens an in-memory Badger database.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.NowFunc
	if now == nil {
		now = time.Now
	}

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(&badgerLogger{logger: logger.With("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open in-memory db: %w", err)
	}

	logger.Info("badger session store started", "in_memory", true)

	return &BadgerStore{db: db, logger: logger, now: now}, nil
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + token.Hash(id))
}

// Create stores session, applying a TTL when it has an expiry.
func (s *BadgerStore) Create(_ context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("badger: encode session: %w", err)
	}

	entry := badger.NewEntry(sessionKey(session.ID), value)
	if ttl := session.TTLAt(s.now()); ttl > 0 {
		entry = entry.WithTTL(entryTTL(ttl))
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// entryTTL rounds ttl up so Badger's second-truncated expiry never lands
// before the session's own.
func entryTTL(ttl time.Duration) time.Duration {
	return ttl.Truncate(time.Second) + time.Second
}

// Get returns the session for id or domain.ErrSessionNotFound.
func (s *BadgerStore) Get(_ context.Context, id string) (*domain.Session, error) {
	var session domain.Session

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger: get session: %w", err)
	}

	if session.IsExpiredAt(s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes id. Badger treats deleting an absent key as a no-op.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
	if err != nil {
		return fmt.Errorf("badger: delete session: %w", err)
	}
	return nil
}

// Count returns the number of live sessions.
func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	n := 0
	now := s.now()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var session domain.Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				return err
			}
			if !session.IsExpiredAt(now) {
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger: count sessions: %w", err)
	}
	return n, nil
}

// Close shuts down the database. All sessions are lost.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger session store closed")
	return nil
}

// badgerLogger adapts slog.Logger to badger.Logger. Badger's info chatter is
// demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
