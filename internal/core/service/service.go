// Package service implements the linkauth use cases: issuing and checking
// signed links, and the login, dashboard and logout session lifecycle.
//
// Every operation writes exactly one line to the access log. Unexpected
// store or signer failures are returned as domain.ErrInternal and left for
// the HTTP failure boundary to log.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/linkauth-go/internal/core/domain"
	"github.com/yndnr/linkauth-go/internal/telemetry/logger"
	"github.com/yndnr/linkauth-go/internal/telemetry/metric"
	"github.com/yndnr/linkauth-go/pkg/signer"
)

// SessionRepository is the storage the service needs.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// Config holds link and session settings.
type Config struct {
	// LinkMaxAge is how long an issued link stays valid.
	LinkMaxAge time.Duration

	// UserID is bound to every link and session. There is no credential check.
	UserID int64

	// ProtectedPath is the path links point at.
	ProtectedPath string

	// SessionTTL bounds session lifetime. Zero means sessions never expire.
	SessionTTL time.Duration
}

// DefaultConfig returns the stock link and session settings.
func DefaultConfig() Config {
	return Config{
		LinkMaxAge:    300 * time.Second,
		UserID:        1,
		ProtectedPath: "/protected",
	}
}

// Service runs the link and session operations.
type Service struct {
	sessions SessionRepository
	signer   *signer.Signer
	access   logger.Logger
	metrics  *metric.Registry
	cfg      Config
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNowFunc overrides the clock used to stamp sessions.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics records operation outcomes in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(s *Service) {
		s.metrics = reg
	}
}

// New creates a Service. access receives one line per operation.
func New(sessions SessionRepository, sgn *signer.Signer, access logger.Logger, cfg Config, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		signer:   sgn,
		access:   access,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the settings the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) log(ctx context.Context) logger.Logger {
	return s.access.WithContext(ctx)
}

// IssueLink signs a link for userID pointing at path.
func IssueLink(sgn *signer.Signer, path string, userID int64) (string, error) {
	tok, err := sgn.Issue(domain.LinkClaims{UserID: userID})
	if err != nil {
		return "", err
	}
	return path + "?token=" + tok, nil
}

// GenerateLink returns a freshly signed link to the protected path.
func (s *Service) GenerateLink(ctx context.Context) (string, error) {
	link, err := IssueLink(s.signer, s.cfg.ProtectedPath, s.cfg.UserID)
	if err != nil {
		return "", domain.ErrInternal.WithCause(err)
	}

	s.metrics.LinkIssued()
	s.log(ctx).Info("Generated secure URL token")
	return link, nil
}

// VerifyLink checks token and returns its claims.
//
// It returns domain.ErrTokenExpired for authentic tokens older than the
// link max age and domain.ErrTokenInvalid for everything else, including
// an empty token.
func (s *Service) VerifyLink(ctx context.Context, token string) (*domain.LinkClaims, error) {
	var claims domain.LinkClaims

	err := errors.New("empty token")
	if token != "" {
		err = s.signer.Verify(token, s.cfg.LinkMaxAge, &claims)
	}

	switch {
	case err == nil:
		s.metrics.LinkVerified(metric.OutcomeValid)
		s.log(ctx).Info(fmt.Sprintf("Valid token access for user %d", claims.UserID))
		return &claims, nil
	case errors.Is(err, signer.ErrSignatureExpired):
		s.metrics.LinkVerified(metric.OutcomeExpired)
		s.log(ctx).Warn("Expired token access attempt")
		return nil, domain.ErrTokenExpired.WithCause(err)
	default:
		s.metrics.LinkVerified(metric.OutcomeInvalid)
		s.log(ctx).Warn("Invalid token access attempt")
		return nil, domain.ErrTokenInvalid.WithCause(err)
	}
}

// Login creates a session for the configured user.
func (s *Service) Login(ctx context.Context) (*domain.Session, error) {
	session, err := domain.NewSession(s.cfg.UserID, s.cfg.SessionTTL, s.now())
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}

	s.metrics.SessionCreated()
	s.log(ctx).Info("User logged in with session " + logger.RedactString(session.ID))
	return session, nil
}

// Dashboard resolves sessionID to its session.
//
// An empty, malformed, unknown or expired id yields
// domain.ErrNotAuthenticated.
func (s *Service) Dashboard(ctx context.Context, sessionID string) (*domain.Session, error) {
	if !domain.ValidateSessionID(sessionID) {
		return nil, s.deny(ctx)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, s.deny(ctx)
	}
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}

	s.log(ctx).Info(fmt.Sprintf("Dashboard accessed by user %d", session.UserID))
	return session, nil
}

func (s *Service) deny(ctx context.Context) error {
	s.metrics.Denied()
	s.log(ctx).Warn("Unauthorized dashboard access")
	return domain.ErrNotAuthenticated
}

// Logout removes sessionID if present. It never fails for an absent or
// empty id.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID != "" {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return domain.ErrInternal.WithCause(err)
		}
		s.metrics.SessionDeleted()
	}

	s.log(ctx).Info("User logged out")
	return nil
}
