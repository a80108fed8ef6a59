package command

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/yndnr/linkauth-go/internal/core/service"
	"github.com/yndnr/linkauth-go/internal/server/config"
	"github.com/yndnr/linkauth-go/internal/server/httpserver"
	"github.com/yndnr/linkauth-go/internal/server/httpserver/handler"
	"github.com/yndnr/linkauth-go/internal/storage"
	"github.com/yndnr/linkauth-go/internal/telemetry/logger"
	"github.com/yndnr/linkauth-go/internal/telemetry/metric"
	"github.com/yndnr/linkauth-go/pkg/signer"
)

// Server is a fully wired linkauth instance.
type Server struct {
	HTTP    *httpserver.Server
	Handler http.Handler
	Store   storage.SessionStore
	Metrics *metric.Registry

	accessFile *os.File
}

// Build wires the store, signer, service and router described by cfg.
// cfg must already be verified. log receives operational events.
func Build(cfg *config.ServerConfig, log *slog.Logger) (*Server, error) {
	sgn, err := signer.New(cfg.Security.SecretKey, signer.WithSalt(cfg.Security.SignerSalt))
	if err != nil {
		return nil, err
	}

	accessFile, err := logger.OpenAppend(cfg.Log.AccessFile)
	if err != nil {
		return nil, err
	}
	access, err := logger.New(logger.Config{
		Level:  "info",
		Format: logger.FormatAccess,
		Output: accessFile,
	})
	if err != nil {
		_ = accessFile.Close()
		return nil, err
	}

	store, err := storage.New(storage.Config{
		Backend:       cfg.Session.Backend,
		Shards:        cfg.Session.Shards,
		SweepInterval: cfg.Session.SweepInterval,
		Logger:        log.With("component", "store"),
	})
	if err != nil {
		_ = accessFile.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}

	var reg *metric.Registry
	if cfg.Server.Metrics.Enabled {
		reg = metric.NewRegistry()
		if err := reg.Register(metric.NewSessionCollector(store)); err != nil {
			_ = store.Close()
			_ = accessFile.Close()
			return nil, fmt.Errorf("register session collector: %w", err)
		}
	}

	svc := service.New(store, sgn, access, service.Config{
		LinkMaxAge:    cfg.Link.MaxAge,
		UserID:        cfg.Link.UserID,
		ProtectedPath: cfg.Link.ProtectedPath,
		SessionTTL:    cfg.Session.TTL,
	}, service.WithMetrics(reg))

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Service:      svc,
		Boundary:     handler.NewBoundary(access, reg),
		Metrics:      reg,
		MetricsPath:  cfg.Server.Metrics.Path,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
	})

	log.Warn("authentication is demo-only: every link and login is bound to a fixed user",
		"user_id", cfg.Link.UserID)
	if cfg.Session.TTL > 0 {
		log.Info("session lifetime bounded", "ttl", cfg.Session.TTL)
	}

	return &Server{
		HTTP:       httpserver.New(cfg.Server.HTTP.Addr, router, cfg.Server.HTTP.ReadHeaderTimeout),
		Handler:    router,
		Store:      store,
		Metrics:    reg,
		accessFile: accessFile,
	}, nil
}

// CloseStore releases the session store. All sessions are lost.
func (s *Server) CloseStore() error {
	return s.Store.Close()
}

// CloseAccessLog closes the access log file.
func (s *Server) CloseAccessLog() error {
	return s.accessFile.Close()
}

// Close releases everything Build opened. It does not stop the HTTP server.
func (s *Server) Close() error {
	return errors.Join(s.CloseStore(), s.CloseAccessLog())
}
