package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yndnr/linkauth-go/internal/storage"
	"github.com/yndnr/linkauth-go/internal/telemetry/logger"
	"github.com/yndnr/linkauth-go/pkg/cmap"
)

// Verify validates the configuration. It expects the secret to be resolved
// already (see ResolveSecret).
func Verify(cfg *ServerConfig) error {
	var errs []error

	if cfg.Server.HTTP.Addr == "" {
		errs = append(errs, errors.New("server.http.addr is required"))
	}
	if (cfg.Server.HTTP.TLSCertFile == "") != (cfg.Server.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	if cfg.Server.Metrics.Enabled && !strings.HasPrefix(cfg.Server.Metrics.Path, "/") {
		errs = append(errs, errors.New("server.metrics.path must start with /"))
	}

	if cfg.Security.SecretKey == "" {
		errs = append(errs, errors.New("security.secret_key (or secret_key_file) is required"))
	}

	if cfg.Link.MaxAge <= 0 {
		errs = append(errs, errors.New("link.max_age must be positive"))
	}
	if !strings.HasPrefix(cfg.Link.ProtectedPath, "/") {
		errs = append(errs, errors.New("link.protected_path must start with /"))
	}

	switch cfg.Session.Backend {
	case storage.BackendMemory, storage.BackendBadger:
	default:
		errs = append(errs, fmt.Errorf("session.backend %q is not one of memory, badger", cfg.Session.Backend))
	}
	if cfg.Session.TTL < 0 {
		errs = append(errs, errors.New("session.ttl must not be negative"))
	} else if cfg.Session.TTL > 0 && cfg.Session.TTL < time.Second {
		errs = append(errs, fmt.Errorf("session.ttl %s is below the 1s cookie granularity", cfg.Session.TTL))
	}
	if !cmap.IsValidShardCount(cfg.Session.Shards) {
		errs = append(errs, fmt.Errorf("session.shards %d is not a power of two", cfg.Session.Shards))
	}
	if cfg.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if cfg.Log.AccessFile == "" {
		errs = append(errs, errors.New("log.access_file is required"))
	}

	return errors.Join(errs...)
}

// ResolveSecret loads security.secret_key_file into SecretKey when set.
// Surrounding whitespace is trimmed.
func ResolveSecret(cfg *ServerConfig) error {
	path := cfg.Security.SecretKeyFile
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read secret key file: %w", err)
	}
	cfg.Security.SecretKey = strings.TrimSpace(string(data))
	return nil
}
