// Package config defines the linkauth-server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for linkauth-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Security SecuritySection `koanf:"security"`
	Link     LinkSection     `koanf:"link"`
	Session  SessionSection  `koanf:"session"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr              string        `koanf:"addr"`
	TLSCertFile       string        `koanf:"tls_cert_file"`
	TLSKeyFile        string        `koanf:"tls_key_file"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// SecuritySection configures the signing secret.
//
// SecretKey and SecretKeyFile are alternatives; the file wins when both are
// set. There is no built-in default.
type SecuritySection struct {
	SecretKey     string `koanf:"secret_key"`
	SecretKeyFile string `koanf:"secret_key_file"`
	SignerSalt    string `koanf:"signer_salt"`
}

// LinkSection configures signed links.
type LinkSection struct {
	MaxAge        time.Duration `koanf:"max_age"`
	UserID        int64         `koanf:"user_id"`
	ProtectedPath string        `koanf:"protected_path"`
}

// SessionSection configures the session store and cookie.
type SessionSection struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend"`

	// TTL bounds session lifetime; 0 keeps sessions until logout or restart.
	TTL time.Duration `koanf:"ttl"`

	Shards        int           `koanf:"shards"`
	SweepInterval time.Duration `koanf:"sweep_interval"`

	CookieName   string `koanf:"cookie_name"`
	CookieSecure bool   `koanf:"cookie_secure"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// AccessFile receives the append-only access trail.
	AccessFile string `koanf:"access_file"`
}
