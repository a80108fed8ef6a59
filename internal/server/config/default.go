package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr          = "127.0.0.1:8000"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMetricsPath       = "/metrics"

	DefaultSignerSalt = "linkauth.signer"

	DefaultLinkMaxAge    = 300 * time.Second
	DefaultLinkUserID    = 1
	DefaultProtectedPath = "/protected"

	DefaultSessionBackend = "memory"
	DefaultSessionShards  = 16
	DefaultSweepInterval  = time.Minute
	DefaultCookieName     = "session_id"

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultAccessFile = "app.log"
)

// Default returns the default server configuration. The secret is left
// empty and must be supplied.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:              DefaultHTTPAddr,
				ReadHeaderTimeout: DefaultReadHeaderTimeout,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    DefaultMetricsPath,
			},
		},
		Security: SecuritySection{
			SignerSalt: DefaultSignerSalt,
		},
		Link: LinkSection{
			MaxAge:        DefaultLinkMaxAge,
			UserID:        DefaultLinkUserID,
			ProtectedPath: DefaultProtectedPath,
		},
		Session: SessionSection{
			Backend:       DefaultSessionBackend,
			Shards:        DefaultSessionShards,
			SweepInterval: DefaultSweepInterval,
			CookieName:    DefaultCookieName,
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			AccessFile: DefaultAccessFile,
		},
	}
}
