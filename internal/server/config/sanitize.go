package config

import "github.com/yndnr/linkauth-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with secrets redacted, for display.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Security.SecretKey != "" {
		sanitized.Security.SecretKey = logger.RedactedValue()
	}

	return &sanitized
}
