package httpserver

import (
	"net/http"

	"github.com/yndnr/linkauth-go/internal/core/service"
	"github.com/yndnr/linkauth-go/internal/server/httpserver/handler"
	"github.com/yndnr/linkauth-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Service  *service.Service
	Boundary *handler.Boundary

	// Metrics, when set, instruments requests and is served at MetricsPath.
	Metrics     *metric.Registry
	MetricsPath string

	CookieName   string
	CookieSecure bool
}

// NewRouter builds the handler tree.
//
// Order: Recover -> RequestID -> ClientHost -> Metrics -> mux.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := handler.New(cfg.Service, cfg.Boundary, handler.WithCookie(cfg.CookieName, cfg.CookieSecure))

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		h.Mount("GET "+path, cfg.Metrics.Handler())
	}

	return Chain(h,
		Recover(cfg.Boundary),
		RequestID(),
		ClientHost(),
		Metrics(cfg.Metrics),
	)
}
