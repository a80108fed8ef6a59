// Package metric exposes Prometheus metrics for linkauth.
//
// A Registry owns its own prometheus.Registry so tests and multiple servers
// in one process never collide on the global default registerer. All
// recording methods are safe on a nil *Registry.
package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linkauth"

// Link verification outcomes.
const (
	OutcomeValid   = "valid"
	OutcomeExpired = "expired"
	OutcomeInvalid = "invalid"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	LinksIssued       prometheus.Counter
	LinkVerifications *prometheus.CounterVec
	SessionsCreated   prometheus.Counter
	SessionsDeleted   prometheus.Counter
	DashboardDenied   prometheus.Counter
	UnhandledErrors   prometheus.Counter
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// NewRegistry creates and registers all metrics, plus the Go and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		LinksIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_issued_total",
			Help:      "Signed links issued.",
		}),
		LinkVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_verifications_total",
			Help:      "Signed link verifications by outcome.",
		}, []string{"outcome"}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions created by login.",
		}),
		SessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_deleted_total",
			Help:      "Logout calls that carried a session id, known or not.",
		}),
		DashboardDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_denied_total",
			Help:      "Dashboard requests rejected as unauthenticated.",
		}),
		UnhandledErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unhandled_errors_total",
			Help:      "Failures translated to 500 by the boundary.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	r.reg.MustRegister(
		r.LinksIssued,
		r.LinkVerifications,
		r.SessionsCreated,
		r.SessionsDeleted,
		r.DashboardDenied,
		r.UnhandledErrors,
		r.RequestsTotal,
		r.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Register adds extra collectors, such as a store-backed gauge.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	if r == nil {
		return nil
	}
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns the /metrics handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// LinkIssued records an issued link.
func (r *Registry) LinkIssued() {
	if r == nil {
		return
	}
	r.LinksIssued.Inc()
}

// LinkVerified records a verification outcome.
func (r *Registry) LinkVerified(outcome string) {
	if r == nil {
		return
	}
	r.LinkVerifications.WithLabelValues(outcome).Inc()
}

// SessionCreated records a login.
func (r *Registry) SessionCreated() {
	if r == nil {
		return
	}
	r.SessionsCreated.Inc()
}

// SessionDeleted records a logout.
func (r *Registry) SessionDeleted() {
	if r == nil {
		return
	}
	r.SessionsDeleted.Inc()
}

// Denied records an unauthenticated dashboard request.
func (r *Registry) Denied() {
	if r == nil {
		return
	}
	r.DashboardDenied.Inc()
}

// Unhandled records a boundary 500.
func (r *Registry) Unhandled() {
	if r == nil {
		return
	}
	r.UnhandledErrors.Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(route string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
