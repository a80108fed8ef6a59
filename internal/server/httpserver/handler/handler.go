// Package handler implements the linkauth HTTP endpoints.
//
// Handlers translate between HTTP and the service: they read the token query
// parameter or the session cookie, call one service operation and map the
// result to a JSON body. Domain errors become 401 responses; anything else
// goes to the Boundary.
package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/yndnr/linkauth-go/internal/core/domain"
	"github.com/yndnr/linkauth-go/internal/core/service"
	"github.com/yndnr/linkauth-go/internal/infra/buildinfo"
	"github.com/yndnr/linkauth-go/internal/telemetry/logger"
)

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "session_id"

// Handler serves the link and session endpoints.
type Handler struct {
	svc      *service.Service
	boundary *Boundary

	cookieName   string
	cookieSecure bool

	mux *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithCookie sets the session cookie name and the Secure attribute.
func WithCookie(name string, secure bool) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookieName = name
		}
		h.cookieSecure = secure
	}
}

// New creates a Handler. boundary receives every failure that is not a
// domain error.
func New(svc *service.Service, boundary *Boundary, opts ...Option) *Handler {
	h := &Handler{
		svc:        svc,
		boundary:   boundary,
		cookieName: DefaultCookieName,
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)

	h.mux.HandleFunc("GET /generate-link", h.handleGenerateLink)
	h.mux.HandleFunc("GET "+h.svc.Config().ProtectedPath, h.handleProtected)

	h.mux.HandleFunc("POST /login", h.handleLogin)
	h.mux.HandleFunc("GET /dashboard", h.handleDashboard)
	h.mux.HandleFunc("POST /logout", h.handleLogout)
}

// Mount registers an extra handler on the same mux.
func (h *Handler) Mount(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, handler)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Build:  buildinfo.Get(),
	})
}

// writeJSON writes data as a JSON body with status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// handleServiceError maps err to a response. Only the domain errors a
// client may see are answered here.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		switch {
		case errors.Is(de, domain.ErrTokenExpired),
			errors.Is(de, domain.ErrTokenInvalid),
			errors.Is(de, domain.ErrNotAuthenticated):
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Detail: de.Message})
			return
		}
	}

	h.boundary.Fail(w, r, err)
}

// ClientHost returns the peer host of r. Forwarding headers are not trusted.
func ClientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WithClientHost records the request's client host for access lines.
func WithClientHost(r *http.Request) *http.Request {
	if logger.ClientFromContext(r.Context()) != "" {
		return r
	}
	return r.WithContext(logger.WithClient(r.Context(), ClientHost(r)))
}
