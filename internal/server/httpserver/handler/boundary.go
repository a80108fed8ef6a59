package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yndnr/linkauth-go/internal/core/domain"
	"github.com/yndnr/linkauth-go/internal/telemetry/logger"
	"github.com/yndnr/linkauth-go/internal/telemetry/metric"
)

// Boundary is the single place unhandled failures are turned into responses.
// Internal detail is logged, never sent.
type Boundary struct {
	access  logger.Logger
	metrics *metric.Registry
}

// NewBoundary creates a Boundary that logs to access and counts in metrics.
// metrics may be nil.
func NewBoundary(access logger.Logger, metrics *metric.Registry) *Boundary {
	return &Boundary{access: access, metrics: metrics}
}

// Fail logs "Unhandled error: <detail>" and writes a generic 500. cause is an
// error or a recovered panic value.
func (b *Boundary) Fail(w http.ResponseWriter, r *http.Request, cause any) {
	r = WithClientHost(r)

	b.metrics.Unhandled()
	b.access.WithContext(r.Context()).Error("Unhandled error: " + describe(cause))

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: domain.ErrInternal.Message})
}

// describe unwraps ErrInternal to its cause so log lines name the real failure.
func describe(cause any) string {
	err, ok := cause.(error)
	if !ok {
		return fmt.Sprint(cause)
	}

	var de *domain.DomainError
	if errors.As(err, &de) && errors.Is(de, domain.ErrInternal) && de.Cause != nil {
		return de.Cause.Error()
	}
	return err.Error()
}
