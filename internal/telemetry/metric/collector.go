package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// SessionCollector exports the live session count as a gauge at scrape time.
type SessionCollector struct {
	store   SessionCounter
	timeout time.Duration
	desc    *prometheus.Desc
}

// NewSessionCollector creates a collector for store.
func NewSessionCollector(store SessionCounter) *SessionCollector {
	return &SessionCollector{
		store:   store,
		timeout: 2 * time.Second,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sessions_active"),
			"Sessions currently held by the store.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.store.Count(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n))
}
