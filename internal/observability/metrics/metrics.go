// Package metrics exposes prometheus instruments scraped from /metrics.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds application-level instruments.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	evaluationsSubmitted *prometheus.CounterVec
	evaluationsRejected  *prometheus.CounterVec
	evaluationsDeleted   prometheus.Counter
	ledgerRewrites       *prometheus.CounterVec
}

// New registers the instruments on the default registry.
func New() *Metrics {
	return &Metrics{
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vendoreval_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vendoreval_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		evaluationsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vendoreval_evaluations_submitted_total",
			Help: "Accepted evaluation submissions by supplier slug.",
		}, []string{"supplier"}),
		evaluationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vendoreval_evaluations_rejected_total",
			Help: "Rejected evaluation submissions by reason.",
		}, []string{"reason"}),
		evaluationsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vendoreval_evaluations_deleted_total",
			Help: "Evaluations removed by the admin deletion engine.",
		}),
		ledgerRewrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vendoreval_ledger_rewrites_total",
			Help: "Full ledger rewrites by outcome.",
		}, []string{"outcome"}),
	}
}

// RecordSubmission increments accepted submission counts.
func (m *Metrics) RecordSubmission(supplierSlug string) {
	if m == nil {
		return
	}
	m.evaluationsSubmitted.WithLabelValues(strings.TrimSpace(supplierSlug)).Inc()
}

// RecordRejection increments rejected submission counts.
func (m *Metrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.evaluationsRejected.WithLabelValues(strings.TrimSpace(reason)).Inc()
}

// RecordDeletion counts removed evaluations.
func (m *Metrics) RecordDeletion(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.evaluationsDeleted.Add(float64(count))
}

// RecordLedgerRewrite counts full-table rewrites.
func (m *Metrics) RecordLedgerRewrite(outcome string) {
	if m == nil {
		return
	}
	m.ledgerRewrites.WithLabelValues(outcome).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
