// Package metrics exposes Prometheus collectors for HTTP traffic and
// bookkeeping operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bizbooks"

// Metrics owns a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	operations   *prometheus.CounterVec
	importedRows *prometheus.CounterVec
	reportBytes  prometheus.Histogram
}

// New registers every collector on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Successful bookkeeping operations",
		}, []string{"operation"}),
		importedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_rows_total",
			Help:      "Rows committed by bulk imports",
		}, []string{"kind"}),
		reportBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_size_bytes",
			Help:      "Size of generated workbooks",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 8),
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.logins,
		m.operations,
		m.importedRows,
		m.reportBytes,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// RecordLogin counts one login attempt.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Operation names.
const (
	OpSalePosted       = "sale_posted"
	OpSaleReversed     = "sale_reversed"
	OpPurchasePosted   = "purchase_posted"
	OpExpenseRecorded  = "expense_recorded"
	OpMaterialsDeleted = "materials_deleted"
	OpUserCreated      = "user_created"
	OpUserDeleted      = "user_deleted"
)

// RecordOperation counts one successful operation.
func (m *Metrics) RecordOperation(op string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op).Inc()
}

// RecordImport counts rows committed by an import of kind.
func (m *Metrics) RecordImport(kind string, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.importedRows.WithLabelValues(kind).Add(float64(rows))
}

// RecordReport observes the size of a generated workbook.
func (m *Metrics) RecordReport(size int) {
	if m == nil {
		return
	}
	m.reportBytes.Observe(float64(size))
}
