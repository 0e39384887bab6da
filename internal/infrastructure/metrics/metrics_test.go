package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/products/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/api/v1/products/1", "/api/v1/products/2", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/products/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.RecordLogin(LoginSuccess)
	m.RecordLogin(LoginFailure)
	m.RecordLogin(LoginFailure)
	m.RecordOperation(OpSalePosted)
	m.RecordImport("sales", 12)
	m.RecordImport("sales", 0)
	m.RecordReport(10_000)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues(LoginFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpSalePosted)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.importedRows.WithLabelValues("sales")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLogin(LoginSuccess)
		m.RecordOperation(OpUserDeleted)
		m.RecordImport("expenses", 3)
		m.RecordReport(1)
	})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.RecordOperation(OpPurchasePosted)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `bizbooks_operations_total{operation="purchase_posted"} 1`))
}
