package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementNotificationsSent()
		m.IncrementNotificationsFailed()
		m.IncrementAdminLogins("Chrome")
		m.IncrementAdminLoginFailures()
		m.AddOrphansRemoved(3)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementNotificationsSent()
	m.IncrementNotificationsSent()
	m.AddOrphansRemoved(0)
	m.AddOrphansRemoved(4)
	m.IncrementAdminLogins("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationsSent))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.OrphansRemoved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdminLogins.WithLabelValues("unknown")))
}

func TestMiddlewareLabelsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/candidats/nupcan/:nupcan", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/candidats/nupcan/GC20250101-ABCDEFGH", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}
