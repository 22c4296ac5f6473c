package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the API. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	AdminLogins         *prometheus.CounterVec
	AdminLoginFailures  prometheus.Counter
	OrphansRemoved      prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gabconcours_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "gabconcours_notifications_sent_total",
			Help: "Status change emails delivered to the SMTP relay",
		}),
		NotificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "gabconcours_notifications_failed_total",
			Help: "Status change emails that could not be sent",
		}),
		AdminLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gabconcours_admin_logins_total",
			Help: "Successful admin logins by browser family",
		}, []string{"browser"}),
		AdminLoginFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "gabconcours_admin_login_failures_total",
			Help: "Rejected admin login attempts",
		}),
		OrphansRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "gabconcours_orphan_files_removed_total",
			Help: "Uploaded files deleted because no document row references them",
		}),
	}
}

func (m *Metrics) IncrementNotificationsSent() {
	if m != nil {
		m.NotificationsSent.Inc()
	}
}

func (m *Metrics) IncrementNotificationsFailed() {
	if m != nil {
		m.NotificationsFailed.Inc()
	}
}

func (m *Metrics) IncrementAdminLogins(browser string) {
	if m != nil {
		if browser == "" {
			browser = "unknown"
		}
		m.AdminLogins.WithLabelValues(browser).Inc()
	}
}

func (m *Metrics) IncrementAdminLoginFailures() {
	if m != nil {
		m.AdminLoginFailures.Inc()
	}
}

func (m *Metrics) AddOrphansRemoved(count int) {
	if m != nil && count > 0 {
		m.OrphansRemoved.Add(float64(count))
	}
}

// Middleware observes request latency labelled by the matched route template.
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
		m.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
