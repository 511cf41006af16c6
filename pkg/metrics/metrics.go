// Package metrics exposes prometheus collectors for the HTTP layer and the CRM
// domain events.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	campaignsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_campaigns_created_total",
			Help: "Total number of campaigns added to the store",
		},
		[]string{"type"},
	)

	leadsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_leads_added_total",
			Help: "Total number of leads added to the store",
		},
		[]string{"source"},
	)

	wizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_wizard_transitions_total",
			Help: "Wizard transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	persistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_persistence_errors_total",
			Help: "Total number of slot storage failures",
		},
		[]string{"slot"},
	)
)

// Middleware records request counts, latency and in-flight requests.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		activeRequests.Inc()
		defer activeRequests.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordCampaignCreated(campaignType string) {
	campaignsCreated.WithLabelValues(campaignType).Inc()
}

func RecordLeadsAdded(source string, n int) {
	if n <= 0 {
		return
	}
	leadsImported.WithLabelValues(source).Add(float64(n))
}

// RecordWizardTransition counts a wizard action; outcome is "ok" or a short
// failure reason such as "validation".
func RecordWizardTransition(action, outcome string) {
	wizardTransitions.WithLabelValues(action, outcome).Inc()
}

func RecordPersistenceError(slot string) {
	persistenceErrors.WithLabelValues(slot).Inc()
}
