package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	SubmissionsTotal   = prometheus.NewCounter(prometheus.CounterOpts{Name: "ats_applications_submitted_total", Help: "Applications submitted"})
	TransitionsTotal   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ats_transitions_total", Help: "Committed stage transitions by actor"}, []string{"actor"})
	TransitionsDenied  = prometheus.NewCounter(prometheus.CounterOpts{Name: "ats_transitions_denied_total", Help: "Transitions denied by the authorizer"})
	AutomationAdvanced = prometheus.NewCounter(prometheus.CounterOpts{Name: "ats_automation_advanced_total", Help: "Applications advanced by automation steps"})
	RateLimitRejects   = prometheus.NewCounter(prometheus.CounterOpts{Name: "ats_rate_limit_rejects_total", Help: "Submissions rejected by the rate limiter"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			SubmissionsTotal,
			TransitionsTotal,
			TransitionsDenied,
			AutomationAdvanced,
			RateLimitRejects,
		)
	})
	return promhttp.Handler()
}
