package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "steeze_http_response_seconds",
			Help:    "http response time.",
			Buckets: []float64{0.005, 0.05, 0.5, 1, 5, 10, 30},
		},
		[]string{"method"},
	)

	totalHttpRequestsFromRole = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "steeze_http_requests_from_role_total", Help: "http requests from role"},
		[]string{"role"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "steeze_http_requests_total", Help: "http requests by code, uri and method"},
		[]string{"code", "uri", "method"},
	)

	// SchedulerSorts counts full pipeline re-sorts.
	SchedulerSorts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "steeze_scheduler_sorts_total", Help: "pipeline re-sorts performed by the phase scheduler"},
	)

	// SchedulerRegistrations counts tagged layers by phase tag.
	SchedulerRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "steeze_scheduler_registrations_total", Help: "layers tagged by the phase scheduler"},
		[]string{"phase"},
	)

	// SchedulerResolveMisses counts registrations whose layer could not be found.
	SchedulerResolveMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "steeze_scheduler_resolve_miss_total", Help: "registrations left unassigned because no layer owned the handler"},
		[]string{"phase"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsFromRole,
		totalHttpRequests,
		SchedulerSorts,
		SchedulerRegistrations,
		SchedulerResolveMisses,
	)
}
