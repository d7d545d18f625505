package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/middleware"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
)

// Collector records HTTP counters for every request it wraps.
type Collector struct {
	skip      map[string]struct{}
	normalize func(*http.Request) string
	role      func(context.Context) string
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		skip:      map[string]struct{}{"/metrics": {}},
		normalize: func(r *http.Request) string { return r.URL.Path },
		role:      func(context.Context) string { return "" },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func provideCollector(a *auth.Middleware) *Collector { return NewCollector(WithAuth(a)) }

// Middleware produces the HTTP middleware that records the counters/histogram.
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				if c.isSkipPath(r) {
					return
				}
				code := strconv.Itoa(ww.Status())
				totalHttpRequestsFromRole.WithLabelValues(c.role(r.Context())).Inc()
				totalHttpRequests.WithLabelValues(code, c.normalize(r), r.Method).Inc()
				responseTime.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// ObserveSort records one scheduler re-sort.
func ObserveSort() { SchedulerSorts.Inc() }

// ObserveRegistration records a layer tagged with phase.
func ObserveRegistration(phase string) { SchedulerRegistrations.WithLabelValues(phase).Inc() }

// ObserveResolveMiss records a registration whose layer was not found.
func ObserveResolveMiss(phase string) { SchedulerResolveMisses.WithLabelValues(phase).Inc() }
