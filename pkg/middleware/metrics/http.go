package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// ProvideMetrics is the Fx provider for the /metrics handler.
func ProvideMetrics() http.Handler { return promhttp.Handler() }

var Module = fx.Options(
	fx.Provide(fx.Annotate(ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
	fx.Provide(provideCollector),
)
