// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provides every middleware dependency the pipeline builder accepts:
// *auth.Middleware, *logger.Middleware, *zap.Logger, *metrics.Collector and
// the /metrics handler named "metrics".
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
