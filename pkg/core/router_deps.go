package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-phases/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"
	"go.uber.org/zap"
)

// BuildDeps are the collaborators BuildRouter wires into the pipeline. Nil
// fields disable whatever depends on them.
type BuildDeps struct {
	Auth      *auth.Middleware
	LogMW     *logger.Middleware
	Collector *hmetrics.Collector
	Metrics   http.Handler
	// Router defaults to a fresh httpx.Router.
	Router *httpx.Router
	Log    *zap.Logger
}
