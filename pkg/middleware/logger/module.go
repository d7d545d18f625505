package logger

import "go.uber.org/fx"

// Module provides the system *zap.Logger (system.log) and the access-log
// *Middleware (http-access.log).
var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware, ProvideLogger),
)
