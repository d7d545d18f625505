package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Middleware writes one access-log line per request.
type Middleware struct {
	access *zap.Logger

	mu        sync.RWMutex
	bodyPaths map[string]struct{}
}

// NewMiddleware logs to access; a nil logger discards.
func NewMiddleware(access *zap.Logger) *Middleware {
	if access == nil {
		access = zap.NewNop()
	}
	return &Middleware{access: access, bodyPaths: map[string]struct{}{}}
}

func ProvideLoggerMiddleware() *Middleware { return NewMiddleware(NewLog("http-access.log")) }
func ProvideLogger() *zap.Logger           { return NewLog("system.log") }
