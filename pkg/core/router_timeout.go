package core

import (
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/steeze-phases/pkg/manifest"
)

// withTimeout bounds the request context. Handlers that honor ctx get a 504
// from chi once the deadline passes.
func withTimeout(next http.Handler, p manifest.Policy) http.Handler {
	if p.TimeoutMS <= 0 {
		return next
	}
	return chimd.Timeout(time.Duration(p.TimeoutMS) * time.Millisecond)(next)
}
