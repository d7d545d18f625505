package logger

import (
	"net/http"
	"strings"
)

// AddBodyLogPaths extends the request-body allowlist.
func (m *Middleware) AddBodyLogPaths(paths ...string) {
	m.mu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			m.bodyPaths[p] = struct{}{}
		}
	}
	m.mu.Unlock()
}

// Only log small JSON request bodies on allowlisted routes.
func (m *Middleware) shouldLogBody(r *http.Request, body []byte) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if len(body) == 0 || len(body) > 1<<16 { // 64 KiB cap
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	m.mu.RLock()
	_, ok := m.bodyPaths[r.URL.Path]
	m.mu.RUnlock()
	return ok
}
