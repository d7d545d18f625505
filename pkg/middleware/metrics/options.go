package metrics

import (
	"context"
	"net/http"
	"strings"

	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
)

// Option configures a Collector.
type Option func(*Collector)

// WithSkipPaths adds paths that are never recorded. "/metrics" is always skipped.
func WithSkipPaths(paths ...string) Option {
	return func(c *Collector) {
		for _, p := range paths {
			p = strings.TrimSpace(p)
			if p != "" {
				c.skip[p] = struct{}{}
			}
		}
	}
}

// WithPathNormalizer sets the uri label (e.g. collapse IDs). Default is r.URL.Path.
func WithPathNormalizer(fn func(*http.Request) string) Option {
	return func(c *Collector) {
		if fn != nil {
			c.normalize = fn
		}
	}
}

// WithAuth labels requests with the role resolved by the auth middleware.
func WithAuth(a *auth.Middleware) Option {
	return func(c *Collector) {
		if a != nil {
			c.role = func(ctx context.Context) string { return a.GetUser(ctx).Role.Name }
		}
	}
}

func (c *Collector) isSkipPath(r *http.Request) bool {
	_, ok := c.skip[r.URL.Path]
	return ok
}
