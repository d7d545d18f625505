package core

import (
	"net/http"
	"slices"

	manifest "github.com/joeydtaylor/steeze-phases/pkg/manifest"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
)

// withGuard enforces a route guard against the user the auth layer stored on
// the request. The auth layer must run in an earlier phase.
func withGuard(next http.Handler, a *auth.Middleware, g manifest.Guard) http.Handler {
	if g.Open() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no auth middleware wired: nothing can satisfy a closed guard
		if a == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := r.Context()
		if !a.IsAuthenticated(ctx) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if len(g.Users) > 0 && !slices.ContainsFunc(g.Users, func(u string) bool { return a.IsUser(ctx, u) }) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if len(g.Roles) > 0 && !slices.ContainsFunc(g.Roles, func(role string) bool { return a.IsRole(ctx, role) }) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
