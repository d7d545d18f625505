// pkg/transport/httpx/router.go
package httpx

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// Router is a layered pipeline: an ordered stack of layers compiled into one
// http.Handler. Path patterns are matched by chi; ordering is left to whoever
// owns the stack (see Reorder and OnChange).
type Router struct {
	mu       sync.Mutex
	stack    []*Layer
	onChange func()

	compiled atomic.Pointer[chain]
}

type chain struct {
	h          http.Handler
	composites []*Layer
}

// NewRouter returns an empty Router that answers 404 to everything.
func NewRouter() *Router {
	r := &Router{}
	r.compiled.Store(compile(nil))
	return r
}

// Use appends one simple layer running hs, in order, for paths under prefix.
func (r *Router) Use(prefix string, hs ...*Handler) {
	if len(hs) == 0 {
		return
	}
	r.push(newSimple(prefix, hs))
}

// Route appends one composite layer answering pattern for every method in routes.
func (r *Router) Route(pattern string, routes ...MethodRoute) error {
	if err := CheckRoute(pattern, routes); err != nil {
		return err
	}
	l, err := newComposite(pattern, routes)
	if err != nil {
		return err
	}
	r.push(l)
	return nil
}

// Handle is Route with a single method.
func (r *Router) Handle(method, pattern string, h *Handler) error {
	return r.Route(pattern, Method(method, h))
}

// AllowedMethods appends the builtin OPTIONS responder. Requests whose path
// matches a route under other methods get an Allow header instead of a 404.
func (r *Router) AllowedMethods() {
	h := Middleware("allowedMethods", func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodOptions {
				next.ServeHTTP(w, req)
				return
			}
			allow := r.compiled.Load().allowed(req)
			if len(allow) == 0 || contains(allow, http.MethodOptions) {
				next.ServeHTTP(w, req)
				return
			}
			w.Header().Set("Allow", strings.Join(allow, ", "))
			w.WriteHeader(http.StatusOK)
		})
	})
	l := newSimple("/", []*Handler{h})
	l.Builtin = true
	r.push(l)
}

// OnChange installs fn to be called after every append. Without a hook the
// router recompiles itself in registration order.
func (r *Router) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Layers returns a snapshot of the stack.
func (r *Router) Layers() []*Layer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Layer(nil), r.stack...)
}

// Len returns the number of layers.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stack)
}

// Reorder lets fn permute the stack in place, then publishes the new chain.
// fn must not add or drop layers.
func (r *Router) Reorder(fn func([]*Layer)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.stack)
	fn(r.stack)
	if len(r.stack) != n {
		panic("httpx: Reorder changed the stack length")
	}
	r.compiled.Store(compile(r.stack))
}

// Rebuild publishes the stack as it is now.
func (r *Router) Rebuild() {
	r.mu.Lock()
	r.compiled.Store(compile(r.stack))
	r.mu.Unlock()
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.compiled.Load().h.ServeHTTP(w, req)
}

func (r *Router) push(l *Layer) {
	r.mu.Lock()
	r.stack = append(r.stack, l)
	hook := r.onChange
	r.mu.Unlock()

	if hook != nil {
		hook()
		return
	}
	r.Rebuild()
}

func compile(stack []*Layer) *chain {
	c := &chain{}
	for _, l := range stack {
		if l.kind == KindComposite {
			c.composites = append(c.composites, l)
		}
	}
	var next http.Handler = http.HandlerFunc(c.fallback)
	for i := len(stack) - 1; i >= 0; i-- {
		next = stack[i].wrap(next)
	}
	c.h = next
	return c
}

// allowed lists the methods of every route whose pattern matches the request path.
func (c *chain) allowed(req *http.Request) []string {
	p := requestPath(req)
	var out []string
	for _, l := range c.composites {
		for _, m := range l.Methods() {
			if contains(out, m) {
				continue
			}
			if _, ok := l.matchesMethod(m, p); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func (c *chain) fallback(w http.ResponseWriter, req *http.Request) {
	if allow := c.allowed(req); len(allow) > 0 {
		w.Header().Set("Allow", strings.Join(allow, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	http.NotFound(w, req)
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
