package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ErrInvalidRoute is returned for patterns or methods chi cannot register.
var ErrInvalidRoute = errors.New("invalid route")

// Kind tells which shape a layer has. It is fixed when the layer is created.
type Kind int

const (
	// KindSimple layers guard a path prefix and run their handlers in order.
	KindSimple Kind = iota
	// KindComposite layers guard a route pattern and fan out per method.
	KindComposite
)

func (k Kind) String() string {
	if k == KindComposite {
		return "route"
	}
	return "use"
}

// Layer is one entry of the pipeline stack. Layers are only created by the
// Router; everything else refers to them by pointer.
type Layer struct {
	// Phase is the scheduling tag ("auth", "auth:before", ...). Empty means
	// unassigned.
	Phase string
	// Builtin marks router-owned scaffolding.
	Builtin bool

	kind     Kind
	path     string
	handlers []*Handler
	routes   []MethodRoute
	mux      *chi.Mux
}

func newSimple(prefix string, hs []*Handler) *Layer {
	if prefix == "" {
		prefix = "/"
	}
	return &Layer{
		kind:     KindSimple,
		path:     prefix,
		handlers: append([]*Handler(nil), hs...),
	}
}

func newComposite(pattern string, routes []MethodRoute) (*Layer, error) {
	mux, err := buildMux(pattern, routes)
	if err != nil {
		return nil, err
	}
	return &Layer{
		kind:   KindComposite,
		path:   pattern,
		routes: append([]MethodRoute(nil), routes...),
		mux:    mux,
	}, nil
}

// buildMux registers pattern on a fresh chi mux. chi panics on malformed
// patterns such as an unclosed "{id"; the panic comes back as ErrInvalidRoute.
func buildMux(pattern string, routes []MethodRoute) (mux *chi.Mux, err error) {
	defer func() {
		if p := recover(); p != nil {
			mux, err = nil, fmt.Errorf("%w: %v", ErrInvalidRoute, p)
		}
	}()
	mux = chi.NewMux()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, rt := range routes {
		mux.Method(rt.Method, pattern, noop)
	}
	return mux, nil
}

func (l *Layer) Kind() Kind   { return l.kind }
func (l *Layer) Path() string { return l.path }

// Handlers returns the direct handlers of a simple layer.
func (l *Layer) Handlers() []*Handler {
	if l.kind != KindSimple {
		return nil
	}
	return append([]*Handler(nil), l.handlers...)
}

// Routes returns the per-method sub-handlers of a composite layer.
func (l *Layer) Routes() []MethodRoute {
	if l.kind != KindComposite {
		return nil
	}
	return append([]MethodRoute(nil), l.routes...)
}

// Methods lists the methods a composite layer answers, in registration order.
func (l *Layer) Methods() []string {
	out := make([]string, 0, len(l.routes))
	for _, rt := range l.routes {
		out = append(out, rt.Method)
	}
	return out
}

func (l *Layer) String() string {
	names := make([]string, 0, len(l.handlers)+len(l.routes))
	for _, h := range l.handlers {
		names = append(names, h.String())
	}
	for _, rt := range l.routes {
		names = append(names, rt.Method+" "+rt.Handler.String())
	}
	return fmt.Sprintf("%s %s [%s]", l.kind, l.path, strings.Join(names, ", "))
}

// matchesMethod reports whether the route pattern matches path for method m.
func (l *Layer) matchesMethod(m, path string) (*chi.Context, bool) {
	rctx := chi.NewRouteContext()
	return rctx, l.mux.Match(rctx, m, path)
}

func (l *Layer) wrap(next http.Handler) http.Handler {
	if l.kind == KindComposite {
		byMethod := make(map[string]http.Handler, len(l.routes))
		for _, rt := range l.routes {
			byMethod[rt.Method] = rt.Handler.Wrap(next)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h, ok := byMethod[r.Method]
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			rctx, ok := l.matchesMethod(r.Method, requestPath(r))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	inner := next
	for i := len(l.handlers) - 1; i >= 0; i-- {
		inner = l.handlers[i].Wrap(inner)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if matchPrefix(l.path, requestPath(r)) {
			inner.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CheckRoute validates a composite registration without touching any stack.
func CheckRoute(pattern string, routes []MethodRoute) error {
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("%w: pattern %q must begin with '/'", ErrInvalidRoute, pattern)
	}
	if len(routes) == 0 {
		return fmt.Errorf("%w: %s has no methods", ErrInvalidRoute, pattern)
	}
	seen := make(map[string]struct{}, len(routes))
	for _, rt := range routes {
		if _, ok := supportedMethods[rt.Method]; !ok {
			return fmt.Errorf("%w: method %q on %s", ErrInvalidRoute, rt.Method, pattern)
		}
		if rt.Handler == nil {
			return fmt.Errorf("%w: nil handler for %s %s", ErrInvalidRoute, rt.Method, pattern)
		}
		if _, dup := seen[rt.Method]; dup {
			return fmt.Errorf("%w: duplicate method %s on %s", ErrInvalidRoute, rt.Method, pattern)
		}
		seen[rt.Method] = struct{}{}
	}
	_, err := buildMux(pattern, routes)
	return err
}

// same set chi accepts without chi.RegisterMethod
var supportedMethods = map[string]struct{}{
	http.MethodConnect: {},
	http.MethodDelete:  {},
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodPatch:   {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodTrace:   {},
}

func matchPrefix(prefix, p string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func requestPath(r *http.Request) string {
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}
