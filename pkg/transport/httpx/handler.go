package httpx

import "net/http"

// Handler is one unit of work attached to a layer. Handlers are identified by
// pointer, so keep the *Handler you registered if you need to find its layer.
type Handler struct {
	Name string
	mw   func(http.Handler) http.Handler
}

// Middleware wraps a chi-style middleware. It decides whether to call next.
func Middleware(name string, mw func(http.Handler) http.Handler) *Handler {
	return &Handler{Name: name, mw: mw}
}

// Endpoint wraps a terminal handler; the rest of the pipeline is not run.
func Endpoint(name string, h http.Handler) *Handler {
	return &Handler{Name: name, mw: func(http.Handler) http.Handler { return h }}
}

// EndpointFunc is Endpoint for plain functions.
func EndpointFunc(name string, fn http.HandlerFunc) *Handler { return Endpoint(name, fn) }

// Wrap binds the handler in front of next.
func (h *Handler) Wrap(next http.Handler) http.Handler {
	if h == nil || h.mw == nil {
		return next
	}
	return h.mw(next)
}

func (h *Handler) String() string {
	if h == nil {
		return "<nil>"
	}
	if h.Name == "" {
		return "<anonymous>"
	}
	return h.Name
}

// MethodRoute binds a handler to one HTTP method of a composite layer.
type MethodRoute struct {
	Method  string
	Handler *Handler
}

func Method(m string, h *Handler) MethodRoute { return MethodRoute{Method: m, Handler: h} }
func Get(h *Handler) MethodRoute              { return Method(http.MethodGet, h) }
func Post(h *Handler) MethodRoute             { return Method(http.MethodPost, h) }
func Put(h *Handler) MethodRoute              { return Method(http.MethodPut, h) }
func Patch(h *Handler) MethodRoute            { return Method(http.MethodPatch, h) }
func Delete(h *Handler) MethodRoute           { return Method(http.MethodDelete, h) }
