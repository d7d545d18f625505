package core

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/steeze-phases/pkg/manifest"
	hmetrics "github.com/joeydtaylor/steeze-phases/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"
)

// ErrUnknownMiddleware is returned for a manifest entry naming no catalogue middleware.
var ErrUnknownMiddleware = errors.New("unknown middleware")

type catalogueEntry struct {
	phase string
	build func(m manifest.Middleware, d BuildDeps) (func(http.Handler) http.Handler, error)
}

func plain(mw func(http.Handler) http.Handler) func(manifest.Middleware, BuildDeps) (func(http.Handler) http.Handler, error) {
	return func(manifest.Middleware, BuildDeps) (func(http.Handler) http.Handler, error) { return mw, nil }
}

var catalogue = map[string]catalogueEntry{
	"recoverer":     {phase: "initial:before", build: plain(chimd.Recoverer)},
	"request_id":    {phase: "initial", build: plain(chimd.RequestID)},
	"real_ip":       {phase: "initial", build: plain(chimd.RealIP)},
	"response_time": {phase: "initial", build: plain(hmetrics.ResponseTime)},
	"nocache":       {phase: "initial:after", build: plain(chimd.NoCache)},
	"heartbeat": {phase: "initial:after", build: func(m manifest.Middleware, _ BuildDeps) (func(http.Handler) http.Handler, error) {
		ep := m.Endpoint
		if ep == "" {
			ep = "/ping"
		}
		return chimd.Heartbeat(ep), nil
	}},
	"compress": {phase: "initial:after", build: func(m manifest.Middleware, _ BuildDeps) (func(http.Handler) http.Handler, error) {
		lvl := m.Level
		if lvl == 0 {
			lvl = 5
		}
		return chimd.Compress(lvl), nil
	}},
	"auth": {phase: "auth", build: func(_ manifest.Middleware, d BuildDeps) (func(http.Handler) http.Handler, error) {
		if d.Auth == nil {
			return nil, errors.New("auth middleware is not configured")
		}
		return d.Auth.Middleware(), nil
	}},
	"access_log": {phase: "auth:after", build: func(m manifest.Middleware, d BuildDeps) (func(http.Handler) http.Handler, error) {
		if d.LogMW == nil {
			return nil, errors.New("access logger is not configured")
		}
		d.LogMW.AddBodyLogPaths(m.BodyPaths...)
		return d.LogMW.Middleware(d.Auth), nil
	}},
	"metrics": {phase: "auth:after", build: func(m manifest.Middleware, d BuildDeps) (func(http.Handler) http.Handler, error) {
		c := d.Collector
		if c == nil || len(m.SkipPaths) > 0 {
			c = hmetrics.NewCollector(hmetrics.WithAuth(d.Auth), hmetrics.WithSkipPaths(m.SkipPaths...))
		}
		return c.Middleware(), nil
	}},
	"request_size": {phase: "parse", build: func(m manifest.Middleware, _ BuildDeps) (func(http.Handler) http.Handler, error) {
		n := m.MaxBytes
		if n == 0 {
			n = 1 << 20
		}
		return chimd.RequestSize(n), nil
	}},
}

// Catalogue lists the middleware names a manifest can use.
func Catalogue() []string {
	out := make([]string, 0, len(catalogue))
	for k := range catalogue {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultPhaseOf returns the phase a catalogue middleware runs in when the
// manifest does not say.
func DefaultPhaseOf(name string) (string, bool) {
	e, ok := catalogue[name]
	return e.phase, ok
}

// defaultMiddleware is used when the manifest lists none.
func defaultMiddleware(d BuildDeps) []manifest.Middleware {
	ms := []manifest.Middleware{{Name: "recoverer"}, {Name: "request_id"}, {Name: "heartbeat"}}
	if d.Auth != nil {
		ms = append(ms, manifest.Middleware{Name: "auth"})
	}
	if d.LogMW != nil {
		ms = append(ms, manifest.Middleware{Name: "access_log"})
	}
	if d.Collector != nil {
		ms = append(ms, manifest.Middleware{Name: "metrics"})
	}
	return ms
}

func middlewareRegistration(m manifest.Middleware, d BuildDeps) (Registration, error) {
	e, ok := catalogue[m.Name]
	if !ok {
		return Registration{}, fmt.Errorf("%w %q", ErrUnknownMiddleware, m.Name)
	}
	mw, err := e.build(m, d)
	if err != nil {
		return Registration{}, fmt.Errorf("middleware %s: %w", m.Name, err)
	}
	ph := m.Phase
	if ph == "" {
		ph = e.phase
	}
	p := m.Path
	if p == "" {
		p = "/"
	}
	return Registration{Phase: ph, Path: p, Handlers: []*httpx.Handler{httpx.Middleware(m.Name, mw)}}, nil
}
