package core

import (
	"fmt"
	"net/http"
	"strings"

	manifest "github.com/joeydtaylor/steeze-phases/pkg/manifest"
	"github.com/joeydtaylor/steeze-phases/pkg/phase"
	httpx "github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"
	"go.uber.org/zap"
)

// BuildRouter turns a validated manifest into a scheduled pipeline. Everything
// the manifest names is registered in one batch, so the stack is sorted once.
// The router also carries the builtin OPTIONS responder, which stays unassigned.
func BuildRouter(cfg manifest.Config, d BuildDeps) (*httpx.Router, *Scheduler, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, nil, err
	}
	r := d.Router
	if r == nil {
		r = httpx.NewRouter()
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r.AllowedMethods()
	s, err := New(table, r, log)
	if err != nil {
		return nil, nil, err
	}

	mws := cfg.Middleware
	if len(mws) == 0 {
		mws = defaultMiddleware(d)
	}
	var regs []Registration
	for _, m := range mws {
		reg, err := middlewareRegistration(m, d)
		if err != nil {
			return nil, nil, err
		}
		regs = append(regs, reg)
	}

	if d.Metrics != nil {
		regs = append(regs, Registration{
			Phase:  phase.Routing,
			Path:   "/metrics",
			Routes: []httpx.MethodRoute{httpx.Get(httpx.Endpoint("promhttp", d.Metrics))},
		})
	}

	for _, rt := range cfg.Routes {
		h, err := routeHandler(rt, d)
		if err != nil {
			return nil, nil, err
		}
		ep := httpx.Endpoint(routeName(rt), h)
		reg := Registration{Phase: rt.Phase, Path: rt.Path}
		for _, m := range rt.Methods {
			reg.Routes = append(reg.Routes, httpx.Method(m, ep))
		}
		regs = append(regs, reg)
	}

	for _, st := range cfg.Static {
		fs := http.StripPrefix(strings.TrimSuffix(st.Mount, "/"), http.FileServer(http.Dir(st.Dir)))
		regs = append(regs, Registration{
			Phase:    st.Phase,
			Path:     st.Mount,
			Handlers: []*httpx.Handler{httpx.Endpoint("static "+st.Dir, fs)},
		})
	}

	if err := s.RegisterBatch(regs...); err != nil {
		return nil, nil, err
	}
	log.Info("pipeline built",
		zap.Int("layers", len(s.Layers())),
		zap.Strings("phases", table.Names()),
		zap.Int("sorts", s.Sorts()),
	)
	return r, s, nil
}

func routeName(rt manifest.Route) string {
	if rt.Handler.Name != "" {
		return string(rt.Handler.Type) + ":" + rt.Handler.Name
	}
	return fmt.Sprintf("%s:%d", rt.Handler.Type, rt.Handler.Status)
}

// routeHandler builds the terminal handler of a route: guard, then timeout,
// then the handler type itself.
func routeHandler(rt manifest.Route, d BuildDeps) (http.Handler, error) {
	var h http.Handler
	switch rt.Handler.Type {
	case manifest.HandlerInproc:
		fn, ok := LookupInproc(rt.Handler.Name)
		if !ok {
			return nil, fmt.Errorf("route %s: inproc handler %q is not registered", rt.Path, rt.Handler.Name)
		}
		h = inproc(fn)
	case manifest.HandlerStatus:
		h = status(rt.Handler.Status, rt.Handler.Body)
	default:
		return nil, fmt.Errorf("route %s: unknown handler type %q", rt.Path, rt.Handler.Type)
	}
	h = withTimeout(h, rt.Policy)
	return withGuard(h, d.Auth, rt.Guard), nil
}
