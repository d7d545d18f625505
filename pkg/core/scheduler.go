// pkg/core/scheduler.go
package core

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	hmetrics "github.com/joeydtaylor/steeze-phases/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-phases/pkg/phase"
	httpx "github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"
	"go.uber.org/zap"
)

// Pipeline is the layer stack a Scheduler keeps ordered. *httpx.Router
// implements it.
type Pipeline interface {
	Use(prefix string, hs ...*httpx.Handler)
	Route(pattern string, routes ...httpx.MethodRoute) error
	Layers() []*httpx.Layer
	Reorder(fn func([]*httpx.Layer))
	OnChange(fn func())
}

// Registration is one logical registration. A non-empty Routes makes it a
// composite route registration; otherwise Handlers are mounted under Path.
type Registration struct {
	Phase    string
	Path     string
	Handlers []*httpx.Handler
	Routes   []httpx.MethodRoute
}

func (r Registration) target() *httpx.Handler {
	if len(r.Routes) > 0 {
		return r.Routes[0].Handler
	}
	return r.Handlers[0]
}

func (r Registration) check(t *phase.Table) error {
	if err := t.Validate(r.Phase); err != nil {
		return err
	}
	if len(r.Routes) > 0 {
		return httpx.CheckRoute(r.Path, r.Routes)
	}
	if len(r.Handlers) == 0 {
		return fmt.Errorf("core: %s registration on %q has no handlers", r.Phase, r.Path)
	}
	for _, h := range r.Handlers {
		if h == nil {
			return fmt.Errorf("core: %s registration on %q has a nil handler", r.Phase, r.Path)
		}
	}
	return nil
}

// Scheduler registers layers against phases and keeps the pipeline stack
// sorted by phase. Layers sharing a tag keep their registration order.
//
// Registration is serialized. While a registration runs, change notifications
// from the pipeline are ignored, so a call that creates several layers is
// sorted exactly once, after its layer has been tagged.
type Scheduler struct {
	table      *phase.Table
	pipe       Pipeline
	log        *zap.Logger
	routingKey int

	mu         sync.Mutex
	suppressed atomic.Bool
	sorts      int
	err        error
}

// New attaches a scheduler to p. Layers already on p stay unassigned.
func New(table *phase.Table, p Pipeline, log *zap.Logger) (*Scheduler, error) {
	if table == nil || p == nil {
		return nil, errors.New("core: scheduler needs a phase table and a pipeline")
	}
	rk, err := table.OrderKey(phase.Routing)
	if err != nil {
		return nil, fmt.Errorf("core: phase table must contain %q: %w", phase.Routing, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{table: table, pipe: p, log: log, routingKey: rk}
	p.OnChange(s.changed)
	s.Sort()
	return s, nil
}

// Table returns the phase table the scheduler ranks with.
func (s *Scheduler) Table() *phase.Table { return s.table }

// Register mounts hs under prefix in the given phase tag.
func (s *Scheduler) Register(tag, prefix string, hs ...*httpx.Handler) error {
	return s.RegisterBatch(Registration{Phase: tag, Path: prefix, Handlers: hs})
}

// Route registers a composite route in the given phase tag. All methods end
// up in one layer.
func (s *Scheduler) Route(tag, pattern string, routes ...httpx.MethodRoute) error {
	return s.RegisterBatch(Registration{Phase: tag, Path: pattern, Routes: routes})
}

// RegisterBatch applies regs as one unit: every registration is validated
// before the pipeline is touched, and the stack is sorted once at the end.
// A validation error (including phase.ErrUnknownPhase) leaves the stack as it was.
func (s *Scheduler) RegisterBatch(regs ...Registration) error {
	for _, r := range regs {
		if err := r.check(s.table); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.suppressed.Store(true)
	defer func() {
		s.suppressed.Store(false)
		s.sortLocked()
	}()
	for _, r := range regs {
		if err := s.apply(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) apply(r Registration) error {
	if len(r.Routes) > 0 {
		if err := s.pipe.Route(r.Path, r.Routes...); err != nil {
			return err
		}
	} else {
		s.pipe.Use(r.Path, r.Handlers...)
	}

	target := r.target()
	l := FindLayer(s.pipe.Layers(), target)
	if l == nil || l.Phase != "" || l.Builtin {
		s.log.Warn("no matching layer found",
			zap.String("phase", r.Phase),
			zap.String("path", r.Path),
			zap.String("handler", target.String()),
		)
		hmetrics.ObserveResolveMiss(r.Phase)
		return nil
	}
	l.Phase = r.Phase
	hmetrics.ObserveRegistration(r.Phase)
	return nil
}

// Use is the chainable form of Register. The first error sticks and turns
// later calls into no-ops; read it with Err.
func (s *Scheduler) Use(tag, prefix string, hs ...*httpx.Handler) *Scheduler {
	if s.Err() == nil {
		s.setErr(s.Register(tag, prefix, hs...))
	}
	return s
}

// Handle is the chainable form of Route for a single method.
func (s *Scheduler) Handle(tag, method, pattern string, h *httpx.Handler) *Scheduler {
	if s.Err() == nil {
		s.setErr(s.Route(tag, pattern, httpx.Method(method, h)))
	}
	return s
}

// Err returns the first error recorded by Use or Handle.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Scheduler) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// Sort re-sorts the stack. Sorting an ordered stack is a no-op permutation.
func (s *Scheduler) Sort() {
	s.mu.Lock()
	s.sortLocked()
	s.mu.Unlock()
}

// Sorts returns how many sorts the scheduler has performed.
func (s *Scheduler) Sorts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorts
}

// Layers returns a snapshot of the ordered stack.
func (s *Scheduler) Layers() []*httpx.Layer { return s.pipe.Layers() }

// changed runs for mutations made directly on the pipeline.
func (s *Scheduler) changed() {
	if s.suppressed.Load() {
		return
	}
	s.Sort()
}

func (s *Scheduler) sortLocked() {
	s.pipe.Reorder(func(stack []*httpx.Layer) {
		for _, l := range stack {
			if l.Phase == "" {
				continue
			}
			if err := s.table.Validate(l.Phase); err != nil {
				s.log.Warn("layer carries an unknown phase, treating it as unassigned",
					zap.String("phase", l.Phase),
					zap.String("layer", l.String()),
				)
				l.Phase = ""
			}
		}
		slices.SortStableFunc(stack, s.compare)
	})
	s.sorts++
	hmetrics.ObserveSort()

	if ce := s.log.Check(zap.DebugLevel, "pipeline sorted"); ce != nil {
		ce.Write(zap.Int("sorts", s.sorts), zap.Strings("plan", planStrings(s.planLocked())))
	}
}
