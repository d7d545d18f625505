package core

import (
	"fmt"
	"strings"

	httpx "github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"
)

// PlanEntry describes one layer of the ordered stack.
type PlanEntry struct {
	Index    int
	Phase    string
	Kind     httpx.Kind
	Path     string
	Handlers []string
	Builtin  bool
}

func (e PlanEntry) String() string {
	ph := e.Phase
	if ph == "" {
		ph = "-"
		if e.Builtin {
			ph = "builtin"
		}
	}
	return fmt.Sprintf("%3d  %-16s %-5s %-24s %s", e.Index, ph, e.Kind, e.Path, strings.Join(e.Handlers, ", "))
}

// Plan returns the execution order of the stack.
func (s *Scheduler) Plan() []PlanEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planLocked()
}

func (s *Scheduler) planLocked() []PlanEntry {
	layers := s.pipe.Layers()
	out := make([]PlanEntry, 0, len(layers))
	for i, l := range layers {
		e := PlanEntry{Index: i, Phase: l.Phase, Kind: l.Kind(), Path: l.Path(), Builtin: l.Builtin}
		for _, h := range l.Handlers() {
			e.Handlers = append(e.Handlers, h.String())
		}
		for _, rt := range l.Routes() {
			e.Handlers = append(e.Handlers, rt.Method+" "+rt.Handler.String())
		}
		out = append(out, e)
	}
	return out
}

func planStrings(p []PlanEntry) []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.String()
	}
	return out
}
