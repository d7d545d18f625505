package manifest

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/joeydtaylor/steeze-phases/pkg/phase"
)

// HandlerType enumerates the supported handler kinds.
type HandlerType string

const (
	HandlerInproc HandlerType = "inproc"
	HandlerStatus HandlerType = "status"
)

// Route describes one composite route. Every method ends up in the same layer.
type Route struct {
	Path    string   `toml:"path" yaml:"path"`
	Method  string   `toml:"method" yaml:"method"`
	Methods []string `toml:"methods" yaml:"methods"`
	Phase   string   `toml:"phase" yaml:"phase"`
	Guard   Guard    `toml:"guard" yaml:"guard"`
	Policy  Policy   `toml:"policy" yaml:"policy"`
	Handler HSpec    `toml:"handler" yaml:"handler"`
	Tags    []string `toml:"tags" yaml:"tags"`
}

type Guard struct {
	Roles       []string `toml:"roles" yaml:"roles"`
	Users       []string `toml:"users" yaml:"users"`
	RequireAuth bool     `toml:"require_auth" yaml:"require_auth"`
}

// Open reports whether the guard lets anonymous callers through.
func (g Guard) Open() bool {
	return !g.RequireAuth && len(g.Users) == 0 && len(g.Roles) == 0
}

type Policy struct {
	TimeoutMS int `toml:"timeout_ms" yaml:"timeout_ms"`
}

type HSpec struct {
	Type HandlerType `toml:"type" yaml:"type"`
	Name string      `toml:"name" yaml:"name"`
	// status handlers
	Status int    `toml:"status" yaml:"status"`
	Body   string `toml:"body" yaml:"body"`
}

// normalize path/methods/phase
func (r *Route) normalize() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	if r.Path != "/" {
		r.Path = path.Clean(r.Path)
	}

	ms := r.Methods
	if m := strings.TrimSpace(r.Method); m != "" && !slices.ContainsFunc(ms, func(x string) bool { return strings.EqualFold(strings.TrimSpace(x), m) }) {
		ms = append([]string{m}, ms...)
	}
	out := make([]string, 0, len(ms))
	seen := map[string]bool{}
	for _, m := range ms {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if seen[m] {
			return fmt.Errorf("method %s listed twice", m)
		}
		seen[m] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		out = []string{"GET"}
	}
	r.Methods = out
	r.Method = r.Methods[0]

	if r.Phase == "" {
		r.Phase = phase.Routing
	}
	r.Handler.Type = HandlerType(strings.ToLower(strings.TrimSpace(string(r.Handler.Type))))
	return nil
}

// validate fields that are independent of global state.
func (r *Route) validate(t *phase.Table) error {
	if err := t.Validate(r.Phase); err != nil {
		return err
	}
	switch r.Handler.Type {
	case HandlerInproc:
		if strings.TrimSpace(r.Handler.Name) == "" {
			return errors.New("handler.name required for inproc")
		}
	case HandlerStatus:
		if r.Handler.Status < 100 || r.Handler.Status > 599 {
			return fmt.Errorf("handler.status %d out of range", r.Handler.Status)
		}
	default:
		return fmt.Errorf("unknown handler type %q", r.Handler.Type)
	}
	if r.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	return nil
}
