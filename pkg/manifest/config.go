package manifest

import (
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-phases/pkg/phase"
)

// Config is the top-level manifest.
type Config struct {
	// Phases replaces the default phase list when set. It must contain "routing".
	Phases     []string     `toml:"phases" yaml:"phases"`
	Middleware []Middleware `toml:"middleware" yaml:"middleware"`
	Routes     []Route      `toml:"route" yaml:"routes"`
	Static     []Static     `toml:"static" yaml:"static"`
}

// Table returns the phase table the manifest asks for.
func (c *Config) Table() (*phase.Table, error) {
	if len(c.Phases) == 0 {
		return phase.Default(), nil
	}
	t, err := phase.NewTable(c.Phases...)
	if err != nil {
		return nil, err
	}
	if !t.Has(phase.Routing) {
		return nil, fmt.Errorf("phases must include %q", phase.Routing)
	}
	return t, nil
}

// Validate normalizes every entry in place and checks it against the phase table.
func (c *Config) Validate() error {
	t, err := c.Table()
	if err != nil {
		return err
	}
	if len(c.Middleware) == 0 && len(c.Routes) == 0 && len(c.Static) == 0 {
		return fmt.Errorf("manifest defines no middleware, routes or static mounts")
	}
	if err := c.validateMiddleware(t); err != nil {
		return err
	}
	if err := c.validateRoutes(t); err != nil {
		return err
	}
	return c.validateStatic(t)
}

func (c *Config) validateMiddleware(t *phase.Table) error {
	for i := range c.Middleware {
		m := &c.Middleware[i]
		m.Name = strings.ToLower(strings.TrimSpace(m.Name))
		if m.Name == "" {
			return fmt.Errorf("middleware %d: name is required", i)
		}
		if m.Path == "" {
			m.Path = "/"
		}
		if !strings.HasPrefix(m.Path, "/") {
			return fmt.Errorf("middleware %d (%s): path %q must begin with '/'", i, m.Name, m.Path)
		}
		if m.Phase != "" {
			if err := t.Validate(m.Phase); err != nil {
				return fmt.Errorf("middleware %d (%s): %w", i, m.Name, err)
			}
		}
		if m.Level < 0 || m.MaxBytes < 0 {
			return fmt.Errorf("middleware %d (%s): level and max_bytes must be >= 0", i, m.Name)
		}
	}
	return nil
}

func (c *Config) validateStatic(t *phase.Table) error {
	seen := map[string]bool{}
	for i := range c.Static {
		s := &c.Static[i]
		if err := s.normalize(); err != nil {
			return fmt.Errorf("static %d: %w", i, err)
		}
		if err := t.Validate(s.Phase); err != nil {
			return fmt.Errorf("static %d (%s): %w", i, s.Mount, err)
		}
		if seen[s.Mount] {
			return fmt.Errorf("static %d: mount %s defined twice", i, s.Mount)
		}
		seen[s.Mount] = true
	}
	return nil
}
