package manifest

import (
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-phases/pkg/phase"
)

// validateRoutes normalizes routes and rejects a method registered twice for
// the same path.
func (c *Config) validateRoutes(t *phase.Table) error {
	seen := map[string]int{}
	for i := range c.Routes {
		rt := &c.Routes[i]
		if err := rt.normalize(); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
		if err := rt.validate(t); err != nil {
			return fmt.Errorf("route %d (%s %s): %w", i, strings.Join(rt.Methods, ","), rt.Path, err)
		}
		for _, m := range rt.Methods {
			k := m + " " + rt.Path
			if j, dup := seen[k]; dup {
				return fmt.Errorf("route %d: %s already defined by route %d", i, k, j)
			}
			seen[k] = i
		}
	}
	return nil
}
