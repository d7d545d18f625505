// pkg/core/load.go
package core

import (
	"fmt"

	manifest "github.com/joeydtaylor/steeze-phases/pkg/manifest"
)

// LoadConfig reads a manifest and checks the parts manifest validation cannot
// see: catalogue names and registered inproc handlers.
func LoadConfig(path string) (manifest.Config, error) {
	cfg, err := manifest.Load(path)
	if err != nil {
		return manifest.Config{}, err
	}
	for _, m := range cfg.Middleware {
		if _, ok := catalogue[m.Name]; !ok {
			return manifest.Config{}, fmt.Errorf("%s: %w %q", path, ErrUnknownMiddleware, m.Name)
		}
	}
	for _, rt := range cfg.Routes {
		if rt.Handler.Type != manifest.HandlerInproc {
			continue
		}
		if _, ok := LookupInproc(rt.Handler.Name); !ok {
			return manifest.Config{}, fmt.Errorf("%s: route %s: inproc handler %q is not registered", path, rt.Path, rt.Handler.Name)
		}
	}
	return cfg, nil
}
