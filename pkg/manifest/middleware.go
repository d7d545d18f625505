package manifest

import (
	"errors"
	"path"
	"strings"
)

// Middleware names one catalogue middleware and where it runs. An empty Phase
// falls back to the middleware's default phase.
type Middleware struct {
	Name  string `toml:"name" yaml:"name"`
	Phase string `toml:"phase" yaml:"phase"`
	Path  string `toml:"path" yaml:"path"`

	// heartbeat
	Endpoint string `toml:"endpoint" yaml:"endpoint"`
	// compress
	Level int `toml:"level" yaml:"level"`
	// request_size
	MaxBytes int64 `toml:"max_bytes" yaml:"max_bytes"`
	// access_log
	BodyPaths []string `toml:"body_paths" yaml:"body_paths"`
	// metrics
	SkipPaths []string `toml:"skip_paths" yaml:"skip_paths"`
}

// Static serves Dir under Mount.
type Static struct {
	Mount string `toml:"mount" yaml:"mount"`
	Dir   string `toml:"dir" yaml:"dir"`
	Phase string `toml:"phase" yaml:"phase"`
}

func (s *Static) normalize() error {
	if strings.TrimSpace(s.Mount) == "" {
		return errors.New("mount is required")
	}
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("dir is required")
	}
	if !strings.HasPrefix(s.Mount, "/") {
		s.Mount = "/" + s.Mount
	}
	s.Mount = path.Clean(s.Mount)
	if s.Phase == "" {
		s.Phase = "static"
	}
	return nil
}
