package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// SinkState exposes internal state for observability.
type SinkState struct {
	Root      string     `json:"root"`
	SystemDir string     `json:"system_dir"`
	DryRun    bool       `json:"dry_run"`
	IndexSize int        `json:"index_size"`
	Written   int        `json:"written"`
	Unchanged int        `json:"unchanged"`
	LastWrite *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Sink) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SinkState{
		Root:      s.config.Root,
		SystemDir: s.config.SystemDir,
		DryRun:    s.config.DryRun,
		IndexSize: s.index.Len(),
		Written:   s.stats.Written,
		Unchanged: s.stats.Unchanged,
		LastWrite: s.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (s *Sink) ComponentType() string {
	return "sink"
}

var _ introspection.Introspectable = (*Sink)(nil)
var _ introspection.Component = (*Sink)(nil)
