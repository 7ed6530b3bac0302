package fs

import (
	"fmt"
	"time"

	"github.com/aretw0/introspection"
)

// SnapshotState exposes internal state for observability.
type SnapshotState struct {
	Path     string     `json:"path"`
	Format   string     `json:"format"`
	Notes    int        `json:"notes"`
	LastLoad *time.Time `json:"last_load,omitempty"`
	LastSave *time.Time `json:"last_save,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Snapshot) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	format := fmt.Sprintf("%T", s.codec)
	switch s.codec.(type) {
	case JSONCodec:
		format = "json"
	case YAMLCodec:
		format = "yaml"
	}
	return SnapshotState{
		Path:     s.Path,
		Format:   format,
		Notes:    s.lastCount,
		LastLoad: s.lastLoad,
		LastSave: s.lastSave,
	}
}

// ComponentType implements introspection.Component.
func (s *Snapshot) ComponentType() string {
	return "snapshot"
}

var _ introspection.Introspectable = (*Snapshot)(nil)
var _ introspection.Component = (*Snapshot)(nil)
