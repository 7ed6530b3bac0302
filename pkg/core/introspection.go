package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// SyncState exposes the coordinator's internal state for observability.
type SyncState struct {
	Conn     string     `json:"conn"`
	Remote   bool       `json:"remote"`
	Interval string     `json:"interval"`
	Session  uint64     `json:"session"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Coordinator) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := SyncState{
		Conn:     c.state.String(),
		Remote:   c.remote != nil,
		Interval: c.interval.String(),
		Session:  c.session,
	}
	if !c.lastSync.IsZero() {
		t := c.lastSync
		st.LastSync = &t
	}
	return st
}

// ComponentType implements introspection.Component.
func (c *Coordinator) ComponentType() string {
	return "coordinator"
}

// ServiceState exposes the service's internal state for observability.
type ServiceState struct {
	Notes       int       `json:"notes"`
	Pending     int       `json:"pending"`
	Subscribers int       `json:"subscribers"`
	Persistent  bool      `json:"persistent"`
	Sync        SyncState `json:"sync"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	st := ServiceState{
		Notes:       s.store.Len(),
		Pending:     len(s.store.Pending()),
		Subscribers: s.events.Subscribers(),
		Persistent:  s.persister != nil,
	}
	if sync, ok := s.sync.State().(SyncState); ok {
		st.Sync = sync
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
var _ introspection.Introspectable = (*Coordinator)(nil)
var _ introspection.Component = (*Coordinator)(nil)
