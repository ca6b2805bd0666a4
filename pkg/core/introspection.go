package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	LastRunID string        `json:"last_run_id,omitempty"`
	States    map[State]int `json:"states"`
	SinkType  string        `json:"sink_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sinkType := "sink"
	if comp, ok := s.sink.(introspection.Component); ok {
		sinkType = comp.ComponentType()
	}

	states := make(map[State]int, len(s.lastStates))
	for k, v := range s.lastStates {
		states[k] = v
	}

	return ServiceState{
		Processed: s.processed,
		Failed:    s.failed,
		LastRunID: s.lastRunID,
		States:    states,
		SinkType:  sinkType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "pipeline"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
