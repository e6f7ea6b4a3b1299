package sim

import "battery-swap-sim/internal/model"

// EventSink receives telemetry events from stations. Stations get a sink at
// construction instead of a back-reference to the orchestrator.
type EventSink interface {
	Emit(e model.Event)
}

// Telemetry is the orchestrator-owned append-only event log. It is only
// written from scheduler-driven continuations, so no locking is needed.
type Telemetry struct {
	events []model.Event
}

func NewTelemetry() *Telemetry {
	return &Telemetry{}
}

func (t *Telemetry) Emit(e model.Event) {
	t.events = append(t.events, e)
}

// Events returns a copy of the trace in emission order.
func (t *Telemetry) Events() []model.Event {
	out := make([]model.Event, len(t.events))
	copy(out, t.events)
	return out
}

// ByType returns the events of one type, in emission order.
func (t *Telemetry) ByType(et model.EventType) []model.Event {
	var out []model.Event
	for _, e := range t.events {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// CountByType returns per-type event counts.
func (t *Telemetry) CountByType() map[model.EventType]int {
	counts := make(map[model.EventType]int)
	for _, e := range t.events {
		counts[e.Type]++
	}
	return counts
}

// Len returns the number of recorded events.
func (t *Telemetry) Len() int { return len(t.events) }
