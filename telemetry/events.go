// Package telemetry provides population statistics, lifetime tracking and
// experiment output for gridworld runs.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
)

// String returns the stored name of the event type.
func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	}
	return "unknown"
}

// Event represents a single population event of one slot.
type Event struct {
	Type    EventType
	Tick    int
	Slot    int
	Parent  int // Parent slot for births, -1 otherwise
	Lineage int
	Age     int // Age at death
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick, slot, parent, lineage int) Event {
	return Event{
		Type:    EventBirth,
		Tick:    tick,
		Slot:    slot,
		Parent:  parent,
		Lineage: lineage,
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick, slot, lineage, age int) Event {
	return Event{
		Type:    EventDeath,
		Tick:    tick,
		Slot:    slot,
		Parent:  -1,
		Lineage: lineage,
		Age:     age,
	}
}
