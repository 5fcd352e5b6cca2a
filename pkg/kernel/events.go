package kernel

// EventKind identifies a lifecycle or scheduling event.
type EventKind string

const (
	EventFork   EventKind = "fork"
	EventExit   EventKind = "exit"
	EventReap   EventKind = "reap"
	EventKill   EventKind = "kill"
	EventDemote EventKind = "demote"
	EventBoost  EventKind = "boost"
)

// Event is delivered to an EventSink. Info is set on exit events and holds
// the final accounting of the record.
type Event struct {
	Kind   EventKind
	Tick   uint64
	PID    int
	Parent int
	Level  Level
	Status int
	Info   *ProcInfo
}

// EventSink receives kernel events. Emit may be called with kernel locks
// held and must not call back into the kernel.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

// Emit calls f(e).
func (f EventSinkFunc) Emit(e Event) { f(e) }
