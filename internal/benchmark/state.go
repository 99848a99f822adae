package benchmark

import "fmt"

// State is a phase of a benchmark run.
type State int

const (
	Idle State = iota
	Preparing
	AwaitingRegistration
	Home
	Roaming
	AcquiringContext
	AwaitingSessionOnline
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preparing:
		return "preparing"
	case AwaitingRegistration:
		return "awaiting_registration"
	case Home:
		return "home"
	case Roaming:
		return "roaming"
	case AcquiringContext:
		return "acquiring_context"
	case AwaitingSessionOnline:
		return "awaiting_session_online"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
