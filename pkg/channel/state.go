package channel

import "fmt"

// State is the lifecycle state of one invocation stream as seen by the
// calling side.
type State int

const (
	// StateOpen means both directions are live.
	StateOpen State = iota
	// StateHalfClosed means the caller signalled end-of-requests; replies may still arrive.
	StateHalfClosed
	// StateClosed means both sides completed cooperatively.
	StateClosed
	// StateFailed means the stream ended abruptly or violated the pairing contract.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfClosed:
		return "half-closed"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}
