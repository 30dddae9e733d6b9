package probe

import "fmt"

// Outcome is the result of a probe raced against a deadline. Its value is
// the process exit code the probe CLI uses.
type Outcome int

const (
	Healthy Outcome = iota
	Unhealthy
	CallFailed
	TimedOut
)

func (o Outcome) ExitCode() int {
	return int(o)
}

func (o Outcome) String() string {
	switch o {
	case Healthy:
		return "healthy"
	case Unhealthy:
		return "unhealthy"
	case CallFailed:
		return "call failed"
	case TimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
