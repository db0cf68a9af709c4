package models

// SessionState is the lifecycle state of a build session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionRunning
	SessionCompleted
	SessionCancelled
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionRunning:
		return "running"
	case SessionCompleted:
		return "completed"
	case SessionCancelled:
		return "cancelled"
	case SessionFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the state is a final one.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionCompleted, SessionCancelled, SessionFailed:
		return true
	}
	return false
}
