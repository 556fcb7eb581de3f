package websocket

// SessionState tracks one socket from dial to teardown. Closed and Failed are
// terminal: a session never reopens in place.
type SessionState int

const (
	StateIdle SessionState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s SessionState) IsTerminal() bool {
	return s == StateClosed || s == StateFailed
}
