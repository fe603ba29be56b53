package common

import "time"

// EventType distinguishes the messages a connection publishes
type EventType int

const (
	// EventError carries a transport level failure
	EventError EventType = iota
	// EventLog carries a diagnostic message
	EventLog
	// EventConnected is published after the physical link was (re)established
	EventConnected
	// EventDisconnected is published when the physical link was reset or closed
	EventDisconnected
)

func (t EventType) String() string {
	switch t {
	case EventError:
		return "error"
	case EventLog:
		return "log"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is a fire-and-forget notification from a connection to its collaborators
type Event struct {
	Type       EventType
	Connection string
	Message    string
	Err        error
	Time       time.Time
}

// NewErrorEvent creates an error event
func NewErrorEvent(connection string, err error) Event {
	return Event{
		Type:       EventError,
		Connection: connection,
		Message:    err.Error(),
		Err:        err,
		Time:       time.Now(),
	}
}

// NewLogEvent creates a log event
func NewLogEvent(connection, msg string) Event {
	return Event{
		Type:       EventLog,
		Connection: connection,
		Message:    msg,
		Time:       time.Now(),
	}
}

// NewStateEvent creates a connected or disconnected event
func NewStateEvent(connection string, t EventType, msg string) Event {
	return Event{
		Type:       t,
		Connection: connection,
		Message:    msg,
		Time:       time.Now(),
	}
}
