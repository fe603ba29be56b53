package transport

import (
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"net"
)

// --------------------------------------------------------------------------
// Connectors (dependency injection for transport media)
// --------------------------------------------------------------------------

// IClientConnector defines the transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string, config common.ConnectionConfig) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ConnectionConfig) error
}

// IServerConnector defines the transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener for the configured endpoint
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type
	GetName() string
}

// --------------------------------------------------------------------------
// Event Sink
// --------------------------------------------------------------------------

// IEventSink receives the fire-and-forget notifications of a transporter.
// The Connection implements it and forwards to its subscribers.
type IEventSink interface {
	// Emit publishes an event, it must not block
	Emit(ev common.Event)
}

// --------------------------------------------------------------------------
// Command Transport
// --------------------------------------------------------------------------

// ICommandTransport is a single-flight FIFO command queue bound to one physical connection
type ICommandTransport interface {
	// Submit enqueues a command, it never blocks
	Submit(cmd *common.Command) error
	// Cancel marks every queued or running command owned by scope as cancelled
	// and returns how many were marked
	Cancel(scope common.Scope) int
	// Reset drops the physical link; the next command reconnects
	Reset()
	// Close stops the transporter; queued commands are failed with ErrClosed
	Close() error
}

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ConnHandleFunc serves one accepted server-side connection until it is closed
type ConnHandleFunc func(conn net.Conn)

// IServerTransport accepts connections and serves each with a ConnHandleFunc
type IServerTransport interface {
	// Listen creates the listener and serves until Close is called
	Listen(config common.ServerConfig) error
	// Close stops accepting and closes all served connections
	Close() error
}

// ServerTransportFactory creates a server transport for a connection handler
type ServerTransportFactory func(handler ConnHandleFunc) IServerTransport
