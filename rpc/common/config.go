package common

import (
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultExecutionTimeoutMs = 60_000
	DefaultConnectTimeoutMs   = 5_000
	DefaultRetryCount         = 3
	DefaultPageSize           = 1000
)

// --------------------------------------------------------------------------
// Client connection configuration struct
// --------------------------------------------------------------------------

// ConnectionConfig describes one physical connection to a key-value server.
type ConnectionConfig struct {
	// Name identifies the connection in logs, events and metrics
	Name string
	// Endpoint is the address to dial (host:port, socket path, ...)
	Endpoint string
	// Password is sent with AUTH after connecting, if not empty
	Password string

	// ExecutionTimeoutMs is the time after which a running command is considered hung (0 disables)
	ExecutionTimeoutMs int
	// ConnectTimeoutMs bounds a single dial attempt (0 disables)
	ConnectTimeoutMs int
	// RetryCount is how many dial attempts are made before a command fails
	RetryCount int

	// PageSize is the number of rows key models fetch per round-trip
	PageSize int

	// TCP socket options (ignored by other transports)
	TCPNoDelay      bool
	TCPKeepAliveSec int
}

// DefaultConnectionConfig returns a config with all timing options populated
func DefaultConnectionConfig(name, endpoint string) ConnectionConfig {
	return ConnectionConfig{
		Name:               name,
		Endpoint:           endpoint,
		ExecutionTimeoutMs: DefaultExecutionTimeoutMs,
		ConnectTimeoutMs:   DefaultConnectTimeoutMs,
		RetryCount:         DefaultRetryCount,
		PageSize:           DefaultPageSize,
		TCPNoDelay:         true,
	}
}

// ExecutionTimeout returns the execution timeout as duration (0 = no timeout)
func (c *ConnectionConfig) ExecutionTimeout() time.Duration {
	if c.ExecutionTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.ExecutionTimeoutMs) * time.Millisecond
}

// ConnectTimeout returns the dial timeout as duration (0 = no timeout)
func (c *ConnectionConfig) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

// Retries returns the number of dial attempts, at least one
func (c *ConnectionConfig) Retries() int {
	if c.RetryCount < 1 {
		return 1
	}
	return c.RetryCount
}

// RowsPerPage returns the page size used by key models
func (c *ConnectionConfig) RowsPerPage() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

// String returns a formatted string representation of the connection configuration
func (c *ConnectionConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Connection")
	addField("Name", c.Name)
	addField("Endpoint", c.Endpoint)
	addField("Auth", fmt.Sprintf("%t", c.Password != ""))

	addSection("Timing")
	addField("Execution Timeout", fmt.Sprintf("%d ms", c.ExecutionTimeoutMs))
	addField("Connect Timeout", fmt.Sprintf("%d ms", c.ConnectTimeoutMs))
	addField("Retry Count", fmt.Sprintf("%d", c.Retries()))

	addSection("Key Models")
	addField("Page Size", fmt.Sprintf("%d", c.RowsPerPage()))

	return sb.String()
}

// --------------------------------------------------------------------------
// In-memory server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds the settings of the bundled in-memory server
type ServerConfig struct {
	// Endpoint is the listen address
	Endpoint string
	// Password required via AUTH, empty disables authentication
	Password string
	// Databases is the number of selectable db indexes
	Databases int
	// TimeoutSecond closes idle client connections (0 disables)
	TimeoutSecond int64
	// LogLevel is one of debug, info, warn, error
	LogLevel string
}

// String returns a formatted string representation of the server configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	sb.WriteString("\nSERVER\n")
	addField("Endpoint", c.Endpoint)
	addField("Auth", fmt.Sprintf("%t", c.Password != ""))
	addField("Databases", fmt.Sprintf("%d", c.Databases))
	addField("Idle Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Log Level", c.LogLevel)

	return sb.String()
}
