package client

import (
	"context"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/zxliu/RedisDesktopManager/lib/events"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
	"github.com/zxliu/RedisDesktopManager/rpc/transport/base"
)

var (
	Logger = logger.GetLogger(common.LoggerClient)
)

// ICommandRunner is the part of a connection that key models and the
// executor depend on
type ICommandRunner interface {
	// Submit enqueues a command without blocking
	Submit(cmd *common.Command) error
	// Cancel marks all queued or running commands of scope as cancelled
	Cancel(scope common.Scope) int
	// Config returns the connection configuration
	Config() common.ConnectionConfig
}

// Stats is a point in time snapshot of a connection's activity
type Stats struct {
	Queued        int64
	Completed     int64
	Cancelled     int64
	Failed        int64
	MeanLatency   time.Duration
	P99Latency    time.Duration
	Rate1         float64
	DroppedEvents uint64
}

// Connection is a logical connection to one key-value server. It owns exactly
// one Transporter, so all commands submitted through it are executed one at a
// time in submission order, and it publishes the transporter's error and log
// events to its subscribers.
type Connection struct {
	config    common.ConnectionConfig
	transport *base.Transporter
	bus       *events.Bus[common.Event]
}

// NewConnection creates a connection. No network activity happens before the
// first command or an explicit Connect.
func NewConnection(config common.ConnectionConfig, connector transport.IClientConnector) *Connection {
	c := &Connection{
		config: config,
		bus:    events.NewBus[common.Event](),
	}
	c.transport = base.NewTransporter(connector, config, c)
	return c
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ICommandRunner)
// --------------------------------------------------------------------------

func (c *Connection) Submit(cmd *common.Command) error {
	return c.transport.Submit(cmd)
}

func (c *Connection) Cancel(scope common.Scope) int {
	return c.transport.Cancel(scope)
}

func (c *Connection) Config() common.ConnectionConfig {
	return c.config
}

// Emit implements transport.IEventSink
func (c *Connection) Emit(ev common.Event) {
	if ev.Type == common.EventError {
		Logger.Debugf("%s > error event: %s", c.config.Name, ev.Message)
	}
	c.bus.Publish(ev)
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Connect establishes the physical link and verifies it with PING
func (c *Connection) Connect(ctx context.Context) error {
	resp, err := Execute(ctx, c, -1, []string{"PING"})
	if err != nil {
		return err
	}
	Logger.Infof("%s > connected, PING -> %s", c.config.Name, resp.Value.Text())
	return nil
}

// NewScope creates a cancellation scope. Calling release cancels every
// command of the scope that has not completed yet.
func (c *Connection) NewScope() (common.Scope, func()) {
	scope := common.NewScope()
	return scope, func() {
		c.Cancel(scope)
	}
}

// Subscribe returns a channel of error and log events. Events are dropped for
// subscribers that do not keep up. Call the returned function to unsubscribe.
func (c *Connection) Subscribe(buffer int) (<-chan common.Event, func()) {
	return c.bus.Subscribe(buffer)
}

// Reset drops the physical link, the next command reconnects
func (c *Connection) Reset() {
	c.transport.Reset()
}

// IsInitialized reports whether the link was established at least once
func (c *Connection) IsInitialized() bool {
	return c.transport.IsInitialized()
}

// IsClosed reports whether the connection was closed
func (c *Connection) IsClosed() bool {
	return c.transport.IsClosed()
}

// Stats returns a snapshot of the connection statistics
func (c *Connection) Stats() Stats {
	registry := c.transport.Registry()
	timer := gometrics.GetOrRegisterTimer(base.MetricCommandDuration, registry).Snapshot()
	meter := gometrics.GetOrRegisterMeter(base.MetricCommandCompleted, registry).Snapshot()

	return Stats{
		Queued:        int64(c.transport.QueueLen()),
		Completed:     meter.Count(),
		Cancelled:     gometrics.GetOrRegisterCounter(base.MetricCommandCancelled, registry).Count(),
		Failed:        gometrics.GetOrRegisterCounter(base.MetricCommandFailed, registry).Count(),
		MeanLatency:   time.Duration(timer.Mean()),
		P99Latency:    time.Duration(timer.Percentile(0.99)),
		Rate1:         meter.Rate1(),
		DroppedEvents: c.bus.Dropped(),
	}
}

// Close stops the transporter and closes all event subscriptions.
// Queued commands fail with common.ErrClosed.
func (c *Connection) Close() error {
	err := c.transport.Close()
	c.bus.Close()
	return err
}
