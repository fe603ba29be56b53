package base

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	vmetrics "github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
)

var Logger = logger.GetLogger(common.LoggerTransport)

// Names of the per-transporter metrics in Registry()
const (
	MetricCommandDuration  = "command.duration"
	MetricCommandCompleted = "command.completed"
	MetricCommandCancelled = "command.cancelled"
	MetricCommandFailed    = "command.failed"
	MetricQueueDepth       = "queue.depth"
)

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// processMetrics are the process wide Prometheus metrics of one connection name
type processMetrics struct {
	commands  *vmetrics.Counter
	cancelled *vmetrics.Counter
	errors    *vmetrics.Counter
	timeouts  *vmetrics.Counter
	duration  *vmetrics.Histogram
}

func newProcessMetrics(name string) processMetrics {
	label := fmt.Sprintf(`{connection=%q}`, name)
	return processMetrics{
		commands:  vmetrics.GetOrCreateCounter("rdm_commands_total" + label),
		cancelled: vmetrics.GetOrCreateCounter("rdm_commands_cancelled_total" + label),
		errors:    vmetrics.GetOrCreateCounter("rdm_command_errors_total" + label),
		timeouts:  vmetrics.GetOrCreateCounter("rdm_command_timeouts_total" + label),
		duration:  vmetrics.GetOrCreateHistogram("rdm_command_duration_seconds" + label),
	}
}

type noopSink struct{}

func (noopSink) Emit(common.Event) {}

// Transporter drives the request/response cycle of one physical connection.
//
// Commands are executed strictly one at a time in submission order by a
// single worker goroutine. Callbacks are invoked on that goroutine, so they
// must not block on another command of the same transporter.
type Transporter struct {
	connector transport.IClientConnector
	config    common.ConnectionConfig
	sink      transport.IEventSink

	queue   *commandQueue
	running atomic.Pointer[common.Command]

	// physical link, conn is guarded by linkMu, reader, writer and
	// currentDB are only touched by the worker goroutine
	linkMu      sync.Mutex
	conn        net.Conn
	reader      *resp.Reader
	writer      *resp.Writer
	currentDB   int
	initialized atomic.Bool

	closeMu sync.RWMutex
	closed  bool
	stopCh  chan struct{}
	done    chan struct{}

	metrics  processMetrics
	registry gometrics.Registry
}

// -----------------------------------------------------------
// Factory Method
// -----------------------------------------------------------

// NewTransporter creates a transporter and starts its worker goroutine.
// The physical connection is established lazily by the first command.
func NewTransporter(connector transport.IClientConnector, config common.ConnectionConfig, sink transport.IEventSink) *Transporter {
	if sink == nil {
		sink = noopSink{}
	}

	t := &Transporter{
		connector: connector,
		config:    config,
		sink:      sink,
		queue:     newCommandQueue(),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		metrics:   newProcessMetrics(config.Name),
		registry:  gometrics.NewRegistry(),
	}

	go t.run()

	return t
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.ICommandTransport)
// --------------------------------------------------------------------------

func (t *Transporter) Submit(cmd *common.Command) error {
	if cmd == nil {
		return common.NewError(common.RetCProtocolError, "nil command")
	}

	t.closeMu.RLock()
	defer t.closeMu.RUnlock()

	if t.closed {
		return common.ErrClosed
	}

	t.queue.Push(cmd)
	gometrics.GetOrRegisterGauge(MetricQueueDepth, t.registry).Update(int64(t.queue.Len()))
	Logger.Debugf("%s > [addCommand] %s", t.config.Name, cmd.RawString())

	return nil
}

func (t *Transporter) Cancel(scope common.Scope) int {
	count := 0
	mark := func(cmd *common.Command) {
		if cmd.Scope() == scope && cmd.Cancel() {
			count++
		}
	}

	// walk the queue before looking at the running command: the worker
	// publishes a command as running before removing it from the queue
	t.queue.Range(func(cmd *common.Command) bool {
		mark(cmd)
		return true
	})
	if running := t.running.Load(); running != nil {
		mark(running)
	}

	if count > 0 {
		Logger.Debugf("%s > Canceled %d commands of scope %s", t.config.Name, count, scope)
	}
	return count
}

func (t *Transporter) Reset() {
	t.dropLink()
}

func (t *Transporter) Close() error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil
	}
	t.closed = true
	t.closeMu.Unlock()

	t.queue.Close()
	close(t.stopCh)

	// abort an in-flight round-trip
	t.dropLink()

	<-t.done
	return nil
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Name returns the connection name
func (t *Transporter) Name() string {
	return t.config.Name
}

// IsInitialized reports whether the physical link has been established at least once
func (t *Transporter) IsInitialized() bool {
	return t.initialized.Load()
}

// IsClosed reports whether Close was called
func (t *Transporter) IsClosed() bool {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	return t.closed
}

// RunningCommand returns the command currently executing, or nil
func (t *Transporter) RunningCommand() *common.Command {
	return t.running.Load()
}

// QueueLen returns the number of commands waiting to be executed
func (t *Transporter) QueueLen() int {
	return t.queue.Len()
}

// Registry returns the per-transporter metrics registry
func (t *Transporter) Registry() gometrics.Registry {
	return t.registry
}

// --------------------------------------------------------------------------
// Worker
// --------------------------------------------------------------------------

// run executes queued commands one at a time until the transporter is closed
func (t *Transporter) run() {
	defer close(t.done)

	for {
		select {
		case <-t.stopCh:
			t.drain()
			return
		default:
		}

		cmd := t.queue.Peek()
		if cmd == nil {
			select {
			case <-t.queue.Wait():
			case <-t.stopCh:
			}
			continue
		}

		// publish as running before leaving the queue, see Cancel
		t.running.Store(cmd)
		t.queue.Advance()
		gometrics.GetOrRegisterGauge(MetricQueueDepth, t.registry).Update(int64(t.queue.Len()))

		t.process(cmd)

		t.running.Store(nil)
	}
}

// process performs the round-trip of one command and delivers the outcome
func (t *Transporter) process(cmd *common.Command) {
	if cmd.IsCancelled() {
		Logger.Debugf("%s > [runCommand] %s -> cancelled before execution", t.config.Name, cmd.RawString())
		t.countCancelled()
		return
	}

	if cmd.IsEmpty() {
		cmd.DeliverError(common.NewError(common.RetCProtocolError, "empty command"))
		return
	}

	if err := t.ensureConnected(); err != nil {
		t.countFailed()
		cmd.DeliverError(err)
		return
	}

	start := time.Now()
	t.metrics.commands.Inc()

	// switch database if the command targets another one than the link
	if db := cmd.DBIndex(); db >= 0 && db != t.currentDB {
		value, err := t.roundTrip([][]byte{[]byte("SELECT"), []byte(strconv.Itoa(db))}, nil)
		if err != nil {
			t.handleLinkError(cmd, err)
			return
		}
		if value.IsError() {
			// deliver the rejection as the command's reply
			t.deliver(cmd, common.NewResponse(value), start)
			return
		}
		t.currentDB = db
	}

	var progress resp.ProgressFunc
	if cmd.HasProgress() {
		progress = cmd.DeliverProgress
	}

	value, err := t.roundTrip(cmd.Args(), progress)
	if err != nil {
		t.handleLinkError(cmd, err)
		return
	}

	t.deliver(cmd, common.NewResponse(value), start)
}

// deliver hands the response to the command unless it was cancelled meanwhile
func (t *Transporter) deliver(cmd *common.Command, response *common.Response, start time.Time) {
	elapsed := time.Since(start)
	t.metrics.duration.Update(elapsed.Seconds())
	gometrics.GetOrRegisterTimer(MetricCommandDuration, t.registry).Update(elapsed)

	if !cmd.DeliverResponse(response) {
		Logger.Debugf("%s > [runCommand] %s -> response discarded (cancelled)", t.config.Name, cmd.RawString())
		t.countCancelled()
		return
	}

	gometrics.GetOrRegisterMeter(MetricCommandCompleted, t.registry).Mark(1)
	t.sink.Emit(common.NewLogEvent(t.config.Name,
		fmt.Sprintf("%s > [runCommand] %s -> response received", t.config.Name, cmd.RawString())))
}

// handleLinkError reports a failed round-trip and resets the link, so that a
// late reply can never be attributed to the next command
func (t *Transporter) handleLinkError(cmd *common.Command, err error) {
	t.dropLink()

	if t.isStopping() {
		cmd.DeliverError(common.ErrClosed)
		return
	}

	kind := classifyError(err)
	if kind.Code == common.RetCExecutionTimeout {
		t.metrics.timeouts.Inc()
		Logger.Warningf("%s > [runCommand] %s -> execution timeout", t.config.Name, cmd.RawString())
	} else {
		Logger.Errorf("%s > [runCommand] %s -> %v", t.config.Name, cmd.RawString(), err)
	}

	t.countFailed()
	t.sink.Emit(common.NewErrorEvent(t.config.Name, kind))
	cmd.DeliverError(kind)
}

// drain fails every queued command after Close
func (t *Transporter) drain() {
	for cmd := t.queue.Peek(); cmd != nil; cmd = t.queue.Peek() {
		t.queue.Advance()
		cmd.DeliverError(common.ErrClosed)
	}
	t.dropLink()
}

func (t *Transporter) isStopping() bool {
	select {
	case <-t.stopCh:
		return true
	default:
		return false
	}
}

func (t *Transporter) countCancelled() {
	t.metrics.cancelled.Inc()
	gometrics.GetOrRegisterCounter(MetricCommandCancelled, t.registry).Inc(1)
}

func (t *Transporter) countFailed() {
	t.metrics.errors.Inc()
	gometrics.GetOrRegisterCounter(MetricCommandFailed, t.registry).Inc(1)
}

// --------------------------------------------------------------------------
// Physical link
// --------------------------------------------------------------------------

// ensureConnected dials the endpoint if there is no link, retrying with
// exponential backoff, and performs the handshake
func (t *Transporter) ensureConnected() error {
	t.linkMu.Lock()
	connected := t.conn != nil
	t.linkMu.Unlock()
	if connected {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < t.config.Retries(); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(attempt - 1)):
			case <-t.stopCh:
				return common.ErrClosed
			}
		}

		conn, err := t.connector.Connect(t.config.Endpoint, t.config)
		if err != nil {
			lastErr = err
			Logger.Debugf("%s > connect attempt %d/%d failed: %v", t.config.Name, attempt+1, t.config.Retries(), err)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
			conn.Close()
			lastErr = err
			continue
		}

		t.setLink(conn)

		if err := t.handshake(); err != nil {
			t.dropLink()
			lastErr = err
			var rejected *common.Error
			if errors.As(err, &rejected) && rejected.Code == common.RetCProtocolError {
				// the server rejected us, retrying will not help
				break
			}
			continue
		}

		t.initialized.Store(true)
		Logger.Infof("%s > connected to %s using %s transport", t.config.Name, t.config.Endpoint, t.connector.GetName())
		t.sink.Emit(common.NewStateEvent(t.config.Name, common.EventConnected, "connected to "+t.config.Endpoint))
		return nil
	}

	err := common.WrapError(common.RetCConnectionError,
		fmt.Sprintf("failed to connect to %s after %d attempts", t.config.Endpoint, t.config.Retries()), lastErr)
	Logger.Errorf("%s > %v", t.config.Name, err)
	t.sink.Emit(common.NewErrorEvent(t.config.Name, err))
	return err
}

// handshake authenticates the fresh link if a password is configured
func (t *Transporter) handshake() error {
	if t.config.Password == "" {
		return nil
	}

	value, err := t.roundTrip([][]byte{[]byte("AUTH"), []byte(t.config.Password)}, nil)
	if err != nil {
		return err
	}
	if value.IsError() {
		return common.NewError(common.RetCProtocolError, "authentication failed: "+value.Text())
	}
	return nil
}

// roundTrip writes one command and reads its reply within the execution timeout
func (t *Transporter) roundTrip(args [][]byte, progress resp.ProgressFunc) (resp.Value, error) {
	t.linkMu.Lock()
	conn := t.conn
	t.linkMu.Unlock()
	if conn == nil {
		return resp.Value{}, common.NewError(common.RetCConnectionError, "connection was reset")
	}

	deadline := time.Time{}
	if timeout := t.config.ExecutionTimeout(); timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, fmt.Errorf("failed to set deadline: %w", err)
	}

	if err := t.writer.WriteCommand(args); err != nil {
		return resp.Value{}, err
	}
	if err := t.writer.Flush(); err != nil {
		return resp.Value{}, err
	}

	return t.reader.ReadValue(progress)
}

func (t *Transporter) setLink(conn net.Conn) {
	t.linkMu.Lock()
	defer t.linkMu.Unlock()

	t.conn = conn
	t.reader = resp.NewReader(conn)
	t.writer = resp.NewWriter(conn)
	t.currentDB = 0
}

// dropLink closes and forgets the link. Safe to call from any goroutine, an
// in-flight round-trip fails and the next command reconnects.
func (t *Transporter) dropLink() {
	t.linkMu.Lock()
	conn := t.conn
	t.conn = nil
	t.linkMu.Unlock()

	if conn != nil {
		conn.Close()
		t.sink.Emit(common.NewStateEvent(t.config.Name, common.EventDisconnected, "disconnected from "+t.config.Endpoint))
	}
}
