package common

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Command Structure
// --------------------------------------------------------------------------

// Command describes a single request. Apart from the cancellation flag it is
// immutable after construction; use the option functions to configure it.
type Command struct {
	args     [][]byte
	dbIndex  int
	scope    Scope
	callback func(*Response)
	onError  func(error)
	progress func(int)

	state    atomic.Int32
	cancelCh chan struct{}
}

// states of a command, a command leaves cmdPending exactly once
const (
	cmdPending int32 = iota
	cmdCancelled
	cmdDelivered
)

// CommandOption configures a Command
type CommandOption func(*Command)

// WithScope sets the owning scope used for cancellation grouping
func WithScope(scope Scope) CommandOption {
	return func(c *Command) {
		c.scope = scope
	}
}

// WithCallback sets the completion callback, invoked at most once with the response
func WithCallback(fn func(*Response)) CommandOption {
	return func(c *Command) {
		c.callback = fn
	}
}

// WithErrorCallback sets a callback invoked at most once if the command fails
// before a response is available (timeout, connection or protocol failure)
func WithErrorCallback(fn func(error)) CommandOption {
	return func(c *Command) {
		c.onError = fn
	}
}

// WithProgress sets the progress callback, invoked with the number of items
// loaded so far while a multi item reply streams in
func WithProgress(fn func(loaded int)) CommandOption {
	return func(c *Command) {
		c.progress = fn
	}
}

// --------------------------------------------------------------------------
// Command Factory Functions
// --------------------------------------------------------------------------

// NewCommand creates a command from string arguments.
// A negative dbIndex means "whatever database the connection has selected".
func NewCommand(args []string, dbIndex int, opts ...CommandOption) *Command {
	raw := make([][]byte, len(args))
	for i, arg := range args {
		raw[i] = []byte(arg)
	}
	return NewRawCommand(raw, dbIndex, opts...)
}

// NewRawCommand creates a command from binary safe arguments. The slices are not copied.
func NewRawCommand(args [][]byte, dbIndex int, opts ...CommandOption) *Command {
	c := &Command{
		args:     args,
		dbIndex:  dbIndex,
		cancelCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Args returns the argument vector. Callers must not modify it.
func (c *Command) Args() [][]byte {
	return c.args
}

// Name returns the upper-cased command verb
func (c *Command) Name() string {
	if len(c.args) == 0 {
		return ""
	}
	return strings.ToUpper(string(c.args[0]))
}

func (c *Command) DBIndex() int {
	return c.dbIndex
}

func (c *Command) Scope() Scope {
	return c.scope
}

// IsEmpty reports whether the command has no arguments
func (c *Command) IsEmpty() bool {
	return len(c.args) == 0
}

// HasProgress reports whether a progress callback is registered
func (c *Command) HasProgress() bool {
	return c.progress != nil
}

// Cancel marks the command as cancelled. Returns false if it already was
// cancelled or its outcome was already delivered.
func (c *Command) Cancel() bool {
	if !c.state.CompareAndSwap(cmdPending, cmdCancelled) {
		return false
	}
	close(c.cancelCh)
	return true
}

// Cancelled returns a channel that is closed when the command is cancelled
func (c *Command) Cancelled() <-chan struct{} {
	return c.cancelCh
}

func (c *Command) IsCancelled() bool {
	return c.state.Load() == cmdCancelled
}

// IsDone reports whether the command was cancelled or its outcome delivered
func (c *Command) IsDone() bool {
	return c.state.Load() != cmdPending
}

// RawString renders the command for logs. Arguments of AUTH are masked.
func (c *Command) RawString() string {
	var sb strings.Builder
	for i, arg := range c.args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i > 0 && c.Name() == "AUTH" {
			sb.WriteString("*****")
			continue
		}
		if len(arg) > 64 {
			sb.WriteString(strconv.Quote(string(arg[:64])))
			sb.WriteString("...")
			continue
		}
		sb.WriteString(string(arg))
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Delivery (used by the transporter)
// --------------------------------------------------------------------------

// DeliverProgress invokes the progress callback unless the command was cancelled
func (c *Command) DeliverProgress(loaded int) {
	if c.progress != nil && c.state.Load() == cmdPending {
		c.progress(loaded)
	}
}

// DeliverResponse invokes the completion callback exactly once, unless the
// command was cancelled or already delivered. Returns whether it was invoked.
func (c *Command) DeliverResponse(resp *Response) bool {
	if !c.state.CompareAndSwap(cmdPending, cmdDelivered) {
		return false
	}
	if c.callback != nil {
		c.callback(resp)
	}
	return true
}

// DeliverError invokes the error callback exactly once, unless the command was
// cancelled or already delivered. Returns whether it was invoked.
func (c *Command) DeliverError(err error) bool {
	if !c.state.CompareAndSwap(cmdPending, cmdDelivered) {
		return false
	}
	if c.onError != nil {
		c.onError(err)
	}
	return true
}
