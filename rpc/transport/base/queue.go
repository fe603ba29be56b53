package base

import (
	"runtime"
	"sync/atomic"

	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// node represents a single element in the queue
type node struct {
	cmd  atomic.Pointer[common.Command]
	next atomic.Pointer[node]
}

// commandQueue is a lock-free multi-producer single-consumer FIFO of commands.
//
// Producers append with a CAS on the tail node, so the queue order is the
// order in which the CAS operations succeed. The single consumer reads the
// front with Peek and removes it with Advance. Unlike a channel, the queue can
// be walked by Range, which is what scope cancellation needs.
type commandQueue struct {
	head   atomic.Pointer[node] // sentinel, head.next is the front
	tail   atomic.Pointer[node]
	length atomic.Int64
	closed atomic.Bool
	notify chan struct{} // capacity 1, signals the consumer after a push
}

// newCommandQueue creates an empty queue
func newCommandQueue() *commandQueue {
	// Create a sentinel node (dummy node at the beginning)
	sentinel := &node{}

	q := &commandQueue{
		notify: make(chan struct{}, 1),
	}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	return q
}

// Push appends cmd. Returns false if cmd is nil or the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *commandQueue) Push(cmd *common.Command) bool {
	if cmd == nil || q.closed.Load() {
		return false
	}

	newNode := &node{}
	newNode.cmd.Store(cmd)

	var backoff uint8 = 0
	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// CAS may fail if another producer already helped, tail is updated either way
				q.tail.CompareAndSwap(tailNode, newNode)
				q.length.Add(1)
				q.signal()
				return true
			}
		} else {
			// help a producer that appended but has not moved the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin at low contention, yield at higher contention
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// Peek returns the front command without removing it, nil if the queue is empty.
// Must only be called by the consumer.
func (q *commandQueue) Peek() *common.Command {
	next := q.head.Load().next.Load()
	if next == nil {
		return nil
	}
	return next.cmd.Load()
}

// Advance removes the front command. Must only be called by the consumer after Peek.
func (q *commandQueue) Advance() {
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return
	}
	// next becomes the new sentinel
	q.head.Store(next)
	next.cmd.Store(nil)
	q.length.Add(-1)
}

// Range calls fn for every queued command in FIFO order until fn returns false.
// Commands pushed concurrently may or may not be visited.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *commandQueue) Range(fn func(cmd *common.Command) bool) {
	current := q.head.Load().next.Load()
	for current != nil {
		if cmd := current.cmd.Load(); cmd != nil {
			if !fn(cmd) {
				return
			}
		}
		current = current.next.Load()
	}
}

// Len returns the number of queued commands
func (q *commandQueue) Len() int {
	return int(q.length.Load())
}

// Wait returns a channel that receives after a push. Spurious wake-ups are possible.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.notify
}

// Close prevents further pushes. Queued commands stay available to the consumer.
func (q *commandQueue) Close() {
	q.closed.Store(true)
	q.signal()
}

// IsClosed returns true if the queue is closed.
func (q *commandQueue) IsClosed() bool {
	return q.closed.Load()
}

func (q *commandQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
