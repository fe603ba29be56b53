package mstore

import (
	"container/heap"
	"strconv"
)

// expiry is a key scheduled for removal at a unix millisecond deadline
type expiry struct {
	Key      string
	Deadline int64
	index    int // Index in the heap, maintained by heap package
}

func (e *expiry) String() string {
	return "{Key: " + e.Key + ", Deadline: " + strconv.FormatInt(e.Deadline, 10) + "}"
}

// expiryHeap is a min-heap of deadlines with O(1) access by key. It answers
// both "what is the TTL of key" and "which keys are due" for one database.
//
// Not thread-safe, the owning database serializes access.
type expiryHeap struct {
	items    []*expiry
	itemsMap map[string]*expiry
}

func newExpiryHeap() *expiryHeap {
	return &expiryHeap{
		items:    make([]*expiry, 0),
		itemsMap: make(map[string]*expiry),
	}
}

// Len returns the number of scheduled keys (part of heap.Interface)
func (h *expiryHeap) Len() int { return len(h.items) }

// Less orders by deadline, earliest first (part of heap.Interface)
func (h *expiryHeap) Less(i, j int) bool {
	return h.items[i].Deadline < h.items[j].Deadline
}

// Swap exchanges items at positions i and j (part of heap.Interface)
func (h *expiryHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

// Push adds an item to the heap (part of heap.Interface)
func (h *expiryHeap) Push(x interface{}) {
	item := x.(*expiry)
	item.index = len(h.items)
	h.items = append(h.items, item)
	h.itemsMap[item.Key] = item
}

// Pop removes and returns the earliest item (part of heap.Interface)
func (h *expiryHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // Avoid memory leak
	item.index = -1 // For safety
	h.items = old[:n-1]
	delete(h.itemsMap, item.Key)
	return item
}

// Schedule sets or moves the deadline of key
func (h *expiryHeap) Schedule(key string, deadline int64) {
	if item, exists := h.itemsMap[key]; exists {
		item.Deadline = deadline
		heap.Fix(h, item.index)
		return
	}
	heap.Push(h, &expiry{Key: key, Deadline: deadline})
}

// Unschedule removes the deadline of key, returns false if it had none
func (h *expiryHeap) Unschedule(key string) bool {
	item, exists := h.itemsMap[key]
	if !exists {
		return false
	}
	heap.Remove(h, item.index)
	return true
}

// Deadline returns the deadline of key
func (h *expiryHeap) Deadline(key string) (int64, bool) {
	item, exists := h.itemsMap[key]
	if !exists {
		return 0, false
	}
	return item.Deadline, true
}

// Peek returns the earliest item without removing it
func (h *expiryHeap) Peek() (*expiry, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0], true
}

// PopDue removes and returns all keys whose deadline is <= now
func (h *expiryHeap) PopDue(now int64) []string {
	var due []string
	for {
		item, ok := h.Peek()
		if !ok || item.Deadline > now {
			return due
		}
		heap.Pop(h)
		due = append(due, item.Key)
	}
}
