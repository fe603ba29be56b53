package mstore

import (
	"testing"
)

// TestExpiryHeapOrder tests that the earliest deadline is always at the front
func TestExpiryHeapOrder(t *testing.T) {
	h := newExpiryHeap()

	h.Schedule("a", 300)
	h.Schedule("b", 100)
	h.Schedule("c", 200)

	if h.Len() != 3 {
		t.Fatalf("Heap should have 3 items, but has %d", h.Len())
	}

	item, ok := h.Peek()
	if !ok || item.Key != "b" {
		t.Errorf("Expected b at the front, got %v", item)
	}

	due := h.PopDue(200)
	if len(due) != 2 || due[0] != "b" || due[1] != "c" {
		t.Errorf("Expected [b c] to be due, got %v", due)
	}
	if h.Len() != 1 {
		t.Errorf("Heap should have 1 item left, but has %d", h.Len())
	}
}

// TestExpiryHeapReschedule tests moving and removing deadlines
func TestExpiryHeapReschedule(t *testing.T) {
	h := newExpiryHeap()
	h.Schedule("a", 100)
	h.Schedule("b", 200)

	// move a behind b
	h.Schedule("a", 300)
	if d, ok := h.Deadline("a"); !ok || d != 300 {
		t.Errorf("Expected deadline 300, got %d (%t)", d, ok)
	}
	if item, _ := h.Peek(); item.Key != "b" {
		t.Errorf("Expected b at the front, got %v", item)
	}

	if !h.Unschedule("b") {
		t.Error("Unschedule(b) should return true")
	}
	if h.Unschedule("b") {
		t.Error("Unschedule(b) twice should return false")
	}
	if _, ok := h.Deadline("b"); ok {
		t.Error("b should have no deadline")
	}

	if due := h.PopDue(299); len(due) != 0 {
		t.Errorf("Nothing should be due, got %v", due)
	}
	if due := h.PopDue(300); len(due) != 1 || due[0] != "a" {
		t.Errorf("Expected [a] to be due, got %v", due)
	}
}

// TestExpiryHeapEmpty tests operations on an empty heap
func TestExpiryHeapEmpty(t *testing.T) {
	h := newExpiryHeap()

	if _, ok := h.Peek(); ok {
		t.Error("Peek on empty heap should return false")
	}
	if due := h.PopDue(1 << 62); due != nil {
		t.Errorf("PopDue on empty heap should return nil, got %v", due)
	}
}
