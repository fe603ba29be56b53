package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus[int]()

	a, unsubA := bus.Subscribe(4)
	b, unsubB := bus.Subscribe(4)
	defer unsubA()
	defer unsubB()

	bus.Publish(1)
	bus.Publish(2)

	for _, ch := range []<-chan int{a, b} {
		for want := 1; want <= 2; want++ {
			select {
			case got := <-ch:
				if got != want {
					t.Errorf("got %d, want %d", got, want)
				}
			case <-time.After(100 * time.Millisecond):
				t.Fatalf("timeout waiting for event %d", want)
			}
		}
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := NewBus[string]()
	ch, unsub := bus.Subscribe(1)
	defer unsub()

	bus.Publish("first")
	bus.Publish("second")

	if got := <-ch; got != "first" {
		t.Errorf("got %q, want first", got)
	}
	if bus.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", bus.Dropped())
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus[int]()
	ch, unsub := bus.Subscribe(1)

	unsub()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	if bus.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", bus.Subscribers())
	}

	// publishing without subscribers must not panic
	bus.Publish(1)
}

func TestClose(t *testing.T) {
	bus := NewBus[int]()
	ch, unsub := bus.Subscribe(1)
	bus.Close()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}

	late, _ := bus.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("subscription after Close should be closed")
	}
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus[int]()
	ch, unsub := bus.Subscribe(1000)
	defer unsub()

	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				bus.Publish(i)
			}
		}()
	}
	wg.Wait()

	if len(ch) != 1000 {
		t.Errorf("received %d events, want 1000", len(ch))
	}
}
