package common

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

func TestCommandAccessors(t *testing.T) {
	scope := NewScope()
	cmd := NewCommand([]string{"lrange", "l", "0", "9"}, 3, WithScope(scope))

	assert.Equal(t, cmd.Name(), "LRANGE")
	assert.Equal(t, cmd.DBIndex(), 3)
	assert.Equal(t, cmd.Scope(), scope)
	assert.Equal(t, cmd.IsEmpty(), false)
	assert.Equal(t, cmd.HasProgress(), false)
	assert.Equal(t, cmd.RawString(), "lrange l 0 9")

	assert.Equal(t, NewCommand(nil, 0).IsEmpty(), true)
	assert.Equal(t, NewCommand(nil, 0).Scope().IsZero(), true)
	assert.Equal(t, scope.IsZero(), false)
	assert.NotEqual(t, NewScope(), scope)
}

func TestCommandRawStringMasksAuth(t *testing.T) {
	cmd := NewCommand([]string{"AUTH", "user", "secret"}, -1)
	assert.Equal(t, cmd.RawString(), "AUTH ***** *****")
}

func TestCommandDeliverOnce(t *testing.T) {
	var calls, errCalls int
	cmd := NewCommand([]string{"PING"}, -1,
		WithCallback(func(*Response) { calls++ }),
		WithErrorCallback(func(error) { errCalls++ }),
	)

	assert.Equal(t, cmd.DeliverResponse(NewResponse(resp.SimpleString("PONG"))), true)
	assert.Equal(t, cmd.DeliverResponse(NewResponse(resp.SimpleString("PONG"))), false)
	assert.Equal(t, cmd.DeliverError(ErrConnection), false)
	assert.Equal(t, cmd.Cancel(), false)

	assert.Equal(t, calls, 1)
	assert.Equal(t, errCalls, 0)
	assert.Equal(t, cmd.IsDone(), true)
	assert.Equal(t, cmd.IsCancelled(), false)
}

func TestCommandCancelSuppressesCallbacks(t *testing.T) {
	var calls int
	cmd := NewCommand([]string{"PING"}, -1,
		WithCallback(func(*Response) { calls++ }),
		WithErrorCallback(func(error) { calls++ }),
		WithProgress(func(int) { calls++ }),
	)

	assert.Equal(t, cmd.Cancel(), true)
	assert.Equal(t, cmd.Cancel(), false)

	cmd.DeliverProgress(1)
	assert.Equal(t, cmd.DeliverResponse(NewResponse(resp.SimpleString("PONG"))), false)
	assert.Equal(t, cmd.DeliverError(ErrConnection), false)

	assert.Equal(t, calls, 0)
	assert.Equal(t, cmd.IsCancelled(), true)

	select {
	case <-cmd.Cancelled():
	default:
		t.Error("Cancelled() channel should be closed")
	}
}

func TestCommandCancelDeliverRace(t *testing.T) {
	for i := 0; i < 1000; i++ {
		var delivered atomic.Int32
		cmd := NewCommand([]string{"PING"}, -1, WithCallback(func(*Response) { delivered.Add(1) }))

		var wg sync.WaitGroup
		var cancelled bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancelled = cmd.Cancel()
		}()
		go func() {
			defer wg.Done()
			cmd.DeliverResponse(NewResponse(resp.OK()))
		}()
		wg.Wait()

		// exactly one of the two wins
		if cancelled == (delivered.Load() == 1) {
			t.Fatalf("cancelled=%v delivered=%d", cancelled, delivered.Load())
		}
	}
}

func TestResponseErr(t *testing.T) {
	ok := NewResponse(resp.Array(resp.BulkString("a"), resp.BulkString("b")))
	assert.Equal(t, ok.Err(), nil)
	assert.Equal(t, ok.IsErrorReply(), false)
	assert.Equal(t, ok.LoadedItemsCount, 2)

	failed := NewResponse(resp.Error("ERR wrong"))
	assert.Equal(t, failed.IsErrorReply(), true)
	assert.Equal(t, errors.Is(failed.Err(), ErrProtocol), true)
}
