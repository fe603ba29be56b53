package client

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/zxliu/RedisDesktopManager/lib/store"
	"github.com/zxliu/RedisDesktopManager/lib/store/mstore"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/server"
	"github.com/zxliu/RedisDesktopManager/rpc/transport/mem"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

func newMemConnector(t *testing.T) *mem.Connector {
	t.Helper()
	st := mstore.NewMemoryStore(store.DefaultOptions())
	t.Cleanup(st.Close)
	srv := server.NewRPCServer(common.ServerConfig{Databases: 16}, st)
	return mem.NewClientConnector(srv.ServeConn)
}

func newTestConnection(t *testing.T, connector *mem.Connector, mutate func(*common.ConnectionConfig)) *Connection {
	t.Helper()
	config := common.DefaultConnectionConfig(t.Name(), "mem")
	config.ExecutionTimeoutMs = 2000
	if mutate != nil {
		mutate(&config)
	}
	conn := NewConnection(config, connector)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// silentConnector accepts commands but never answers
func silentConnector() *mem.Connector {
	return mem.NewClientConnector(func(c net.Conn) {
		_, _ = io.Copy(io.Discard, c)
	})
}

// --------------------------------------------------------------------------
// Executor
// --------------------------------------------------------------------------

func TestExecute(t *testing.T) {
	conn := newTestConnection(t, newMemConnector(t), nil)
	ctx := context.Background()

	tests := []struct {
		args    []string
		db      int
		want    string
		wantErr error
	}{
		{[]string{"SET", "k", "v"}, 0, "OK", nil},
		{[]string{"GET", "k"}, 0, "v", nil},
		{[]string{"GET", "k"}, 3, "", nil},
		{[]string{"SET", "k", "three"}, 3, "OK", nil},
		{[]string{"GET", "k"}, 3, "three", nil},
		{[]string{"GET", "k"}, -1, "three", nil},
		{[]string{"NOPE"}, 0, "ERR unknown command 'nope'", common.ErrProtocol},
	}

	for _, tc := range tests {
		resp, err := Execute(ctx, conn, tc.db, tc.args)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("%v: expected %v, got %v", tc.args, tc.wantErr, err)
			}
		} else if err != nil {
			t.Errorf("%v: unexpected error %v", tc.args, err)
			continue
		}
		if resp.Value.Text() != tc.want {
			t.Errorf("%v: got %q, want %q", tc.args, resp.Value.Text(), tc.want)
		}
	}
}

func TestExecuteInt(t *testing.T) {
	conn := newTestConnection(t, newMemConnector(t), nil)
	ctx := context.Background()

	n, err := ExecuteInt(ctx, conn, 0, "RPUSH", "l", "a", "b")
	if err != nil || n != 2 {
		t.Errorf("RPUSH: got %d, %v", n, err)
	}
	if _, err := ExecuteInt(ctx, conn, 0, "GET", "missing"); !errors.Is(err, common.ErrProtocol) {
		t.Errorf("expected ProtocolError for a non-integer reply, got %v", err)
	}
}

func TestExecuteContextTimeout(t *testing.T) {
	conn := newTestConnection(t, silentConnector(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Execute(ctx, conn, -1, []string{"PING"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Execute did not return when the context ended")
	}
}

func TestExecuteScopeCancel(t *testing.T) {
	conn := newTestConnection(t, silentConnector(), nil)
	scope, release := conn.NewScope()

	errCh := make(chan error, 1)
	go func() {
		_, err := Execute(context.Background(), conn, -1, []string{"PING"}, common.WithScope(scope))
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	release()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after the scope was released")
	}
}

func TestExecuteConcurrentCallers(t *testing.T) {
	conn := newTestConnection(t, newMemConnector(t), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := Execute(ctx, conn, 0, []string{"RPUSH", "l", strconv.Itoa(i)}); err != nil {
					t.Errorf("RPUSH failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	n, err := ExecuteInt(ctx, conn, 0, "LLEN", "l")
	if err != nil || n != 200 {
		t.Errorf("LLEN = %d, %v, want 200", n, err)
	}
}

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

func TestConnectionConnect(t *testing.T) {
	connector := newMemConnector(t)
	conn := newTestConnection(t, connector, nil)

	if conn.IsInitialized() {
		t.Error("connection should be lazy")
	}
	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !conn.IsInitialized() || connector.Dials() != 1 {
		t.Errorf("expected one dial, got %d", connector.Dials())
	}
}

func TestConnectionEvents(t *testing.T) {
	conn := newTestConnection(t, silentConnector(), func(c *common.ConnectionConfig) {
		c.ExecutionTimeoutMs = 50
	})
	events, unsubscribe := conn.Subscribe(16)
	defer unsubscribe()

	_, err := Execute(context.Background(), conn, -1, []string{"PING"})
	if !errors.Is(err, common.ErrExecutionTimeout) {
		t.Fatalf("expected ExecutionTimeout, got %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != common.EventError {
				continue
			}
			if !errors.Is(ev.Err, common.ErrExecutionTimeout) {
				t.Errorf("unexpected error event %v", ev.Err)
			}
			if ev.Connection != t.Name() {
				t.Errorf("event connection = %q, want %q", ev.Connection, t.Name())
			}
			return
		case <-deadline:
			t.Fatal("no error event received")
		}
	}
}

func TestConnectionLogEvents(t *testing.T) {
	conn := newTestConnection(t, newMemConnector(t), nil)
	events, unsubscribe := conn.Subscribe(16)
	defer unsubscribe()

	if _, err := Execute(context.Background(), conn, -1, []string{"ECHO", "hi"}); err != nil {
		t.Fatal(err)
	}

	want := t.Name() + " > [runCommand] ECHO hi -> response received"
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == common.EventLog {
				if ev.Message != want {
					t.Errorf("log event %q, want %q", ev.Message, want)
				}
				return
			}
		case <-deadline:
			t.Fatal("no log event received")
		}
	}
}

func TestConnectionStats(t *testing.T) {
	conn := newTestConnection(t, newMemConnector(t), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := Execute(ctx, conn, -1, []string{"PING"}); err != nil {
			t.Fatal(err)
		}
	}
	_, _ = Execute(ctx, conn, -1, []string{"NOPE"})

	stats := conn.Stats()
	if stats.Completed != 6 {
		t.Errorf("Completed = %d, want 6", stats.Completed)
	}
	if stats.Failed != 0 || stats.Cancelled != 0 {
		t.Errorf("unexpected failures %+v", stats)
	}
	if stats.MeanLatency <= 0 {
		t.Errorf("MeanLatency should be positive, got %v", stats.MeanLatency)
	}
}

func TestConnectionClose(t *testing.T) {
	conn := newTestConnection(t, newMemConnector(t), nil)
	events, _ := conn.Subscribe(1)

	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	if !conn.IsClosed() {
		t.Error("IsClosed should be true")
	}
	if _, err := Execute(context.Background(), conn, -1, []string{"PING"}); !errors.Is(err, common.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, ok := <-events; ok {
		t.Error("event channel should be closed")
	}
}

// --------------------------------------------------------------------------
// Pool
// --------------------------------------------------------------------------

func TestPool(t *testing.T) {
	ctx := context.Background()
	connector := newMemConnector(t)
	config := common.DefaultConnectionConfig("pool", "mem")
	p := NewPool(ctx, config, connector, 2)
	defer p.Close(ctx)

	a, err := p.Borrow(ctx)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Borrow(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("borrowed the same connection twice")
	}
	if p.Active() != 2 {
		t.Errorf("Active() = %d, want 2", p.Active())
	}

	// the pool is exhausted
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := p.Borrow(short); err == nil {
		t.Error("Borrow from an exhausted pool should fail when the context ends")
	}

	if err := p.Return(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := p.Return(ctx, b); err != nil {
		t.Fatal(err)
	}
	if p.Idle() != 2 {
		t.Errorf("Idle() = %d, want 2", p.Idle())
	}

	err = p.Do(ctx, func(conn *Connection) error {
		_, err := Execute(ctx, conn, 0, []string{"SET", "pooled", "yes"})
		return err
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	var got string
	_ = p.Do(ctx, func(conn *Connection) error {
		resp, err := Execute(ctx, conn, 0, []string{"GET", "pooled"})
		if err == nil {
			got = resp.Value.Text()
		}
		return err
	})
	if got != "yes" {
		t.Errorf("GET pooled = %q, want yes", got)
	}
}

func TestPoolInvalidatesBrokenConnections(t *testing.T) {
	ctx := context.Background()
	p := NewPool(ctx, common.DefaultConnectionConfig("pool", "mem"), newMemConnector(t), 1)
	defer p.Close(ctx)

	var first *Connection
	err := p.Do(ctx, func(conn *Connection) error {
		first = conn
		return common.ErrConnection
	})
	if !errors.Is(err, common.ErrConnection) {
		t.Fatalf("Do should pass the error through, got %v", err)
	}
	if !first.IsClosed() {
		t.Error("invalidated connection should be closed")
	}

	_ = p.Do(ctx, func(conn *Connection) error {
		if conn == first {
			t.Error("pool handed out an invalidated connection")
		}
		return nil
	})
}
