package server

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/lib/store"
	"github.com/zxliu/RedisDesktopManager/lib/store/mstore"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

type testClient struct {
	conn net.Conn
	r    *resp.Reader
	w    *resp.Writer
}

func (c *testClient) do(t *testing.T, line string) resp.Value {
	t.Helper()
	fields := strings.Fields(line)
	args := make([][]byte, len(fields))
	for i, f := range fields {
		args[i] = []byte(f)
	}
	_ = c.conn.SetDeadline(time.Now().Add(2 * time.Second))
	if err := c.w.WriteCommand(args); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
	if err := c.w.Flush(); err != nil {
		t.Fatalf("flush %q: %v", line, err)
	}
	v, err := c.r.ReadValue(nil)
	if err != nil {
		t.Fatalf("read reply of %q: %v", line, err)
	}
	return v
}

func newTestServer(t *testing.T, password string) (*RPCServer, func() *testClient) {
	t.Helper()
	st := mstore.NewMemoryStore(store.Options{Databases: 2})
	t.Cleanup(st.Close)

	s := NewRPCServer(common.ServerConfig{Password: password, Databases: 2}, st)

	dial := func() *testClient {
		client, server := net.Pipe()
		go func() {
			defer server.Close()
			s.ServeConn(server)
		}()
		t.Cleanup(func() { client.Close() })
		return &testClient{conn: client, r: resp.NewReader(client), w: resp.NewWriter(client)}
	}
	return s, dial
}

func TestServeConnSelect(t *testing.T) {
	_, dial := newTestServer(t, "")
	c := dial()

	tests := []struct {
		cmd  string
		want string
	}{
		{"SET k zero", "OK"},
		{"SELECT 1", "OK"},
		{"GET k", ""},
		{"SET k one", "OK"},
		{"SELECT 0", "OK"},
		{"GET k", "zero"},
		{"SELECT 2", "ERR DB index is out of range"},
		{"SELECT x", "ERR invalid DB index"},
		{"AUTH pw", "ERR Client sent AUTH, but no password is set"},
	}
	for _, tc := range tests {
		if got := c.do(t, tc.cmd).Text(); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.cmd, got, tc.want)
		}
	}
}

func TestServeConnAuth(t *testing.T) {
	_, dial := newTestServer(t, "secret")
	c := dial()

	if v := c.do(t, "GET k"); !v.IsError() || !strings.HasPrefix(v.Text(), "NOAUTH") {
		t.Errorf("expected NOAUTH, got %s", v)
	}
	if v := c.do(t, "AUTH wrong"); !v.IsError() {
		t.Errorf("expected error for wrong password, got %s", v)
	}
	if v := c.do(t, "AUTH secret"); v.Text() != "OK" {
		t.Errorf("AUTH failed: %s", v)
	}
	if v := c.do(t, "PING"); v.Text() != "PONG" {
		t.Errorf("PING after AUTH: %s", v)
	}

	// authentication is per connection
	other := dial()
	if v := other.do(t, "PING"); !v.IsError() {
		t.Errorf("second connection should not be authenticated, got %s", v)
	}
}

func TestServeConnQuitAndSessions(t *testing.T) {
	s, dial := newTestServer(t, "")
	c := dial()

	c.do(t, "PING")
	if s.Sessions() != 1 {
		t.Errorf("Sessions() = %d, want 1", s.Sessions())
	}

	if v := c.do(t, "QUIT"); v.Text() != "OK" {
		t.Errorf("QUIT: %s", v)
	}

	// the server closes the connection after QUIT
	_ = c.conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := c.r.ReadValue(nil); err == nil {
		t.Error("connection should be closed after QUIT")
	}

	deadline := time.Now().Add(time.Second)
	for s.Sessions() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Sessions() != 0 {
		t.Errorf("Sessions() = %d after QUIT, want 0", s.Sessions())
	}
}

func TestServeConnProtocolError(t *testing.T) {
	_, dial := newTestServer(t, "")
	c := dial()

	_ = c.conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.conn.Write([]byte("*1\r\n?bad\r\n")); err != nil {
		t.Fatal(err)
	}
	v, err := c.r.ReadValue(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsError() || !strings.HasPrefix(v.Text(), "ERR Protocol error") {
		t.Errorf("expected protocol error reply, got %s", v)
	}
}

func TestServeConnInline(t *testing.T) {
	_, dial := newTestServer(t, "")
	c := dial()

	_ = c.conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.conn.Write([]byte("ECHO inline\r\n")); err != nil {
		t.Fatal(err)
	}
	v, err := c.r.ReadValue(nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Text() != "inline" {
		t.Errorf("got %s, want inline", v)
	}
}
