package mstore

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/lib/store"
)

// render formats a reply compactly: nil, 3, text, !error, [a b]
func render(v resp.Value) string {
	switch v.Kind {
	case resp.KindNull:
		return "nil"
	case resp.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case resp.KindError:
		return "!" + string(v.Str)
	case resp.KindArray:
		parts := make([]string, len(v.Array))
		for i, item := range v.Array {
			parts[i] = render(item)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return string(v.Str)
	}
}

func exec(s store.IStore, db int, line string) resp.Value {
	fields := strings.Fields(line)
	args := make([][]byte, len(fields))
	for i, f := range fields {
		args[i] = []byte(f)
	}
	return s.Exec(db, args)
}

type step struct {
	cmd  string
	want string
}

func runSteps(t *testing.T, s store.IStore, steps []step) {
	t.Helper()
	for _, st := range steps {
		got := render(exec(s, 0, st.cmd))
		if strings.HasPrefix(st.want, "!") {
			if !strings.HasPrefix(got, st.want) {
				t.Errorf("%s: got %q, want prefix %q", st.cmd, got, st.want)
			}
			continue
		}
		if got != st.want {
			t.Errorf("%s: got %q, want %q", st.cmd, got, st.want)
		}
	}
}

func newTestStore(t *testing.T) store.IStore {
	t.Helper()
	s := NewMemoryStore(store.Options{Databases: 4, GCIntervalMs: 10})
	t.Cleanup(s.Close)
	return s
}

func TestStoreCommands(t *testing.T) {
	tests := []struct {
		name  string
		steps []step
	}{
		{"strings", []step{
			{"GET k", "nil"},
			{"SET k v1", "OK"},
			{"GET k", "v1"},
			{"TYPE k", "string"},
			{"SET k v2 EX 100", "OK"},
			{"TTL k", "100"},
			{"SET k v3", "OK"},
			{"TTL k", "-1"},
			{"SET k v EX", "!ERR syntax error"},
			{"SET k v EX 0", "!ERR invalid expire time"},
		}},
		{"lists", []step{
			{"LLEN l", "0"},
			{"LRANGE l 0 -1", "[]"},
			{"RPUSH l a b c", "3"},
			{"LPUSH l y z", "5"},
			{"LRANGE l 0 -1", "[z y a b c]"},
			{"LRANGE l 1 2", "[y a]"},
			{"LRANGE l -2 -1", "[b c]"},
			{"LRANGE l 10 20", "[]"},
			{"LINDEX l -1", "c"},
			{"LINDEX l 9", "nil"},
			{"LSET l 0 Z", "OK"},
			{"LSET l 9 x", "!ERR index out of range"},
			{"LSET missing 0 x", "!ERR no such key"},
			{"RPUSH l a", "6"},
			{"LREM l 1 a", "1"},
			{"LRANGE l 0 -1", "[Z y b c a]"},
			{"LREM l 0 nope", "0"},
			{"TYPE l", "list"},
		}},
		{"list rem directions", []step{
			{"RPUSH r x a x b x", "5"},
			{"LREM r -2 x", "2"},
			{"LRANGE r 0 -1", "[x a b]"},
			{"LREM r 0 x", "1"},
			{"LREM r 0 a", "1"},
			{"LREM r 0 b", "1"},
			{"EXISTS r", "0"},
		}},
		{"hashes", []step{
			{"HSET h f1 v1 f2 v2", "2"},
			{"HSET h f1 v9", "0"},
			{"HLEN h", "2"},
			{"HGET h f1", "v9"},
			{"HGET h nope", "nil"},
			{"HGETALL h", "[f1 v9 f2 v2]"},
			{"HSETNX h f1 x", "0"},
			{"HSETNX h f3 v3", "1"},
			{"HEXISTS h f3", "1"},
			{"HDEL h f1 f2 f3", "3"},
			{"EXISTS h", "0"},
			{"HSET h f1", "!ERR wrong number of arguments"},
		}},
		{"sets", []step{
			{"SADD s b a c a", "3"},
			{"SCARD s", "3"},
			{"SMEMBERS s", "[a b c]"},
			{"SISMEMBER s a", "1"},
			{"SISMEMBER s z", "0"},
			{"SREM s a z", "1"},
			{"SREM s b c", "2"},
			{"TYPE s", "none"},
		}},
		{"zsets", []step{
			{"ZADD z 2 b 1 a 2 c", "3"},
			{"ZADD z 0.5 c", "0"},
			{"ZCARD z", "3"},
			{"ZRANGE z 0 -1", "[c a b]"},
			{"ZRANGE z 0 1 WITHSCORES", "[c 0.5 a 1]"},
			{"ZRANGE z 0 1 NOPE", "!ERR syntax error"},
			{"ZSCORE z b", "2"},
			{"ZSCORE z nope", "nil"},
			{"ZADD z x a", "!ERR value is not a valid float"},
			{"ZREM z a b c", "3"},
			{"EXISTS z", "0"},
		}},
		{"keys", []step{
			{"SET a 1", "OK"},
			{"RPUSH b x", "1"},
			{"EXISTS a b c", "2"},
			{"DBSIZE", "2"},
			{"TTL a", "-1"},
			{"TTL nope", "-2"},
			{"EXPIRE a 100", "1"},
			{"EXPIRE nope 100", "0"},
			{"TTL a", "100"},
			{"RENAME a c", "OK"},
			{"TTL c", "100"},
			{"EXISTS a", "0"},
			{"PERSIST c", "1"},
			{"PERSIST c", "0"},
			{"RENAME nope x", "!ERR no such key"},
			{"EXPIRE c 0", "1"},
			{"EXISTS c", "0"},
			{"DEL b c", "1"},
			{"FLUSHDB", "OK"},
			{"DBSIZE", "0"},
		}},
		{"errors", []step{
			{"NOPE", "!ERR unknown command 'nope'"},
			{"GET", "!ERR wrong number of arguments for 'get' command"},
			{"LRANGE l x 1", "!ERR value is not an integer"},
			{"PING", "PONG"},
			{"ECHO hi", "hi"},
		}},
		{"wrong type", []step{
			{"SET str v", "OK"},
			{"LLEN str", "!WRONGTYPE"},
			{"HGET str f", "!WRONGTYPE"},
			{"SADD str m", "!WRONGTYPE"},
			{"ZADD str 1 m", "!WRONGTYPE"},
			{"RPUSH lst a", "1"},
			{"GET lst", "!WRONGTYPE"},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runSteps(t, newTestStore(t), tc.steps)
		})
	}
}

func TestStoreDatabases(t *testing.T) {
	s := newTestStore(t)

	exec(s, 0, "SET k zero")
	exec(s, 1, "SET k one")

	if got := render(exec(s, 0, "GET k")); got != "zero" {
		t.Errorf("db 0: got %q", got)
	}
	if got := render(exec(s, 1, "GET k")); got != "one" {
		t.Errorf("db 1: got %q", got)
	}
	if got := render(exec(s, 4, "GET k")); !strings.HasPrefix(got, "!ERR DB index is out of range") {
		t.Errorf("db 4: got %q", got)
	}
	if s.Databases() != 4 {
		t.Errorf("Databases() = %d, want 4", s.Databases())
	}

	info := s.GetInfo()
	if info.Keys[0] != 1 || info.Keys[1] != 1 {
		t.Errorf("unexpected key counts %v", info.Keys)
	}
	if info.Commands != 5 {
		t.Errorf("Commands = %d, want 5", info.Commands)
	}
}

func TestStoreExpiry(t *testing.T) {
	s := newTestStore(t)

	exec(s, 0, "SET lazy v PX 20")
	exec(s, 0, "RPUSH swept a")
	exec(s, 0, "PEXPIRE swept 20")

	if got := render(exec(s, 0, "PTTL lazy")); got == "-1" || got == "-2" {
		t.Errorf("PTTL should be positive, got %s", got)
	}

	time.Sleep(80 * time.Millisecond)

	if got := render(exec(s, 0, "GET lazy")); got != "nil" {
		t.Errorf("expired key still readable: %s", got)
	}
	if got := render(exec(s, 0, "TTL swept")); got != "-2" {
		t.Errorf("TTL of expired key = %s, want -2", got)
	}
	if info := s.GetInfo(); info.Expired != 2 {
		t.Errorf("Expired = %d, want 2", info.Expired)
	}
}
