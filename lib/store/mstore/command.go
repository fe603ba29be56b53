package mstore

import (
	"strconv"
	"strings"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// execFunc executes a command against one locked database.
// args don't include the command name.
type execFunc func(db *database, args [][]byte) resp.Value

type command struct {
	executor execFunc
	arity    int // fixed argument count including the name, or -n for at least n
}

var cmdTable = make(map[string]*command)

// registerCommand adds a command to the table, called from init functions
func registerCommand(name string, executor execFunc, arity int) {
	cmdTable[strings.ToLower(name)] = &command{
		executor: executor,
		arity:    arity,
	}
}

// validateArity checks the argument count, arity = 3 means exactly
// "SET K V", arity = -2 means "EXISTS K [K ...]"
func validateArity(arity int, cmdArgs [][]byte) bool {
	argNum := len(cmdArgs)
	if arity >= 0 {
		return argNum == arity
	}
	return argNum >= -arity
}

// --------------------------------------------------------------------------
// Argument parsing
// --------------------------------------------------------------------------

var (
	errNotInteger = resp.Error("ERR value is not an integer or out of range")
	errNotFloat   = resp.Error("ERR value is not a valid float")
	errSyntax     = resp.Error("ERR syntax error")
	errNoSuchKey  = resp.Error("ERR no such key")
)

func parseInt(arg []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(arg), 10, 64)
	return n, err == nil
}

func parseFloat(arg []byte) (float64, bool) {
	f, err := strconv.ParseFloat(string(arg), 64)
	return f, err == nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// normalizeRange converts inclusive, possibly negative, start and stop
// indexes into a half-open slice range of a collection with n elements
func normalizeRange(start, stop int64, n int) (int, int, bool) {
	size := int64(n)
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	return int(start), int(stop) + 1, true
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

// --------------------------------------------------------------------------
// Connection independent commands
// --------------------------------------------------------------------------

func execPing(_ *database, args [][]byte) resp.Value {
	if len(args) == 0 {
		return resp.SimpleString("PONG")
	}
	return resp.Bulk(args[0])
}

func execEcho(_ *database, args [][]byte) resp.Value {
	return resp.Bulk(args[0])
}

func init() {
	registerCommand("PING", execPing, -1)
	registerCommand("ECHO", execEcho, 2)
}
