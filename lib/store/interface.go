package store

import (
	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the command engine behind the bundled server. It executes one
// command line against one numbered database and answers with a RESP value.
// Failures are reported as error replies, never as Go errors, so the server
// can forward them unchanged.
type IStore interface {
	// Exec executes args (verb first) against database db.
	// Connection level commands (AUTH, SELECT, QUIT) are handled by the server.
	Exec(db int, args [][]byte) resp.Value
	// Databases returns the number of selectable databases
	Databases() int
	// GetInfo returns statistics about the store.
	// It is not guaranteed that all fields are up-to-date!
	GetInfo() Info
	// Close stops background work of the store
	Close()
}

// Info describes the state of a store
type Info struct {
	// Keys is the number of live keys per database index
	Keys map[int]int
	// Commands is the number of executed commands
	Commands uint64
	// Expired is the number of keys removed because their TTL ran out
	Expired uint64
}

// Options configures a store
type Options struct {
	// Databases is the number of selectable db indexes (default 16)
	Databases int
	// GCIntervalMs is the interval of the expiry sweep in milliseconds (default 100)
	GCIntervalMs int
}

// DefaultOptions returns the default store options
func DefaultOptions() Options {
	return Options{
		Databases:    16,
		GCIntervalMs: 100,
	}
}
