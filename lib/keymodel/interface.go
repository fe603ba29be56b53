package keymodel

import (
	"context"
	"errors"
	"time"
)

// TypeTag is the type of a key as reported by the TYPE command
type TypeTag string

const (
	TypeString TypeTag = "string"
	TypeList   TypeTag = "list"
	TypeSet    TypeTag = "set"
	TypeZSet   TypeTag = "zset"
	TypeHash   TypeTag = "hash"
	TypeNone   TypeTag = "none"
)

// Column names used in rows
const (
	ColumnValue = "value"
	ColumnScore = "score"
	ColumnKey   = "key"
)

// NoExpiry is the TTL of a key without expiry
const NoExpiry int64 = -1

var (
	// ErrKeyNotFound is returned by New if the key does not exist
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyRemoved is returned by mutating operations after the model fired Removed
	ErrKeyRemoved = errors.New("key was removed")
)

// --------------------------------------------------------------------------
// Events
// --------------------------------------------------------------------------

// EventType distinguishes the notifications of a key model
type EventType int

const (
	// EventDataLoaded is published after a load extended the row cache
	EventDataLoaded EventType = iota
	// EventRemoved is published exactly once, when the key is known to be gone
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventDataLoaded:
		return "dataLoaded"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a notification of a key model to its subscribers
type Event struct {
	Type EventType
	Key  string
	Time time.Time
}

// --------------------------------------------------------------------------
// KeyModel Interface
// --------------------------------------------------------------------------

// KeyModel gives row-oriented access to a single key of one of the supported
// types. Reads are served from a local row cache; every write goes to the
// server and is mirrored into the cache.
//
// Mutating row operations fail with common.ErrInvalidRow if the row does not
// have the shape of the key type, and with common.ErrConcurrentModification if
// the live value diverged from the cached one.
type KeyModel interface {
	// KeyName returns the current name of the key
	KeyName() string
	// Type returns the type of the key
	Type() TypeTag
	// TTL returns the time to live in seconds, NoExpiry if the key does not expire
	TTL() int64
	// DBIndex returns the database the key lives in
	DBIndex() int
	// ColumnNames returns the names of the row fields
	ColumnNames() []string
	// IsMultiRow is false for keys that are represented by a single row
	IsMultiRow() bool
	// IsPartialLoadingSupported is true if rows can be fetched page by page
	IsPartialLoadingSupported() bool

	// RowsCount returns the number of rows as of the last count
	RowsCount() int
	// IsRowLoaded reports whether row i is in the row cache
	IsRowLoaded(i int) bool
	// Row returns a copy of cached row i
	Row(i int) (Row, bool)

	// LoadRowCount fetches the number of rows from the server
	LoadRowCount(ctx context.Context) error
	// LoadRows extends the row cache to include [start, start+count) in the
	// background and calls onDone with the outcome. Types without paging
	// load all rows on first access.
	LoadRows(ctx context.Context, start, count int, onDone func(err error))
	// ClearRowCache discards the cached rows without touching the server
	ClearRowCache()
	// Refresh clears the row cache and reloads the row count
	Refresh(ctx context.Context) error

	// AddRow adds a row on the server. The row cache is not updated, call
	// Refresh to observe the new row.
	AddRow(ctx context.Context, row Row) error
	// UpdateRow replaces the loaded row i on the server and in the cache
	UpdateRow(ctx context.Context, i int, row Row) error
	// RemoveRow removes the loaded row i, a row that is not loaded is ignored
	RemoveRow(ctx context.Context, i int) error

	// SetKeyName renames the key
	SetKeyName(ctx context.Context, name string) error
	// SetTTL sets the time to live in seconds, ttl <= 0 removes the expiry
	SetTTL(ctx context.Context, ttl int64) error
	// RemoveKey deletes the key. The model must not be used afterwards.
	RemoveKey(ctx context.Context) error
	// IsRemoved reports whether Removed was fired
	IsRemoved() bool

	// Subscribe returns a channel of model events and a function to unsubscribe
	Subscribe(buffer int) (<-chan Event, func())
	// Close cancels outstanding commands of the model and closes subscriptions
	Close()
}
