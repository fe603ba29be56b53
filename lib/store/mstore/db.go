package mstore

import (
	"sync"
	"time"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// --------------------------------------------------------------------------
// Entities
// --------------------------------------------------------------------------

type kind int

const (
	kindString kind = iota
	kindList
	kindHash
	kindSet
	kindZSet
)

func (k kind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindList:
		return "list"
	case kindHash:
		return "hash"
	case kindSet:
		return "set"
	case kindZSet:
		return "zset"
	default:
		return "none"
	}
}

// entity is the value stored under one key, only the field of its kind is used
type entity struct {
	kind kind
	str  []byte
	list [][]byte
	hash map[string][]byte
	set  map[string]struct{}
	zset map[string]float64
}

func newEntity(k kind) *entity {
	e := &entity{kind: k}
	switch k {
	case kindHash:
		e.hash = make(map[string][]byte)
	case kindSet:
		e.set = make(map[string]struct{})
	case kindZSet:
		e.zset = make(map[string]float64)
	}
	return e
}

// size returns the number of elements of a collection, 1 for strings
func (e *entity) size() int {
	switch e.kind {
	case kindList:
		return len(e.list)
	case kindHash:
		return len(e.hash)
	case kindSet:
		return len(e.set)
	case kindZSet:
		return len(e.zset)
	default:
		return 1
	}
}

var errWrongType = resp.Error("WRONGTYPE Operation against a key holding the wrong kind of value")

// --------------------------------------------------------------------------
// Database
// --------------------------------------------------------------------------

// database is one numbered keyspace. The store locks mu for the duration of a
// command, all helpers below expect it to be held.
type database struct {
	index   int
	mu      sync.Mutex
	data    map[string]*entity
	expires *expiryHeap

	// onExpire is called with the number of keys removed by TTL
	onExpire func(n int)
}

func newDatabase(index int, onExpire func(int)) *database {
	return &database{
		index:    index,
		data:     make(map[string]*entity),
		expires:  newExpiryHeap(),
		onExpire: onExpire,
	}
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

// get returns the live entity of key, removing it first if its TTL ran out
func (d *database) get(key string) (*entity, bool) {
	e, ok := d.data[key]
	if !ok {
		return nil, false
	}
	if deadline, scheduled := d.expires.Deadline(key); scheduled && deadline <= nowMs() {
		d.remove(key)
		d.onExpire(1)
		return nil, false
	}
	return e, true
}

// getAs returns the entity of key if it has kind k. A missing key is not an
// error; a key of another kind yields the WRONGTYPE reply.
func (d *database) getAs(key string, k kind) (*entity, *resp.Value) {
	e, ok := d.get(key)
	if !ok {
		return nil, nil
	}
	if e.kind != k {
		return nil, &errWrongType
	}
	return e, nil
}

// getOrCreate returns the entity of key, creating an empty one of kind k
func (d *database) getOrCreate(key string, k kind) (*entity, *resp.Value) {
	e, errReply := d.getAs(key, k)
	if errReply != nil {
		return nil, errReply
	}
	if e == nil {
		e = newEntity(k)
		d.data[key] = e
	}
	return e, nil
}

// put stores e under key, dropping any TTL
func (d *database) put(key string, e *entity) {
	d.data[key] = e
	d.expires.Unschedule(key)
}

// remove deletes key and its TTL
func (d *database) remove(key string) bool {
	if _, ok := d.data[key]; !ok {
		return false
	}
	delete(d.data, key)
	d.expires.Unschedule(key)
	return true
}

// removeIfEmpty deletes a collection key that has no elements left
func (d *database) removeIfEmpty(key string, e *entity) {
	if e.kind != kindString && e.size() == 0 {
		d.remove(key)
	}
}

// sweep removes all keys whose TTL ran out and returns how many there were
func (d *database) sweep(now int64) int {
	due := d.expires.PopDue(now)
	for _, key := range due {
		delete(d.data, key)
	}
	return len(due)
}

// flush removes every key
func (d *database) flush() {
	d.data = make(map[string]*entity)
	d.expires = newExpiryHeap()
}
