package mstore

import (
	"sort"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// HLEN key
func execHLen(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindHash)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	return resp.Integer(int64(len(e.hash)))
}

// HGETALL key answers field1 value1 field2 value2 ... ordered by field
func execHGetAll(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindHash)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Array()
	}

	fields := make([]string, 0, len(e.hash))
	for field := range e.hash {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	items := make([]resp.Value, 0, 2*len(fields))
	for _, field := range fields {
		items = append(items, resp.BulkString(field), resp.Bulk(e.hash[field]))
	}
	return resp.Array(items...)
}

// HGET key field
func execHGet(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindHash)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Null()
	}
	value, ok := e.hash[string(args[1])]
	if !ok {
		return resp.Null()
	}
	return resp.Bulk(value)
}

// HEXISTS key field
func execHExists(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindHash)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	if _, ok := e.hash[string(args[1])]; ok {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

// HSET key field value [field value ...] answers the number of new fields
func execHSet(db *database, args [][]byte) resp.Value {
	if len(args)%2 != 1 {
		return resp.Error("ERR wrong number of arguments for 'hset' command")
	}
	e, errReply := db.getOrCreate(string(args[0]), kindHash)
	if errReply != nil {
		return *errReply
	}

	added := int64(0)
	for i := 1; i < len(args); i += 2 {
		field := string(args[i])
		if _, ok := e.hash[field]; !ok {
			added++
		}
		e.hash[field] = clone(args[i+1])
	}
	return resp.Integer(added)
}

// HSETNX key field value sets field only if it does not exist
func execHSetNX(db *database, args [][]byte) resp.Value {
	e, errReply := db.getOrCreate(string(args[0]), kindHash)
	if errReply != nil {
		return *errReply
	}
	field := string(args[1])
	if _, ok := e.hash[field]; ok {
		return resp.Integer(0)
	}
	e.hash[field] = clone(args[2])
	return resp.Integer(1)
}

// HDEL key field [field ...]
func execHDel(db *database, args [][]byte) resp.Value {
	key := string(args[0])
	e, errReply := db.getAs(key, kindHash)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}

	removed := int64(0)
	for _, field := range args[1:] {
		if _, ok := e.hash[string(field)]; ok {
			delete(e.hash, string(field))
			removed++
		}
	}
	db.removeIfEmpty(key, e)
	return resp.Integer(removed)
}

func init() {
	registerCommand("HLEN", execHLen, 2)
	registerCommand("HGETALL", execHGetAll, 2)
	registerCommand("HGET", execHGet, 3)
	registerCommand("HEXISTS", execHExists, 3)
	registerCommand("HSET", execHSet, -4)
	registerCommand("HSETNX", execHSetNX, 4)
	registerCommand("HDEL", execHDel, -3)
}
