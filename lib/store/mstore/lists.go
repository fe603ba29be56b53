package mstore

import (
	"bytes"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// LLEN key
func execLLen(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindList)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	return resp.Integer(int64(len(e.list)))
}

// LRANGE key start stop
func execLRange(db *database, args [][]byte) resp.Value {
	start, ok1 := parseInt(args[1])
	stop, ok2 := parseInt(args[2])
	if !ok1 || !ok2 {
		return errNotInteger
	}

	e, errReply := db.getAs(string(args[0]), kindList)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Array()
	}

	lo, hi, ok := normalizeRange(start, stop, len(e.list))
	if !ok {
		return resp.Array()
	}
	return resp.BulkArray(e.list[lo:hi])
}

// LINDEX key index
func execLIndex(db *database, args [][]byte) resp.Value {
	index, ok := parseInt(args[1])
	if !ok {
		return errNotInteger
	}
	e, errReply := db.getAs(string(args[0]), kindList)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Null()
	}
	if index < 0 {
		index += int64(len(e.list))
	}
	if index < 0 || index >= int64(len(e.list)) {
		return resp.Null()
	}
	return resp.Bulk(e.list[index])
}

// LPUSH key v1 v2 inserts each value at the head, so v2 ends up first
func execLPush(db *database, args [][]byte) resp.Value {
	e, errReply := db.getOrCreate(string(args[0]), kindList)
	if errReply != nil {
		return *errReply
	}

	values := args[1:]
	list := make([][]byte, 0, len(values)+len(e.list))
	for i := len(values) - 1; i >= 0; i-- {
		list = append(list, clone(values[i]))
	}
	e.list = append(list, e.list...)
	return resp.Integer(int64(len(e.list)))
}

// RPUSH key v1 v2 appends the values at the tail
func execRPush(db *database, args [][]byte) resp.Value {
	e, errReply := db.getOrCreate(string(args[0]), kindList)
	if errReply != nil {
		return *errReply
	}
	for _, value := range args[1:] {
		e.list = append(e.list, clone(value))
	}
	return resp.Integer(int64(len(e.list)))
}

// LSET key index value
func execLSet(db *database, args [][]byte) resp.Value {
	index, ok := parseInt(args[1])
	if !ok {
		return errNotInteger
	}
	e, errReply := db.getAs(string(args[0]), kindList)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return errNoSuchKey
	}
	if index < 0 {
		index += int64(len(e.list))
	}
	if index < 0 || index >= int64(len(e.list)) {
		return resp.Error("ERR index out of range")
	}
	e.list[index] = clone(args[2])
	return resp.OK()
}

// LREM key count value removes count occurrences from the head (count > 0),
// from the tail (count < 0) or all of them (count = 0)
func execLRem(db *database, args [][]byte) resp.Value {
	key := string(args[0])
	count, ok := parseInt(args[1])
	if !ok {
		return errNotInteger
	}
	value := args[2]

	e, errReply := db.getAs(key, kindList)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}

	limit := count
	if limit < 0 {
		limit = -limit
	}
	removed := int64(0)
	keep := make([]bool, len(e.list))
	for i := range keep {
		keep[i] = true
	}

	visit := func(i int) bool {
		if bytes.Equal(e.list[i], value) {
			keep[i] = false
			removed++
		}
		return limit == 0 || removed < limit
	}
	if count >= 0 {
		for i := 0; i < len(e.list) && visit(i); i++ {
		}
	} else {
		for i := len(e.list) - 1; i >= 0 && visit(i); i-- {
		}
	}

	if removed > 0 {
		list := make([][]byte, 0, len(e.list)-int(removed))
		for i, item := range e.list {
			if keep[i] {
				list = append(list, item)
			}
		}
		e.list = list
		db.removeIfEmpty(key, e)
	}
	return resp.Integer(removed)
}

func init() {
	registerCommand("LLEN", execLLen, 2)
	registerCommand("LRANGE", execLRange, 4)
	registerCommand("LINDEX", execLIndex, 3)
	registerCommand("LPUSH", execLPush, -3)
	registerCommand("RPUSH", execRPush, -3)
	registerCommand("LSET", execLSet, 4)
	registerCommand("LREM", execLRem, 4)
}
