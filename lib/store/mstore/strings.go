package mstore

import (
	"strings"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// GET key
func execGet(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindString)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Null()
	}
	return resp.Bulk(e.str)
}

// SET key value [EX seconds | PX milliseconds], a plain SET drops the TTL
func execSet(db *database, args [][]byte) resp.Value {
	key := string(args[0])

	var ttlMs int64
	for i := 2; i < len(args); i++ {
		option := strings.ToUpper(string(args[i]))
		if (option != "EX" && option != "PX") || i+1 >= len(args) {
			return errSyntax
		}
		n, ok := parseInt(args[i+1])
		if !ok || n <= 0 {
			return resp.Error("ERR invalid expire time in 'set' command")
		}
		if option == "EX" {
			ttlMs = n * 1000
		} else {
			ttlMs = n
		}
		i++
	}

	e := newEntity(kindString)
	e.str = clone(args[1])
	db.put(key, e)
	if ttlMs > 0 {
		db.expires.Schedule(key, nowMs()+ttlMs)
	}
	return resp.OK()
}

func init() {
	registerCommand("GET", execGet, 2)
	registerCommand("SET", execSet, -3)
}
