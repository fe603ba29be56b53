package mstore

import (
	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// DEL K1 K2 K3
func execDel(db *database, args [][]byte) resp.Value {
	deleted := int64(0)
	for _, arg := range args {
		if _, ok := db.get(string(arg)); ok {
			db.remove(string(arg))
			deleted++
		}
	}
	return resp.Integer(deleted)
}

// EXISTS K1 K2 K3
func execExists(db *database, args [][]byte) resp.Value {
	result := int64(0)
	for _, arg := range args {
		if _, ok := db.get(string(arg)); ok {
			result++
		}
	}
	return resp.Integer(result)
}

// TYPE key returns string, list, hash, set, zset or none
func execType(db *database, args [][]byte) resp.Value {
	e, ok := db.get(string(args[0]))
	if !ok {
		return resp.SimpleString("none")
	}
	return resp.SimpleString(e.kind.String())
}

// RENAME src dst moves the value and the TTL, overwriting dst
func execRename(db *database, args [][]byte) resp.Value {
	src, dst := string(args[0]), string(args[1])
	e, ok := db.get(src)
	if !ok {
		return errNoSuchKey
	}
	if src == dst {
		return resp.OK()
	}

	deadline, hasTTL := db.expires.Deadline(src)
	db.remove(src)
	db.put(dst, e)
	if hasTTL {
		db.expires.Schedule(dst, deadline)
	}
	return resp.OK()
}

// ttl answers TTL and PTTL: -2 missing key, -1 no expiry
func ttl(db *database, key string, unitMs int64) resp.Value {
	if _, ok := db.get(key); !ok {
		return resp.Integer(-2)
	}
	deadline, ok := db.expires.Deadline(key)
	if !ok {
		return resp.Integer(-1)
	}
	remaining := deadline - nowMs()
	if remaining < 0 {
		remaining = 0
	}
	// round to the nearest unit
	return resp.Integer((remaining + unitMs/2) / unitMs)
}

func execTTL(db *database, args [][]byte) resp.Value {
	return ttl(db, string(args[0]), 1000)
}

func execPTTL(db *database, args [][]byte) resp.Value {
	return ttl(db, string(args[0]), 1)
}

// expire answers EXPIRE and PEXPIRE, a non-positive timeout deletes the key
func expire(db *database, args [][]byte, unitMs int64) resp.Value {
	key := string(args[0])
	n, ok := parseInt(args[1])
	if !ok {
		return errNotInteger
	}
	if _, exists := db.get(key); !exists {
		return resp.Integer(0)
	}
	if n <= 0 {
		db.remove(key)
		return resp.Integer(1)
	}
	db.expires.Schedule(key, nowMs()+n*unitMs)
	return resp.Integer(1)
}

func execExpire(db *database, args [][]byte) resp.Value {
	return expire(db, args, 1000)
}

func execPExpire(db *database, args [][]byte) resp.Value {
	return expire(db, args, 1)
}

// PERSIST key removes the TTL
func execPersist(db *database, args [][]byte) resp.Value {
	key := string(args[0])
	if _, ok := db.get(key); !ok {
		return resp.Integer(0)
	}
	if db.expires.Unschedule(key) {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

func execDBSize(db *database, _ [][]byte) resp.Value {
	db.onExpire(db.sweep(nowMs()))
	return resp.Integer(int64(len(db.data)))
}

func execFlushDB(db *database, _ [][]byte) resp.Value {
	db.flush()
	return resp.OK()
}

func init() {
	registerCommand("DEL", execDel, -2)
	registerCommand("EXISTS", execExists, -2)
	registerCommand("TYPE", execType, 2)
	registerCommand("RENAME", execRename, 3)
	registerCommand("TTL", execTTL, 2)
	registerCommand("PTTL", execPTTL, 2)
	registerCommand("EXPIRE", execExpire, 3)
	registerCommand("PEXPIRE", execPExpire, 3)
	registerCommand("PERSIST", execPersist, 2)
	registerCommand("DBSIZE", execDBSize, 1)
	registerCommand("FLUSHDB", execFlushDB, -1)
}
