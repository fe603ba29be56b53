package mstore

import (
	"sort"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// SCARD key
func execSCard(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	return resp.Integer(int64(len(e.set)))
}

// SMEMBERS key answers the members in lexicographic order
func execSMembers(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Array()
	}

	members := make([]string, 0, len(e.set))
	for member := range e.set {
		members = append(members, member)
	}
	sort.Strings(members)

	items := make([]resp.Value, len(members))
	for i, member := range members {
		items[i] = resp.BulkString(member)
	}
	return resp.Array(items...)
}

// SISMEMBER key member
func execSIsMember(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	if _, ok := e.set[string(args[1])]; ok {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

// SADD key member [member ...] answers the number of new members
func execSAdd(db *database, args [][]byte) resp.Value {
	e, errReply := db.getOrCreate(string(args[0]), kindSet)
	if errReply != nil {
		return *errReply
	}
	added := int64(0)
	for _, member := range args[1:] {
		if _, ok := e.set[string(member)]; !ok {
			e.set[string(member)] = struct{}{}
			added++
		}
	}
	return resp.Integer(added)
}

// SREM key member [member ...]
func execSRem(db *database, args [][]byte) resp.Value {
	key := string(args[0])
	e, errReply := db.getAs(key, kindSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	removed := int64(0)
	for _, member := range args[1:] {
		if _, ok := e.set[string(member)]; ok {
			delete(e.set, string(member))
			removed++
		}
	}
	db.removeIfEmpty(key, e)
	return resp.Integer(removed)
}

func init() {
	registerCommand("SCARD", execSCard, 2)
	registerCommand("SMEMBERS", execSMembers, 2)
	registerCommand("SISMEMBER", execSIsMember, 3)
	registerCommand("SADD", execSAdd, -3)
	registerCommand("SREM", execSRem, -3)
}
