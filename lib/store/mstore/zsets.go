package mstore

import (
	"math"
	"sort"
	"strings"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

type scoredMember struct {
	member string
	score  float64
}

// sorted returns the members ordered by score, then lexicographically
func sorted(zset map[string]float64) []scoredMember {
	members := make([]scoredMember, 0, len(zset))
	for member, score := range zset {
		members = append(members, scoredMember{member: member, score: score})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].score != members[j].score {
			return members[i].score < members[j].score
		}
		return members[i].member < members[j].member
	})
	return members
}

// ZCARD key
func execZCard(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindZSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	return resp.Integer(int64(len(e.zset)))
}

// ZRANGE key start stop [WITHSCORES]
func execZRange(db *database, args [][]byte) resp.Value {
	start, ok1 := parseInt(args[1])
	stop, ok2 := parseInt(args[2])
	if !ok1 || !ok2 {
		return errNotInteger
	}
	withScores := false
	if len(args) == 4 {
		if !strings.EqualFold(string(args[3]), "WITHSCORES") {
			return errSyntax
		}
		withScores = true
	} else if len(args) > 4 {
		return errSyntax
	}

	e, errReply := db.getAs(string(args[0]), kindZSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Array()
	}

	members := sorted(e.zset)
	lo, hi, ok := normalizeRange(start, stop, len(members))
	if !ok {
		return resp.Array()
	}

	items := make([]resp.Value, 0, 2*(hi-lo))
	for _, m := range members[lo:hi] {
		items = append(items, resp.BulkString(m.member))
		if withScores {
			items = append(items, resp.BulkString(formatFloat(m.score)))
		}
	}
	return resp.Array(items...)
}

// ZSCORE key member
func execZScore(db *database, args [][]byte) resp.Value {
	e, errReply := db.getAs(string(args[0]), kindZSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Null()
	}
	score, ok := e.zset[string(args[1])]
	if !ok {
		return resp.Null()
	}
	return resp.BulkString(formatFloat(score))
}

// ZADD key score member [score member ...] answers the number of new members
func execZAdd(db *database, args [][]byte) resp.Value {
	if len(args)%2 != 1 {
		return errSyntax
	}

	// validate all scores before touching the key
	scores := make([]float64, 0, len(args)/2)
	for i := 1; i < len(args); i += 2 {
		score, ok := parseFloat(args[i])
		if !ok || math.IsNaN(score) {
			return errNotFloat
		}
		scores = append(scores, score)
	}

	e, errReply := db.getOrCreate(string(args[0]), kindZSet)
	if errReply != nil {
		return *errReply
	}
	added := int64(0)
	for i, score := range scores {
		member := string(args[2+2*i])
		if _, ok := e.zset[member]; !ok {
			added++
		}
		e.zset[member] = score
	}
	return resp.Integer(added)
}

// ZREM key member [member ...]
func execZRem(db *database, args [][]byte) resp.Value {
	key := string(args[0])
	e, errReply := db.getAs(key, kindZSet)
	if errReply != nil {
		return *errReply
	}
	if e == nil {
		return resp.Integer(0)
	}
	removed := int64(0)
	for _, member := range args[1:] {
		if _, ok := e.zset[string(member)]; ok {
			delete(e.zset, string(member))
			removed++
		}
	}
	db.removeIfEmpty(key, e)
	return resp.Integer(removed)
}

func init() {
	registerCommand("ZCARD", execZCard, 2)
	registerCommand("ZRANGE", execZRange, -4)
	registerCommand("ZSCORE", execZScore, 3)
	registerCommand("ZADD", execZAdd, -4)
	registerCommand("ZREM", execZRem, -3)
}
