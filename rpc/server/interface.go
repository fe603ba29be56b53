package server

import (
	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/lib/store"
)

// IRPCServerAdapter handles one decoded command line of a client session.
// It returns the reply and whether the connection should be closed afterwards.
type IRPCServerAdapter interface {
	Handle(session *Session, args [][]byte, store store.IStore) (reply resp.Value, quit bool)
}

// Session is the per-connection state of a client
type Session struct {
	ID            uint64
	RemoteAddr    string
	DB            int
	Authenticated bool
	Commands      uint64
}
