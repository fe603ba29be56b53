package server

import (
	"strconv"
	"strings"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/lib/store"
)

// NewIStoreServerAdapter creates the adapter that handles connection level
// commands (AUTH, SELECT, QUIT) and forwards everything else to the store
func NewIStoreServerAdapter(password string) IRPCServerAdapter {
	return &iStoreServerAdapterImpl{password: password}
}

type iStoreServerAdapterImpl struct {
	password string
}

func (adapter *iStoreServerAdapterImpl) Handle(session *Session, args [][]byte, store store.IStore) (resp.Value, bool) {
	// Check for nil store
	if store == nil {
		return resp.Error("ERR handler: store is nil"), false
	}
	if len(args) == 0 {
		return resp.Error("ERR empty command"), false
	}

	session.Commands++
	name := strings.ToUpper(string(args[0]))

	switch name {
	case "QUIT":
		return resp.OK(), true
	case "AUTH":
		return adapter.auth(session, args), false
	}

	if !session.Authenticated {
		return resp.Error("NOAUTH Authentication required."), false
	}

	if name == "SELECT" {
		if len(args) != 2 {
			return resp.Error("ERR wrong number of arguments for 'select' command"), false
		}
		index, err := strconv.Atoi(string(args[1]))
		if err != nil {
			return resp.Error("ERR invalid DB index"), false
		}
		if index < 0 || index >= store.Databases() {
			return resp.Error("ERR DB index is out of range"), false
		}
		session.DB = index
		return resp.OK(), false
	}

	return store.Exec(session.DB, args), false
}

func (adapter *iStoreServerAdapterImpl) auth(session *Session, args [][]byte) resp.Value {
	if len(args) != 2 {
		return resp.Error("ERR wrong number of arguments for 'auth' command")
	}
	if adapter.password == "" {
		return resp.Error("ERR Client sent AUTH, but no password is set")
	}
	if string(args[1]) != adapter.password {
		session.Authenticated = false
		return resp.Error("ERR invalid password")
	}
	session.Authenticated = true
	return resp.OK()
}
