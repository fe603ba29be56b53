package tcp

import (
	"fmt"
	"net"

	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
	"github.com/zxliu/RedisDesktopManager/rpc/transport/base"
)

// serverConnector implements the IServerConnector interface for TCP sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}

	return listener, nil
}

// --------------------------------------------------------------------------
// Server Factory Method
// --------------------------------------------------------------------------

// NewServer creates a TCP server that serves every connection with handler
func NewServer(handler transport.ConnHandleFunc) *base.Server {
	return base.NewServer(&serverConnector{}, handler)
}
