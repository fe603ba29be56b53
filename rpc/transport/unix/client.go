package unix

import (
	"net"

	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string, config common.ConnectionConfig) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, config.ConnectTimeout())
}

func (c *clientConnector) UpgradeConnection(net.Conn, common.ConnectionConfig) error {
	return nil
}

// --------------------------------------------------------------------------
// Connector Factory Method
// --------------------------------------------------------------------------

// NewClientConnector creates a connector that dials Unix domain sockets
func NewClientConnector() transport.IClientConnector {
	return &clientConnector{}
}
