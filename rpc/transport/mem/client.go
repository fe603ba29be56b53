package mem

import (
	"net"
	"sync"

	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
)

// Connector implements the IClientConnector interface with in-process pipes.
// Every Connect creates a synchronous net.Pipe and serves the far end with
// the handler on a new goroutine.
type Connector struct {
	handler transport.ConnHandleFunc

	mu     sync.Mutex
	dials  int
	failer func(attempt int) error
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientConnector)
// --------------------------------------------------------------------------

func (c *Connector) GetName() string {
	return "mem"
}

func (c *Connector) Connect(_ string, _ common.ConnectionConfig) (net.Conn, error) {
	c.mu.Lock()
	attempt := c.dials
	c.dials++
	failer := c.failer
	c.mu.Unlock()

	if failer != nil {
		if err := failer(attempt); err != nil {
			return nil, err
		}
	}

	client, server := net.Pipe()
	go func() {
		defer server.Close()
		c.handler(server)
	}()

	return client, nil
}

func (c *Connector) UpgradeConnection(net.Conn, common.ConnectionConfig) error {
	return nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Dials returns how many times Connect was called
func (c *Connector) Dials() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dials
}

// FailWith installs a hook that can reject a dial attempt (0-based)
func (c *Connector) FailWith(failer func(attempt int) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failer = failer
}

// --------------------------------------------------------------------------
// Connector Factory Method
// --------------------------------------------------------------------------

// NewClientConnector creates a connector whose connections are served by handler
func NewClientConnector(handler transport.ConnHandleFunc) *Connector {
	return &Connector{handler: handler}
}
