package base

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
)

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// Server accepts connections from a transport specific listener and serves
// each of them on its own goroutine
type Server struct {
	connector transport.IServerConnector
	handler   transport.ConnHandleFunc

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}

	wg     sync.WaitGroup
	closed atomic.Bool
	ready  chan struct{}
}

// -----------------------------------------------------------
// Server Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewServer creates a server that hands every accepted connection to handler
func NewServer(connector transport.IServerConnector, handler transport.ConnHandleFunc) *Server {
	return &Server{
		connector: connector,
		handler:   handler,
		conns:     make(map[net.Conn]struct{}),
		ready:     make(chan struct{}),
	}
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Listen creates the listener for config and serves until Close is called
func (s *Server) Listen(config common.ServerConfig) error {
	listener, err := s.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}

	Logger.Infof("Starting %s server on %s", s.connector.GetName(), config.Endpoint)
	return s.Serve(listener)
}

// Serve accepts connections on listener until Close is called
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		listener.Close()
		return common.ErrClosed
	}
	s.listener = listener
	s.mu.Unlock()
	close(s.ready)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		s.track(conn, true)
		s.wg.Add(1)

		// Handle the connection in a goroutine
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			defer conn.Close()
			s.handler(conn)
		}()
	}
}

// Ready is closed once the server accepts connections
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listen address, nil before Serve was called
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting, closes all client connections and waits for their handlers
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}
