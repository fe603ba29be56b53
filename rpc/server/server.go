package server

import (
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/lib/store"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
)

var Logger = logger.GetLogger(common.LoggerServer)

// RPCServer serves a store over RESP. Every client connection gets its own
// session with the selected database and authentication state.
type RPCServer struct {
	config   common.ServerConfig
	store    store.IStore
	adapter  IRPCServerAdapter
	sessions *xsync.MapOf[uint64, *Session]
	nextID   atomic.Uint64

	mu        sync.Mutex
	transport transport.IServerTransport
}

// NewRPCServer creates a new RPC server for st
//
// Usage:
//
//	s := server.NewRPCServer(config, mstore.NewMemoryStore(store.DefaultOptions()))
//
//	if err := s.Serve(func(h transport.ConnHandleFunc) transport.IServerTransport {
//		return tcp.NewServer(h)
//	}); err != nil {
//		panic(err)
//	}
func NewRPCServer(config common.ServerConfig, st store.IStore) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &RPCServer{
		config:   config,
		store:    st,
		adapter:  NewIStoreServerAdapter(config.Password),
		sessions: xsync.NewMapOf[uint64, *Session](),
	}
}

// Serve creates the transport with factory and serves until Close is called
func (s *RPCServer) Serve(factory transport.ServerTransportFactory) error {
	t := factory(s.ServeConn)

	s.mu.Lock()
	s.transport = t
	s.mu.Unlock()

	return t.Listen(s.config)
}

// Close stops the transport, the store is not closed
func (s *RPCServer) Close() error {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()

	if t == nil {
		return nil
	}
	return t.Close()
}

// Sessions returns the number of connected clients
func (s *RPCServer) Sessions() int {
	return s.sessions.Size()
}

// ServeConn serves one client connection until it is closed. It implements
// transport.ConnHandleFunc and can be used with any server transport.
func (s *RPCServer) ServeConn(conn net.Conn) {
	session := &Session{
		ID:            s.nextID.Add(1),
		Authenticated: s.config.Password == "",
	}
	if addr := conn.RemoteAddr(); addr != nil {
		session.RemoteAddr = addr.String()
	}
	s.sessions.Store(session.ID, session)
	defer s.sessions.Delete(session.ID)

	Logger.Debugf("session %d: connected from %s", session.ID, session.RemoteAddr)

	// Timeout in seconds
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	reader := resp.NewReader(conn)
	writer := resp.NewWriter(conn)

	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Errorf("Failed to set read deadline: %v", err)
				return
			}
		}

		args, err := reader.ReadCommand()

		// Case EOF: Connection closed by client
		if errors.Is(err, io.EOF) {
			Logger.Debugf("session %d: connection closed by client", session.ID)
			return
		}

		// Case malformed request: tell the client, then close the connection
		var perr *resp.ProtocolError
		if errors.As(err, &perr) {
			_ = writer.WriteValue(resp.Errorf("ERR Protocol error: %s", perr.Msg))
			_ = writer.Flush()
			return
		}

		// Case error: log and close connection
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				Logger.Infof("session %d: closing idle connection", session.ID)
			} else if !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				Logger.Errorf("session %d: error reading request: %v", session.ID, err)
			}
			return
		}

		if len(args) == 0 {
			continue
		}

		reply, quit := s.adapter.Handle(session, args, s.store)

		if err := writer.WriteValue(reply); err != nil {
			Logger.Errorf("session %d: failed to write response: %v", session.ID, err)
			return
		}
		if err := writer.Flush(); err != nil {
			Logger.Debugf("session %d: failed to flush response: %v", session.ID, err)
			return
		}

		if quit {
			return
		}
	}
}
