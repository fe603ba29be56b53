// Package server implements the RESP server that exposes a store.IStore to
// clients. It is used by the serve command and, through the mem transport,
// by tests and the CLI when no external server is available.
//
// Key Components:
//
//   - RPCServer: Owns the store and a server transport (tcp, unix). ServeConn
//     serves one client connection and can be plugged into any transport.
//
//   - Session: Per-connection state, i.e. the selected database and whether
//     the client has authenticated.
//
//   - IRPCServerAdapter: Handles one command line of a session. The store
//     adapter answers AUTH, SELECT and QUIT itself and forwards all other
//     commands to the store.
//
// Error handling:
//
//	Command failures are answered with error replies. A malformed request is
//	answered with a protocol error reply and the connection is closed, as is a
//	connection that stays idle longer than the configured timeout.
package server
