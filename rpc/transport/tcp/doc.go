// Package tcp implements the TCP medium of the transport layer. It provides
// the connectors that dial and listen on host:port endpoints and applies the
// configured socket options (TCPNoDelay, keep-alive) to client connections.
//
// The command pipeline and the accept loop are inherited from the base package.
package tcp
