// Package mem implements an in-process medium of the transport layer. The
// client connector returns one end of a net.Pipe and serves the other end with
// a connection handler, usually the RESP server backed by the in-memory store.
// It is used for tests and by the CLI with --transport mem, where no server
// process is needed.
package mem
