// Package rpc provides the protocol runtime between the key-value client and a
// server speaking the RESP wire protocol.
//
// The package is organized into several subpackages:
//
//   - common: commands, responses, scopes, events, configuration, error kinds
//     and logging used across the runtime.
//
//   - transport: connectors for the transport media (TCP, Unix sockets and an
//     in-process pipe) and the base package with the single-flight Transporter
//     and the generic server loop.
//
//   - client: the Connection, the synchronous executor and a connection pool.
//
//   - server: the RESP server that exposes a store.IStore, used by the serve
//     command and as the in-process backend in tests.
package rpc
