// Package transport defines the abstractions of the network layer between the
// client runtime and a key-value server speaking RESP.
//
// Key Components:
//
//   - IClientConnector / IServerConnector: Medium specific dial and listen
//     operations (tcp, unix, mem) injected into the base implementations.
//
//   - ICommandTransport: Single-flight FIFO command pipeline bound to one
//     physical connection, implemented by base.Transporter.
//
//   - IEventSink: Receiver of the fire-and-forget error and log events of a
//     transport, implemented by the client connection.
//
//   - ConnHandleFunc: Function type that serves one accepted server-side connection.
package transport
