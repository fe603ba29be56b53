// Package common provides the data structures shared by the client runtime,
// the transports and the bundled in-memory server.
//
// The package focuses on:
//   - The Command and Response types exchanged with the transporter
//   - Cancellation scopes and error kinds
//   - Configuration structures for connections and the in-memory server
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - Command: one request (argument vector, db index, scope, callbacks and a
//     cancellation flag). Immutable after construction except for the flag.
//     The Deliver* methods guarantee that a cancelled command never invokes a
//     callback and that at most one callback fires.
//
//   - Response: a decoded reply plus the number of items loaded so far.
//
//   - Scope: ULID based identity used to cancel groups of commands.
//
//   - Error / RetCode: the error kinds surfaced to callers (InvalidRow,
//     ConcurrentModification, ExecutionTimeout, ProtocolError, ...). Use
//     errors.Is with the Err* sentinels.
//
//   - Event: fire-and-forget notifications (errors, logs, link state) that a
//     connection publishes to its collaborators.
//
//   - ConnectionConfig / ServerConfig: configuration for clients and the
//     in-memory server.
package common
