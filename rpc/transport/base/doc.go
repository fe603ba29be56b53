// Package base provides the protocol agnostic core of the transport layer.
// It implements the client side command pipeline and the server side accept
// loop, independent of the network medium. Medium specific behavior (dialing,
// listening, socket options) is injected with the connectors defined in the
// transport package.
//
// Key Components:
//
//   - Transporter: Executes the commands of one physical connection strictly
//     one at a time in submission order. A single worker goroutine drains a
//     lock-free multi-producer queue, writes each command in RESP framing and
//     reads the reply with a deadline derived from the execution timeout.
//     Commands can be cancelled by scope while queued or running; the reply of a
//     cancelled command is still read from the wire but never delivered.
//
//   - commandQueue: Lock-free MPSC FIFO that, unlike a channel, can be walked
//     for scope cancellation.
//
//   - Server: Accept loop that serves every accepted connection on its own
//     goroutine and closes all of them on shutdown.
//
// Error handling:
//
//	A timeout, a malformed reply or a broken connection fails the running
//	command, emits an error event and drops the physical link. The next command
//	reconnects lazily, so a late reply is never attributed to another command.
//	Dialing is retried with exponential backoff and jitter.
//
// Metrics:
//
//	Each transporter exports Prometheus counters and a duration histogram labeled
//	with the connection name (VictoriaMetrics) and keeps a private go-metrics
//	registry for per-connection statistics.
package base
