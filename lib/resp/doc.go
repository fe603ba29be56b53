// Package resp implements the Redis serialization protocol (RESP2) used between
// the client runtime and the remote key-value store.
//
// The package focuses on:
//   - A tagged Value type covering every RESP2 reply kind
//   - A streaming Reader that reports array progress while a reply arrives
//   - A Writer that encodes command vectors as arrays of bulk strings
//
// Key Components:
//
//   - Value: tagged union over simple string, error, integer, bulk string,
//     array and null. Array elements are themselves Values.
//
//   - Reader: wraps a bufio.Reader and decodes exactly one Value per call.
//     An optional progress hook is invoked after each top level array element
//     is decoded, which is what the transporter uses for loaded item counts.
//
//   - Writer: encodes command vectors and reply values.
//
// Malformed input is reported as *ProtocolError so callers can distinguish it
// from I/O errors (which are returned unchanged).
//
// Thread Safety:
//
//	Readers and Writers are not safe for concurrent use. The transporter owns
//	exactly one of each per physical connection.
package resp
