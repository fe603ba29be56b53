// Package store defines the command engine behind the bundled key-value
// server. The server decodes RESP command lines and hands them to an IStore
// together with the database index selected by the client connection.
//
// Key Components:
//
//   - IStore Interface: Executes one command line against one numbered
//     database and answers with a RESP value. Errors are error replies
//     (ERR, WRONGTYPE) exactly as a client would see them.
//
//   - Info: Statistics about the keyspace, executed commands and expired keys.
//
// Implementations:
//
//	- Memory Store (mstore): Keeps strings, lists, hashes, sets and sorted sets
//	  in memory with per-key TTLs. Available in the
//	  "github.com/zxliu/RedisDesktopManager/lib/store/mstore" package.
package store
