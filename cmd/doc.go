// Package cmd implements the command-line interface of rdm. It provides a
// hierarchical command structure for running the bundled server and for
// working with keys as a client.
//
// The package is organized into several subpackages:
//
//   - key: Row based key editing (show, add, update, rm-row, rm, ttl, rename),
//     raw command execution (exec) and a benchmark (perf)
//   - serve: Starts and configures the in-memory server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See rdm -help for a list of all commands.
package cmd
