// Package unix implements the Unix domain socket medium of the transport layer
// for a server running on the same machine. Endpoints are socket paths; a stale
// socket file is removed before listening.
//
// The command pipeline and the accept loop are inherited from the base package.
package unix
