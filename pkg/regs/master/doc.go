// Package master implements the host side of the register protocol.
package master

// A Client issues register operations against a remote bank over a
// byte-oriented link: one transaction at a time, master-initiated.
// It performs the sync handshake, frames requests, and interprets
// ACK/NAK replies. A desync burst from the slave (a run of 0xFF where
// a reply was expected) drops the session; the caller re-establishes
// it with Sync.
//
// The client is not safe for concurrent use; the wire carries one
// transaction at a time.
