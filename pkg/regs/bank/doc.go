// Package bank implements the slave side of the register protocol.
package bank

// A Bank owns one end of a byte-oriented link and decodes register
// requests into calls on application-supplied handlers. It is driven
// by polling: each call to Poll handles at most one complete request
// and produces exactly one reply (ACK plus payload, NAK, or the sync
// acknowledgement byte) before returning.
//
// The bank is single-threaded: the sync state, the request
// scratch payload and the handler registry are only touched from the
// polling control path. Callers driving the bank from multiple
// goroutines must provide their own exclusion.
