// Package regs provides the wire-level vocabulary of the register protocol.
package regs

// The register protocol is communicated between a master (host) and a
// slave (device firmware) over a byte-oriented peer-to-peer channel
// (e.g. serial port or radio link) and exposes up to 1024 named
// registers of 8, 16, 32 bit or multibyte (up to 29 bytes) width.
//
// The master initiates every transaction. After a sync handshake the
// master sends a 2-byte request header carrying the operation and the
// register address, followed by the payload for write operations. The
// slave replies with ACK plus payload, or NAK. A timeout or a resync
// pattern on either side drops the link back to the unsynchronized
// state; the slave signals this with a burst of 0xFF bytes longer than
// any possible in-flight frame.
//
// Producer: device firmware (pkg/regs/bank)
// Consumer: host controller (pkg/regs/master)
