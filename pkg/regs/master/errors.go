package master

import "errors"

var (
	// ErrNotSynced indicates no session is established.
	ErrNotSynced = errors.New("not synced")
	// ErrNak indicates the slave refused the operation (no handler
	// claimed the read).
	ErrNak = errors.New("operation refused")
	// ErrDesynced indicates the slave signaled loss of
	// synchronization; the session must be re-established.
	ErrDesynced = errors.New("link desynchronized")
	// ErrAddrOutOfRange indicates an address beyond the 10-bit space.
	ErrAddrOutOfRange = errors.New("register address out of range")
)
