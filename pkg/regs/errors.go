package regs

import "errors"

var (
	// ErrTimeout indicates no byte arrived within the read timeout.
	ErrTimeout = errors.New("read timeout")
	// ErrDataTooLong indicates a payload exceeding MaxMultibyteSize.
	ErrDataTooLong = errors.New("data exceeds multibyte capacity")
	// ErrPortClosed indicates the underlying link is gone.
	ErrPortClosed = errors.New("port closed")
)
