package regs

import "time"

// Port is one endpoint of a byte-oriented link.
type Port interface {
	// Available reports whether at least one byte can be read without
	// blocking.
	Available() bool
	// ReadByte reads one byte, waiting at most timeout. It returns
	// ErrTimeout when no byte arrived in time and ErrPortClosed when
	// the link is gone.
	ReadByte(timeout time.Duration) (byte, error)
	// WriteByte queues one byte for sending.
	WriteByte(b byte) error
}

// Flusher is implemented by ports that buffer written bytes until an
// explicit flush (e.g. packet-based links).
type Flusher interface {
	Flush() error
}

// FlushPort flushes p if it buffers writes.
func FlushPort(p Port) error {
	if f, ok := p.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
