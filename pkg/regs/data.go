package regs

import "encoding/binary"

// RegisterData carries the payload of one register operation. It holds
// an 8, 16 or 32 bit scalar or a byte sequence of up to
// MaxMultibyteSize bytes with an explicit size.
//
// Scalars are laid out little-endian, matching the wire byte order of
// the protocol. Conversions between the wire layout and the accessors
// happen only through the methods here; no other code reinterprets the
// buffer.
type RegisterData struct {
	buf  [MaxMultibyteSize]byte
	size int
}

// Reset clears the payload.
func (d *RegisterData) Reset() {
	d.buf = [MaxMultibyteSize]byte{}
	d.size = 0
}

// Size returns the current payload size in bytes.
func (d *RegisterData) Size() int {
	return d.size
}

// Byte returns the payload as an 8-bit scalar.
func (d *RegisterData) Byte() byte {
	return d.buf[0]
}

// SetByte stores an 8-bit scalar.
func (d *RegisterData) SetByte(v byte) {
	d.buf[0] = v
	d.size = 1
}

// Word returns the payload as a 16-bit scalar.
func (d *RegisterData) Word() uint16 {
	return binary.LittleEndian.Uint16(d.buf[:2])
}

// SetWord stores a 16-bit scalar.
func (d *RegisterData) SetWord(v uint16) {
	binary.LittleEndian.PutUint16(d.buf[:2], v)
	d.size = 2
}

// DWord returns the payload as a 32-bit scalar.
func (d *RegisterData) DWord() uint32 {
	return binary.LittleEndian.Uint32(d.buf[:4])
}

// SetDWord stores a 32-bit scalar.
func (d *RegisterData) SetDWord(v uint32) {
	binary.LittleEndian.PutUint32(d.buf[:4], v)
	d.size = 4
}

// Bytes returns the multibyte payload. The slice aliases the internal
// buffer and is only valid until the next mutation.
func (d *RegisterData) Bytes() []byte {
	return d.buf[:d.size]
}

// SetBytes stores a multibyte payload.
func (d *RegisterData) SetBytes(p []byte) error {
	if len(p) > MaxMultibyteSize {
		return ErrDataTooLong
	}
	copy(d.buf[:], p)
	d.size = len(p)
	return nil
}

// WireBytes returns the reply payload bytes for a read operation:
// the fixed-width scalar bytes, or size followed by data for OpReadMB.
func (d *RegisterData) WireBytes(op Operation) []byte {
	if op == OpReadMB {
		out := make([]byte, d.size+1)
		out[0] = byte(d.size)
		copy(out[1:], d.buf[:d.size])
		return out
	}
	return d.buf[:op.Width()]
}

// SetWireBytes loads the payload bytes carried on the wire for op.
// For the multibyte operations p is the raw data without the length
// prefix.
func (d *RegisterData) SetWireBytes(op Operation, p []byte) error {
	if op.Width() < 0 {
		return d.SetBytes(p)
	}
	if len(p) != op.Width() {
		return ErrDataTooLong
	}
	copy(d.buf[:], p)
	d.size = len(p)
	return nil
}
