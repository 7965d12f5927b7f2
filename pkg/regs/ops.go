package regs

// Operation identifies a register operation decoded from a request header.
type Operation byte

// Defined operations. The header encodes a 6-bit operation space of
// which these 8 values are assigned.
const (
	OpRead8 Operation = iota
	OpRead16
	OpRead32
	OpReadMB
	OpWrite8
	OpWrite16
	OpWrite32
	OpWriteMB
)

// AddrMax is the highest addressable register (10-bit address space).
const AddrMax uint16 = 0x03ff

// IsValid checks if it's a defined operation.
func (op Operation) IsValid() bool {
	return op <= OpWriteMB
}

// IsRead indicates a read operation.
func (op Operation) IsRead() bool {
	return op <= OpReadMB
}

// IsWrite indicates a write operation.
func (op Operation) IsWrite() bool {
	return op >= OpWrite8 && op <= OpWriteMB
}

// Width returns the fixed payload width in bytes, or -1 for the
// multibyte operations whose width is carried on the wire.
func (op Operation) Width() int {
	switch op {
	case OpRead8, OpWrite8:
		return 1
	case OpRead16, OpWrite16:
		return 2
	case OpRead32, OpWrite32:
		return 4
	case OpReadMB, OpWriteMB:
		return -1
	}
	return 0
}

// String returns a short mnemonic for logs and shells.
func (op Operation) String() string {
	switch op {
	case OpRead8:
		return "read8"
	case OpRead16:
		return "read16"
	case OpRead32:
		return "read32"
	case OpReadMB:
		return "readmb"
	case OpWrite8:
		return "write8"
	case OpWrite16:
		return "write16"
	case OpWrite32:
		return "write32"
	case OpWriteMB:
		return "writemb"
	}
	return "invalid"
}

// Header is the decoded form of the 2-byte request header.
type Header struct {
	Op   Operation
	Addr uint16
}

// DecodeHeader extracts the operation and the 10-bit address.
func DecodeHeader(b1, b2 byte) Header {
	return Header{
		Op:   Operation(b1 >> 2),
		Addr: uint16(b1&0x03)<<8 | uint16(b2),
	}
}

// Bytes returns encoded header bytes for sending.
func (h Header) Bytes() (b1, b2 byte) {
	return byte(h.Op)<<2 | byte(h.Addr>>8)&0x03, byte(h.Addr)
}
