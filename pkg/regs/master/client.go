package master

import (
	"time"

	"github.com/biorob/remregs/pkg/regs"
)

// Defaults for Client tunables.
const (
	// DefaultTimeout bounds each reply wait. Slightly longer than the
	// slave's own per-byte timeout so a desync burst triggered by a
	// stale session still lands within the first wait.
	DefaultTimeout = 6 * time.Second

	// syncAttempts is how many sync requests are sent before giving
	// up. The first request against a stale session is consumed as a
	// header byte and answered with a desync burst; the second lands
	// on an unsynchronized slave.
	syncAttempts = 2

	// drainPoll is the per-byte wait while discarding stale input.
	drainPoll = 2 * time.Millisecond
)

// Client is the master-side endpoint of the register protocol.
type Client struct {
	// Timeout bounds each reply wait.
	Timeout time.Duration

	port   regs.Port
	synced bool
}

// New creates a Client on port. No handshake is performed until Sync.
func New(port regs.Port) *Client {
	return &Client{Timeout: DefaultTimeout, port: port}
}

// Synced reports whether a session is established.
func (c *Client) Synced() bool {
	return c.synced
}

// Sync establishes a session with the slave, discarding any stale
// input (e.g. a pending desync burst) first.
func (c *Client) Sync() error {
	c.synced = false
	c.drain()
	for attempt := 0; attempt < syncAttempts; attempt++ {
		if err := c.writeFlush(regs.SyncRequest); err != nil {
			return err
		}
		v, err := c.waitSyncAck()
		if err == regs.ErrTimeout {
			continue
		}
		if err != nil {
			return err
		}
		if v == regs.SyncAck {
			c.synced = true
			return nil
		}
		// unexpected byte, clear the line and retry
		c.drain()
	}
	return ErrNotSynced
}

func (c *Client) writeFlush(b byte) error {
	if err := c.port.WriteByte(b); err != nil {
		return err
	}
	return regs.FlushPort(c.port)
}

// waitSyncAck reads the sync reply, skipping desync burst filler.
func (c *Client) waitSyncAck() (byte, error) {
	for {
		v, err := c.port.ReadByte(c.Timeout)
		if err != nil {
			return 0, err
		}
		if v != regs.ResyncByte {
			return v, nil
		}
	}
}

// ReadReg8 reads an 8-bit register.
func (c *Client) ReadReg8(addr uint16) (byte, error) {
	data, err := c.transact(regs.OpRead8, addr, nil)
	if err != nil {
		return 0, err
	}
	return data.Byte(), nil
}

// ReadReg16 reads a 16-bit register.
func (c *Client) ReadReg16(addr uint16) (uint16, error) {
	data, err := c.transact(regs.OpRead16, addr, nil)
	if err != nil {
		return 0, err
	}
	return data.Word(), nil
}

// ReadReg32 reads a 32-bit register.
func (c *Client) ReadReg32(addr uint16) (uint32, error) {
	data, err := c.transact(regs.OpRead32, addr, nil)
	if err != nil {
		return 0, err
	}
	return data.DWord(), nil
}

// ReadRegMB reads a multibyte register.
func (c *Client) ReadRegMB(addr uint16) ([]byte, error) {
	data, err := c.transact(regs.OpReadMB, addr, nil)
	if err != nil {
		return nil, err
	}
	out := make([]byte, data.Size())
	copy(out, data.Bytes())
	return out, nil
}

// WriteReg8 writes an 8-bit register.
func (c *Client) WriteReg8(addr uint16, v byte) error {
	_, err := c.transact(regs.OpWrite8, addr, []byte{v})
	return err
}

// WriteReg16 writes a 16-bit register.
func (c *Client) WriteReg16(addr uint16, v uint16) error {
	var data regs.RegisterData
	data.SetWord(v)
	_, err := c.transact(regs.OpWrite16, addr, data.WireBytes(regs.OpWrite16))
	return err
}

// WriteReg32 writes a 32-bit register.
func (c *Client) WriteReg32(addr uint16, v uint32) error {
	var data regs.RegisterData
	data.SetDWord(v)
	_, err := c.transact(regs.OpWrite32, addr, data.WireBytes(regs.OpWrite32))
	return err
}

// WriteRegMB writes a multibyte register of up to
// regs.MaxMultibyteSize bytes.
func (c *Client) WriteRegMB(addr uint16, p []byte) error {
	if len(p) > regs.MaxMultibyteSize {
		return regs.ErrDataTooLong
	}
	_, err := c.transact(regs.OpWriteMB, addr, p)
	return err
}

// transact performs one request/reply cycle.
func (c *Client) transact(op regs.Operation, addr uint16, payload []byte) (*regs.RegisterData, error) {
	if !c.synced {
		return nil, ErrNotSynced
	}
	if addr > regs.AddrMax {
		return nil, ErrAddrOutOfRange
	}

	b1, b2 := regs.Header{Op: op, Addr: addr}.Bytes()
	req := make([]byte, 0, len(payload)+3)
	req = append(req, b1, b2)
	if op == regs.OpWriteMB {
		req = append(req, byte(len(payload)))
	}
	req = append(req, payload...)
	for _, b := range req {
		if err := c.port.WriteByte(b); err != nil {
			return nil, err
		}
	}
	if err := regs.FlushPort(c.port); err != nil {
		return nil, err
	}

	v, err := c.replyByte()
	if err != nil {
		return nil, err
	}
	switch v {
	case regs.Nak:
		return nil, ErrNak
	case regs.Ack:
	default:
		return nil, c.desynced()
	}

	var data regs.RegisterData
	if op.IsRead() {
		n := op.Width()
		if op == regs.OpReadMB {
			sz, err := c.rawByte()
			if err != nil {
				return nil, err
			}
			if int(sz) > regs.MaxMultibyteSize {
				return nil, c.desynced()
			}
			n = int(sz)
		}
		var raw [regs.MaxMultibyteSize]byte
		for i := 0; i < n; i++ {
			if raw[i], err = c.rawByte(); err != nil {
				return nil, err
			}
		}
		if err := data.SetWireBytes(op, raw[:n]); err != nil {
			return nil, err
		}
	}
	return &data, nil
}

// replyByte reads the reply status byte. A timeout drops the session;
// 0xFF here is desync burst filler, never a valid status.
func (c *Client) replyByte() (byte, error) {
	v, err := c.rawByte()
	if err != nil {
		return 0, err
	}
	if v == regs.ResyncByte {
		return 0, c.desynced()
	}
	return v, nil
}

// rawByte reads one reply byte without interpretation; payload bytes
// may hold any value including 0xFF.
func (c *Client) rawByte() (byte, error) {
	v, err := c.port.ReadByte(c.Timeout)
	if err == regs.ErrTimeout {
		c.synced = false
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (c *Client) desynced() error {
	c.synced = false
	c.drain()
	return ErrDesynced
}

// drain discards pending input until the line goes quiet.
func (c *Client) drain() {
	for c.port.Available() {
		if _, err := c.port.ReadByte(drainPoll); err != nil {
			return
		}
	}
}
