package bank

import (
	"context"
	"time"

	"github.com/biorob/remregs/pkg/regs"
)

// SyncState is the link synchronization state.
type SyncState byte

const (
	// Unsynced means no session is established; only sync requests
	// are accepted.
	Unsynced SyncState = iota
	// Synced means a plain session is established.
	Synced
	// SyncedWithChecksum means a session with the checksum extension
	// was requested. Requests are handled like Synced; no checksum
	// byte is emitted.
	SyncedWithChecksum
)

// String returns a short state name.
func (s SyncState) String() string {
	switch s {
	case Synced:
		return "synced"
	case SyncedWithChecksum:
		return "synced+checksum"
	}
	return "unsynced"
}

// Defaults for Bank tunables.
const (
	DefaultTimeout      = 5 * time.Second
	DefaultPollInterval = 10 * time.Millisecond
)

// Bank is the slave-side endpoint of the register protocol.
type Bank struct {
	// Timeout bounds each single-byte read during request framing.
	Timeout time.Duration
	// PollInterval paces Run between polls.
	PollInterval time.Duration

	port     regs.Port
	state    SyncState
	registry Registry
}

// New creates a Bank on port and emits the initial desync burst to
// flush the master's framing from any prior state.
func New(port regs.Port) (*Bank, error) {
	b := &Bank{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		port:         port,
	}
	if err := b.desync(true); err != nil {
		return nil, err
	}
	if err := regs.FlushPort(port); err != nil {
		return nil, err
	}
	return b, nil
}

// State gets the current synchronization state.
func (b *Bank) State() SyncState {
	return b.state
}

// Register adds a handler to the bank's registry.
func (b *Bank) Register(h Handler) error {
	return b.registry.Register(h)
}

// Unregister removes a previously registered handler.
func (b *Bank) Unregister(h Handler) bool {
	return b.registry.Unregister(h)
}

// Poll handles at most one pending request and returns. It returns
// promptly when no byte is waiting. The returned error reports
// transport failures only; protocol-level failures are answered on the
// wire (NAK or desync burst) and are not errors.
func (b *Bank) Poll() error {
	if !b.port.Available() {
		return nil
	}
	err := b.poll()
	if ferr := regs.FlushPort(b.port); err == nil {
		err = ferr
	}
	return err
}

// Run polls the bank until ctx is done. Implements framework.Runnable.
func (b *Bank) Run(ctx context.Context) error {
	interval := b.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := b.Poll(); err != nil {
				return err
			}
		}
	}
}

func (b *Bank) poll() error {
	b1, timedOut, err := b.readByte()
	if err != nil {
		return err
	}
	// not expected right after Available, but the port may have been
	// drained by a racing reader
	if timedOut {
		return b.desync(false)
	}

	// before sync, every byte is a sync request or noise
	if b.state == Unsynced {
		switch b1 {
		case regs.SyncRequest:
			b.state = Synced
		case regs.SyncRequestChecksum:
			b.state = SyncedWithChecksum
		default:
			return nil
		}
		return b.port.WriteByte(regs.SyncAck)
	}

	b2, timedOut, err := b.readByte()
	if err != nil {
		return err
	}
	if timedOut || (b1 == regs.ResyncByte && b2 == regs.ResyncByte) {
		return b.desync(false)
	}

	hdr := regs.DecodeHeader(b1, b2)

	// request-scoped scratch payload shared with handlers
	var data regs.RegisterData
	var in [regs.MaxMultibyteSize]byte

	cnt := 0
	switch hdr.Op {
	case regs.OpWrite8, regs.OpWrite16, regs.OpWrite32:
		cnt = hdr.Op.Width()
	case regs.OpWriteMB:
		n, timedOut, err := b.readByte()
		if err != nil {
			return err
		}
		if timedOut {
			return b.desync(false)
		}
		// a length that cannot fit makes the frame unknowable
		if int(n) > regs.MaxMultibyteSize {
			return b.desync(false)
		}
		cnt = int(n)
	}

	for i := 0; i < cnt; i++ {
		v, timedOut, err := b.readByte()
		if err != nil {
			return err
		}
		if timedOut {
			return b.desync(false)
		}
		in[i] = v
	}

	ok := true
	var out []byte
	switch {
	case hdr.Op.IsRead():
		if ok = b.registry.FirstMatch(hdr.Op, hdr.Addr, &data); ok {
			out = data.WireBytes(hdr.Op)
		}
	case hdr.Op.IsWrite():
		// cnt was validated above, SetWireBytes cannot fail here
		_ = data.SetWireBytes(hdr.Op, in[:cnt])
		b.registry.Broadcast(hdr.Op, hdr.Addr, &data)
	default:
		// undefined operation: empty ACK, matching the wire behavior
		// of the original register banks
	}

	if b.state == SyncedWithChecksum {
		if err := b.writeChecksum(); err != nil {
			return err
		}
	}

	if !ok {
		return b.port.WriteByte(regs.Nak)
	}
	if err := b.port.WriteByte(regs.Ack); err != nil {
		return err
	}
	for _, v := range out {
		if err := b.port.WriteByte(v); err != nil {
			return err
		}
	}
	return nil
}

// readByte reads one byte from the port with the configured timeout.
// A timeout yields the 0xFF sentinel with timedOut set; other errors
// are transport failures.
func (b *Bank) readByte() (v byte, timedOut bool, err error) {
	v, err = b.port.ReadByte(b.Timeout)
	if err == regs.ErrTimeout {
		return regs.ResyncByte, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, false, nil
}

// desync drops the session and emits the burst informing the master.
// The burst is suppressed when already unsynchronized, unless forced,
// to avoid unbounded output while idle.
func (b *Bank) desync(force bool) error {
	emit := force || b.state != Unsynced
	b.state = Unsynced
	if !emit {
		return nil
	}
	for i := 0; i < regs.DesyncBurstLen; i++ {
		if err := b.port.WriteByte(regs.ResyncByte); err != nil {
			return err
		}
	}
	return nil
}

// writeChecksum is the emission point for the checksum extension on
// SyncedWithChecksum sessions. The extension is not implemented and no
// byte is sent.
func (b *Bank) writeChecksum() error {
	return nil
}
