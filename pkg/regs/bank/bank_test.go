package bank

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biorob/remregs/pkg/regs"
)

// testPort is a scripted in-memory port. An empty input queue
// simulates a transport stall: reads report a timeout immediately.
type testPort struct {
	in      []byte
	out     []byte
	flushes int
}

func (p *testPort) Available() bool {
	return len(p.in) > 0
}

func (p *testPort) ReadByte(time.Duration) (byte, error) {
	if len(p.in) == 0 {
		return 0, regs.ErrTimeout
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b, nil
}

func (p *testPort) WriteByte(b byte) error {
	p.out = append(p.out, b)
	return nil
}

func (p *testPort) Flush() error {
	p.flushes++
	return nil
}

func (p *testPort) feed(b ...byte) {
	p.in = append(p.in, b...)
}

func (p *testPort) take() []byte {
	out := p.out
	p.out = nil
	return out
}

func burst() []byte {
	return bytes.Repeat([]byte{regs.ResyncByte}, regs.DesyncBurstLen)
}

func newTestBank(t *testing.T) (*Bank, *testPort) {
	port := &testPort{}
	b, err := New(port)
	require.NoError(t, err)
	require.Equal(t, burst(), port.take(), "construction burst")
	require.Equal(t, Unsynced, b.State())
	return b, port
}

func sync(t *testing.T, b *Bank, port *testPort) {
	port.feed(regs.SyncRequest)
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.SyncAck}, port.take())
	require.Equal(t, Synced, b.State())
}

type regCall struct {
	op   regs.Operation
	addr uint16
	data []byte
}

// recorder records every dispatch and optionally claims reads.
type recorder struct {
	claim  bool
	onCall func(data *regs.RegisterData)
	calls  []regCall
}

func (h *recorder) HandleRegister(op regs.Operation, addr uint16, data *regs.RegisterData) bool {
	h.calls = append(h.calls, regCall{op, addr, append([]byte(nil), data.Bytes()...)})
	if h.onCall != nil {
		h.onCall(data)
	}
	return h.claim
}

func TestPollIdle(t *testing.T) {
	b, port := newTestBank(t)
	require.NoError(t, b.Poll())
	require.Empty(t, port.take())
	require.Equal(t, Unsynced, b.State())
}

func TestSyncHandshake(t *testing.T) {
	testCases := []struct {
		name  string
		in    byte
		state SyncState
	}{
		{"plain", regs.SyncRequest, Synced},
		{"checksum", regs.SyncRequestChecksum, SyncedWithChecksum},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, port := newTestBank(t)
			port.feed(tc.in)
			require.NoError(t, b.Poll())
			require.Equal(t, []byte{regs.SyncAck}, port.take())
			require.Equal(t, tc.state, b.State())
		})
	}
}

func TestUnsyncedIgnoresNoise(t *testing.T) {
	b, port := newTestBank(t)
	for _, v := range []byte{0x00, 0x13, 0x55, 0xfe, regs.ResyncByte} {
		port.feed(v)
		require.NoError(t, b.Poll())
		require.Empty(t, port.take())
		require.Equal(t, Unsynced, b.State())
	}
}

func TestResyncPattern(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	port.feed(regs.ResyncByte, regs.ResyncByte)
	require.NoError(t, b.Poll())
	require.Equal(t, burst(), port.take())
	require.Equal(t, Unsynced, b.State())

	// sending the pattern again is equivalent: still unsynced, and no
	// further burst while idle
	port.feed(regs.ResyncByte, regs.ResyncByte)
	require.NoError(t, b.Poll())
	require.NoError(t, b.Poll())
	require.Empty(t, port.take())
	require.Equal(t, Unsynced, b.State())
}

func TestWrite8(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	h := &recorder{}
	require.NoError(t, b.Register(h))

	port.feed(0x10, 0x01, 0x01) // write8 addr 1, data 1
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Ack}, port.take())
	require.Equal(t, []regCall{{regs.OpWrite8, 1, []byte{1}}}, h.calls)
}

func TestWriteAckedWithoutHandlers(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	port.feed(0x10, 0x01, 0x01)
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Ack}, port.take())
}

func TestRead32(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	h := &recorder{claim: true, onCall: func(data *regs.RegisterData) {
		data.SetDWord(12345)
	}}
	require.NoError(t, b.Register(h))

	port.feed(0x08, 0x01) // read32 addr 1
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Ack, 0x39, 0x30, 0x00, 0x00}, port.take())
	require.Equal(t, regs.OpRead32, h.calls[0].op)
	require.Equal(t, uint16(1), h.calls[0].addr)
}

func TestReadUnclaimed(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	h := &recorder{}
	require.NoError(t, b.Register(h))

	port.feed(0x00, 0x07) // read8 addr 7
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Nak}, port.take())
	require.Len(t, h.calls, 1)
	require.Equal(t, Synced, b.State(), "a NAK does not drop the session")
}

func TestReadFirstMatchOrder(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	h1 := &recorder{}
	h2 := &recorder{claim: true, onCall: func(data *regs.RegisterData) {
		data.SetByte(42)
	}}
	h3 := &recorder{claim: true}
	require.NoError(t, b.Register(h1))
	require.NoError(t, b.Register(h2))
	require.NoError(t, b.Register(h3))

	port.feed(0x00, 0x00) // read8 addr 0
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Ack, 42}, port.take())
	require.Len(t, h1.calls, 1)
	require.Len(t, h2.calls, 1)
	require.Empty(t, h3.calls, "dispatch stops at the first claim")
}

func TestWriteBroadcastOrder(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	var order []int
	mk := func(n int) Handler {
		return &recorder{onCall: func(*regs.RegisterData) {
			order = append(order, n)
		}}
	}
	for i := 1; i <= 3; i++ {
		require.NoError(t, b.Register(mk(i)))
	}

	port.feed(0x14, 0x02, 0x34, 0x12) // write16 addr 2
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Ack}, port.take())
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestMultibyteRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 7, regs.MaxMultibyteSize} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			b, port := newTestBank(t)
			sync(t, b, port)

			var stored []byte
			echo := HandlerFunc(func(op regs.Operation, addr uint16, data *regs.RegisterData) bool {
				switch op {
				case regs.OpWriteMB:
					stored = append(stored[:0], data.Bytes()...)
				case regs.OpReadMB:
					data.SetBytes(stored)
				default:
					return false
				}
				return true
			})
			require.NoError(t, b.Register(echo))

			payload := make([]byte, size)
			for i := range payload {
				payload[i] = byte(i + 1)
			}

			// writemb addr 5
			port.feed(0x1c, 0x05, byte(size))
			port.feed(payload...)
			require.NoError(t, b.Poll())
			require.Equal(t, []byte{regs.Ack}, port.take())
			// bytes.Equal: an empty payload may surface as a nil slice
			require.True(t, bytes.Equal(payload, stored))

			// readmb addr 5
			port.feed(0x0c, 0x05)
			require.NoError(t, b.Poll())
			expect := append([]byte{regs.Ack, byte(size)}, payload...)
			require.Equal(t, expect, port.take())
		})
	}
}

func TestMultibyteWriteTooLong(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	h := &recorder{}
	require.NoError(t, b.Register(h))

	port.feed(0x1c, 0x05, regs.MaxMultibyteSize+1)
	require.NoError(t, b.Poll())
	require.Equal(t, burst(), port.take())
	require.Equal(t, Unsynced, b.State())
	require.Empty(t, h.calls)
}

func TestMidFrameTimeout(t *testing.T) {
	testCases := []struct {
		name string
		in   []byte
	}{
		{"missing header byte 2", []byte{0x10}},
		{"missing write8 data", []byte{0x10, 0x01}},
		{"missing writemb length", []byte{0x1c, 0x05}},
		{"short writemb data", []byte{0x1c, 0x05, 3, 1, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, port := newTestBank(t)
			sync(t, b, port)

			h := &recorder{claim: true}
			require.NoError(t, b.Register(h))

			port.feed(tc.in...)
			require.NoError(t, b.Poll())
			require.Equal(t, burst(), port.take(), "desync burst, no ACK/NAK")
			require.Equal(t, Unsynced, b.State())
			require.Empty(t, h.calls)
		})
	}
}

func TestUndefinedOperation(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	h := &recorder{claim: true}
	require.NoError(t, b.Register(h))

	port.feed(0x24, 0x00) // operation 9, no payload defined
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Ack}, port.take())
	require.Empty(t, h.calls)
	require.Equal(t, Synced, b.State())
}

func TestChecksumSessionRequests(t *testing.T) {
	b, port := newTestBank(t)
	port.feed(regs.SyncRequestChecksum)
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.SyncAck}, port.take())
	require.Equal(t, SyncedWithChecksum, b.State())

	h := &recorder{claim: true, onCall: func(data *regs.RegisterData) {
		data.SetByte(9)
	}}
	require.NoError(t, b.Register(h))

	// no checksum byte is emitted; the reply is identical to a plain
	// session
	port.feed(0x00, 0x00)
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Ack, 9}, port.take())
}

func TestUnregisterStopsDispatch(t *testing.T) {
	b, port := newTestBank(t)
	sync(t, b, port)

	h := &recorder{claim: true, onCall: func(data *regs.RegisterData) {
		data.SetByte(1)
	}}
	require.NoError(t, b.Register(h))
	require.True(t, b.Unregister(h))

	port.feed(0x00, 0x00)
	require.NoError(t, b.Poll())
	require.Equal(t, []byte{regs.Nak}, port.take())
	require.Empty(t, h.calls)
}

func TestPollFlushesPort(t *testing.T) {
	b, port := newTestBank(t)
	port.feed(regs.SyncRequest)
	require.NoError(t, b.Poll())
	require.True(t, port.flushes > 0)
}
