// Package websocket provides a register protocol port over a
// websocket connection, for browser-hosted consoles.
package websocket

import (
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/biorob/remregs/pkg/regs"
)

// Port tunnels the byte link through binary websocket messages.
// Outbound bytes are buffered and sent as one message per Flush.
type Port struct {
	conn   *websocket.Conn
	byteCh chan byte

	wbuf  []byte
	wlock sync.Mutex
}

const rxBufferSize = 256

// New wraps conn and starts receiving messages.
func New(conn *websocket.Conn) *Port {
	p := &Port{conn: conn, byteCh: make(chan byte, rxBufferSize)}
	go p.readLoop()
	return p
}

func (p *Port) readLoop() {
	for {
		var msg []byte
		if err := websocket.Message.Receive(p.conn, &msg); err != nil {
			close(p.byteCh)
			return
		}
		for _, b := range msg {
			p.byteCh <- b
		}
	}
}

// Available implements regs.Port.
func (p *Port) Available() bool {
	return len(p.byteCh) > 0
}

// ReadByte implements regs.Port.
func (p *Port) ReadByte(timeout time.Duration) (byte, error) {
	select {
	case b, ok := <-p.byteCh:
		if !ok {
			return 0, regs.ErrPortClosed
		}
		return b, nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b, ok := <-p.byteCh:
		if !ok {
			return 0, regs.ErrPortClosed
		}
		return b, nil
	case <-timer.C:
		return 0, regs.ErrTimeout
	}
}

// WriteByte implements regs.Port.
func (p *Port) WriteByte(b byte) error {
	p.wlock.Lock()
	p.wbuf = append(p.wbuf, b)
	p.wlock.Unlock()
	return nil
}

// Flush implements regs.Flusher.
func (p *Port) Flush() error {
	p.wlock.Lock()
	buf := p.wbuf
	p.wbuf = nil
	p.wlock.Unlock()
	if len(buf) == 0 {
		return nil
	}
	return websocket.Message.Send(p.conn, buf)
}

// Close closes the connection.
func (p *Port) Close() error {
	return p.conn.Close()
}
