// Package stream adapts byte streams to register protocol ports.
package stream

import (
	"io"
	"sync"
	"time"

	"github.com/biorob/remregs/pkg/regs"
)

// Port adapts an io.ReadWriter (serial port, net.Conn, pipe) to
// regs.Port. A background goroutine drains the stream into a buffered
// channel, providing the non-blocking Available query and bounded
// ReadByte waits on top of a plain blocking Read.
type Port struct {
	rw     io.ReadWriter
	byteCh chan byte

	wbuf  []byte
	wlock sync.Mutex
}

// rxBufferSize bounds buffered inbound bytes. Larger than a desync
// burst plus a full frame so nothing is dropped mid-transaction.
const rxBufferSize = 128

// New wraps rw and starts the read goroutine. The goroutine exits
// when rw reports any read error; Close the underlying stream to
// release it.
func New(rw io.ReadWriter) *Port {
	p := &Port{rw: rw, byteCh: make(chan byte, rxBufferSize)}
	go p.readLoop()
	return p
}

func (p *Port) readLoop() {
	buf := make([]byte, 1)
	for {
		n, err := p.rw.Read(buf)
		if n > 0 {
			p.byteCh <- buf[0]
		}
		if err != nil {
			close(p.byteCh)
			return
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

// WriteByte implements regs.Port. Bytes are buffered until Flush to
// keep reply frames in as few stream writes as possible.
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
	_, err := p.rw.Write(buf)
	return err
}

// Close closes the underlying stream when it supports closing.
func (p *Port) Close() error {
	if c, ok := p.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
