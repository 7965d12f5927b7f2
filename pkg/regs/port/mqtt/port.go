// Package mqtt provides a register protocol port over MQTT topics.
package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/biorob/remregs/pkg/regs"
)

// Config holds the MQTT link configuration.
type Config struct {
	// ServerURL is the broker address (e.g. "tcp://host:1883").
	ServerURL string
	// ClientID identifies this endpoint to the broker.
	ClientID string
	// SubTopic carries inbound link bytes.
	SubTopic string
	// PubTopic carries outbound link bytes.
	PubTopic string
}

// Port tunnels the byte link through a pair of MQTT topics, the
// radio-link analog of a direct serial connection. Outbound bytes are
// buffered and published as one message per Flush so each reply frame
// travels in a single publish.
type Port struct {
	conf   Config
	client paho.Client
	byteCh chan byte

	wbuf  []byte
	wlock sync.Mutex
}

const rxBufferSize = 256

// Connect connects to the broker and subscribes to the inbound topic.
func Connect(conf *Config) (*Port, error) {
	p := &Port{conf: *conf, byteCh: make(chan byte, rxBufferSize)}
	opts := paho.NewClientOptions().
		AddBroker(conf.ServerURL).
		SetClientID(conf.ClientID).
		SetCleanSession(true)
	p.client = paho.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	if token := p.client.Subscribe(conf.SubTopic, 0, p.handleMsg); token.Wait() && token.Error() != nil {
		p.client.Disconnect(0)
		return nil, token.Error()
	}
	return p, nil
}

func (p *Port) handleMsg(_ paho.Client, msg paho.Message) {
	for _, b := range msg.Payload() {
		select {
		case p.byteCh <- b:
		default:
			glog.Warningf("mqtt port %s: rx overflow, byte dropped", p.conf.SubTopic)
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
	case b := <-p.byteCh:
		return b, nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b := <-p.byteCh:
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

// Flush implements regs.Flusher, publishing buffered bytes as one
// message.
func (p *Port) Flush() error {
	p.wlock.Lock()
	buf := p.wbuf
	p.wbuf = nil
	p.wlock.Unlock()
	if len(buf) == 0 {
		return nil
	}
	token := p.client.Publish(p.conf.PubTopic, 0, false, buf)
	token.Wait()
	return token.Error()
}

// Close unsubscribes and disconnects from the broker.
func (p *Port) Close() error {
	if token := p.client.Unsubscribe(p.conf.SubTopic); token.Wait() && token.Error() != nil {
		glog.Warningf("mqtt port %s: unsubscribe: %v", p.conf.SubTopic, token.Error())
	}
	p.client.Disconnect(250)
	return nil
}
