// Package serial opens serial devices as register protocol ports.
package serial

import (
	"github.com/tarm/serial"

	"github.com/biorob/remregs/pkg/regs/port/stream"
)

// Config holds the serial link configuration.
type Config struct {
	// Device is the device path (e.g. "/dev/ttyUSB0", "COM3").
	Device string
	// Baud is the line rate. Defaults to 57600, the rate of the
	// radio links this protocol was designed for.
	Baud int
}

// DefaultBaud is used when Config.Baud is zero.
const DefaultBaud = 57600

// Open opens the device with blocking reads and wraps it into a
// stream port.
func Open(conf *Config) (*stream.Port, error) {
	baud := conf.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: conf.Device, Baud: baud})
	if err != nil {
		return nil, err
	}
	return stream.New(port), nil
}
