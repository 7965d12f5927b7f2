package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/biorob/remregs/pkg/framework"
	"github.com/biorob/remregs/pkg/regs"
	"github.com/biorob/remregs/pkg/regs/bank"
	mqttport "github.com/biorob/remregs/pkg/regs/port/mqtt"
	serialport "github.com/biorob/remregs/pkg/regs/port/serial"
)

// Demo register map.
const (
	// RegDeviceID exposes the machine identity (multibyte read).
	RegDeviceID uint16 = 0
	// RegUptime is seconds since start (32-bit read).
	RegUptime uint16 = 1
	// RegScratch8/16/32/MB are plain storage registers.
	RegScratch8  uint16 = 2
	RegScratch16 uint16 = 3
	RegScratch32 uint16 = 4
	RegScratchMB uint16 = 5
)

// demoRegs serves the demo register map.
type demoRegs struct {
	start time.Time
	id    []byte

	lock sync.Mutex
	b8   byte
	w16  uint16
	d32  uint32
	mb   []byte
}

func newDemoRegs() *demoRegs {
	d := &demoRegs{start: time.Now()}
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		id = "unknown"
	}
	if len(id) > regs.MaxMultibyteSize {
		id = id[:regs.MaxMultibyteSize]
	}
	d.id = []byte(id)
	return d
}

// HandleRegister implements bank.Handler.
func (d *demoRegs) HandleRegister(op regs.Operation, addr uint16, data *regs.RegisterData) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	switch {
	case op == regs.OpReadMB && addr == RegDeviceID:
		data.SetBytes(d.id)
	case op == regs.OpRead32 && addr == RegUptime:
		data.SetDWord(uint32(time.Since(d.start) / time.Second))
	case op == regs.OpRead8 && addr == RegScratch8:
		data.SetByte(d.b8)
	case op == regs.OpWrite8 && addr == RegScratch8:
		d.b8 = data.Byte()
	case op == regs.OpRead16 && addr == RegScratch16:
		data.SetWord(d.w16)
	case op == regs.OpWrite16 && addr == RegScratch16:
		d.w16 = data.Word()
	case op == regs.OpRead32 && addr == RegScratch32:
		data.SetDWord(d.d32)
	case op == regs.OpWrite32 && addr == RegScratch32:
		d.d32 = data.DWord()
	case op == regs.OpReadMB && addr == RegScratchMB:
		data.SetBytes(d.mb)
	case op == regs.OpWriteMB && addr == RegScratchMB:
		d.mb = append(d.mb[:0], data.Bytes()...)
	default:
		return false
	}
	glog.V(2).Infof("%v reg %d", op, addr)
	return true
}

var (
	device   = flag.String("device", "", "serial device path (e.g. /dev/ttyUSB0)")
	baud     = flag.Int("baud", serialport.DefaultBaud, "serial baud rate")
	mqttURL  = flag.String("mqtt", "", "MQTT broker URL (e.g. tcp://host:1883), used instead of -device")
	subTopic = flag.String("sub", "remregs/cmd", "MQTT inbound topic")
	pubTopic = flag.String("pub", "remregs/msg", "MQTT outbound topic")
	timeout  = flag.Duration("timeout", bank.DefaultTimeout, "per-byte read timeout")
	interval = flag.Duration("interval", bank.DefaultPollInterval, "poll interval")
)

func openPort() (regs.Port, error) {
	if *mqttURL != "" {
		return mqttport.Connect(&mqttport.Config{
			ServerURL: *mqttURL,
			ClientID:  "regservd",
			SubTopic:  *subTopic,
			PubTopic:  *pubTopic,
		})
	}
	return serialport.Open(&serialport.Config{Device: *device, Baud: *baud})
}

func main() {
	flag.Parse()
	if *device == "" && *mqttURL == "" {
		glog.Exit("one of -device or -mqtt is required")
	}

	port, err := openPort()
	if err != nil {
		glog.Exitf("open port: %v", err)
	}

	b, err := bank.New(port)
	if err != nil {
		glog.Exitf("create bank: %v", err)
	}
	b.Timeout = *timeout
	b.PollInterval = *interval
	if err = b.Register(newDemoRegs()); err != nil {
		glog.Exitf("register handlers: %v", err)
	}

	glog.Info("register bank serving")
	if err = framework.NewRunner().HandleSignals().Go(b).Wait(); err != nil {
		glog.Exitf("exit: %v", err)
	}
}
