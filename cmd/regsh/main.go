package main

//go-build: CGO_ENABLED=0

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/biorob/remregs/pkg/regs"
	"github.com/biorob/remregs/pkg/regs/master"
	mqttport "github.com/biorob/remregs/pkg/regs/port/mqtt"
	serialport "github.com/biorob/remregs/pkg/regs/port/serial"
)

var (
	device   = flag.String("device", "", "serial device path (e.g. /dev/ttyUSB0)")
	baud     = flag.Int("baud", serialport.DefaultBaud, "serial baud rate")
	mqttURL  = flag.String("mqtt", "", "MQTT broker URL (e.g. tcp://host:1883), used instead of -device")
	subTopic = flag.String("sub", "remregs/msg", "MQTT inbound topic")
	pubTopic = flag.String("pub", "remregs/cmd", "MQTT outbound topic")
	timeout  = flag.Duration("timeout", master.DefaultTimeout, "reply timeout")
)

func openPort() (regs.Port, error) {
	if *mqttURL != "" {
		return mqttport.Connect(&mqttport.Config{
			ServerURL: *mqttURL,
			ClientID:  "regsh",
			SubTopic:  *subTopic,
			PubTopic:  *pubTopic,
		})
	}
	return serialport.Open(&serialport.Config{Device: *device, Baud: *baud})
}

func parseAddr(arg string) (uint16, error) {
	v, err := strconv.ParseUint(arg, 0, 16)
	if err != nil || uint16(v) > regs.AddrMax {
		return 0, fmt.Errorf("bad address %q", arg)
	}
	return uint16(v), nil
}

func parseVal(arg string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(arg, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", arg)
	}
	return v, nil
}

// argAddr extracts the address argument common to all register commands.
func argAddr(c *ishell.Context, n int, usage string) (uint16, bool) {
	if len(c.Args) != n {
		c.Err(errors.New("usage: " + usage))
		return 0, false
	}
	addr, err := parseAddr(c.Args[0])
	if err != nil {
		c.Err(err)
		return 0, false
	}
	return addr, true
}

func commands(client *master.Client) []*ishell.Cmd {
	return []*ishell.Cmd{
		{Name: "sync", Help: "sync", Func: func(c *ishell.Context) {
			if err := client.Sync(); err != nil {
				c.Err(err)
				return
			}
			c.Println("synced")
		}},
		{Name: "state", Help: "state", Func: func(c *ishell.Context) {
			if client.Synced() {
				c.Println("synced")
			} else {
				c.Println("unsynced")
			}
		}},
		{Name: "get8", Help: "get8 ADDR", Func: func(c *ishell.Context) {
			if addr, ok := argAddr(c, 1, "get8 ADDR"); ok {
				v, err := client.ReadReg8(addr)
				printResult(c, uint64(v), err)
			}
		}},
		{Name: "get16", Help: "get16 ADDR", Func: func(c *ishell.Context) {
			if addr, ok := argAddr(c, 1, "get16 ADDR"); ok {
				v, err := client.ReadReg16(addr)
				printResult(c, uint64(v), err)
			}
		}},
		{Name: "get32", Help: "get32 ADDR", Func: func(c *ishell.Context) {
			if addr, ok := argAddr(c, 1, "get32 ADDR"); ok {
				v, err := client.ReadReg32(addr)
				printResult(c, uint64(v), err)
			}
		}},
		{Name: "getmb", Help: "getmb ADDR", Func: func(c *ishell.Context) {
			if addr, ok := argAddr(c, 1, "getmb ADDR"); ok {
				p, err := client.ReadRegMB(addr)
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("%d bytes: %s\n", len(p), hex.EncodeToString(p))
			}
		}},
		{Name: "set8", Help: "set8 ADDR VALUE", Func: func(c *ishell.Context) {
			addr, ok := argAddr(c, 2, "set8 ADDR VALUE")
			if !ok {
				return
			}
			v, err := parseVal(c.Args[1], 8)
			if err == nil {
				err = client.WriteReg8(addr, byte(v))
			}
			printDone(c, err)
		}},
		{Name: "set16", Help: "set16 ADDR VALUE", Func: func(c *ishell.Context) {
			addr, ok := argAddr(c, 2, "set16 ADDR VALUE")
			if !ok {
				return
			}
			v, err := parseVal(c.Args[1], 16)
			if err == nil {
				err = client.WriteReg16(addr, uint16(v))
			}
			printDone(c, err)
		}},
		{Name: "set32", Help: "set32 ADDR VALUE", Func: func(c *ishell.Context) {
			addr, ok := argAddr(c, 2, "set32 ADDR VALUE")
			if !ok {
				return
			}
			v, err := parseVal(c.Args[1], 32)
			if err == nil {
				err = client.WriteReg32(addr, uint32(v))
			}
			printDone(c, err)
		}},
		{Name: "setmb", Help: "setmb ADDR HEXBYTES", Func: func(c *ishell.Context) {
			addr, ok := argAddr(c, 2, "setmb ADDR HEXBYTES")
			if !ok {
				return
			}
			p, err := hex.DecodeString(c.Args[1])
			if err == nil {
				err = client.WriteRegMB(addr, p)
			}
			printDone(c, err)
		}},
	}
}

func printResult(c *ishell.Context, v uint64, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	c.Printf("%d (0x%x)\n", v, v)
}

func printDone(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	c.Println("ok")
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

	client := master.New(port)
	client.Timeout = *timeout

	shell := ishell.New()
	shell.Println("remregs console, 'help' for commands")
	shell.SetPrompt("regs > ")
	for _, cmd := range commands(client) {
		shell.AddCmd(cmd)
	}
	shell.Run()
}
