package main

import (
	"bytes"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cm"
	"github.com/mklimuk/i2cm/cmd/i2cm/console"
	"github.com/mklimuk/i2cm/sim"
)

var selftestCmd = cli.Command{
	Name:  "selftest",
	Usage: "exercise the transaction engine against a simulated controller",
	Action: func(c *cli.Context) error {
		const addr = 0x50
		bus := sim.New()
		bus.Attach(addr, sim.NewMemory(256))
		engine := i2cm.NewEngine(bus, i2cm.WithPollDelay(time.Microsecond))

		payload := []byte{0x00, 0xDE, 0xAD, 0xBE, 0xEF}
		console.PInfof(console.PictoWrench, "writing %d byte(s) to %s", len(payload)-1, console.White("0x50"))
		if err := engine.WriteToAddr(c.Context, addr, payload); err != nil {
			return console.Exitf(1, "write failed: %s", console.Red(err))
		}
		// reposition to the start of the memory before reading back
		if err := engine.WriteToAddr(c.Context, addr, []byte{0x00}); err != nil {
			return console.Exitf(1, "reposition failed: %s", console.Red(err))
		}
		readback := make([]byte, len(payload)-1)
		if err := engine.ReadFromAddr(c.Context, addr, readback); err != nil {
			return console.Exitf(1, "read failed: %s", console.Red(err))
		}

		if console.IsVerbose(c.Context) {
			for _, event := range bus.Trace() {
				switch event.Op {
				case sim.OpWrite, sim.OpRead:
					console.Debugf("%s %#02x", event.Op, event.Data)
				default:
					console.Debug(event.Op.String())
				}
			}
		}
		if !bytes.Equal(readback, payload[1:]) {
			return console.Exitf(1, "readback mismatch: wrote %s, got %s",
				console.Red(payload[1:]), console.Red(readback))
		}
		console.PInfof(console.PictoFinish, "%s, %d operation(s) on the wire", console.Green("self test passed"), len(bus.Trace()))
		return nil
	},
}
