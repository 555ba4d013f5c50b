package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cm"
	"github.com/mklimuk/i2cm/cmd/i2cm/console"
)

// scannable 7-bit address window, reserved addresses excluded
const scanFirst = 0x08
const scanLast = 0x77

var scanCmd = cli.Command{
	Name:  "scan",
	Usage: "probe the address window with zero-length writes",
	Flags: []cli.Flag{busFlag},
	Action: func(c *cli.Context) error {
		reg, id, closer, err := openSelected(c)
		if err != nil {
			return console.Exitf(1, "could not open bus: %s", console.Red(err))
		}
		defer closer()

		console.PInfof(console.PictoScan, "scanning bus %d", id)
		found := 0
		var grid strings.Builder
		grid.WriteString("    ")
		for col := 0; col < 16; col++ {
			grid.WriteString(fmt.Sprintf(" %2x", col))
		}
		grid.WriteString("\n")
		for row := 0x00; row <= 0x70; row += 0x10 {
			grid.WriteString(fmt.Sprintf("%02x: ", row))
			for col := 0; col < 16; col++ {
				addr := row + col
				if addr < scanFirst || addr > scanLast {
					grid.WriteString("   ")
					continue
				}
				err := reg.MasterWrite(c.Context, id, byte(addr), nil)
				switch {
				case err == nil:
					grid.WriteString(console.Green(fmt.Sprintf(" %02x", addr)))
					found++
				case errors.Is(err, i2cm.ErrAddrNack):
					grid.WriteString(" --")
				default:
					console.Debugf("address %#02x: %s", addr, err)
					grid.WriteString(console.Red(" ??"))
				}
			}
			grid.WriteString("\n")
		}
		console.Print(grid.String())
		console.PInfof(console.PictoFinish, "%d device(s) found", found)
		return nil
	},
}
