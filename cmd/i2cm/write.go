package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cm/cmd/i2cm/console"
)

var writeCmd = cli.Command{
	Name:      "write",
	Usage:     "write bytes to a slave device",
	ArgsUsage: "ADDR BYTE [BYTE...]",
	Flags: []cli.Flag{
		busFlag,
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "skip the confirmation prompt",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return console.Exitf(2, "usage: write ADDR BYTE [BYTE...]")
		}
		addr, err := parseAddr(c.Args().Get(0))
		if err != nil {
			return console.Exitf(2, "bad address: %s", console.Red(err))
		}
		data := make([]byte, 0, c.NArg()-1)
		for _, arg := range c.Args().Slice()[1:] {
			v, err := strconv.ParseUint(arg, 0, 8)
			if err != nil {
				return console.Exitf(2, "bad byte %q", arg)
			}
			data = append(data, byte(v))
		}
		if !c.Bool("yes") {
			question := fmt.Sprintf("write %d byte(s) to %s?", len(data), console.White(fmt.Sprintf("%#02x", addr)))
			if !console.Confirm(question) {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		reg, id, closer, err := openSelected(c)
		if err != nil {
			return console.Exitf(1, "could not open bus: %s", console.Red(err))
		}
		defer closer()

		if err = reg.MasterWrite(c.Context, id, addr, data); err != nil {
			return console.Exitf(1, "write failed: %s", console.Red(err))
		}
		console.PInfof(console.PictoFinish, "%d byte(s) written to %#02x", len(data), addr)
		return nil
	},
}
