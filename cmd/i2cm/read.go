package main

import (
	"encoding/hex"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cm/cmd/i2cm/console"
)

var readCmd = cli.Command{
	Name:      "read",
	Usage:     "read bytes from a slave device",
	ArgsUsage: "ADDR COUNT",
	Flags: []cli.Flag{
		busFlag,
		&cli.IntFlag{
			Name:  "ptr",
			Usage: "write this register pointer before reading",
			Value: -1,
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return console.Exitf(2, "usage: read ADDR COUNT")
		}
		addr, err := parseAddr(c.Args().Get(0))
		if err != nil {
			return console.Exitf(2, "bad address: %s", console.Red(err))
		}
		count, err := strconv.Atoi(c.Args().Get(1))
		if err != nil || count < 0 {
			return console.Exitf(2, "bad count %q", c.Args().Get(1))
		}
		reg, id, closer, err := openSelected(c)
		if err != nil {
			return console.Exitf(1, "could not open bus: %s", console.Red(err))
		}
		defer closer()

		if ptr := c.Int("ptr"); ptr >= 0 {
			if err = reg.MasterWrite(c.Context, id, addr, []byte{byte(ptr)}); err != nil {
				return console.Exitf(1, "could not set pointer: %s", console.Red(err))
			}
		}
		buffer := make([]byte, count)
		if err = reg.MasterRead(c.Context, id, addr, buffer); err != nil {
			return console.Exitf(1, "read failed: %s", console.Red(err))
		}
		console.Print(hex.Dump(buffer))
		return nil
	},
}

func parseAddr(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}
