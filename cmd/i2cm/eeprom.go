package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cm/cmd/i2cm/console"
	"github.com/mklimuk/i2cm/memory"
)

var eepromCmd = cli.Command{
	Name:  "eeprom",
	Usage: "AT24 EEPROM operations",
	Subcommands: cli.Commands{
		&eepromDumpCmd,
		&eepromLoadCmd,
	},
}

var eepromSizeFlag = &cli.IntFlag{
	Name:  "size",
	Usage: "device capacity in bytes",
	Value: 256,
}

var eepromOffsetFlag = &cli.IntFlag{
	Name:  "offset",
	Usage: "memory offset to start at",
}

var eepromDumpCmd = cli.Command{
	Name:      "dump",
	Usage:     "read EEPROM content",
	ArgsUsage: "ADDR",
	Flags: []cli.Flag{
		busFlag,
		eepromSizeFlag,
		eepromOffsetFlag,
		&cli.IntFlag{
			Name:  "count",
			Usage: "bytes to read, defaults to the rest of the device",
			Value: -1,
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "write binary content to a file instead of hexdumping",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exitf(2, "usage: eeprom dump ADDR")
		}
		addr, err := parseAddr(c.Args().Get(0))
		if err != nil {
			return console.Exitf(2, "bad address: %s", console.Red(err))
		}
		reg, id, closer, err := openSelected(c)
		if err != nil {
			return console.Exitf(1, "could not open bus: %s", console.Red(err))
		}
		defer closer()
		bus, _ := reg.Lookup(id)

		dev := memory.NewAT24(bus, addr, c.Int("size"))
		offset := c.Int("offset")
		count := c.Int("count")
		if count < 0 {
			count = dev.Size() - offset
		}
		buffer := make([]byte, count)
		if err = dev.Read(c.Context, offset, buffer); err != nil {
			return console.Exitf(1, "dump failed: %s", console.Red(err))
		}
		if out := c.String("out"); out != "" {
			if err = os.WriteFile(out, buffer, 0o644); err != nil {
				return console.Exitf(1, "could not write %s: %s", out, console.Red(err))
			}
			console.PInfof(console.PictoChip, "%d byte(s) dumped to %s", count, out)
			return nil
		}
		console.Print(hex.Dump(buffer))
		return nil
	},
}

var eepromLoadCmd = cli.Command{
	Name:      "load",
	Usage:     "write a file into the EEPROM",
	ArgsUsage: "ADDR FILE",
	Flags: []cli.Flag{
		busFlag,
		eepromSizeFlag,
		eepromOffsetFlag,
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "skip the confirmation prompt",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return console.Exitf(2, "usage: eeprom load ADDR FILE")
		}
		addr, err := parseAddr(c.Args().Get(0))
		if err != nil {
			return console.Exitf(2, "bad address: %s", console.Red(err))
		}
		data, err := os.ReadFile(c.Args().Get(1))
		if err != nil {
			return console.Exitf(1, "could not read %s: %s", c.Args().Get(1), console.Red(err))
		}
		if !c.Bool("yes") {
			question := fmt.Sprintf("overwrite %d byte(s) at %s?", len(data), console.White(fmt.Sprintf("%#02x", addr)))
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
		bus, _ := reg.Lookup(id)

		dev := memory.NewAT24(bus, addr, c.Int("size"))
		if err = dev.Write(c.Context, c.Int("offset"), data); err != nil {
			return console.Exitf(1, "load failed: %s", console.Red(err))
		}
		console.PInfof(console.PictoChip, "%d byte(s) written", len(data))
		return nil
	},
}
