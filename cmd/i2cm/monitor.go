package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cm"
	"github.com/mklimuk/i2cm/cmd/i2cm/console"
)

var monitorCmd = cli.Command{
	Name:  "monitor",
	Usage: "interactive register and transaction monitor",
	Flags: []cli.Flag{busFlag},
	Action: func(c *cli.Context) error {
		reg, id, closer, err := openSelected(c)
		if err != nil {
			return console.Exitf(1, "could not open bus: %s", console.Red(err))
		}
		defer closer()
		bus, _ := reg.Lookup(id)
		session := &monitorSession{reg: reg, id: id}
		// engines expose the raw control surface, kernel buses do not
		if eng, ok := bus.(*i2cm.Engine); ok {
			session.port = eng.Port()
		} else {
			console.Warn("bus has no register surface, only tx/rx are available")
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          console.Cyan("i2c> "),
			HistoryFile:     "/tmp/i2cm_monitor.hist",
			AutoComplete:    monitorCompleter,
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			return console.Exitf(1, "could not initialize prompt: %s", console.Red(err))
		}
		defer func() { _ = rl.Close() }()

		console.PInfof(console.PictoNotebook, "monitoring bus %d, type %s for commands", id, console.White("help"))
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return console.Exitf(1, "prompt error: %s", console.Red(err))
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if fields[0] == "quit" || fields[0] == "exit" {
				return nil
			}
			session.dispatch(c.Context, fields)
		}
	},
}

var monitorCompleter = readline.NewPrefixCompleter(
	readline.PcItem("status"),
	readline.PcItem("start"),
	readline.PcItem("stop"),
	readline.PcItem("ack", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("pos", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("clear", readline.PcItem("addr"), readline.PcItem("nack")),
	readline.PcItem("peek"),
	readline.PcItem("poke"),
	readline.PcItem("tx"),
	readline.PcItem("rx"),
	readline.PcItem("scan"),
	readline.PcItem("trace", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

const monitorHelp = `status          print controller flags
start           assert a start condition
stop            queue a stop condition
ack on|off      toggle acknowledge generation
pos on|off      toggle acknowledge position
clear addr|nack release the address-pending or ack-failure condition
peek            read one byte from the data register
poke BYTE       write one byte to the data register
tx ADDR [B...]  run a master write transaction
rx ADDR COUNT   run a master read transaction
scan            probe the address range for devices
trace on|off    toggle protocol tracing
quit            leave the monitor`

var monitorFlags = []i2cm.Flag{
	i2cm.FlagStartSent,
	i2cm.FlagAddrSent,
	i2cm.FlagTransferDone,
	i2cm.FlagRxReady,
	i2cm.FlagTxEmpty,
	i2cm.FlagAckFailure,
	i2cm.FlagBusy,
}

type monitorSession struct {
	reg  *i2cm.Registry
	id   int
	port i2cm.Port
}

func (s *monitorSession) dispatch(ctx context.Context, fields []string) {
	switch fields[0] {
	case "help":
		console.Print(monitorHelp)
	case "tx":
		s.tx(ctx, fields[1:])
	case "rx":
		s.rx(ctx, fields[1:])
	case "scan":
		s.scan(ctx)
	case "trace":
		on, err := parseOnOff(fields[1:])
		if err != nil {
			console.Errorf("%s", err)
			return
		}
		console.Trace = on
	case "status", "start", "stop", "ack", "pos", "clear", "peek", "poke":
		if s.port == nil {
			console.Error("bus has no register surface")
			return
		}
		s.portCommand(fields)
	default:
		console.Errorf("unknown command %s, type %s for a list", console.White(fields[0]), console.White("help"))
	}
}

func (s *monitorSession) portCommand(fields []string) {
	switch fields[0] {
	case "status":
		s.printStatus()
	case "start":
		s.port.Start()
	case "stop":
		s.port.Stop()
	case "ack":
		on, err := parseOnOff(fields[1:])
		if err != nil {
			console.Errorf("%s", err)
			return
		}
		s.port.SetAck(on)
	case "pos":
		on, err := parseOnOff(fields[1:])
		if err != nil {
			console.Errorf("%s", err)
			return
		}
		s.port.SetPos(on)
	case "clear":
		if len(fields) != 2 {
			console.Error("usage: clear addr|nack")
			return
		}
		switch fields[1] {
		case "addr":
			s.port.ClearAddrSent()
		case "nack":
			s.port.ClearAckFailure()
		default:
			console.Error("usage: clear addr|nack")
		}
	case "peek":
		console.Printf("%#02x\n", s.port.ReadData())
	case "poke":
		if len(fields) != 2 {
			console.Error("usage: poke BYTE")
			return
		}
		value, err := strconv.ParseUint(fields[1], 0, 8)
		if err != nil {
			console.Errorf("bad byte %s: %s", fields[1], err)
			return
		}
		s.port.WriteData(byte(value))
	}
}

func (s *monitorSession) printStatus() {
	status := s.port.Status()
	var line strings.Builder
	for i, flag := range monitorFlags {
		if i > 0 {
			line.WriteString("  ")
		}
		if status.Has(flag) {
			line.WriteString(console.Green(flag.String()))
		} else {
			line.WriteString(flag.String())
		}
	}
	console.Print(line.String())
}

func (s *monitorSession) tx(ctx context.Context, args []string) {
	if len(args) < 1 {
		console.Error("usage: tx ADDR [BYTE...]")
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		console.Errorf("bad address: %s", err)
		return
	}
	data := make([]byte, 0, len(args)-1)
	for _, arg := range args[1:] {
		value, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			console.Errorf("bad byte %s: %s", arg, err)
			return
		}
		data = append(data, byte(value))
	}
	if err = s.reg.MasterWrite(ctx, s.id, addr, data); err != nil {
		console.Errorf("tx failed: %s", err)
		return
	}
	console.PInfof(console.PictoFinish, "%d byte(s) written", len(data))
}

func (s *monitorSession) scan(ctx context.Context) {
	found := 0
	for addr := byte(scanFirst); addr <= scanLast; addr++ {
		if err := s.reg.MasterWrite(ctx, s.id, addr, nil); err == nil {
			console.PInfof(console.PictoScan, "device at %s", console.Green(fmt.Sprintf("%#02x", addr)))
			found++
		}
	}
	if found == 0 {
		console.Print("no devices found")
	}
}

func (s *monitorSession) rx(ctx context.Context, args []string) {
	if len(args) != 2 {
		console.Error("usage: rx ADDR COUNT")
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		console.Errorf("bad address: %s", err)
		return
	}
	count, err := strconv.Atoi(args[1])
	if err != nil || count < 0 {
		console.Errorf("bad count %s", args[1])
		return
	}
	buffer := make([]byte, count)
	if err = s.reg.MasterRead(ctx, s.id, addr, buffer); err != nil {
		console.Errorf("rx failed: %s", err)
		return
	}
	console.Print(hex.Dump(buffer))
}

func parseOnOff(args []string) (bool, error) {
	if len(args) != 1 {
		return false, errors.New("expected on or off")
	}
	switch args[0] {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, errors.New("expected on or off")
}
