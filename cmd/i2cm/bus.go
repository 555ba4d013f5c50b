package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cm"
	"github.com/mklimuk/i2cm/adapter"
	"github.com/mklimuk/i2cm/cmd/i2cm/console"
	"github.com/mklimuk/i2cm/config"
	"github.com/mklimuk/i2cm/i2c"
	"github.com/mklimuk/i2cm/mmio"
	"github.com/mklimuk/i2cm/sim"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		console.Debug("no inventory given, using the default simulated bus")
		return config.Default(), nil
	}
	return config.Load(path)
}

// openBus brings up the backend of one inventory entry. The returned
// close func is never nil.
func openBus(bc *config.BusConfig) (i2cm.Bus, func(), error) {
	opts, err := bc.EngineOpts()
	if err != nil {
		return nil, nil, err
	}
	switch bc.Backend {
	case config.BackendSim:
		// one memory device makes the simulated bus explorable
		bus := sim.New()
		bus.Attach(0x50, sim.NewMemory(256))
		return i2cm.NewEngine(bus, opts...), func() {}, nil
	case config.BackendHID:
		probe, err := adapter.Open(bc.Block)
		if err != nil {
			return nil, nil, fmt.Errorf("bus %d: %w", bc.ID, err)
		}
		console.PInfof(console.PictoPlug, "probe connected")
		return i2cm.NewEngine(probe.Port(), opts...), probe.Close, nil
	case config.BackendSerial:
		probe, err := adapter.OpenSerial(bc.Device, bc.Baud, bc.Block)
		if err != nil {
			return nil, nil, fmt.Errorf("bus %d: %w", bc.ID, err)
		}
		console.PInfof(console.PictoPlug, "probe connected on %s", bc.Device)
		return i2cm.NewEngine(probe.Port(), opts...), func() { _ = probe.Close() }, nil
	case config.BackendMMIO:
		port, err := mmio.Open(bc.Device, bc.Base)
		if err != nil {
			return nil, nil, fmt.Errorf("bus %d: %w", bc.ID, err)
		}
		return i2cm.NewEngine(port, opts...), func() { _ = port.Close() }, nil
	case config.BackendKernel:
		bus, err := i2c.NewGenericBus(bc.Device)
		if err != nil {
			return nil, nil, fmt.Errorf("bus %d: %w", bc.ID, err)
		}
		return bus, func() { _ = bus.Close() }, nil
	}
	return nil, nil, fmt.Errorf("bus %d: unknown backend %q", bc.ID, bc.Backend)
}

// openSelected opens the bus picked by the --bus flag and registers it,
// so commands go through the same lookup path as library users.
func openSelected(c *cli.Context) (*i2cm.Registry, int, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, 0, nil, err
	}
	id := c.Int("bus")
	bc, ok := cfg.Bus(id)
	if !ok {
		return nil, 0, nil, fmt.Errorf("bus %d is not in the inventory", id)
	}
	bus, closer, err := openBus(bc)
	if err != nil {
		return nil, 0, nil, err
	}
	reg := i2cm.NewRegistry()
	if err = reg.Register(id, bus); err != nil {
		closer()
		return nil, 0, nil, err
	}
	console.Debugf("bus %d (%s) up via %s backend", id, bc.Name, bc.Backend)
	return reg, id, closer, nil
}

var busFlag = &cli.IntFlag{
	Name:    "bus",
	Aliases: []string{"b"},
	Usage:   "inventory id of the bus to use",
}
