package bridge

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/i2cm"
)

var _ i2c.BusCloser = (*PeriphBus)(nil)

// PeriphBus exposes an engine bus as a periph.io i2c.BusCloser. Tx runs
// the write and the read as two stop-separated transactions; the engine
// has no repeated-start primitive, and devices in this family tolerate
// the split.
type PeriphBus struct {
	name string
	bus  i2cm.Bus
}

func NewPeriphBus(name string, bus i2cm.Bus) *PeriphBus {
	return &PeriphBus{name: name, bus: bus}
}

// Register publishes the bus in the periph.io registry so i2creg.Open
// and ecosystem device drivers can find it by name.
func Register(name string, number int, bus i2cm.Bus) error {
	return i2creg.Register(name, nil, number, func() (i2c.BusCloser, error) {
		return NewPeriphBus(name, bus), nil
	})
}

func (b *PeriphBus) String() string {
	return b.name
}

func (b *PeriphBus) Tx(addr uint16, w, r []byte) error {
	ctx := context.Background()
	if len(w) > 0 || len(r) == 0 {
		if err := b.bus.WriteToAddr(ctx, byte(addr), w); err != nil {
			return fmt.Errorf("write to %#02x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		if err := b.bus.ReadFromAddr(ctx, byte(addr), r); err != nil {
			return fmt.Errorf("read from %#02x: %w", addr, err)
		}
	}
	return nil
}

// SetSpeed is accepted and ignored, bus timing belongs to controller
// setup.
func (b *PeriphBus) SetSpeed(f physic.Frequency) error {
	return nil
}

func (b *PeriphBus) Close() error {
	if closer, ok := b.bus.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
