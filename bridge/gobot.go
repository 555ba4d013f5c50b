// Package bridge exposes engine-backed buses to the gobot and periph
// device-driver ecosystems, so existing sensor and memory drivers can
// run over a transaction engine instead of a kernel bus.
package bridge

import (
	"context"
	"encoding/binary"
	"fmt"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/i2cm"
)

var _ i2c.Connection = (*GobotConnection)(nil)

// GobotConnection binds one slave address on an engine bus to gobot's
// device connection surface. Register access runs as a pointer write
// followed by a read transaction; word order is little endian, per
// SMBus convention.
type GobotConnection struct {
	bus  i2cm.Bus
	addr byte
}

func NewGobotConnection(bus i2cm.Bus, address byte) *GobotConnection {
	return &GobotConnection{bus: bus, addr: address}
}

func (c *GobotConnection) Read(p []byte) (int, error) {
	if err := c.bus.ReadFromAddr(context.Background(), c.addr, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *GobotConnection) Write(p []byte) (int, error) {
	if err := c.bus.WriteToAddr(context.Background(), c.addr, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *GobotConnection) Close() error {
	return nil
}

func (c *GobotConnection) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := c.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *GobotConnection) ReadByteData(reg uint8) (uint8, error) {
	var b [1]byte
	if err := c.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *GobotConnection) ReadWordData(reg uint8) (uint16, error) {
	var b [2]byte
	if err := c.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (c *GobotConnection) ReadBlockData(reg uint8, b []byte) error {
	return c.readReg(reg, b)
}

func (c *GobotConnection) WriteByte(val byte) error {
	_, err := c.Write([]byte{val})
	return err
}

func (c *GobotConnection) WriteByteData(reg uint8, val uint8) error {
	_, err := c.Write([]byte{reg, val})
	return err
}

func (c *GobotConnection) WriteWordData(reg uint8, val uint16) error {
	buf := []byte{reg, 0, 0}
	binary.LittleEndian.PutUint16(buf[1:], val)
	_, err := c.Write(buf)
	return err
}

func (c *GobotConnection) WriteBlockData(reg uint8, b []byte) error {
	_, err := c.Write(append([]byte{reg}, b...))
	return err
}

func (c *GobotConnection) WriteBytes(b []byte) error {
	_, err := c.Write(b)
	return err
}

func (c *GobotConnection) readReg(reg uint8, buffer []byte) error {
	ctx := context.Background()
	if err := c.bus.WriteToAddr(ctx, c.addr, []byte{reg}); err != nil {
		return fmt.Errorf("could not select register %#02x: %w", reg, err)
	}
	return c.bus.ReadFromAddr(ctx, c.addr, buffer)
}
