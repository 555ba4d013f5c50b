// Package memory provides drivers for serial memories attached to an
// engine bus.
package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mklimuk/i2cm"
)

// AT24 drives AT24C-family I2C EEPROMs: a pointer write positions the
// address counter, reads stream sequentially, writes go page by page
// with acknowledge polling while the internal write cycle runs.
//
// Datasheet reference: Atmel/Microchip AT24C01C..AT24C512C. Devices up
// to 2 Kbit use an 8-byte page and a one-byte address pointer; larger
// parts widen both.
type AT24 struct {
	bus       i2cm.Bus
	addr      byte
	size      int
	pageSize  int
	ptrBytes  int
	writeWait time.Duration
}

type AT24Opt func(*AT24)

// WithPageSize overrides the write page size.
func WithPageSize(n int) AT24Opt {
	return func(m *AT24) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// WithWriteCycleTime bounds the acknowledge polling after each page
// write.
func WithWriteCycleTime(d time.Duration) AT24Opt {
	return func(m *AT24) {
		if d > 0 {
			m.writeWait = d
		}
	}
}

// NewAT24 binds a device of the given byte capacity at a slave address.
// Capacities above 256 bytes switch to a two-byte address pointer.
func NewAT24(bus i2cm.Bus, address byte, size int, opts ...AT24Opt) *AT24 {
	m := &AT24{
		bus:       bus,
		addr:      address,
		size:      size,
		pageSize:  8,
		ptrBytes:  1,
		writeWait: 10 * time.Millisecond,
	}
	if size > 256 {
		m.ptrBytes = 2
		m.pageSize = 32
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *AT24) Size() int {
	return m.size
}

// Read fills the buffer starting at the given memory offset.
func (m *AT24) Read(ctx context.Context, offset int, buffer []byte) error {
	if offset < 0 || offset+len(buffer) > m.size {
		return fmt.Errorf("read of %d bytes at %#x out of range", len(buffer), offset)
	}
	if len(buffer) == 0 {
		return nil
	}
	if err := m.bus.WriteToAddr(ctx, m.addr, m.pointer(offset)); err != nil {
		return fmt.Errorf("could not set address pointer: %w", err)
	}
	if err := m.bus.ReadFromAddr(ctx, m.addr, buffer); err != nil {
		return fmt.Errorf("could not read memory: %w", err)
	}
	return nil
}

// Write stores data starting at the given memory offset. Data is split
// on page boundaries and each page is followed by acknowledge polling
// until the device finishes its internal write cycle.
func (m *AT24) Write(ctx context.Context, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > m.size {
		return fmt.Errorf("write of %d bytes at %#x out of range", len(data), offset)
	}
	for len(data) > 0 {
		chunk := data
		if space := m.pageSize - offset%m.pageSize; len(chunk) > space {
			chunk = chunk[:space]
		}
		if err := m.pageWrite(ctx, offset, chunk); err != nil {
			return err
		}
		offset += len(chunk)
		data = data[len(chunk):]
	}
	return nil
}

func (m *AT24) pageWrite(ctx context.Context, offset int, data []byte) error {
	if err := m.bus.WriteToAddr(ctx, m.addr, append(m.pointer(offset), data...)); err != nil {
		return fmt.Errorf("could not write page at %#x: %w", offset, err)
	}
	return m.waitReady(ctx)
}

// waitReady probes the device with zero-length writes until it
// acknowledges its address again. While the write cycle runs the device
// NACKs everything.
func (m *AT24) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(m.writeWait)
	for {
		err := m.bus.WriteToAddr(ctx, m.addr, nil)
		if err == nil {
			return nil
		}
		if !errors.Is(err, i2cm.ErrAddrNack) {
			return fmt.Errorf("write cycle poll failed: %w", err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for write cycle to complete")
		}
		time.Sleep(500 * time.Microsecond)
	}
}

func (m *AT24) pointer(offset int) []byte {
	if m.ptrBytes == 2 {
		return []byte{byte(offset >> 8), byte(offset)}
	}
	return []byte{byte(offset)}
}
