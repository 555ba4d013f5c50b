//go:build linux

// Package mmio reaches a controller register block through a physical
// memory mapping, for FPGA soft controllers and bare-metal shims where
// no kernel driver owns the block. The mapped window is accessed in
// 32-bit words through sync/atomic so reads and writes hit the bus in
// program order.
package mmio

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/mklimuk/i2cm/regs"
)

const DefaultDevice = "/dev/mem"

// Port is a memory-mapped controller block. Close releases the mapping;
// the port must not be used afterwards.
type Port struct {
	*regs.Port
	mem []byte
}

// Open maps one register block at the given physical base address. The
// base must be 32-bit aligned. An empty device selects DefaultDevice.
func Open(device string, base uint64) (*Port, error) {
	if device == "" {
		device = DefaultDevice
	}
	if base%4 != 0 {
		return nil, fmt.Errorf("base address %#x is not word aligned", base)
	}
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", device, err)
	}
	// the mapping survives the descriptor
	defer func() { _ = unix.Close(fd) }()
	page := uint64(unix.Getpagesize())
	aligned := base &^ (page - 1)
	shift := int(base - aligned)
	mem, err := unix.Mmap(fd, int64(aligned), shift+regs.Span, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("could not map %#x from %s: %w", base, device, err)
	}
	w := window{mem: mem[shift : shift+regs.Span]}
	return &Port{Port: regs.NewPort(w), mem: mem}, nil
}

func (p *Port) Close() error {
	if p.mem == nil {
		return nil
	}
	mem := p.mem
	p.mem = nil
	return unix.Munmap(mem)
}

type window struct {
	mem []byte
}

var _ regs.Accessor = window{}

func (w window) ReadReg(offset uint32) uint32 {
	return atomic.LoadUint32(w.reg(offset))
}

func (w window) WriteReg(offset uint32, value uint32) {
	atomic.StoreUint32(w.reg(offset), value)
}

func (w window) SetBits(offset uint32, mask uint32) {
	w.WriteReg(offset, w.ReadReg(offset)|mask)
}

func (w window) ClearBits(offset uint32, mask uint32) {
	w.WriteReg(offset, w.ReadReg(offset)&^mask)
}

func (w window) reg(offset uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(&w.mem[offset]))
}
