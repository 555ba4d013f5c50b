//go:build !linux

package mmio

import (
	"fmt"

	"github.com/mklimuk/i2cm/regs"
)

const DefaultDevice = "/dev/mem"

// Port is only functional on linux; Open fails everywhere else.
type Port struct {
	*regs.Port
}

func Open(device string, base uint64) (*Port, error) {
	return nil, fmt.Errorf("memory-mapped ports are only supported on linux")
}

func (p *Port) Close() error {
	return nil
}
