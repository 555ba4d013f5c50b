//go:build linux

package mmio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/i2cm/regs"
)

func TestWindow_WordAccess(t *testing.T) {
	w := window{mem: make([]byte, regs.Span)}

	w.WriteReg(regs.CR1, 0x00000001)
	assert.Equal(t, uint32(0x00000001), w.ReadReg(regs.CR1))

	w.SetBits(regs.CR1, regs.CR1Start|regs.CR1Ack)
	assert.Equal(t, uint32(0x00000501), w.ReadReg(regs.CR1))

	w.ClearBits(regs.CR1, regs.CR1Ack)
	assert.Equal(t, uint32(0x00000101), w.ReadReg(regs.CR1))

	// registers are independent words
	w.WriteReg(regs.DR, 0xAB)
	assert.Equal(t, uint32(0xAB), w.ReadReg(regs.DR))
	assert.Equal(t, uint32(0x00000101), w.ReadReg(regs.CR1))
}

func TestWindow_DrivesEnginePort(t *testing.T) {
	w := window{mem: make([]byte, regs.Span)}
	p := regs.NewPort(w)

	p.Start()
	assert.Equal(t, uint32(regs.CR1Start), w.ReadReg(regs.CR1))
	p.SetAck(true)
	p.Stop()
	assert.Equal(t, uint32(regs.CR1Start|regs.CR1Ack|regs.CR1Stop), w.ReadReg(regs.CR1))
	p.SetAck(false)
	assert.Equal(t, uint32(regs.CR1Start|regs.CR1Stop), w.ReadReg(regs.CR1))
}
