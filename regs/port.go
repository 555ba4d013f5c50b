package regs

import "github.com/mklimuk/i2cm"

// Accessor is the raw 32-bit register access a backend provides for one
// controller block. Implementations that cannot reach the hardware
// should return zero from ReadReg and keep the failure available out of
// band; a zeroed status makes the engine report a poll timeout instead
// of acting on garbage.
type Accessor interface {
	ReadReg(offset uint32) uint32
	WriteReg(offset uint32, value uint32)
	SetBits(offset uint32, mask uint32)
	ClearBits(offset uint32, mask uint32)
}

var _ i2cm.Port = (*Port)(nil)

// Port sequences engine port operations into register accesses on an
// Accessor.
type Port struct {
	acc Accessor
}

func NewPort(acc Accessor) *Port {
	return &Port{acc: acc}
}

func (p *Port) Status() i2cm.Status {
	return DecodeStatus(p.acc.ReadReg(SR1), p.acc.ReadReg(SR2))
}

func (p *Port) Start() {
	p.acc.SetBits(CR1, CR1Start)
}

func (p *Port) Stop() {
	p.acc.SetBits(CR1, CR1Stop)
}

func (p *Port) SetAck(on bool) {
	if on {
		p.acc.SetBits(CR1, CR1Ack)
	} else {
		p.acc.ClearBits(CR1, CR1Ack)
	}
}

func (p *Port) SetPos(on bool) {
	if on {
		p.acc.SetBits(CR1, CR1Pos)
	} else {
		p.acc.ClearBits(CR1, CR1Pos)
	}
}

func (p *Port) ClearAckFailure() {
	p.acc.ClearBits(SR1, SR1AckFail)
}

// ClearAddrSent performs the SR1-then-SR2 read pair that releases the
// address-sent condition on this controller family.
func (p *Port) ClearAddrSent() {
	p.acc.ReadReg(SR1)
	p.acc.ReadReg(SR2)
}

func (p *Port) WriteData(b byte) {
	p.acc.WriteReg(DR, uint32(b))
}

func (p *Port) ReadData() byte {
	return byte(p.acc.ReadReg(DR))
}
