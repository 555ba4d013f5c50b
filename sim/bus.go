// Package sim provides a software-simulated I2C controller implementing
// the i2cm.Port surface, with attachable slave devices and an operation
// trace for asserting protocol ordering in tests. The model keeps the
// controller's one-byte lookahead: a data register plus a shift
// register, and a fetch budget tracking how many bytes the master has
// committed to clock in once acknowledge policy is latched.
package sim

import (
	"math"

	"github.com/mklimuk/i2cm"
)

var _ i2cm.Port = (*Bus)(nil)

// Bus is a simulated controller block. Like a real register block it is
// meant to be driven by one transaction at a time.
type Bus struct {
	devices map[byte]Device
	trace   []Event

	extBusy bool
	stalled bool
	active  bool
	stopped bool
	read    bool

	startPending bool
	addrPending  bool

	ack bool
	pos bool
	af  bool

	dev Device

	// receive pipeline
	dr        byte
	drFull    bool
	shift     byte
	shiftFull bool
	taken     int
	fetchLim  int

	// transmit side: last written byte completed and was acknowledged
	btf bool
}

func New() *Bus {
	return &Bus{
		devices:  make(map[byte]Device),
		fetchLim: math.MaxInt,
	}
}

// Attach connects a device at the given 7-bit address. Addresses with
// no device attached NACK their address byte.
func (b *Bus) Attach(addr byte, d Device) {
	b.devices[addr] = d
}

func (b *Bus) Detach(addr byte) {
	delete(b.devices, addr)
}

// SetBusBusy simulates another master holding the bus.
func (b *Bus) SetBusBusy(on bool) {
	b.extBusy = on
}

// StallData simulates a slave stretching the clock indefinitely: the
// data-progress flags stay clear while address and error flags keep
// reporting.
func (b *Bus) StallData(on bool) {
	b.stalled = on
}

// Trace returns a copy of the recorded operations.
func (b *Bus) Trace() []Event {
	return append([]Event(nil), b.trace...)
}

func (b *Bus) ResetTrace() {
	b.trace = nil
}

func (b *Bus) record(op Op, data byte) {
	b.trace = append(b.trace, Event{Op: op, Data: data})
}

func (b *Bus) Status() i2cm.Status {
	b.settle()
	var s i2cm.Status
	if b.extBusy || b.active {
		s |= i2cm.Status(i2cm.FlagBusy)
	}
	if b.startPending {
		s |= i2cm.Status(i2cm.FlagStartSent)
	}
	if b.addrPending {
		s |= i2cm.Status(i2cm.FlagAddrSent)
	}
	if b.af {
		s |= i2cm.Status(i2cm.FlagAckFailure)
	}
	if b.active && !b.startPending && !b.addrPending && !b.stalled {
		if b.read {
			if b.drFull {
				s |= i2cm.Status(i2cm.FlagRxReady)
			}
			if b.drFull && b.shiftFull {
				s |= i2cm.Status(i2cm.FlagTransferDone)
			}
		} else {
			s |= i2cm.Status(i2cm.FlagTxEmpty)
			if b.btf {
				s |= i2cm.Status(i2cm.FlagTransferDone)
			}
		}
	}
	return s
}

func (b *Bus) Start() {
	b.record(OpStart, 0)
	if b.extBusy {
		return
	}
	b.active = true
	b.stopped = false
	b.startPending = true
	b.addrPending = false
	b.drFull = false
	b.shiftFull = false
	b.taken = 0
	b.btf = false
	if b.ack {
		b.fetchLim = math.MaxInt
	} else {
		b.fetchLim = 1
	}
}

func (b *Bus) Stop() {
	b.record(OpStop, 0)
	b.stopped = true
	if b.dev != nil {
		b.dev.Release()
	}
}

func (b *Bus) SetAck(on bool) {
	if on {
		b.record(OpAckOn, 0)
		b.fetchLim = math.MaxInt
	} else {
		b.record(OpAckOff, 0)
		// the byte after those already latched still arrives, NACKed
		b.fetchLim = b.taken + 1
	}
	b.ack = on
}

func (b *Bus) SetPos(on bool) {
	if on {
		b.record(OpPosOn, 0)
		// NACK shifts one byte further out
		if b.fetchLim != math.MaxInt {
			b.fetchLim++
		}
	} else {
		b.record(OpPosOff, 0)
	}
	b.pos = on
}

func (b *Bus) ClearAckFailure() {
	b.record(OpClearAckFailure, 0)
	b.af = false
}

func (b *Bus) ClearAddrSent() {
	b.record(OpClearAddr, 0)
	b.addrPending = false
}

func (b *Bus) WriteData(v byte) {
	b.record(OpWrite, v)
	switch {
	case b.startPending:
		b.startPending = false
		b.read = v&0x01 == 0x01
		dev, ok := b.devices[v>>1]
		if !ok || !dev.Select(b.read) {
			b.dev = nil
			b.af = true
			return
		}
		b.dev = dev
		b.addrPending = true
	case b.active && !b.read && !b.addrPending:
		if b.dev != nil && !b.dev.Write(v) {
			b.af = true
			b.btf = false
			return
		}
		b.btf = true
	}
}

func (b *Bus) ReadData() byte {
	b.fill()
	v := b.dr
	b.record(OpRead, v)
	if b.shiftFull {
		b.dr = b.shift
		b.shiftFull = false
	} else {
		b.drFull = false
	}
	b.fill()
	return v
}

// settle advances derived state on each status read: pending byte
// fetches happen here, and the bus releases once a requested stop has
// nothing left to move.
func (b *Bus) settle() {
	if !b.active {
		return
	}
	if b.read {
		b.fill()
	}
	if b.stopped {
		done := !b.read || (!b.drFull && !b.shiftFull && !b.canFetch())
		if done {
			b.active = false
			b.dev = nil
		}
	}
}

func (b *Bus) canFetch() bool {
	if !b.active || !b.read || b.addrPending || b.startPending || b.dev == nil {
		return false
	}
	if b.fetchLim == math.MaxInt {
		// uncommitted fetches end at the stop request
		return !b.stopped
	}
	return b.taken < b.fetchLim
}

func (b *Bus) fill() {
	for b.canFetch() {
		switch {
		case !b.drFull:
			b.dr = b.dev.Read()
			b.drFull = true
			b.taken++
		case !b.shiftFull:
			b.shift = b.dev.Read()
			b.shiftFull = true
			b.taken++
		default:
			return
		}
	}
}
