// Package regs describes the register block of an STM32F405/407-family
// I2C controller and maps it onto the engine's port surface. The block
// is 0x28 bytes of 32-bit registers; hardware backends only differ in
// how those words are reached (memory mapping, a USB probe, a serial
// probe), so the layout and the protocol sequencing live here once.
package regs

import "github.com/mklimuk/i2cm"

// Register offsets within one controller block.
const (
	CR1   = 0x00
	CR2   = 0x04
	OAR1  = 0x08
	OAR2  = 0x0C
	DR    = 0x10
	SR1   = 0x14
	SR2   = 0x18
	CCR   = 0x1C
	TRISE = 0x20
	FLTR  = 0x24

	// Span is the size of the whole block.
	Span = 0x28
)

// CR1 control bits.
const (
	CR1PE    = 1 << 0
	CR1Start = 1 << 8
	CR1Stop  = 1 << 9
	CR1Ack   = 1 << 10
	CR1Pos   = 1 << 11
	CR1Reset = 1 << 15
)

// SR1 status bits.
const (
	SR1StartSent = 1 << 0
	SR1AddrSent  = 1 << 1
	SR1Btf       = 1 << 2
	SR1StopDet   = 1 << 4
	SR1RxNE      = 1 << 6
	SR1TxE       = 1 << 7
	SR1BusErr    = 1 << 8
	SR1ArbLost   = 1 << 9
	SR1AckFail   = 1 << 10
	SR1Overrun   = 1 << 11
)

// SR2 status bits.
const (
	SR2Master = 1 << 0
	SR2Busy   = 1 << 1
	SR2Tra    = 1 << 2
)

// DecodeStatus folds the two hardware status words into the engine's
// flag set.
func DecodeStatus(sr1, sr2 uint32) i2cm.Status {
	var s i2cm.Status
	if sr1&SR1StartSent != 0 {
		s |= i2cm.Status(i2cm.FlagStartSent)
	}
	if sr1&SR1AddrSent != 0 {
		s |= i2cm.Status(i2cm.FlagAddrSent)
	}
	if sr1&SR1Btf != 0 {
		s |= i2cm.Status(i2cm.FlagTransferDone)
	}
	if sr1&SR1RxNE != 0 {
		s |= i2cm.Status(i2cm.FlagRxReady)
	}
	if sr1&SR1TxE != 0 {
		s |= i2cm.Status(i2cm.FlagTxEmpty)
	}
	if sr1&SR1AckFail != 0 {
		s |= i2cm.Status(i2cm.FlagAckFailure)
	}
	if sr2&SR2Busy != 0 {
		s |= i2cm.Status(i2cm.FlagBusy)
	}
	return s
}
