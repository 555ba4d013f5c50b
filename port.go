// Package i2cm implements a blocking I2C master transaction engine for
// controllers exposing an STM32-style shift-register/flag interface.
// Protocol logic is written against the Port abstraction so the same
// engine drives memory-mapped hardware, register probes and the
// simulated controller used in tests.
package i2cm

// Flag selects a single controller status flag.
type Flag uint16

const (
	// FlagStartSent indicates a start condition went out on the wire.
	FlagStartSent Flag = 1 << iota
	// FlagAddrSent indicates the address byte was sent and acknowledged.
	// It stays pending until cleared through ClearAddrSent.
	FlagAddrSent
	// FlagTransferDone indicates the shift register finished moving the
	// current byte; the data register is safe to touch again.
	FlagTransferDone
	// FlagRxReady indicates the data register holds an unread incoming byte.
	FlagRxReady
	// FlagTxEmpty indicates the data register can accept the next outgoing byte.
	FlagTxEmpty
	// FlagAckFailure indicates the most recent acknowledge was negative.
	FlagAckFailure
	// FlagBusy indicates the bus is occupied by a transaction, ours or
	// another master's.
	FlagBusy
)

func (f Flag) String() string {
	switch f {
	case FlagStartSent:
		return "start-sent"
	case FlagAddrSent:
		return "addr-sent"
	case FlagTransferDone:
		return "transfer-done"
	case FlagRxReady:
		return "rx-ready"
	case FlagTxEmpty:
		return "tx-empty"
	case FlagAckFailure:
		return "ack-failure"
	case FlagBusy:
		return "busy"
	}
	return "unknown"
}

// Status is a snapshot of all controller flags, read fresh on every poll
// and never persisted.
type Status uint16

func (s Status) Has(f Flag) bool {
	return uint16(s)&uint16(f) != 0
}

// Port is the control surface of a single I2C controller block. Calls are
// fire-and-forget register operations; transports that can fail in flight
// report their health separately and let stalled flags surface as poll
// timeouts. A Port must only be driven by one transaction at a time.
type Port interface {
	Status() Status
	// Start asserts a start (or repeated start) condition.
	Start()
	// Stop queues a stop condition; the controller releases the bus once
	// the current byte completes.
	Stop()
	// SetAck controls whether received bytes are acknowledged.
	SetAck(on bool)
	// SetPos shifts the byte an acknowledge-disable applies to, needed to
	// NACK the correct byte in two-byte receives.
	SetPos(on bool)
	ClearAckFailure()
	// ClearAddrSent releases the address-pending condition. Acknowledge
	// and POS policy for the incoming bytes must be committed before this
	// call; afterwards the transfer is rolling.
	ClearAddrSent()
	WriteData(b byte)
	ReadData() byte
}
