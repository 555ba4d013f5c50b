package i2cm

import (
	"context"
	"fmt"
)

// ReadFromAddr performs a blocking master-receive transaction filling
// the whole buffer. Acknowledge and stop timing is committed before the
// bytes it governs are shifted in: once the controller starts clocking a
// byte the chance to NACK it is gone. The policy is picked once from the
// requested length; long reads drain byte by byte and reduce to the
// three-byte tail for the final stretch. Data-phase errors return as
// classified; the next transaction's setup restores acknowledge and POS
// configuration.
func (e *Engine) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := e.poll.wait(ctx, e.port, FlagBusy, false); err != nil {
		return fmt.Errorf("read from %#02x: %w", address, retag(err, ErrBusyTimeout))
	}
	e.port.SetPos(false)
	// first-byte acknowledge is fixed at request time
	e.port.SetAck(true)
	if err := e.sendAddress(ctx, address, true); err != nil {
		return fmt.Errorf("read from %#02x: %w", address, err)
	}
	switch len(buffer) {
	case 0:
		// address-only probe: close the transaction immediately
		e.port.ClearAddrSent()
		e.port.Stop()
	case 1:
		// NACK the single byte before it starts shifting in
		e.port.SetAck(false)
		e.port.ClearAddrSent()
		e.port.Stop()
	case 2:
		// POS moves the NACK to the second byte; stop comes later,
		// between the pair buffering up and the first read
		e.port.SetAck(false)
		e.port.SetPos(true)
		e.port.ClearAddrSent()
	default:
		e.port.ClearAddrSent()
	}
	rem := buffer
	for len(rem) > 0 {
		switch len(rem) {
		case 1:
			if err := e.poll.wait(ctx, e.port, FlagRxReady, true); err != nil {
				return fmt.Errorf("read from %#02x: %w", address, err)
			}
			rem[0] = e.port.ReadData()
			rem = rem[1:]
		case 2:
			if err := e.poll.wait(ctx, e.port, FlagTransferDone, true); err != nil {
				return fmt.Errorf("read from %#02x: %w", address, retag(err, ErrTransferTimeout))
			}
			e.port.Stop()
			rem[0] = e.port.ReadData()
			rem[1] = e.port.ReadData()
			rem = rem[2:]
		case 3:
			if err := e.poll.wait(ctx, e.port, FlagTransferDone, true); err != nil {
				return fmt.Errorf("read from %#02x: %w", address, retag(err, ErrTransferTimeout))
			}
			// primes the NACK for what will be the final byte
			e.port.SetAck(false)
			rem[0] = e.port.ReadData()
			rem = rem[1:]
			if err := e.poll.wait(ctx, e.port, FlagTransferDone, true); err != nil {
				return fmt.Errorf("read from %#02x: %w", address, retag(err, ErrTransferTimeout))
			}
			e.port.Stop()
			rem[0] = e.port.ReadData()
			rem[1] = e.port.ReadData()
			rem = rem[2:]
		default:
			if err := e.poll.wait(ctx, e.port, FlagRxReady, true); err != nil {
				return fmt.Errorf("read from %#02x: %w", address, err)
			}
			rem[0] = e.port.ReadData()
			rem = rem[1:]
		}
	}
	return nil
}
