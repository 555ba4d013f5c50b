package i2cm

import (
	"context"
	"fmt"
)

// WriteToAddr performs a blocking master-transmit transaction. The call
// returns once every byte of buffer was acknowledged and a stop
// condition went out, or on the first error. Data-phase errors force a
// stop before returning so the bus is left idle; address-phase errors
// propagate as resolved by the address wait. A zero-length buffer still
// produces the address phase and a stop, which is how bus scans probe
// for devices.
func (e *Engine) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := e.poll.wait(ctx, e.port, FlagBusy, false); err != nil {
		return fmt.Errorf("write to %#02x: %w", address, retag(err, ErrBusyTimeout))
	}
	e.port.SetPos(false)
	if err := e.sendAddress(ctx, address, false); err != nil {
		return fmt.Errorf("write to %#02x: %w", address, err)
	}
	e.port.ClearAddrSent()
	for i := 0; i < len(buffer); i++ {
		if err := e.poll.wait(ctx, e.port, FlagTxEmpty, true); err != nil {
			e.port.Stop()
			return fmt.Errorf("write to %#02x: %w", address, retag(err, ErrTxEmptyTimeout))
		}
		e.port.WriteData(buffer[i])
		// keep the shift register fed: if the previous byte already
		// finished we can land a second one in the same iteration
		if i+1 < len(buffer) && e.port.Status().Has(FlagTransferDone) {
			i++
			e.port.WriteData(buffer[i])
		}
		if err := e.poll.wait(ctx, e.port, FlagTransferDone, true); err != nil {
			e.port.Stop()
			return fmt.Errorf("write to %#02x: %w", address, retag(err, ErrTransferTimeout))
		}
	}
	e.port.Stop()
	return nil
}
