package i2cm

import (
	"context"
	"time"
)

// Poll budget applied to every flag wait unless overridden per engine.
// The worst-case blocking time of a transaction is the product of both
// values multiplied by the number of flag waits on the taken path.
const (
	DefaultPollLimit = 100
	DefaultPollDelay = 50 * time.Microsecond
)

type poller struct {
	limit int
	delay time.Duration
	sleep Sleeper
}

// wait polls the port until f reaches the wanted state. Acknowledge
// failures detected mid-wait win over poll exhaustion on the same
// iteration; the generic ErrTimeout is re-tagged by the caller with the
// phase it was polling for.
func (p poller) wait(ctx context.Context, port Port, f Flag, want bool) error {
	for i := 0; ; i++ {
		st := port.Status()
		if st.Has(f) == want {
			return nil
		}
		if err := classify(port, st, f); err != nil {
			return err
		}
		if i >= p.limit {
			return ErrTimeout
		}
		if err := p.sleep.Sleep(ctx, p.delay); err != nil {
			return err
		}
	}
}

// classify inspects an in-progress wait for acknowledge failures. While a
// data-progress flag is awaited the failure is cleared and reported as a
// plain NACK; the caller owns any stop condition. During the address
// phase the bus is additionally released with a stop before reporting.
func classify(port Port, st Status, waiting Flag) error {
	switch waiting {
	case FlagTransferDone, FlagTxEmpty:
		if st.Has(FlagAckFailure) {
			port.ClearAckFailure()
			return ErrNack
		}
	case FlagAddrSent:
		if st.Has(FlagAckFailure) {
			port.Stop()
			port.ClearAckFailure()
			return ErrAddrNack
		}
	}
	return nil
}

// retag narrows a generic poll timeout to a phase-specific kind and
// passes every other error through untouched.
func retag(err, phase error) error {
	if err == ErrTimeout {
		return phase
	}
	return err
}
