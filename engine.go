package i2cm

import (
	"context"
	"time"
)

var _ Bus = (*Engine)(nil)

// Engine drives blocking master transactions on a single controller
// block. It keeps no protocol state between calls and takes no locks of
// its own; callers guarantee at most one transaction in flight per bus.
// Engines for distinct controllers are fully independent.
type Engine struct {
	port Port
	poll poller
}

type EngineOpt func(*Engine)

// WithPollLimit overrides the number of poll iterations a flag wait may
// consume before timing out.
func WithPollLimit(limit int) EngineOpt {
	return func(e *Engine) {
		if limit > 0 {
			e.poll.limit = limit
		}
	}
}

// WithPollDelay overrides the delay between consecutive polls.
func WithPollDelay(delay time.Duration) EngineOpt {
	return func(e *Engine) {
		if delay > 0 {
			e.poll.delay = delay
		}
	}
}

// WithSleeper replaces the inter-poll sleep implementation.
func WithSleeper(s Sleeper) EngineOpt {
	return func(e *Engine) {
		if s != nil {
			e.poll.sleep = s
		}
	}
}

func NewEngine(port Port, opts ...EngineOpt) *Engine {
	e := &Engine{
		port: port,
		poll: poller{
			limit: DefaultPollLimit,
			delay: DefaultPollDelay,
			sleep: timerSleeper{},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Port exposes the underlying control surface for diagnostics such as
// the register monitor. Transactions must not run while it is poked
// directly.
func (e *Engine) Port() Port {
	return e.port
}

const dirRead = 0x01

// sendAddress generates a start condition and transmits the 7-bit
// address with the direction bit, then waits for the slave to resolve
// the address acknowledge. The address-pending condition is left set;
// clearing it is part of the caller's length policy. For reads the
// acknowledge enable must already be committed, since ack policy for the
// first incoming byte is fixed here.
func (e *Engine) sendAddress(ctx context.Context, address byte, read bool) error {
	e.port.Start()
	if err := e.poll.wait(ctx, e.port, FlagStartSent, true); err != nil {
		return retag(err, ErrStartTimeout)
	}
	dir := byte(0)
	if read {
		dir = dirRead
	}
	e.port.WriteData(address<<1 | dir)
	if err := e.poll.wait(ctx, e.port, FlagAddrSent, true); err != nil {
		return retag(err, ErrAddrTimeout)
	}
	return nil
}
