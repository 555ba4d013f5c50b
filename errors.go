package i2cm

import "fmt"

// ErrUnknownBus is returned by the registry facade when a transaction
// names a bus id that was never registered. No register is touched.
var ErrUnknownBus = fmt.Errorf("bus handle is not registered")

// ErrTimeout is the generic poll exhaustion error. Phase-specific
// timeouts wrap it, so errors.Is(err, ErrTimeout) matches any of them.
var ErrTimeout = fmt.Errorf("timed out waiting for bus flag")

var (
	ErrBusyTimeout     = fmt.Errorf("bus did not become idle: %w", ErrTimeout)
	ErrStartTimeout    = fmt.Errorf("start condition was not generated: %w", ErrTimeout)
	ErrAddrTimeout     = fmt.Errorf("address phase did not complete: %w", ErrTimeout)
	ErrTransferTimeout = fmt.Errorf("byte transfer did not complete: %w", ErrTimeout)
	ErrTxEmptyTimeout  = fmt.Errorf("transmit buffer did not drain: %w", ErrTimeout)
)

// ErrNack reports a data byte the slave refused to acknowledge. The
// engine forces a stop before surfacing it on write paths.
var ErrNack = fmt.Errorf("data byte not acknowledged by the slave")

// ErrAddrNack reports an unacknowledged address byte. A stop condition
// is already generated by the time the caller sees it.
var ErrAddrNack = fmt.Errorf("address not acknowledged by the slave")
