package sim

// Op identifies a single control-surface operation recorded by the
// simulated controller.
type Op int

const (
	OpStart Op = iota
	OpStop
	OpAckOn
	OpAckOff
	OpPosOn
	OpPosOff
	OpClearAddr
	OpClearAckFailure
	OpWrite
	OpRead
)

func (o Op) String() string {
	switch o {
	case OpStart:
		return "start"
	case OpStop:
		return "stop"
	case OpAckOn:
		return "ack-on"
	case OpAckOff:
		return "ack-off"
	case OpPosOn:
		return "pos-on"
	case OpPosOff:
		return "pos-off"
	case OpClearAddr:
		return "clear-addr"
	case OpClearAckFailure:
		return "clear-ack-failure"
	case OpWrite:
		return "write"
	case OpRead:
		return "read"
	}
	return "unknown"
}

// Event is one recorded operation. Data carries the byte moved through
// the data register for OpWrite and OpRead and is zero otherwise.
type Event struct {
	Op   Op
	Data byte
}

// Ops projects a trace down to its operation sequence, which is what
// ordering assertions usually compare.
func Ops(events []Event) []Op {
	ops := make([]Op, len(events))
	for i, ev := range events {
		ops[i] = ev.Op
	}
	return ops
}
