package i2cm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/i2cm"
	"github.com/mklimuk/i2cm/sim"
)

// streamDevice acks everything and serves 0x11, 0x22, 0x33, ... while
// counting how many bytes the master actually clocked in.
func streamDevice(fetches *int) *sim.FuncDevice {
	n := 0
	return &sim.FuncDevice{
		OnRead: func() byte {
			n++
			if fetches != nil {
				*fetches = n
			}
			return byte(n * 0x11)
		},
	}
}

func TestEngineRead_ZeroLengthProbe(t *testing.T) {
	var fetches int
	bus := sim.New()
	bus.Attach(testAddr, streamDevice(&fetches))
	engine := i2cm.NewEngine(bus, fastSleeper(nil))

	err := engine.ReadFromAddr(context.Background(), testAddr, nil)
	assert.NoError(t, err)
	// probe touches the address phase only, no byte is ever fetched
	assert.Zero(t, fetches)
	assert.Equal(t, []sim.Event{
		ev(sim.OpPosOff),
		ev(sim.OpAckOn),
		ev(sim.OpStart),
		evd(sim.OpWrite, testAddr<<1|0x01),
		ev(sim.OpClearAddr),
		ev(sim.OpStop),
	}, bus.Trace())
}

func TestEngineRead_LengthPolicy(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		trace []sim.Event
	}{
		{
			name: "single byte",
			data: []byte{0x11},
			trace: []sim.Event{
				ev(sim.OpPosOff),
				ev(sim.OpAckOn),
				ev(sim.OpStart),
				evd(sim.OpWrite, testAddr<<1|0x01),
				ev(sim.OpAckOff),
				ev(sim.OpClearAddr),
				ev(sim.OpStop),
				evd(sim.OpRead, 0x11),
			},
		},
		{
			name: "two bytes",
			data: []byte{0x11, 0x22},
			trace: []sim.Event{
				ev(sim.OpPosOff),
				ev(sim.OpAckOn),
				ev(sim.OpStart),
				evd(sim.OpWrite, testAddr<<1|0x01),
				ev(sim.OpAckOff),
				ev(sim.OpPosOn),
				ev(sim.OpClearAddr),
				ev(sim.OpStop),
				evd(sim.OpRead, 0x11),
				evd(sim.OpRead, 0x22),
			},
		},
		{
			name: "three bytes",
			data: []byte{0x11, 0x22, 0x33},
			trace: []sim.Event{
				ev(sim.OpPosOff),
				ev(sim.OpAckOn),
				ev(sim.OpStart),
				evd(sim.OpWrite, testAddr<<1|0x01),
				ev(sim.OpClearAddr),
				ev(sim.OpAckOff),
				evd(sim.OpRead, 0x11),
				ev(sim.OpStop),
				evd(sim.OpRead, 0x22),
				evd(sim.OpRead, 0x33),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var fetches int
			bus := sim.New()
			bus.Attach(testAddr, streamDevice(&fetches))
			engine := i2cm.NewEngine(bus, fastSleeper(nil))

			buffer := make([]byte, len(test.data))
			err := engine.ReadFromAddr(context.Background(), testAddr, buffer)
			assert.NoError(t, err)
			assert.Equal(t, test.data, buffer)
			// acknowledge accounting stops the slave at exactly the
			// requested length
			assert.Equal(t, len(test.data), fetches)
			assert.Equal(t, test.trace, bus.Trace())
		})
	}
}

func TestEngineRead_LongReadReducesToThreeByteTail(t *testing.T) {
	direct := sim.New()
	direct.Attach(testAddr, streamDevice(nil))
	engine := i2cm.NewEngine(direct, fastSleeper(nil))
	err := engine.ReadFromAddr(context.Background(), testAddr, make([]byte, 3))
	assert.NoError(t, err)
	tail := sim.Ops(direct.Trace())[5:]

	for _, length := range []int{5, 8} {
		t.Run(fmt.Sprintf("len %d", length), func(t *testing.T) {
			var fetches int
			bus := sim.New()
			bus.Attach(testAddr, streamDevice(&fetches))
			engine := i2cm.NewEngine(bus, fastSleeper(nil))

			buffer := make([]byte, length)
			err := engine.ReadFromAddr(context.Background(), testAddr, buffer)
			assert.NoError(t, err)
			for i := range buffer {
				assert.Equal(t, byte((i+1)*0x11), buffer[i])
			}
			assert.Equal(t, length, fetches)
			ops := sim.Ops(bus.Trace())
			assert.Equal(t, 1, countStops(bus.Trace()))
			// everything past the head drain is the plain three-byte close
			assert.Equal(t, tail, ops[len(ops)-len(tail):])
		})
	}
}

func TestEngineRead_AddressNack(t *testing.T) {
	bus := sim.New()
	engine := i2cm.NewEngine(bus, fastSleeper(nil))

	err := engine.ReadFromAddr(context.Background(), testAddr, make([]byte, 2))
	assert.ErrorIs(t, err, i2cm.ErrAddrNack)
	assert.NotErrorIs(t, err, i2cm.ErrTimeout)
	assert.Equal(t, []sim.Event{
		ev(sim.OpPosOff),
		ev(sim.OpAckOn),
		ev(sim.OpStart),
		evd(sim.OpWrite, testAddr<<1|0x01),
		ev(sim.OpStop),
		ev(sim.OpClearAckFailure),
	}, bus.Trace())
}

func TestEngineRead_BusHeldByAnotherMaster(t *testing.T) {
	bus := sim.New()
	bus.SetBusBusy(true)
	var sleeps int
	engine := i2cm.NewEngine(bus, fastSleeper(&sleeps))

	err := engine.ReadFromAddr(context.Background(), testAddr, make([]byte, 1))
	assert.ErrorIs(t, err, i2cm.ErrBusyTimeout)
	assert.Equal(t, i2cm.DefaultPollLimit, sleeps)
	assert.Empty(t, bus.Trace())
}

func TestEngineRead_StalledSlave(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   error
		stops  int
	}{
		// the single-byte stop is committed before the wait, so it is
		// already on the wire when the poll gives up
		{name: "single byte", length: 1, want: i2cm.ErrTimeout, stops: 1},
		{name: "two bytes", length: 2, want: i2cm.ErrTransferTimeout, stops: 0},
		{name: "three bytes", length: 3, want: i2cm.ErrTransferTimeout, stops: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := sim.New()
			bus.Attach(testAddr, streamDevice(nil))
			bus.StallData(true)
			engine := i2cm.NewEngine(bus, fastSleeper(nil))

			err := engine.ReadFromAddr(context.Background(), testAddr, make([]byte, test.length))
			assert.ErrorIs(t, err, test.want)
			assert.NotErrorIs(t, err, i2cm.ErrNack)
			assert.Equal(t, test.stops, countStops(bus.Trace()))
		})
	}
}

func TestEngineRead_WriteThenReadOrdering(t *testing.T) {
	bus := sim.New()
	bus.Attach(testAddr, sim.NewMemory(256))
	engine := i2cm.NewEngine(bus, fastSleeper(nil))

	err := engine.WriteToAddr(context.Background(), testAddr, []byte{0x01, 0x02, 0x03})
	assert.NoError(t, err)
	err = engine.ReadFromAddr(context.Background(), testAddr, make([]byte, 3))
	assert.NoError(t, err)
	assert.Equal(t, []sim.Op{
		sim.OpPosOff, sim.OpStart, sim.OpWrite, sim.OpClearAddr,
		sim.OpWrite, sim.OpWrite, sim.OpWrite, sim.OpStop,
		sim.OpPosOff, sim.OpAckOn, sim.OpStart, sim.OpWrite,
		sim.OpClearAddr, sim.OpAckOff, sim.OpRead, sim.OpStop,
		sim.OpRead, sim.OpRead,
	}, sim.Ops(bus.Trace()))
}

func TestEngineRead_MemoryRoundTrip(t *testing.T) {
	bus := sim.New()
	mem := sim.NewMemory(256)
	bus.Attach(testAddr, mem)
	engine := i2cm.NewEngine(bus, fastSleeper(nil))
	ctx := context.Background()

	err := engine.WriteToAddr(ctx, testAddr, []byte{0x10, 0xAA, 0xBB})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, mem.Bytes()[0x10:0x12])

	// reposition the pointer, then read the pair back
	err = engine.WriteToAddr(ctx, testAddr, []byte{0x10})
	assert.NoError(t, err)
	got := make([]byte, 2)
	err = engine.ReadFromAddr(ctx, testAddr, got)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, got)
}
