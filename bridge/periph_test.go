package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/i2c/i2creg"

	"github.com/mklimuk/i2cm/sim"
)

func TestPeriphBus_Tx(t *testing.T) {
	bus, mem, engine := simEngine(t)
	pb := NewPeriphBus("engine0", engine)
	assert.Equal(t, "engine0", pb.String())

	// write then read, stop-separated
	assert.NoError(t, pb.Tx(devAddr, []byte{0x08, 0x5A}, nil))
	assert.Equal(t, byte(0x5A), mem.Bytes()[0x08])

	got := make([]byte, 1)
	assert.NoError(t, pb.Tx(devAddr, []byte{0x08}, got))
	assert.Equal(t, byte(0x5A), got[0])

	bus.ResetTrace()
	assert.NoError(t, pb.Tx(devAddr, []byte{0x08}, got))
	stops := 0
	for _, e := range bus.Trace() {
		if e.Op == sim.OpStop {
			stops++
		}
	}
	assert.Equal(t, 2, stops)
}

func TestPeriphBus_TxProbe(t *testing.T) {
	_, _, engine := simEngine(t)
	pb := NewPeriphBus("engine0", engine)

	// empty transfer degrades to an address probe
	assert.NoError(t, pb.Tx(devAddr, nil, nil))
	assert.Error(t, pb.Tx(0x13, nil, nil))
	assert.NoError(t, pb.SetSpeed(0))
}

func TestRegister_OpensByName(t *testing.T) {
	_, mem, engine := simEngine(t)
	assert.NoError(t, Register("i2cm-test", 42, engine))

	opened, err := i2creg.Open("i2cm-test")
	assert.NoError(t, err)
	defer func() { _ = opened.Close() }()

	assert.NoError(t, opened.Tx(devAddr, []byte{0x01, 0xA5}, nil))
	assert.Equal(t, byte(0xA5), mem.Bytes()[0x01])
}
