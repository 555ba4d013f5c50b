package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/i2cm"
	"github.com/mklimuk/i2cm/sim"
)

const devAddr = 0x50

func simEngine(t *testing.T) (*sim.Bus, *sim.Memory, *i2cm.Engine) {
	t.Helper()
	bus := sim.New()
	mem := sim.NewMemory(256)
	bus.Attach(devAddr, mem)
	engine := i2cm.NewEngine(bus, i2cm.WithSleeper(i2cm.SleeperFunc(
		func(ctx context.Context, d time.Duration) error { return nil },
	)))
	return bus, mem, engine
}

func TestGobotConnection_ByteData(t *testing.T) {
	_, mem, engine := simEngine(t)
	conn := NewGobotConnection(engine, devAddr)

	assert.NoError(t, conn.WriteByteData(0x05, 0xAA))
	assert.Equal(t, byte(0xAA), mem.Bytes()[0x05])

	v, err := conn.ReadByteData(0x05)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xAA), v)
}

func TestGobotConnection_WordData(t *testing.T) {
	_, mem, engine := simEngine(t)
	conn := NewGobotConnection(engine, devAddr)

	assert.NoError(t, conn.WriteWordData(0x10, 0xBEEF))
	// low byte first on the wire
	assert.Equal(t, []byte{0xEF, 0xBE}, mem.Bytes()[0x10:0x12])

	v, err := conn.ReadWordData(0x10)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v)
}

func TestGobotConnection_BlockData(t *testing.T) {
	_, _, engine := simEngine(t)
	conn := NewGobotConnection(engine, devAddr)

	assert.NoError(t, conn.WriteBlockData(0x20, []byte{0x01, 0x02, 0x03}))
	got := make([]byte, 3)
	assert.NoError(t, conn.ReadBlockData(0x20, got))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
}

func TestGobotConnection_RawReadWrite(t *testing.T) {
	_, mem, engine := simEngine(t)
	conn := NewGobotConnection(engine, devAddr)

	n, err := conn.Write([]byte{0x30, 0x11, 0x22})
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x11, 0x22}, mem.Bytes()[0x30:0x32])

	// reposition, then stream
	assert.NoError(t, conn.WriteByte(0x30))
	buf := make([]byte, 2)
	n, err = conn.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x11, 0x22}, buf)
}

func TestGobotConnection_MissingDevice(t *testing.T) {
	_, _, engine := simEngine(t)
	conn := NewGobotConnection(engine, 0x13)

	err := conn.WriteByte(0x00)
	assert.ErrorIs(t, err, i2cm.ErrAddrNack)
	_, err = conn.ReadByteData(0x00)
	assert.ErrorIs(t, err, i2cm.ErrAddrNack)
}
