package adapter

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sigurn/crc8"
	"github.com/tarm/serial"

	"github.com/mklimuk/i2cm/cmd/i2cm/console"
	"github.com/mklimuk/i2cm/regs"
)

const DefaultBaud = 115200

// frame: SOF, payload length, payload, CRC-8 over length and payload
const sofByte = 0x7E

var ErrBadFrame = fmt.Errorf("malformed probe frame")

var crcTable = crc8.MakeTable(crc8.CRC8)

// SerialProbe drives a register probe over a serial line. The same
// command set as the HID transport, wrapped in SOF-delimited CRC-8
// frames because a UART gives no report boundaries.
type SerialProbe struct {
	mx      sync.Mutex
	port    *serial.Port
	block   byte
	lastErr error
}

var _ regs.Accessor = (*SerialProbe)(nil)

// OpenSerial connects to a probe on the given serial device and binds
// it to a controller block. A non-positive baud selects DefaultBaud.
func OpenSerial(device string, baud int, block int) (*SerialProbe, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", device, err)
	}
	p := &SerialProbe{port: port, block: byte(block)}
	if err = p.Ping(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("probe did not answer ping: %w", err)
	}
	return p, nil
}

// Port wraps the probe in the engine's controller port surface.
func (p *SerialProbe) Port() *regs.Port {
	return regs.NewPort(p)
}

func (p *SerialProbe) Close() error {
	return p.port.Close()
}

func (p *SerialProbe) Ping() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	_, err := p.command(cmdPing, 0, 0)
	return err
}

// LastErr reports the most recent transport failure, see
// HIDProbe.LastErr.
func (p *SerialProbe) LastErr() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.lastErr
}

func (p *SerialProbe) ReadReg(offset uint32) uint32 {
	p.mx.Lock()
	defer p.mx.Unlock()
	v, err := p.command(cmdReadReg, offset, 0)
	if err != nil {
		p.lastErr = err
		return 0
	}
	return v
}

func (p *SerialProbe) WriteReg(offset uint32, value uint32) {
	p.set(cmdWriteReg, offset, value)
}

func (p *SerialProbe) SetBits(offset uint32, mask uint32) {
	p.set(cmdSetBits, offset, mask)
}

func (p *SerialProbe) ClearBits(offset uint32, mask uint32) {
	p.set(cmdClearBits, offset, mask)
}

func (p *SerialProbe) set(cmd byte, offset uint32, value uint32) {
	p.mx.Lock()
	defer p.mx.Unlock()
	if _, err := p.command(cmd, offset, value); err != nil {
		p.lastErr = err
	}
}

func (p *SerialProbe) command(cmd byte, offset uint32, value uint32) (uint32, error) {
	payload := make([]byte, requestLen)
	putRequest(payload, cmd, p.block, offset, value)
	frame := encodeFrame(payload)
	if console.Trace {
		console.Printf("sending frame to probe:\n%s\n", hex.Dump(frame))
	}
	if _, err := p.port.Write(frame); err != nil {
		return 0, fmt.Errorf("could not write frame: %w", err)
	}
	resp, err := decodeFrame(p.port)
	if err != nil {
		return 0, err
	}
	if console.Trace {
		console.Printf("read frame from probe:\n%s\n", hex.Dump(resp))
	}
	if len(resp) != responseLen {
		return 0, fmt.Errorf("%w: unexpected response length %d", ErrBadFrame, len(resp))
	}
	return parseResponse(resp, cmd)
}

func encodeFrame(payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+3)
	frame = append(frame, sofByte, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, frameSum(byte(len(payload)), payload))
	return frame
}

// decodeFrame hunts for the start byte, the line may carry boot noise
// between frames.
func decodeFrame(r io.Reader) ([]byte, error) {
	var hdr [2]byte
	for {
		if _, err := io.ReadFull(r, hdr[:1]); err != nil {
			return nil, fmt.Errorf("could not read frame start: %w", err)
		}
		if hdr[0] == sofByte {
			break
		}
	}
	if _, err := io.ReadFull(r, hdr[1:]); err != nil {
		return nil, fmt.Errorf("could not read frame length: %w", err)
	}
	length := int(hdr[1])
	buf := make([]byte, length+1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("could not read frame body: %w", err)
	}
	payload := buf[:length]
	if frameSum(hdr[1], payload) != buf[length] {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrBadFrame)
	}
	return payload, nil
}

func frameSum(length byte, payload []byte) byte {
	sum := crc8.Init(crcTable)
	sum = crc8.Update(sum, []byte{length}, crcTable)
	sum = crc8.Update(sum, payload, crcTable)
	return crc8.Complete(sum, crcTable)
}
