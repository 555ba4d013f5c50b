package adapter

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/i2cm/cmd/i2cm/console"
	"github.com/mklimuk/i2cm/regs"
)

const VendorID = 0x0483
const ProductID = 0x5750

// HIDProbe drives a register probe speaking the command set over
// 64-byte HID reports. The device handle stays open across commands and
// is re-enumerated after a transport failure.
type HIDProbe struct {
	mx           sync.Mutex
	block        byte
	dev          *hid.Device
	request      []byte
	response     []byte
	responseWait time.Duration
	lastErr      error
}

var _ regs.Accessor = (*HIDProbe)(nil)

type HIDOpt func(*HIDProbe)

// WithResponseWait overrides the settle time between sending a request
// report and reading the response report.
func WithResponseWait(d time.Duration) HIDOpt {
	return func(p *HIDProbe) {
		if d > 0 {
			p.responseWait = d
		}
	}
}

// Open connects to the first probe on the USB bus and binds it to the
// given controller block. The probe is pinged before it is handed out.
func Open(block int, opts ...HIDOpt) (*HIDProbe, error) {
	p := &HIDProbe{
		block:        byte(block),
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 5 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.Ping(); err != nil {
		p.Close()
		return nil, fmt.Errorf("probe did not answer ping: %w", err)
	}
	return p, nil
}

// Port wraps the probe in the engine's controller port surface.
func (p *HIDProbe) Port() *regs.Port {
	return regs.NewPort(p)
}

func (p *HIDProbe) Ping() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	_, err := p.command(cmdPing, 0, 0)
	return err
}

// LastErr reports the most recent transport failure. Register access is
// infallible at the port surface; when the link drops the engine only
// sees zeroed status and times out, and the cause lands here.
func (p *HIDProbe) LastErr() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.lastErr
}

func (p *HIDProbe) Close() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.drop()
}

func (p *HIDProbe) ReadReg(offset uint32) uint32 {
	p.mx.Lock()
	defer p.mx.Unlock()
	v, err := p.command(cmdReadReg, offset, 0)
	if err != nil {
		p.lastErr = err
		return 0
	}
	return v
}

func (p *HIDProbe) WriteReg(offset uint32, value uint32) {
	p.set(cmdWriteReg, offset, value)
}

func (p *HIDProbe) SetBits(offset uint32, mask uint32) {
	p.set(cmdSetBits, offset, mask)
}

func (p *HIDProbe) ClearBits(offset uint32, mask uint32) {
	p.set(cmdClearBits, offset, mask)
}

func (p *HIDProbe) set(cmd byte, offset uint32, value uint32) {
	p.mx.Lock()
	defer p.mx.Unlock()
	if _, err := p.command(cmd, offset, value); err != nil {
		p.lastErr = err
	}
}

func (p *HIDProbe) command(cmd byte, offset uint32, value uint32) (uint32, error) {
	resetBuffer(p.request)
	resetBuffer(p.response)
	putRequest(p.request, cmd, p.block, offset, value)
	if err := p.send(); err != nil {
		// stale handle, retry over a fresh enumeration
		p.drop()
		if err = p.send(); err != nil {
			p.drop()
			return 0, err
		}
	}
	return parseResponse(p.response, cmd)
}

func (p *HIDProbe) send() error {
	if p.dev == nil {
		devs := hid.Enumerate(VendorID, ProductID)
		if len(devs) == 0 {
			return ErrProbeNotFound
		}
		dev, err := devs[0].Open()
		if err != nil {
			return fmt.Errorf("error opening probe: %w", err)
		}
		p.dev = dev
	}
	if console.Trace {
		console.Printf("sending frame to probe:\n%s\n", hex.Dump(p.request))
	}
	n, err := p.dev.Write(p.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != len(p.request) {
		return fmt.Errorf("short write: %d", n)
	}
	time.Sleep(p.responseWait)
	n, err = p.dev.Read(p.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != len(p.response) {
		return fmt.Errorf("short read: %d", n)
	}
	if console.Trace {
		console.Printf("read frame from probe:\n%s\n", hex.Dump(p.response))
	}
	return nil
}

func (p *HIDProbe) drop() {
	if p.dev != nil {
		_ = p.dev.Close()
		p.dev = nil
	}
}
