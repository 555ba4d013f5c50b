// Package adapter talks to register probes: small firmware dongles exposing
// the controller register blocks of an attached target over USB HID or
// a serial line. A probe implements regs.Accessor, so wrapping one in
// regs.NewPort hands the engine a real controller to drive from the
// development host.
package adapter

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Probe command set. Every request addresses one register of one
// controller block; value-bearing commands carry a 32-bit word.
const (
	cmdPing      byte = 0x01
	cmdReadReg   byte = 0x02
	cmdWriteReg  byte = 0x03
	cmdSetBits   byte = 0x04
	cmdClearBits byte = 0x05
)

const (
	statusOK       byte = 0x00
	statusBadCmd   byte = 0x01
	statusBadBlock byte = 0x02
)

// request: command, block, register offset, value (little endian)
// response: command echo, status, value (little endian)
const requestLen = 7
const responseLen = 6

var ErrProbeNotFound = errors.New("register probe not found")
var ErrCommandFailed = errors.New("probe command failed")

func putRequest(buf []byte, cmd byte, block byte, offset uint32, value uint32) {
	buf[0] = cmd
	buf[1] = block
	buf[2] = byte(offset)
	binary.LittleEndian.PutUint32(buf[3:7], value)
}

func parseResponse(buf []byte, cmd byte) (uint32, error) {
	if buf[0] != cmd {
		return 0, fmt.Errorf("response carries command %#02x, expected %#02x", buf[0], cmd)
	}
	if buf[1] != statusOK {
		return 0, fmt.Errorf("%w: status %#02x", ErrCommandFailed, buf[1])
	}
	return binary.LittleEndian.Uint32(buf[2:6]), nil
}

func resetBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0x00
	}
}
