package i2cm

import "context"

// BusReader reads a buffer-length run of bytes from a slave address in
// one transaction.
type BusReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

// BusWriter writes a buffer to a slave address in one transaction.
type BusWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
}

// Bus is the transaction-level view of an I2C master, satisfied by the
// engine and by kernel-backed transports alike. Addresses are 7-bit.
type Bus interface {
	BusReader
	BusWriter
}
