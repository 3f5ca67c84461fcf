// Package i2cbus arbitrates access to shared I²C buses.
//
// A Manager owns the set of open bus numbers. Open hands out at most one *Bus
// per number; every transfer on a Bus runs under that bus's exclusion lock, so
// callers sharing the channel queue rather than interleave.
//
//	m := i2cbus.NewManager(factory)
//	b, err := m.Open(1)          // errcode.BusInUse if already open
//	defer b.Close()
//	buf, err := b.Receive(0x4A, 2)
//
// Transfers are never retried here. Retry policy belongs to the caller.
package i2cbus

import (
	"tinygo.org/x/drivers"

	"tempmon-go/x/mathx"
)

// Address limits for 7-bit devices.
const (
	MinAddr = 0x01
	MaxAddr = 0x7F
)

// Transport is the vendor driver surface for one channel. Tx performs a write
// followed by a read when both are given.
type Transport = drivers.I2C

// Prober is implemented by transports that can issue bare start/stop
// conditions. Scan uses it when available; otherwise it probes with a 1-byte
// write.
type Prober interface {
	// Start addresses the device for writing. A nil error means the address
	// was acknowledged before the transport timeout.
	Start(addr uint16) error
	Stop() error
}

// Factory initialises the transport for a bus number.
type Factory interface {
	Init(bus int) (Transport, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(bus int) (Transport, error)

func (f FactoryFunc) Init(bus int) (Transport, error) { return f(bus) }

func validAddr(addr uint8) bool { return mathx.Between(addr, MinAddr, MaxAddr) }
