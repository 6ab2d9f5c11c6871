// Package i2cbus adapts a periph.io I²C bus to the driver's transport
// interface, for running against real hardware.
package i2cbus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// busSpeed is the clock rate the device is specified for.
const busSpeed = 100 * physic.KiloHertz

// Bus is a two-wire bus opened through periph.io.
//
//	bus := i2cbus.New("1")
//	device, err := ecc508.Open(bus, 0x60)
type Bus struct {
	name string
	bus  i2c.BusCloser
}

// New prepares a bus by periph.io registry name ("1", "/dev/i2c-1", or ""
// for the first available one). Nothing is opened until Begin.
func New(name string) *Bus {
	return &Bus{name: name}
}

// Begin initializes the host drivers and opens the bus at 100 kHz.
func (b *Bus) Begin() error {

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("i2cbus: host init: %w", err)
	}

	bus, err := i2creg.Open(b.name)
	if err != nil {
		return fmt.Errorf("i2cbus: open %q: %w", b.name, err)
	}

	if err := bus.SetSpeed(busSpeed); err != nil {
		bus.Close()
		return fmt.Errorf("i2cbus: set speed: %w", err)
	}

	b.bus = bus

	return nil
}

// End closes the bus.
func (b *Bus) End() error {

	if b.bus == nil {
		return nil
	}

	err := b.bus.Close()
	b.bus = nil

	return err
}

// WriteTo transmits p to the device in one addressed transaction.
func (b *Bus) WriteTo(address uint8, p []byte) error {
	return b.bus.Tx(uint16(address), p, nil)
}

// ReadFrom requests exactly len(p) bytes from the device. periph.io
// surfaces an unready device as a transaction error rather than a short
// read, so that maps onto a zero-byte read for the caller to retry.
func (b *Bus) ReadFrom(address uint8, p []byte) (int, error) {

	if err := b.bus.Tx(uint16(address), nil, p); err != nil {
		return 0, err
	}

	return len(p), nil
}
