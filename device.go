// Package ecc508 is a driver for the ATECC508A cryptographic coprocessor.
//
// The chip stores private keys that never leave it, signs and verifies
// P-256 ECDSA over 32-byte digests, generates random numbers and exposes
// lockable configuration, data and OTP memory zones. It hangs off a shared
// two-wire bus, which the driver reaches through the Bus interface, so the
// same protocol engine runs against real hardware (package i2cbus) or a
// simulated device (package emulator).
//
// Every operation is synchronous and blocks for the device's full
// execution time, which runs to over a hundred milliseconds for key
// generation. The protocol has no sessions and no command pipelining:
// a handle must not be used from more than one goroutine at a time.
package ecc508

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sizes of the values exchanged with the device, in bytes.
const (
	MessageSize   = 32  // digests loaded for signing and verification
	SignatureSize = 64  // r then s, 32 bytes each
	PublicKeySize = 64  // X then Y, 32 bytes each
	ConfigSize    = 128 // the full configuration zone
)

// deviceRevision is the revision word an ATECC508A reports. Open refuses
// to talk to anything else, since other chips in the family answer the
// same bus address with different command sets.
const deviceRevision = 0x00500000

// Device is a handle to one coprocessor on a bus.
//
// A handle carries no session state beyond the chip's own power state, so
// it can be reused for any number of operations. The device and the bus
// are a single unsynchronized resource: callers with concurrent goroutines
// must serialize access themselves.
type Device struct {
	bus     Bus
	address uint8
	config  config
	state   powerState
}

// Open readies the bus and probes the device at the given 7-bit address,
// failing unless it identifies itself as an ATECC508A.
func Open(bus Bus, address uint8, options ...Option) (*Device, error) {

	device := &Device{
		bus:     bus,
		address: address,
		config:  defaultConfig(),
	}

	for _, option := range options {
		option(&device.config)
	}

	if err := bus.Begin(); err != nil {
		return nil, fmt.Errorf("bus begin: %w", err)
	}

	revision, err := device.Version()
	if err != nil {
		return nil, errors.Join(err, bus.End())
	}

	if revision != deviceRevision {
		return nil, errors.Join(fmt.Errorf("%w: 0x%08x", ErrWrongDevice, revision), bus.End())
	}

	return device, nil
}

// Close puts the device to sleep and releases the bus.
func (device *Device) Close() error {

	if err := device.sleep(); err != nil {
		return err
	}

	return device.bus.End()
}

// Version queries the device's revision word. Open already checks it, but
// it is useful on its own when probing an unknown bus.
func (device *Device) Version() (uint32, error) {

	payload, err := device.execute(opInfo, infoRevision, 0x0000, nil, infoDelay, 4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(payload), nil
}
