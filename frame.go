package ecc508

import (
	"encoding/binary"
	"fmt"
	"time"
)

// powerState tracks whether the chip is listening for commands. The device
// itself keeps no such register; it simply stops responding once it has
// gone back to sleep, so the driver models the state explicitly and makes
// wakeup, idle and sleep the only transitions.
type powerState int

const (
	asleep powerState = iota
	awake
)

// Word addresses, the first byte of every write to the device.
const (
	wordSleep   uint8 = 0x01
	wordIdle    uint8 = 0x02
	wordCommand uint8 = 0x03
)

const (
	// commandOverhead is a command frame minus its payload: word address,
	// count, opcode, param1, two param2 bytes and two checksum bytes.
	commandOverhead = 8

	// responseOverhead is a response frame minus its payload: the count
	// byte and two checksum bytes.
	responseOverhead = 3

	// maxCommandData is the largest command payload the device accepts,
	// the signature-plus-key value of an external verify.
	maxCommandData = 128
)

const (
	// wakeToken is the single status byte the device answers a wake
	// pulse with.
	wakeToken = 0x11

	// wakeSettle is how long the chip needs after the wake pulse before
	// it can be addressed.
	wakeSettle = 800 * time.Microsecond
)

// wakeup forces the device awake. The wake pulse is a zero-length write to
// bus address zero; it is a no-op when the driver knows the chip is
// already awake.
func (device *Device) wakeup() error {

	if device.state == awake {
		return nil
	}

	// The pulse is a general call that nothing acknowledges, so the
	// write result is deliberately ignored.
	_ = device.bus.WriteTo(0x00, nil)

	device.config.delay(wakeSettle)

	payload, err := device.receiveResponse(1)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrWakeFailed, err)
	}

	if payload[0] != wakeToken {
		return fmt.Errorf("%w: got 0x%02x", ErrWakeFailed, payload[0])
	}

	device.state = awake

	return nil
}

// idle parks the device in low power without clearing its volatile state.
// The next command wakes it again.
func (device *Device) idle() error {

	if device.state == asleep {
		return nil
	}

	device.state = asleep

	if err := device.bus.WriteTo(device.address, []byte{wordIdle}); err != nil {
		return fmt.Errorf("idle: %w", err)
	}

	return nil
}

// sleep fully powers the device down, clearing volatile state. A device
// already parked ignores the bus, so this only transmits when the driver
// knows the chip is awake.
func (device *Device) sleep() error {

	if device.state == asleep {
		return nil
	}

	device.state = asleep

	if err := device.bus.WriteTo(device.address, []byte{wordSleep}); err != nil {
		return fmt.Errorf("sleep: %w", err)
	}

	return nil
}

// sendCommand frames an opcode with its parameters and payload and writes
// it to the device:
//
//	[0x03][count][opcode][param1][param2 lo][param2 hi][data...][crc lo][crc hi]
//
// The count and the checksum cover everything after the word address.
func (device *Device) sendCommand(opcode, param1 uint8, param2 uint16, data []byte) error {

	if len(data) > maxCommandData {
		return fmt.Errorf("%w: %d bytes", ErrCommandTooLong, len(data))
	}

	frame := make([]byte, 0, commandOverhead+len(data))

	frame = append(frame, wordCommand)
	frame = append(frame, uint8(commandOverhead-1+len(data)))
	frame = append(frame, opcode, param1)
	frame = binary.LittleEndian.AppendUint16(frame, param2)
	frame = append(frame, data...)
	frame = binary.LittleEndian.AppendUint16(frame, CRC16(frame[1:]))

	if err := device.bus.WriteTo(device.address, frame); err != nil {
		return fmt.Errorf("send command 0x%02x: %w", opcode, err)
	}

	return nil
}

// receiveResponse reads a full response frame and returns its payload.
//
// The device answers with a short read while a command is still executing,
// so short reads are retried up to the configured budget. A frame that
// arrives complete but fails the length or checksum test is corrupt rather
// than late and is rejected without retry.
func (device *Device) receiveResponse(length int) ([]byte, error) {

	size := length + responseOverhead
	frame := make([]byte, size)

	read, err := device.bus.ReadFrom(device.address, frame)

	for retries := device.config.retries; read != size && retries > 0; retries-- {
		read, err = device.bus.ReadFrom(device.address, frame)
	}

	if read != size {
		if err != nil {
			return nil, fmt.Errorf("receive response: %w", err)
		}
		return nil, fmt.Errorf("receive response: %d of %d bytes", read, size)
	}

	if int(frame[0]) != size {
		return nil, fmt.Errorf("%w: declared %d, requested %d", ErrResponseLength, frame[0], size)
	}

	checksum := binary.LittleEndian.Uint16(frame[size-2:])

	if checksum != CRC16(frame[:size-2]) {
		return nil, ErrResponseCRC
	}

	return frame[1 : 1+length], nil
}
