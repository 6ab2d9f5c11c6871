package ecc508

import (
	"fmt"
	"time"
)

// Device opcodes.
const (
	opRead   uint8 = 0x02
	opWrite  uint8 = 0x12
	opNonce  uint8 = 0x16
	opLock   uint8 = 0x17
	opRandom uint8 = 0x1b
	opInfo   uint8 = 0x30
	opGenKey uint8 = 0x40
	opSign   uint8 = 0x41
	opVerify uint8 = 0x45
)

// Command parameters.
const (
	infoRevision     uint8 = 0x00 // Info: report the revision word
	noncePassThrough uint8 = 0x03 // Nonce: load the payload as-is, no mixing
	genKeyCreate     uint8 = 0x04 // GenKey: create and store a new private key
	genKeyPublic     uint8 = 0x00 // GenKey: derive the public key of a stored one
	signExternal     uint8 = 0x80 // Sign: sign the externally loaded digest
	verifyExternal   uint8 = 0x02 // Verify: signature and key supplied in the payload
	lockIgnoreCRC    uint8 = 0x80 // Lock: skip the zone summary check

	verifyKeyP256 uint16 = 0x0004 // Verify param2: NIST P-256
)

// Worst-case execution time per opcode. Reading back any earlier than this
// returns stale or absent data, so the waits are not tunable.
const (
	infoDelay   = 1 * time.Millisecond
	readDelay   = 1 * time.Millisecond
	nonceDelay  = 7 * time.Millisecond
	randomDelay = 23 * time.Millisecond
	writeDelay  = 26 * time.Millisecond
	lockDelay   = 32 * time.Millisecond
	signDelay   = 50 * time.Millisecond
	verifyDelay = 58 * time.Millisecond
	genKeyDelay = 115 * time.Millisecond

	// settleDelay is the short pause between reading a response and the
	// next power state transition.
	settleDelay = 1 * time.Millisecond
)

// Memory zones.
type zoneID uint8

const (
	zoneConfig zoneID = 0x00
	zoneOTP    zoneID = 0x01
	zoneData   zoneID = 0x02

	// zoneBlock in param1 selects 32-byte access instead of 4-byte.
	zoneBlock uint8 = 0x80
)

const (
	wordSize  = 4
	blockSize = 32
)

// execute runs one full command exchange: force the device awake, send the
// frame, sit out the opcode's execution time, read back the expected
// response size and return the chip to idle.
func (device *Device) execute(opcode, param1 uint8, param2 uint16, data []byte, wait time.Duration, responseLength int) ([]byte, error) {

	if err := device.wakeup(); err != nil {
		return nil, err
	}

	if err := device.sendCommand(opcode, param1, param2, data); err != nil {
		device.state = asleep
		return nil, err
	}

	device.config.delay(wait)

	payload, err := device.receiveResponse(responseLength)

	if err != nil {
		// A failed exchange leaves the chip's state unknown and its
		// watchdog will drop it to sleep, so the next operation must
		// send a fresh wake pulse.
		device.state = asleep
		return nil, err
	}

	device.config.delay(settleDelay)

	if err := device.idle(); err != nil {
		return nil, err
	}

	return payload, nil
}

// executeStatus runs a command whose single response byte is a status code
// and maps any nonzero status to an error.
func (device *Device) executeStatus(opcode, param1 uint8, param2 uint16, data []byte, wait time.Duration) error {

	payload, err := device.execute(opcode, param1, param2, data, wait, 1)

	if err != nil {
		return err
	}

	if payload[0] != 0x00 {
		return &StatusError{Opcode: opcode, Status: payload[0]}
	}

	return nil
}

// challenge loads a 32-byte digest into the device in nonce pass-through
// mode, making it the message for a following sign or verify.
func (device *Device) challenge(message []byte) error {
	return device.executeStatus(opNonce, noncePassThrough, 0x0000, message, nonceDelay)
}

// zoneParam maps a zone and access length onto the Read/Write param1 byte,
// rejecting anything but the two lengths the device supports before a
// single bus transaction happens.
func zoneParam(zone zoneID, length int) (uint8, error) {

	if length != wordSize && length != blockSize {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}

	param := uint8(zone)

	if length == blockSize {
		param |= zoneBlock
	}

	return param, nil
}

// read fetches 4 or 32 bytes from a word address in a zone.
func (device *Device) read(zone zoneID, address uint16, length int) ([]byte, error) {

	param1, err := zoneParam(zone, length)
	if err != nil {
		return nil, err
	}

	return device.execute(opRead, param1, address, nil, readDelay, length)
}

// write stores 4 or 32 bytes at a word address in a zone.
func (device *Device) write(zone zoneID, address uint16, data []byte) error {

	param1, err := zoneParam(zone, len(data))
	if err != nil {
		return err
	}

	return device.executeStatus(opWrite, param1, address, data, writeDelay)
}

// lockZone permanently locks a lockable region: 0 for the configuration
// zone, 1 for data and OTP together.
func (device *Device) lockZone(zone uint8) error {
	return device.executeStatus(opLock, lockIgnoreCRC|zone, 0x0000, nil, lockDelay)
}
