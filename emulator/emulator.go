// Package emulator provides an in-process simulated ATECC508A.
//
// The simulated device implements the driver's Bus interface and is
// byte-accurate at the frame level: it checks command checksums and length
// fields, answers with properly framed responses, and models the chip's
// wake/idle/sleep behavior, memory zones, lock flags and key slots. Key
// slots hold real P-256 keys, so signatures produced through the driver
// verify with stdlib crypto and vice versa.
//
// It exists for development and tests on machines without the chip; it is
// not hardened and must never hold production key material.
package emulator

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	ecc508 "github.com/nevander/ecc508-go"
)

// DefaultAddress is the chip's factory-default 7-bit bus address.
const DefaultAddress = 0x60

// Opcodes and modes understood by the simulated device.
const (
	opRead   = 0x02
	opWrite  = 0x12
	opNonce  = 0x16
	opLock   = 0x17
	opRandom = 0x1b
	opInfo   = 0x30
	opGenKey = 0x40
	opSign   = 0x41
	opVerify = 0x45

	genKeyCreate     = 0x04
	noncePassThrough = 0x03
	zoneBlock        = 0x80
)

// Status codes the device answers status-style commands with.
const (
	statusSuccess    = 0x00
	statusMiscompare = 0x01
	statusParseError = 0x03
	statusExecError  = 0x0f
	statusCRCError   = 0xff
)

type power int

const (
	sleeping power = iota // volatile state cleared
	idle                  // low power, volatile state retained
	active
)

const (
	configSize = 128
	otpSize    = 64
	dataSize   = 1024

	lockValueOffset  = 86
	lockConfigOffset = 87

	unlockedFlag = 0x55
)

// Device is the simulated coprocessor. It satisfies the driver's Bus
// interface directly, so it plugs in wherever real hardware would:
//
//	sim := emulator.New()
//	device, err := ecc508.Open(sim, emulator.DefaultAddress)
//
// Like the real chip, it is a single unsynchronized resource.
type Device struct {
	address uint8
	state   power

	config [configSize]byte
	otp    [otpSize]byte
	data   [dataSize]byte
	keys   map[int]*ecdsa.PrivateKey

	tempKey  []byte // digest loaded by a pass-through nonce
	response []byte // framed response awaiting the next read
}

// New creates a simulated device at the factory-default address with an
// unlocked configuration and empty key slots.
func New() *Device {

	device := &Device{
		address: DefaultAddress,
		keys:    make(map[int]*ecdsa.PrivateKey),
	}

	// Factory serial number, spread over config words 0, 2 and 3 the way
	// the real chip lays it out, with the revision word in between.
	copy(device.config[0:4], []byte{0x01, 0x23, 0x9f, 0x4c})
	copy(device.config[4:8], []byte{0x00, 0x00, 0x50, 0x00})
	copy(device.config[8:13], []byte{0xca, 0xfe, 0xd0, 0x0d, 0xee})

	device.config[lockValueOffset] = unlockedFlag
	device.config[lockConfigOffset] = unlockedFlag

	return device
}

// SerialNumber returns the hex form of the simulated serial, as the driver
// would report it.
func (device *Device) SerialNumber() string {
	return fmt.Sprintf("%x%x", device.config[0:4], device.config[8:12])
}

// Begin implements Bus. The simulated bus needs no setup.
func (device *Device) Begin() error { return nil }

// End implements Bus.
func (device *Device) End() error { return nil }

// WriteTo implements Bus.
func (device *Device) WriteTo(address uint8, p []byte) error {

	// A zero-length general call is the wake pulse. It is never
	// acknowledged, so it "succeeds" regardless of the device state.
	if address == 0x00 && len(p) == 0 {

		if device.state != active {
			device.state = active
			device.respond([]byte{0x11})
		}

		return nil
	}

	if address != device.address {
		return fmt.Errorf("emulator: no device at address 0x%02x", address)
	}

	if device.state != active {
		return fmt.Errorf("emulator: device is asleep")
	}

	if len(p) == 0 {
		return fmt.Errorf("emulator: empty write")
	}

	switch p[0] {

	case 0x01: // sleep
		device.state = sleeping
		device.tempKey = nil
		device.response = nil

	case 0x02: // idle, volatile state retained
		device.state = idle
		device.response = nil

	case 0x03: // command
		device.respond(device.executeFrame(p[1:]))

	default:
		return fmt.Errorf("emulator: unknown word address 0x%02x", p[0])
	}

	return nil
}

// ReadFrom implements Bus. While no response is ready it returns a short
// read, which is what the real chip's bus behavior degrades to.
func (device *Device) ReadFrom(address uint8, p []byte) (int, error) {

	if address != device.address {
		return 0, fmt.Errorf("emulator: no device at address 0x%02x", address)
	}

	if device.response == nil {
		return 0, nil
	}

	n := copy(p, device.response)
	device.response = nil

	return n, nil
}

// respond frames a payload with its count byte and checksum and queues it
// for the next read.
func (device *Device) respond(payload []byte) {

	frame := make([]byte, 0, len(payload)+3)
	frame = append(frame, uint8(len(payload)+3))
	frame = append(frame, payload...)
	frame = binary.LittleEndian.AppendUint16(frame, ecc508.CRC16(frame))

	device.response = frame
}

// executeFrame validates a command frame (everything after the word
// address) and runs it.
func (device *Device) executeFrame(frame []byte) []byte {

	if len(frame) < 7 || int(frame[0]) != len(frame) {
		return []byte{statusParseError}
	}

	checksum := binary.LittleEndian.Uint16(frame[len(frame)-2:])

	if checksum != ecc508.CRC16(frame[:len(frame)-2]) {
		return []byte{statusCRCError}
	}

	opcode := frame[1]
	param1 := frame[2]
	param2 := binary.LittleEndian.Uint16(frame[3:5])
	data := frame[5 : len(frame)-2]

	switch opcode {
	case opInfo:
		return []byte{0x00, 0x00, 0x50, 0x00}
	case opRandom:
		return device.random()
	case opNonce:
		return device.nonce(param1, data)
	case opGenKey:
		return device.genKey(param1, int(param2))
	case opSign:
		return device.sign(int(param2))
	case opVerify:
		return device.verify(data)
	case opRead:
		return device.readZone(param1, param2)
	case opWrite:
		return device.writeZone(param1, param2, data)
	case opLock:
		return device.lock(param1)
	default:
		return []byte{statusParseError}
	}
}

func (device *Device) random() []byte {

	block := make([]byte, 32)

	if _, err := rand.Read(block); err != nil {
		return []byte{statusExecError}
	}

	return block
}

func (device *Device) nonce(mode uint8, data []byte) []byte {

	if mode != noncePassThrough || len(data) != 32 {
		return []byte{statusParseError}
	}

	device.tempKey = append([]byte(nil), data...)

	return []byte{statusSuccess}
}

func (device *Device) genKey(mode uint8, slot int) []byte {

	if mode == genKeyCreate {

		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return []byte{statusExecError}
		}

		device.keys[slot] = key
	}

	key, ok := device.keys[slot]
	if !ok {
		return []byte{statusExecError}
	}

	return append(pad32(key.X), pad32(key.Y)...)
}

func (device *Device) sign(slot int) []byte {

	key, ok := device.keys[slot]

	if !ok || device.tempKey == nil {
		return []byte{statusExecError}
	}

	r, s, err := ecdsa.Sign(rand.Reader, key, device.tempKey)
	if err != nil {
		return []byte{statusExecError}
	}

	return append(pad32(r), pad32(s)...)
}

func (device *Device) verify(data []byte) []byte {

	if device.tempKey == nil || len(data) != 128 {
		return []byte{statusParseError}
	}

	r := new(big.Int).SetBytes(data[0:32])
	s := new(big.Int).SetBytes(data[32:64])

	publicKey := ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(data[64:96]),
		Y:     new(big.Int).SetBytes(data[96:128]),
	}

	if !ecdsa.Verify(&publicKey, device.tempKey, r, s) {
		return []byte{statusMiscompare}
	}

	return []byte{statusSuccess}
}

// zone returns the backing storage for a Read/Write zone id.
func (device *Device) zone(id uint8) []byte {

	switch id {
	case 0x00:
		return device.config[:]
	case 0x01:
		return device.otp[:]
	case 0x02:
		return device.data[:]
	default:
		return nil
	}
}

func (device *Device) readZone(param1 uint8, address uint16) []byte {

	zone := device.zone(param1 &^ zoneBlock)
	if zone == nil {
		return []byte{statusParseError}
	}

	length := 4
	if param1&zoneBlock != 0 {
		length = 32
	}

	offset := int(address) * 4
	if offset+length > len(zone) {
		return []byte{statusParseError}
	}

	return append([]byte(nil), zone[offset:offset+length]...)
}

func (device *Device) writeZone(param1 uint8, address uint16, data []byte) []byte {

	id := param1 &^ zoneBlock

	zone := device.zone(id)
	if zone == nil || (len(data) != 4 && len(data) != 32) {
		return []byte{statusParseError}
	}

	offset := int(address) * 4
	if offset+len(data) > len(zone) {
		return []byte{statusParseError}
	}

	if id == 0x00 {

		// Configuration writes stop working once the zone is locked,
		// and the serial/revision header and the lock word are never
		// writable at all.
		if device.config[lockConfigOffset] != unlockedFlag {
			return []byte{statusExecError}
		}

		if offset < 16 || (offset >= 84 && offset < 88) {
			return []byte{statusExecError}
		}
	}

	copy(zone[offset:], data)

	return []byte{statusSuccess}
}

func (device *Device) lock(param1 uint8) []byte {

	switch param1 &^ 0x80 {

	case 0x00:
		device.config[lockConfigOffset] = 0x00

	case 0x01:
		// The data/OTP lock is only valid once the configuration is
		// already locked.
		if device.config[lockConfigOffset] != 0x00 {
			return []byte{statusExecError}
		}
		device.config[lockValueOffset] = 0x00

	default:
		return []byte{statusParseError}
	}

	return []byte{statusSuccess}
}

func pad32(v *big.Int) []byte {
	return v.FillBytes(make([]byte, 32))
}
