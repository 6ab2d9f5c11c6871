package ecc508

import (
	"encoding/binary"
	"time"
)

// scriptBus is a scripted in-memory transport for driving the protocol
// engine in tests. It answers the wake pulse like the real device and
// hands every decoded command frame to a reply function, whose payload it
// frames and checksums back. A nil reply payload leaves the device silent,
// which the driver sees as an endless short read.
type scriptBus struct {
	address uint8

	reply func(opcode, param1 uint8, param2 uint16, data []byte) []byte

	// commands records every decoded command in order.
	commands []scriptCommand

	// shortReads forces that many empty reads before the next response.
	shortReads int

	calls   int // every WriteTo and ReadFrom
	pending []byte
}

type scriptCommand struct {
	opcode uint8
	param1 uint8
	param2 uint16
	data   []byte
}

func newScriptBus(reply func(opcode, param1 uint8, param2 uint16, data []byte) []byte) *scriptBus {
	return &scriptBus{address: 0x60, reply: reply}
}

func (bus *scriptBus) Begin() error { return nil }
func (bus *scriptBus) End() error   { return nil }

func (bus *scriptBus) WriteTo(address uint8, p []byte) error {

	bus.calls++

	if address == 0x00 && len(p) == 0 {
		bus.respond([]byte{wakeToken})
		return nil
	}

	if len(p) == 0 || p[0] != wordCommand {
		// idle or sleep control byte
		return nil
	}

	frame := p[1:]

	command := scriptCommand{
		opcode: frame[1],
		param1: frame[2],
		param2: binary.LittleEndian.Uint16(frame[3:5]),
		data:   append([]byte(nil), frame[5:len(frame)-2]...),
	}

	bus.commands = append(bus.commands, command)

	if bus.reply == nil {
		bus.pending = nil
		return nil
	}

	bus.respond(bus.reply(command.opcode, command.param1, command.param2, command.data))

	return nil
}

func (bus *scriptBus) ReadFrom(address uint8, p []byte) (int, error) {

	bus.calls++

	if bus.shortReads > 0 {
		bus.shortReads--
		return 0, nil
	}

	if bus.pending == nil {
		return 0, nil
	}

	n := copy(p, bus.pending)
	bus.pending = nil

	return n, nil
}

func (bus *scriptBus) respond(payload []byte) {

	if payload == nil {
		bus.pending = nil
		return
	}

	frame := make([]byte, 0, len(payload)+responseOverhead)
	frame = append(frame, uint8(len(payload)+responseOverhead))
	frame = append(frame, payload...)
	frame = binary.LittleEndian.AppendUint16(frame, CRC16(frame))

	bus.pending = frame
}

// opcodes returns the opcode sequence the bus has seen.
func (bus *scriptBus) opcodes() []uint8 {

	opcodes := make([]uint8, 0, len(bus.commands))

	for _, command := range bus.commands {
		opcodes = append(opcodes, command.opcode)
	}

	return opcodes
}

// newTestDevice wires a device handle to a bus with no real delays.
func newTestDevice(bus Bus) *Device {

	device := &Device{
		bus:     bus,
		address: 0x60,
		config:  defaultConfig(),
	}

	device.config.delay = func(time.Duration) {}

	return device
}
