package ecc508

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZoneGranularity(t *testing.T) {

	for _, length := range []int{0, 1, 3, 5, 7, 8, 16, 31, 33, 64} {

		bus := newScriptBus(nil)
		device := newTestDevice(bus)

		_, err := device.read(zoneConfig, 0x00, length)
		require.ErrorIs(t, err, ErrInvalidLength)

		err = device.write(zoneData, 0x00, make([]byte, length))
		require.ErrorIs(t, err, ErrInvalidLength)

		require.Zero(t, bus.calls, "length %d must be rejected before any bus transaction", length)
	}
}

func TestZoneBlockFlag(t *testing.T) {

	bus := newScriptBus(func(opcode, param1 uint8, param2 uint16, data []byte) []byte {
		if param1&zoneBlock != 0 {
			return make([]byte, blockSize)
		}
		return make([]byte, wordSize)
	})

	device := newTestDevice(bus)

	_, err := device.read(zoneConfig, 0x00, wordSize)
	require.NoError(t, err)
	require.Equal(t, uint8(zoneConfig), bus.commands[0].param1)

	_, err = device.read(zoneConfig, 0x00, blockSize)
	require.NoError(t, err)
	require.Equal(t, uint8(zoneConfig)|zoneBlock, bus.commands[1].param1)
}

func TestReadConfiguration(t *testing.T) {

	bus := newScriptBus(func(opcode, param1 uint8, param2 uint16, data []byte) []byte {
		// Stamp every byte of the block with its block index.
		return bytes.Repeat([]byte{uint8(param2)}, blockSize)
	})

	device := newTestDevice(bus)

	data, err := device.ReadConfiguration()
	require.NoError(t, err)
	require.Len(t, data, ConfigSize)

	addresses := []uint16{}
	for _, command := range bus.commands {
		require.Equal(t, opRead, command.opcode)
		addresses = append(addresses, command.param2)
	}
	require.Equal(t, []uint16{0, 8, 16, 24}, addresses)

	require.Equal(t, uint8(0), data[0])
	require.Equal(t, uint8(24), data[ConfigSize-1])
}

func TestWriteConfigurationMasksReadOnlyWords(t *testing.T) {

	bus := newScriptBus(func(opcode, param1 uint8, param2 uint16, data []byte) []byte {
		return []byte{0x00}
	})

	device := newTestDevice(bus)

	err := device.WriteConfiguration(bytes.Repeat([]byte{0xff}, ConfigSize))
	require.NoError(t, err)

	// 128 bytes in 4-byte words, minus the 16-byte header and the lock
	// word at offset 84.
	require.Len(t, bus.commands, (ConfigSize-configHeaderSize)/wordSize-1)

	for _, command := range bus.commands {

		require.Equal(t, opWrite, command.opcode)

		offset := int(command.param2) * wordSize
		require.GreaterOrEqual(t, offset, configHeaderSize,
			"must never write the read-only header")
		require.NotEqual(t, configLockOffset, offset,
			"must never write the lock word")

		require.Equal(t, bytes.Repeat([]byte{0xff}, wordSize), command.data)
	}
}

func TestWriteConfigurationBadSize(t *testing.T) {

	bus := newScriptBus(nil)
	device := newTestDevice(bus)

	require.Error(t, device.WriteConfiguration(make([]byte, 64)))
	require.Zero(t, bus.calls)
}

func TestWriteConfigurationStopsOnStatusError(t *testing.T) {

	writes := 0

	bus := newScriptBus(func(opcode, param1 uint8, param2 uint16, data []byte) []byte {
		writes++
		if writes == 3 {
			return []byte{0x0f}
		}
		return []byte{0x00}
	})

	device := newTestDevice(bus)

	err := device.WriteConfiguration(make([]byte, ConfigSize))
	require.Error(t, err)
	require.Equal(t, 3, writes, "writing must stop at the first failure")
}
