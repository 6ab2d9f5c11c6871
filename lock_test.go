package ecc508

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockOrder(t *testing.T) {

	bus := newScriptBus(func(opcode, param1 uint8, param2 uint16, data []byte) []byte {
		return []byte{0x00}
	})

	device := newTestDevice(bus)

	require.NoError(t, device.Lock())

	require.Equal(t, []uint8{opLock, opLock}, bus.opcodes())
	require.Equal(t, lockIgnoreCRC|lockZoneConfig, bus.commands[0].param1)
	require.Equal(t, lockIgnoreCRC|lockZoneValue, bus.commands[1].param1)
}

func TestLockShortCircuits(t *testing.T) {

	bus := newScriptBus(func(opcode, param1 uint8, param2 uint16, data []byte) []byte {
		if param1 == lockIgnoreCRC|lockZoneConfig {
			return []byte{0x0f}
		}
		return []byte{0x00}
	})

	device := newTestDevice(bus)

	err := device.Lock()
	require.Error(t, err)

	require.Len(t, bus.commands, 1, "the data/OTP lock must not run after a failed configuration lock")
}

func TestLocked(t *testing.T) {

	tests := []struct {
		name   string
		word   []byte
		locked bool
	}{
		{
			name:   "both zones locked",
			word:   []byte{0x00, 0x00, 0x00, 0x00},
			locked: true,
		},
		{
			name:   "factory fresh",
			word:   []byte{0x00, 0x00, 0x55, 0x55},
			locked: false,
		},
		{
			name:   "only configuration locked",
			word:   []byte{0x00, 0x00, 0x55, 0x00},
			locked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			bus := newScriptBus(func(opcode, param1 uint8, param2 uint16, data []byte) []byte {
				require.Equal(t, opRead, opcode)
				require.Equal(t, lockStatusWord, param2)
				return tt.word
			})

			device := newTestDevice(bus)

			locked, err := device.Locked()
			require.NoError(t, err)
			require.Equal(t, tt.locked, locked)
		})
	}
}
