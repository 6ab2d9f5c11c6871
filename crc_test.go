package ecc508

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC16(t *testing.T) {

	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "nil input",
			data:     nil,
			expected: 0x0000,
		},
		{
			name:     "empty input",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			// The documented wake response frame is 04 11 33 43.
			name:     "wake response",
			data:     []byte{0x04, 0x11},
			expected: 0x4333,
		},
		{
			name:     "eight bytes",
			data:     []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
			expected: 0x0f23,
		},
		{
			name:     "ascii",
			data:     []byte("ECC508"),
			expected: 0xda40,
		},
		{
			name:     "single 0xff",
			data:     []byte{0xff},
			expected: 0x0202,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, CRC16(tt.data))
		})
	}
}

func TestCRC16Deterministic(t *testing.T) {

	data := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x23, 0x45, 0x67}

	require.Equal(t, CRC16(data), CRC16(data))
}

func TestCRC16SingleBitFlips(t *testing.T) {

	data := []byte{0x07, 0x30, 0x00, 0x00, 0x00, 0x11, 0x22, 0x33}
	reference := CRC16(data)

	for i := range data {
		for bit := uint(0); bit < 8; bit++ {

			flipped := append([]byte(nil), data...)
			flipped[i] ^= 1 << bit

			require.NotEqual(t, reference, CRC16(flipped),
				"flipping byte %d bit %d left the checksum unchanged", i, bit)
		}
	}
}
