package ecc508

import (
	"encoding/hex"
	"log/slog"
)

// serialWords are the configuration word addresses the factory serial
// number is spread over.
var serialWords = []uint16{0x00, 0x02, 0x03}

// SerialNumber reads the device's unique, factory-programmed serial and
// renders its first eight bytes as a 16-character lowercase hex string.
func (device *Device) SerialNumber() (string, error) {

	slog.Debug("Serial number")

	serial := make([]byte, 0, len(serialWords)*wordSize)

	for _, address := range serialWords {

		word, err := device.read(zoneConfig, address, wordSize)

		if err != nil {
			return "", err
		}

		serial = append(serial, word...)
	}

	return hex.EncodeToString(serial[:8]), nil
}
