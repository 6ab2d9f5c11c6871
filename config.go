package ecc508

import (
	"fmt"
	"log/slog"
)

const (
	// configHeaderSize is the read-only head of the configuration zone:
	// serial number, revision and factory bytes.
	configHeaderSize = 16

	// configLockOffset is the byte offset of the UserExtra/Selector/
	// LockValue/LockConfig word, which only the Lock command may change.
	configLockOffset = 84
)

// ReadConfiguration returns the full 128-byte configuration zone, fetched
// as four 32-byte blocks.
func (device *Device) ReadConfiguration() ([]byte, error) {

	slog.Debug("Read configuration")

	data := make([]byte, 0, ConfigSize)

	for offset := 0; offset < ConfigSize; offset += blockSize {

		block, err := device.read(zoneConfig, uint16(offset/wordSize), blockSize)

		if err != nil {
			return nil, err
		}

		data = append(data, block...)
	}

	return data, nil
}

// WriteConfiguration writes a 128-byte configuration image to the device,
// word by word. The first sixteen bytes and the lock word at offset 84 are
// read-only in hardware and are skipped no matter what the image contains.
//
// Writes are refused by the device once the configuration zone is locked.
func (device *Device) WriteConfiguration(data []byte) error {

	slog.Debug("Write configuration")

	if len(data) != ConfigSize {
		return fmt.Errorf("configuration must be %d bytes, got %d", ConfigSize, len(data))
	}

	for offset := configHeaderSize; offset < ConfigSize; offset += wordSize {

		if offset == configLockOffset {
			continue
		}

		if err := device.write(zoneConfig, uint16(offset/wordSize), data[offset:offset+wordSize]); err != nil {
			return err
		}
	}

	return nil
}
