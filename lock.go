package ecc508

import "log/slog"

// Lock zones, the granularity the Lock command works at. Distinct from the
// Read/Write zones: data and OTP lock together.
const (
	lockZoneConfig uint8 = 0x00
	lockZoneValue  uint8 = 0x01
)

// lockStatusWord is the configuration word holding the LockValue and
// LockConfig bytes in its upper half.
const lockStatusWord uint16 = 0x15

// Locked reports whether the device has been locked. Both lock bytes read
// zero once their zones are locked.
func (device *Device) Locked() (bool, error) {

	slog.Debug("Locked")

	word, err := device.read(zoneConfig, lockStatusWord, wordSize)

	if err != nil {
		return false, err
	}

	return word[2] == 0x00 && word[3] == 0x00, nil
}

// Lock permanently locks the whole device: first the configuration zone,
// then data and OTP. The device validates the second lock against an
// already fixed configuration, so the order matters and a failed
// configuration lock aborts. There is no way back from either.
func (device *Device) Lock() error {

	slog.Debug("Lock device")

	if err := device.lockZone(lockZoneConfig); err != nil {
		return err
	}

	return device.lockZone(lockZoneValue)
}
