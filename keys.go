package ecc508

import "log/slog"

// GeneratePrivateKey creates a fresh P-256 private key in the given slot
// and returns the matching public key, X then Y coordinate, 32 bytes each.
// The private key itself never leaves the device.
//
// Once the data zone is locked, whether a slot allows this again is
// governed by the slot's configuration.
func (device *Device) GeneratePrivateKey(slot int) ([]byte, error) {

	slog.Debug("Generate private key", "slot", slot)

	return device.execute(opGenKey, genKeyCreate, uint16(slot), nil, genKeyDelay, PublicKeySize)
}

// GeneratePublicKey recomputes the public key for the private key already
// stored in the slot, without creating any new material.
func (device *Device) GeneratePublicKey(slot int) ([]byte, error) {

	slog.Debug("Generate public key", "slot", slot)

	return device.execute(opGenKey, genKeyPublic, uint16(slot), nil, genKeyDelay, PublicKeySize)
}
