package ecc508

import (
	"fmt"
	"log/slog"
)

// Sign produces a 64-byte ECDSA signature, r then s, over a 32-byte
// message digest using the private key in the given slot.
//
// The device requires its RNG to be cycled first so the internal entropy
// pool is fresh; the digest is then loaded in nonce pass-through mode and
// signed from the slot. Any step failing aborts the rest.
func (device *Device) Sign(slot int, message []byte) ([]byte, error) {

	slog.Debug("Sign", "slot", slot)

	if len(message) != MessageSize {
		return nil, fmt.Errorf("message must be %d bytes, got %d", MessageSize, len(message))
	}

	if _, err := device.Random(randomBlockSize); err != nil {
		return nil, err
	}

	if err := device.challenge(message); err != nil {
		return nil, err
	}

	return device.execute(opSign, signExternal, uint16(slot), nil, signDelay, SignatureSize)
}
