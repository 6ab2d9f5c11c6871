package ecc508

import (
	"errors"
	"fmt"
	"log/slog"
)

// Verify checks a 64-byte signature over a 32-byte message digest against
// a 64-byte P-256 public key, on the device.
//
// It returns true only when the device accepts the signature. A rejected
// signature is not an error; anything that kept the device from answering
// is.
func (device *Device) Verify(message, signature, publicKey []byte) (bool, error) {

	slog.Debug("Verify")

	if len(message) != MessageSize {
		return false, fmt.Errorf("message must be %d bytes, got %d", MessageSize, len(message))
	}

	if len(signature) != SignatureSize {
		return false, fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(signature))
	}

	if len(publicKey) != PublicKeySize {
		return false, fmt.Errorf("public key must be %d bytes, got %d", PublicKeySize, len(publicKey))
	}

	if err := device.challenge(message); err != nil {
		return false, err
	}

	data := make([]byte, 0, SignatureSize+PublicKeySize)
	data = append(data, signature...)
	data = append(data, publicKey...)

	err := device.executeStatus(opVerify, verifyExternal, verifyKeyP256, data, verifyDelay)

	if err != nil {

		var status *StatusError

		if errors.As(err, &status) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
