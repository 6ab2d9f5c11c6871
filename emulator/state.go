package emulator

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// snapshot is the persisted form of a simulated device: its memory zones
// and the private scalars of its key slots.
type snapshot struct {
	Config []byte         `cbor:"config"`
	OTP    []byte         `cbor:"otp"`
	Data   []byte         `cbor:"data"`
	Keys   map[int][]byte `cbor:"keys"`
}

// Snapshot serializes the device's persistent state, so a development
// session can carry its provisioned keys and zone contents across runs.
// Volatile state (power mode, loaded digest) is not part of it.
func (device *Device) Snapshot() ([]byte, error) {

	state := snapshot{
		Config: device.config[:],
		OTP:    device.otp[:],
		Data:   device.data[:],
		Keys:   make(map[int][]byte, len(device.keys)),
	}

	for slot, key := range device.keys {
		state.Keys[slot] = key.D.FillBytes(make([]byte, 32))
	}

	return cbor.Marshal(state)
}

// Restore replaces the device's persistent state with a snapshot.
func (device *Device) Restore(data []byte) error {

	decMode, err := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		return err
	}

	var state snapshot

	if err := decMode.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("emulator: decode snapshot: %w", err)
	}

	if len(state.Config) != configSize || len(state.OTP) != otpSize || len(state.Data) != dataSize {
		return fmt.Errorf("emulator: snapshot zone sizes do not match the device")
	}

	copy(device.config[:], state.Config)
	copy(device.otp[:], state.OTP)
	copy(device.data[:], state.Data)

	device.keys = make(map[int]*ecdsa.PrivateKey, len(state.Keys))

	for slot, scalar := range state.Keys {

		key := new(ecdsa.PrivateKey)
		key.Curve = elliptic.P256()
		key.D = new(big.Int).SetBytes(scalar)
		key.X, key.Y = key.Curve.ScalarBaseMult(scalar)

		device.keys[slot] = key
	}

	return nil
}
