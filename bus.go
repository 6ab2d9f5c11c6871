package ecc508

// Bus is the two-wire transport the driver runs on. Package i2cbus provides
// the real hardware implementation; package emulator provides a simulated
// device for development and tests.
//
// WriteTo must transmit the whole buffer in a single addressed transaction
// and fail if the device does not acknowledge all of it. ReadFrom requests
// exactly len(p) bytes from the device and reports how many actually
// arrived; a short read is how a device that has no response ready yet
// shows up, and callers are expected to retry.
type Bus interface {
	Begin() error
	End() error
	WriteTo(address uint8, p []byte) error
	ReadFrom(address uint8, p []byte) (int, error)
}
