package ecc508

import "log/slog"

// randomBlockSize is how much the RNG yields per command, no more and no
// less.
const randomBlockSize = 32

// Random fills length bytes from the device's random number generator.
//
// The generator hands out fixed 32-byte blocks, so the device stays awake
// across however many commands the requested length needs and the surplus
// of the last block is dropped.
func (device *Device) Random(length int) ([]byte, error) {

	slog.Debug("Random", "length", length)

	if err := device.wakeup(); err != nil {
		return nil, err
	}

	data := make([]byte, 0, length)

	for len(data) < length {

		if err := device.sendCommand(opRandom, 0x00, 0x0000, nil); err != nil {
			device.state = asleep
			return nil, err
		}

		device.config.delay(randomDelay)

		block, err := device.receiveResponse(randomBlockSize)

		if err != nil {
			// The watchdog takes the chip down after a failed
			// exchange; force a fresh wake pulse next time.
			device.state = asleep
			return nil, err
		}

		if need := length - len(data); need < randomBlockSize {
			block = block[:need]
		}

		data = append(data, block...)
	}

	device.config.delay(settleDelay)

	if err := device.idle(); err != nil {
		return nil, err
	}

	return data, nil
}
