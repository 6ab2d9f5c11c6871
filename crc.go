package ecc508

// CRC16 computes the checksum the device puts at the end of every command
// and response frame.
//
// The chip documents its own bit-serial variant: polynomial 0x8005, zero
// initial value, data bits consumed least significant first, no final
// reflection. It is not the common table-driven CRC-16/ARC, so this exact
// loop is kept instead of reaching for a CRC library. A nil or empty input
// yields 0.
func CRC16(data []byte) uint16 {

	var crc uint16

	for _, b := range data {

		for shift := uint8(0x01); shift > 0x00; shift <<= 1 {

			var dataBit uint8
			if b&shift != 0 {
				dataBit = 1
			}

			crcBit := uint8(crc >> 15)

			crc <<= 1

			if dataBit != crcBit {
				crc ^= 0x8005
			}
		}
	}

	return crc
}
