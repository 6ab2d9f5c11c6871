package ecc508

import (
	"errors"
	"fmt"
)

var (
	// ErrWakeFailed means the device did not answer the wake pulse with
	// the expected ready token. Nothing else will work until it does.
	ErrWakeFailed = errors.New("device did not acknowledge wake")

	// ErrResponseLength means the length field of a response frame did
	// not match the number of bytes requested. The exchange is corrupt
	// and is never retried.
	ErrResponseLength = errors.New("response length mismatch")

	// ErrResponseCRC means a response frame arrived complete but failed
	// its checksum. The exchange is corrupt and is never retried.
	ErrResponseCRC = errors.New("response checksum mismatch")

	// ErrInvalidLength means a zone access was requested with a length
	// other than the 4 or 32 bytes the device supports. The request is
	// rejected before any bus transaction.
	ErrInvalidLength = errors.New("zone access must be 4 or 32 bytes")

	// ErrCommandTooLong means a command payload exceeds the device's
	// maximum frame size.
	ErrCommandTooLong = errors.New("command payload too long")

	// ErrWrongDevice means the chip answered the version query with an
	// unexpected revision word.
	ErrWrongDevice = errors.New("unexpected device revision")
)

// StatusError is a nonzero status byte returned by the device for commands
// that report one (nonce, verify, write, lock). The device does not
// distinguish failure causes in a way callers can act on, so all nonzero
// statuses are treated alike.
type StatusError struct {
	Opcode uint8
	Status uint8
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("command 0x%02x returned status 0x%02x", e.Opcode, e.Status)
}
