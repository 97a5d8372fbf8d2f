package nodeid

import "errors"

var (
	// ErrNotRaspberryPi is returned when the hardware descriptor does not describe a Raspberry Pi.
	ErrNotRaspberryPi = errors.New("not running on Raspberry Pi hardware")
	// ErrNoSerial is returned when the descriptor carries no Serial field.
	ErrNoSerial = errors.New("hardware serial not found")
	// ErrPlaceholderSerial is returned when the serial is the all-zero placeholder.
	ErrPlaceholderSerial = errors.New("hardware serial is the all-zero placeholder")
	// ErrShortSerial is returned when the serial is shorter than the identifier suffix.
	ErrShortSerial = errors.New("hardware serial is too short")
	// ErrUnexpectedShape is returned when the user overlay holds a non-mapping network section.
	ErrUnexpectedShape = errors.New("network section of user config is not a mapping")
)
