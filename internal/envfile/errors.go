package envfile

import "errors"

// ErrInvalidSection is returned when the tar1090 section cannot be interpreted.
var ErrInvalidSection = errors.New("invalid tar1090 section")
