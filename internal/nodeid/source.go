package nodeid

import (
	"bufio"
	"bytes"
	"os"
	"strings"
)

const (
	// DefaultCPUInfoPath is the Linux hardware descriptor read on the device.
	DefaultCPUInfoPath = "/proc/cpuinfo"

	placeholderSerial = "0000000000000000"
	suffixLength      = 8
	prefix            = "ret"
)

// Source provides the raw host hardware descriptor.
type Source interface {
	Descriptor() ([]byte, error)
}

// CPUInfoSource reads the descriptor from a cpuinfo-formatted file.
type CPUInfoSource struct {
	Path string
}

// Descriptor returns the content of the cpuinfo file.
func (s CPUInfoSource) Descriptor() ([]byte, error) {
	path := s.Path
	if path == "" {
		path = DefaultCPUInfoPath
	}
	return os.ReadFile(path)
}

// ParseSerial extracts the hardware serial from a Raspberry Pi cpuinfo
// descriptor. Serials that cannot yield a stable identifier are rejected.
func ParseSerial(descriptor []byte) (string, error) {
	if !bytes.Contains(descriptor, []byte("Raspberry Pi")) && !bytes.Contains(descriptor, []byte("BCM")) {
		return "", ErrNotRaspberryPi
	}

	// An unusable Serial line does not end the search; a later one may be valid.
	firstErr := ErrNoSerial
	scanner := bufio.NewScanner(bytes.NewReader(descriptor))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Serial") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		serial := strings.TrimSpace(value)
		var err error
		switch {
		case serial == placeholderSerial:
			err = ErrPlaceholderSerial
		case len(serial) < suffixLength:
			err = ErrShortSerial
		default:
			return serial, nil
		}
		if firstErr == ErrNoSerial {
			firstErr = err
		}
	}

	return "", firstErr
}

// FromSerial builds the node identifier from the last eight serial characters.
func FromSerial(serial string) string {
	if len(serial) > suffixLength {
		serial = serial[len(serial)-suffixLength:]
	}
	return prefix + serial
}
