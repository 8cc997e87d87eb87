package device

import (
	"errors"
	"fmt"
	"os"
	"strings"

	serial "go.bug.st/serial"
)

// ErrNoDeviceFound is returned by Discover when no candidate port exists.
var ErrNoDeviceFound = errors.New("device: no serial port found")

// DefaultPrefixes are the well-known device path prefixes probed in order.
var DefaultPrefixes = []string{"/dev/ttyACM", "/dev/ttyUSB"}

// candidatesPerPrefix bounds the index probe per prefix (ttyACM0..9).
const candidatesPerPrefix = 10

// Discover returns the first existing candidate device path. Prefixes are
// probed in order with indices 0..9; when none exist the serial stack's own
// port list is consulted, filtered by the same prefixes.
func Discover(prefixes []string) (string, error) {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	for _, prefix := range prefixes {
		for i := 0; i < candidatesPerPrefix; i++ {
			path := fmt.Sprintf("%s%d", prefix, i)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	ports, err := serial.GetPortsList()
	if err == nil {
		for _, port := range ports {
			for _, prefix := range prefixes {
				if strings.HasPrefix(port, prefix) {
					return port, nil
				}
			}
		}
	}
	return "", ErrNoDeviceFound
}
