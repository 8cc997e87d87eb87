// Package device defines the byte transport used by the acquisition link
// and its serial implementation. Line reassembly lives above this layer;
// devices only move raw bytes with bounded waits.
package device

import "time"

// Device is an abstract byte transport (a serial port, or a fake in tests).
type Device interface {
	// Read fills p with whatever bytes arrive before timeout elapses.
	// Returning zero bytes without error means nothing arrived in time.
	Read(p []byte, timeout time.Duration) (int, error)

	// WriteLine writes s followed by '\n' to the device.
	WriteLine(s string) error

	// Close closes the device and releases underlying resources.
	Close() error
}
