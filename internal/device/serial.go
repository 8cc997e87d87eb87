// Package device implements SerialDevice using go.bug.st/serial,
// which provides real serial communication support for sensor boards.
package device

import (
	"errors"
	"fmt"
	"time"

	serial "go.bug.st/serial"
)

// SerialDevice implements Device using go.bug.st/serial.
type SerialDevice struct {
	port    serial.Port
	dev     string
	baud    int
	timeout time.Duration
}

// NewSerialDevice opens a serial device with the given path and baudrate
// in raw 8N1 mode.
func NewSerialDevice(dev string, baud int) (*SerialDevice, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(dev, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial %s: %w", dev, err)
	}
	return &SerialDevice{port: p, dev: dev, baud: baud, timeout: -1}, nil
}

// Read performs a bounded-wait read. Zero bytes without error means the
// timeout elapsed with nothing available.
func (s *SerialDevice) Read(p []byte, timeout time.Duration) (int, error) {
	if s.port == nil {
		return 0, errors.New("serial port not open")
	}
	if timeout != s.timeout {
		if err := s.port.SetReadTimeout(timeout); err != nil {
			return 0, fmt.Errorf("set read timeout: %w", err)
		}
		s.timeout = timeout
	}
	return s.port.Read(p)
}

// WriteLine writes a single line followed by '\n' to the serial port.
func (s *SerialDevice) WriteLine(line string) error {
	if s.port == nil {
		return errors.New("serial port not open")
	}
	_, err := s.port.Write(append([]byte(line), '\n'))
	return err
}

// Close closes the underlying serial connection.
func (s *SerialDevice) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
