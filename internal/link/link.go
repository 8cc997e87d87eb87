// Package link owns the serial transport handle and drives the
// Disconnected/Connected state machine. It reassembles newline-terminated
// frames from partial reads and applies the reconnection policy: one
// attempt per cool-down interval, a bounded attempt budget, and a small
// ordered list of candidate baud rates per attempt.
package link

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"bmpmon/internal/device"
	"bmpmon/internal/report"
	"bmpmon/internal/util"
)

var (
	// ErrLinkLost marks a non-retriable I/O error that dropped the connection.
	ErrLinkLost = errors.New("link: connection lost")

	// ErrLinkUnavailable marks an exhausted reconnect budget. No further
	// attempts are made until Reset or a successful manual reconnect.
	ErrLinkUnavailable = errors.New("link: reconnect attempts exhausted")

	// ErrFrameTooLong marks a pending line that overflowed the frame limit
	// without a newline. The pending buffer is dropped to recover.
	ErrFrameTooLong = errors.New("link: frame too long")
)

const (
	// maxPending caps the partial-line assembly buffer.
	maxPending = 256

	// ReconnectCooldown is the minimum gap between reconnect attempts.
	ReconnectCooldown = 5 * time.Second

	// MaxReconnectAttempts bounds consecutive failed attempts before the
	// link reports ErrLinkUnavailable and stops trying.
	MaxReconnectAttempts = 10
)

// Dialer opens a transport for a device path at a baud rate.
type Dialer func(path string, baud int) (device.Device, error)

// Finder enumerates candidate devices and returns the first usable path.
type Finder func() (string, error)

// Manager is the serial link state machine. Not safe for concurrent use;
// the acquisition controller is its single owner.
type Manager struct {
	Dial     Dialer
	Find     Finder
	reporter *report.Reporter

	dev      device.Device
	portName string
	baud     int

	pending     []byte
	readBuf     []byte
	lastAttempt time.Time
	attempts    int
	gaveUp      bool

	now func() time.Time
}

// NewManager creates a disconnected manager preferring the given baud rate.
// The prefixes list feeds device discovery; empty means the defaults.
func NewManager(baud int, prefixes []string, rep *report.Reporter) *Manager {
	return &Manager{
		Dial: func(path string, baud int) (device.Device, error) {
			return device.NewSerialDevice(path, baud)
		},
		Find:     func() (string, error) { return device.Discover(prefixes) },
		baud:     baud,
		readBuf:  make([]byte, maxPending),
		reporter: rep,
		now:      time.Now,
	}
}

// Connected reports whether a transport handle is currently owned.
func (m *Manager) Connected() bool { return m.dev != nil }

// Port returns the connected device path, empty when disconnected.
func (m *Manager) Port() string {
	if m.dev == nil {
		return ""
	}
	return m.portName
}

// Baud returns the preferred (and, while connected, active) baud rate.
func (m *Manager) Baud() int { return m.baud }

// Poll performs one bounded-wait read and returns the newline-terminated
// lines completed by it. When disconnected it returns immediately with no
// data; reconnection is driven separately by MaybeReconnect so the caller's
// tick never blocks here.
func (m *Manager) Poll(timeout time.Duration) ([]string, error) {
	if m.dev == nil {
		return nil, nil
	}

	n, err := m.dev.Read(m.readBuf, timeout)
	if err != nil {
		if retriable(err) {
			return nil, nil
		}
		m.drop()
		return nil, fmt.Errorf("%w: %v", ErrLinkLost, err)
	}
	if n == 0 {
		return nil, nil
	}

	m.pending = append(m.pending, m.readBuf[:n]...)
	lines := m.completeLines()
	if len(m.pending) >= maxPending {
		m.pending = m.pending[:0]
		return lines, ErrFrameTooLong
	}
	return lines, nil
}

// MaybeReconnect makes at most one reconnect attempt, honoring the
// cool-down and the attempt budget. It returns whether the link came up.
func (m *Manager) MaybeReconnect() bool {
	if m.dev != nil {
		return false
	}
	if m.attempts >= MaxReconnectAttempts {
		if !m.gaveUp {
			m.gaveUp = true
			m.reporter.Persistent("%v after %d attempts", ErrLinkUnavailable, m.attempts)
		}
		return false
	}
	if m.now().Sub(m.lastAttempt) < ReconnectCooldown {
		return false
	}
	m.lastAttempt = m.now()
	m.attempts++

	path, err := m.Find()
	if err != nil {
		m.reporter.Persistent("no serial port available")
		return false
	}

	for _, baud := range m.candidateBauds() {
		dev, err := m.Dial(path, baud)
		if err != nil {
			continue
		}
		m.dev = dev
		m.portName = path
		m.baud = baud
		m.pending = m.pending[:0]
		m.attempts = 0
		m.gaveUp = false
		m.reporter.ClearTransient()
		m.reporter.ClearPersistent()
		util.Info("connected to %s at %d baud", path, baud)
		return true
	}

	m.reporter.Transient("failed to connect to %s with any baud rate", path)
	return false
}

// Reset clears the attempt budget and cool-down so the next MaybeReconnect
// tries immediately. Used for explicit operator-initiated retries.
func (m *Manager) Reset() {
	m.attempts = 0
	m.gaveUp = false
	m.lastAttempt = time.Time{}
}

// SetBaud changes the preferred baud rate. An open connection is dropped
// and the attempt budget reset so the link re-dials at the new rate.
func (m *Manager) SetBaud(baud int) {
	m.baud = baud
	if m.dev != nil {
		m.drop()
	}
	m.Reset()
}

// Unavailable reports whether the reconnect budget is exhausted.
func (m *Manager) Unavailable() bool { return m.gaveUp }

// Close releases the transport handle. Any pending partial line is abandoned.
func (m *Manager) Close() {
	m.drop()
}

// candidateBauds is the ordered list tried per attempt: the preferred rate
// first, then the rates the sensor firmware ships with.
func (m *Manager) candidateBauds() []int {
	bauds := []int{m.baud}
	for _, b := range []int{9600, 115200} {
		if b != m.baud {
			bauds = append(bauds, b)
		}
	}
	return bauds
}

// completeLines extracts every newline-terminated line from the pending
// buffer, leaving the unterminated remainder for the next poll.
func (m *Manager) completeLines() []string {
	var lines []string
	start := 0
	for i := 0; i < len(m.pending); i++ {
		if m.pending[i] != '\n' {
			continue
		}
		line := m.pending[start:i]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		lines = append(lines, string(line))
		start = i + 1
	}
	m.pending = append(m.pending[:0], m.pending[start:]...)
	return lines
}

func (m *Manager) drop() {
	if m.dev != nil {
		_ = m.dev.Close()
		m.dev = nil
	}
	m.portName = ""
	m.pending = m.pending[:0]
}

// retriable reports whether a read error means "no data this tick" rather
// than a lost link.
func retriable(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, os.ErrDeadlineExceeded)
}
