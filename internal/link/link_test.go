package link

import (
	"errors"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bmpmon/internal/device"
	"bmpmon/internal/report"
)

type readResult struct {
	data string
	err  error
}

type fakeDevice struct {
	reads  []readResult
	writes []string
	closed bool
}

func (f *fakeDevice) Read(p []byte, timeout time.Duration) (int, error) {
	if len(f.reads) == 0 {
		return 0, nil
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	return copy(p, r.data), r.err
}

func (f *fakeDevice) WriteLine(s string) error {
	f.writes = append(f.writes, s)
	return nil
}

func (f *fakeDevice) Close() error {
	f.closed = true
	return nil
}

func newTestManager(t *testing.T) (*Manager, *time.Time) {
	t.Helper()
	m := NewManager(9600, nil, report.NewReporter(""))
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestPollDisconnectedReturnsNoData(t *testing.T) {
	m, _ := newTestManager(t)
	lines, err := m.Poll(100 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, lines)
	require.False(t, m.Connected())
}

func TestPollReassemblesPartialLines(t *testing.T) {
	m, _ := newTestManager(t)
	dev := &fakeDevice{reads: []readResult{
		{data: "Temp: 2"},
		{data: "3.5\nPres: 990.0\nPar"},
		{data: "tial"},
		{data: "\n"},
	}}
	m.dev = dev

	lines, err := m.Poll(0)
	require.NoError(t, err)
	require.Empty(t, lines, "no newline yet")

	lines, err = m.Poll(0)
	require.NoError(t, err)
	require.Equal(t, []string{"Temp: 23.5", "Pres: 990.0"}, lines)

	lines, err = m.Poll(0)
	require.NoError(t, err)
	require.Empty(t, lines)

	lines, err = m.Poll(0)
	require.NoError(t, err)
	require.Equal(t, []string{"Partial"}, lines)
}

func TestPollStripsCarriageReturn(t *testing.T) {
	m, _ := newTestManager(t)
	m.dev = &fakeDevice{reads: []readResult{{data: "Temp: 23.5\r\n"}}}
	lines, err := m.Poll(0)
	require.NoError(t, err)
	require.Equal(t, []string{"Temp: 23.5"}, lines)
}

func TestPollZeroBytesIsNotAnError(t *testing.T) {
	m, _ := newTestManager(t)
	m.dev = &fakeDevice{}
	lines, err := m.Poll(0)
	require.NoError(t, err)
	require.Empty(t, lines)
	require.True(t, m.Connected())
}

func TestPollRetriableErrorIgnored(t *testing.T) {
	m, _ := newTestManager(t)
	m.dev = &fakeDevice{reads: []readResult{{err: syscall.EAGAIN}}}
	lines, err := m.Poll(0)
	require.NoError(t, err)
	require.Empty(t, lines)
	require.True(t, m.Connected())
}

func TestPollHardErrorDropsLink(t *testing.T) {
	m, _ := newTestManager(t)
	dev := &fakeDevice{reads: []readResult{
		{data: "Temp: 2"},
		{err: errors.New("input/output error")},
	}}
	m.dev = dev

	_, err := m.Poll(0)
	require.NoError(t, err)

	_, err = m.Poll(0)
	require.ErrorIs(t, err, ErrLinkLost)
	require.False(t, m.Connected())
	require.True(t, dev.closed)
	require.Empty(t, m.pending, "pending buffer abandoned on disconnect")
}

func TestPollFrameTooLong(t *testing.T) {
	m, _ := newTestManager(t)
	m.dev = &fakeDevice{reads: []readResult{
		{data: strings.Repeat("x", maxPending)},
		{data: "Temp: 23.5\n"},
	}}

	lines, err := m.Poll(0)
	require.ErrorIs(t, err, ErrFrameTooLong)
	require.Empty(t, lines)
	require.True(t, m.Connected(), "overflow drops the frame, not the link")

	// pending buffer was dropped, so the next complete line parses cleanly
	lines, err = m.Poll(0)
	require.NoError(t, err)
	require.Equal(t, []string{"Temp: 23.5"}, lines)
}

func TestFrameTooLongAfterAccumulation(t *testing.T) {
	m, _ := newTestManager(t)
	m.dev = &fakeDevice{reads: []readResult{
		{data: "Pres: 990.0\n" + strings.Repeat("y", 200)},
		{data: strings.Repeat("y", maxPending-200)},
	}}

	// completed lines ahead of the runaway frame still come through
	lines, err := m.Poll(0)
	require.NoError(t, err)
	require.Equal(t, []string{"Pres: 990.0"}, lines)

	lines, err = m.Poll(0)
	require.ErrorIs(t, err, ErrFrameTooLong)
	require.Empty(t, lines)
}

func TestReconnectCooldownAndBudget(t *testing.T) {
	m, now := newTestManager(t)
	dialed := 0
	m.Find = func() (string, error) { return "/dev/ttyACM0", nil }
	m.Dial = func(path string, baud int) (device.Device, error) {
		dialed++
		return nil, errors.New("open failed")
	}

	require.False(t, m.MaybeReconnect())
	attemptsSoFar := dialed

	// within cool-down: no new attempt
	*now = now.Add(ReconnectCooldown - time.Second)
	require.False(t, m.MaybeReconnect())
	require.Equal(t, attemptsSoFar, dialed)

	// each cool-down interval allows exactly one attempt, up to the budget
	for i := 1; i < MaxReconnectAttempts; i++ {
		*now = now.Add(ReconnectCooldown)
		require.False(t, m.MaybeReconnect())
	}
	require.False(t, m.Unavailable())

	*now = now.Add(ReconnectCooldown)
	require.False(t, m.MaybeReconnect())
	require.True(t, m.Unavailable())
	require.Contains(t, m.reporter.PersistentMessages()[0], "reconnect attempts exhausted")

	// budget exhausted: further polls of the policy make no attempts
	exhausted := dialed
	*now = now.Add(time.Hour)
	require.False(t, m.MaybeReconnect())
	require.Equal(t, exhausted, dialed)

	// explicit reset re-arms the policy
	m.Reset()
	require.False(t, m.Unavailable())
	require.False(t, m.MaybeReconnect())
	require.Greater(t, dialed, exhausted)
}

func TestReconnectTriesCandidateBauds(t *testing.T) {
	m, _ := newTestManager(t)
	m.baud = 115200
	var tried []int
	dev := &fakeDevice{}
	m.Find = func() (string, error) { return "/dev/ttyUSB1", nil }
	m.Dial = func(path string, baud int) (device.Device, error) {
		tried = append(tried, baud)
		if baud == 9600 {
			return dev, nil
		}
		return nil, errors.New("wrong baud")
	}

	require.True(t, m.MaybeReconnect())
	require.Equal(t, []int{115200, 9600}, tried)
	require.True(t, m.Connected())
	require.Equal(t, 9600, m.Baud())
	require.Equal(t, "/dev/ttyUSB1", m.Port())
	require.Equal(t, 0, m.attempts, "success resets the attempt counter")
}

func TestReconnectSuccessClearsErrors(t *testing.T) {
	m, now := newTestManager(t)
	m.reporter.Persistent("no serial port available")
	m.Find = func() (string, error) { return "/dev/ttyACM0", nil }
	m.Dial = func(path string, baud int) (device.Device, error) { return &fakeDevice{}, nil }

	*now = now.Add(ReconnectCooldown)
	require.True(t, m.MaybeReconnect())
	require.Empty(t, m.reporter.PersistentMessages())
	require.Empty(t, m.reporter.TransientMessages())
}

func TestReconnectNoDeviceFound(t *testing.T) {
	m, _ := newTestManager(t)
	m.Find = func() (string, error) { return "", device.ErrNoDeviceFound }
	require.False(t, m.MaybeReconnect())
	require.Contains(t, m.reporter.PersistentMessages()[0], "no serial port")
}

func TestSetBaudDropsConnection(t *testing.T) {
	m, _ := newTestManager(t)
	dev := &fakeDevice{}
	m.dev = dev
	m.portName = "/dev/ttyACM0"

	m.SetBaud(115200)
	require.False(t, m.Connected())
	require.True(t, dev.closed)
	require.Equal(t, 115200, m.Baud())

	// next reconnect prefers the new rate
	var first int
	m.Find = func() (string, error) { return "/dev/ttyACM0", nil }
	m.Dial = func(path string, baud int) (device.Device, error) {
		if first == 0 {
			first = baud
		}
		return &fakeDevice{}, nil
	}
	require.True(t, m.MaybeReconnect())
	require.Equal(t, 115200, first)
}
