// Package report collects operator-visible error conditions. Transient
// reports expire after a short display duration; persistent ones survive
// until explicitly cleared or resolved by a successful reconnect. Every
// report is also appended to a plain-text log file, which is never rotated
// or truncated here.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bmpmon/internal/util"
)

const (
	// maxMessages bounds each visible list.
	maxMessages = 5

	// DisplayDuration is how long transient reports stay visible.
	DisplayDuration = 5 * time.Second
)

// Reporter owns the transient and persistent error lists.
// Safe for use from multiple goroutines.
type Reporter struct {
	mu         sync.Mutex
	logPath    string
	transient  []string
	persistent []string
	lastAt     time.Time

	now func() time.Time
}

// NewReporter creates a reporter appending to the log file at logPath.
// The parent directory is created if needed.
func NewReporter(logPath string) *Reporter {
	if dir := filepath.Dir(logPath); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	return &Reporter{logPath: logPath, now: time.Now}
}

// Transient records a short-lived condition: a malformed line, an
// out-of-range reading, a single failed reconnect attempt.
func (r *Reporter) Transient(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.mu.Lock()
	r.transient = push(r.transient, msg)
	r.lastAt = r.now()
	r.mu.Unlock()
	r.log(msg)
}

// Persistent records a condition that remains visible until cleared:
// no device found, exhausted reconnect attempts, open failure.
// Persistent reports also appear in the transient list.
func (r *Reporter) Persistent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.mu.Lock()
	r.transient = push(r.transient, msg)
	r.persistent = push(r.persistent, msg)
	r.lastAt = r.now()
	r.mu.Unlock()
	r.log(msg)
}

// Expire drops the transient list once the display duration has elapsed
// since the last report. It returns whether anything was dropped.
func (r *Reporter) Expire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transient) == 0 || r.now().Sub(r.lastAt) <= DisplayDuration {
		return false
	}
	r.transient = nil
	return true
}

// ClearTransient empties the transient list.
func (r *Reporter) ClearTransient() {
	r.mu.Lock()
	r.transient = nil
	r.mu.Unlock()
}

// ClearPersistent empties the persistent list, e.g. after a successful
// reconnect or an explicit operator request.
func (r *Reporter) ClearPersistent() {
	r.mu.Lock()
	r.persistent = nil
	r.mu.Unlock()
}

// TransientMessages returns a copy of the currently visible transient list.
func (r *Reporter) TransientMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.transient...)
}

// PersistentMessages returns a copy of the persistent list.
func (r *Reporter) PersistentMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.persistent...)
}

func push(list []string, msg string) []string {
	if len(list) >= maxMessages {
		list = list[1:]
	}
	return append(list, msg)
}

// log appends the entry to the error log file and echoes it to the console.
func (r *Reporter) log(msg string) {
	util.Error("%s", msg)
	if r.logPath == "" {
		return
	}
	f, err := os.OpenFile(r.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s: %s\n", r.now().Format(time.RFC3339), msg)
}
