// Virtual serial pair management via socat, used by the sensor simulator.
package util

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
)

// SocatManager owns the socat processes backing virtual serial pairs and
// the symlinks they create.
type SocatManager struct {
	mu     sync.Mutex
	cmds   []*exec.Cmd
	links  []string
	closed bool
}

// NewSocatManager initializes an empty manager.
func NewSocatManager() *SocatManager {
	return &SocatManager{}
}

// CreatePair starts a socat process that links two raw PTYs, one for the
// monitor to read and one for the simulator to write.
func (m *SocatManager) CreatePair(monitor, simulator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := exec.Command(
		"socat", "-d", "-d",
		fmt.Sprintf("pty,raw,echo=0,link=%s", monitor),
		fmt.Sprintf("pty,raw,echo=0,link=%s", simulator),
	)
	cmd.Stdout = log.Writer()
	cmd.Stderr = log.Writer()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start socat: %w", err)
	}

	Info("[virt-serial] started socat (pid=%d): %s <-> %s", cmd.Process.Pid, monitor, simulator)

	m.cmds = append(m.cmds, cmd)
	m.links = append(m.links, monitor, simulator)
	return nil
}

// Cleanup stops all socat processes and removes created links.
func (m *SocatManager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true

	for _, cmd := range m.cmds {
		if cmd.Process != nil {
			Info("[virt-serial] killing socat pid=%d", cmd.Process.Pid)
			_ = cmd.Process.Kill()
			_, _ = cmd.Process.Wait()
		}
	}

	for _, path := range m.links {
		if _, err := os.Lstat(path); err == nil {
			_ = os.Remove(path)
			Info("[virt-serial] removed link: %s", path)
		}
	}

	Info("[virt-serial] cleanup complete (%d pairs)", len(m.links)/2)
}
