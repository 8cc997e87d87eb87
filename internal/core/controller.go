// Package core contains the acquisition controller, the single owner of
// the serial link, history buffer, persistence and error reporting. One
// cooperative loop drives everything: poll the link, parse completed
// lines, push samples, persist periodically, drive reconnection.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bmpmon/internal/config"
	"bmpmon/internal/history"
	"bmpmon/internal/link"
	"bmpmon/internal/model"
	"bmpmon/internal/parser"
	"bmpmon/internal/report"
	"bmpmon/internal/stats"
	"bmpmon/internal/store"
	"bmpmon/internal/util"
)

const (
	// tickInterval paces the control loop.
	tickInterval = 200 * time.Millisecond

	// pollTimeout bounds the serial wait inside one tick.
	pollTimeout = 100 * time.Millisecond
)

// Options configures a Controller. Zero values take sensible defaults.
type Options struct {
	ConfigPath string // key=value settings file, default "bmpmon.conf"
	DataDir    string // directory for data and error log, default "logs"
	Filename   string // data file name, default data_<timestamp>.csv
	BaudRate   int    // overrides the configured baud rate when non-zero
	Delimiter  byte   // overrides the configured delimiter when non-zero

	// DevicePrefixes feeds discovery; empty means /dev/ttyACM, /dev/ttyUSB.
	DevicePrefixes []string
}

// Status is the read-only view handed to the rendering/CLI layer.
type Status struct {
	Connected    bool     `json:"connected"`
	Unavailable  bool     `json:"unavailable"`
	Paused       bool     `json:"paused"`
	Port         string   `json:"port"`
	BaudRate     int      `json:"baud_rate"`
	Filename     string   `json:"filename"`
	SaveInterval int      `json:"save_interval"`
	Samples      int      `json:"samples"`
	Transient    []string `json:"transient_errors"`
	Persistent   []string `json:"persistent_errors"`
}

// Controller orchestrates acquisition. All state is owned here and mutated
// under one mutex, taken briefly per tick and per control-surface call.
type Controller struct {
	mu       sync.Mutex
	cfg      model.Config
	link     *link.Manager
	history  *history.Buffer
	reporter *report.Reporter

	dataDir  string
	filename string
	paused   bool
	lastSave time.Time

	// onSample, when set, is invoked outside the lock for every accepted
	// sample. Set it before Run starts.
	onSample func(model.Sample)

	now func() time.Time
}

// NewController loads configuration, restores any previously persisted
// samples and returns a controller ready to Run. Config problems are
// reported, never fatal: acquisition starts with defaults.
func NewController(opts Options) (*Controller, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = "bmpmon.conf"
	}
	if opts.DataDir == "" {
		opts.DataDir = "logs"
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("core: create data dir %s: %w", opts.DataDir, err)
	}

	rep := report.NewReporter(filepath.Join(opts.DataDir, "errors.log"))

	cfg, err := config.Load(opts.ConfigPath, rep)
	if err != nil {
		rep.Persistent("%v", err)
	}
	if opts.BaudRate != 0 {
		if opts.BaudRate == 9600 || opts.BaudRate == 115200 {
			cfg.BaudRate = opts.BaudRate
		} else {
			rep.Transient("unsupported baud rate: %d", opts.BaudRate)
		}
	}
	if opts.Delimiter != 0 {
		cfg.Delimiter = opts.Delimiter
	}

	filename := opts.Filename
	if filename == "" {
		filename = time.Now().Format("data_20060102_150405.csv")
	}

	c := &Controller{
		cfg:      cfg,
		link:     link.NewManager(cfg.BaudRate, opts.DevicePrefixes, rep),
		history:  history.New(model.DefaultCapacity),
		reporter: rep,
		dataDir:  opts.DataDir,
		filename: filename,
		now:      time.Now,
	}
	c.loadPrevious()
	return c, nil
}

// loadPrevious restores the data file for the configured filename, if any.
func (c *Controller) loadPrevious() {
	path := filepath.Join(c.dataDir, c.filename)
	samples, rejects, err := store.Load(path, c.cfg.TempRange, c.cfg.PressRange, c.cfg.Delimiter, c.now().Unix())
	if err != nil {
		c.reporter.Transient("%v", err)
		return
	}
	for _, e := range rejects {
		c.reporter.Transient("%v", e)
	}
	for _, s := range samples {
		c.history.Push(s)
	}
	if len(samples) > 0 {
		util.Info("loaded %d samples from %s", len(samples), path)
	}
}

// Run drives the control loop until ctx is cancelled, then performs a
// final save of whatever is buffered and releases the link.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Shutdown()
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// SetSampleHook registers a callback invoked for every accepted sample,
// outside the controller lock. Must be set before Run starts.
func (c *Controller) SetSampleHook(fn func(model.Sample)) {
	c.onSample = fn
}

// Tick performs one control-loop iteration. Reconnection keeps running
// while paused; acquisition and periodic saves do not.
func (c *Controller) Tick() {
	sample, ok := c.tick()
	if ok && c.onSample != nil {
		c.onSample(sample)
	}
}

func (c *Controller) tick() (model.Sample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.link.MaybeReconnect()
	var (
		sample model.Sample
		ok     bool
	)
	if !c.paused {
		sample, ok = c.pollOnce()
		if c.now().Sub(c.lastSave) >= time.Duration(c.cfg.SaveInterval)*time.Second {
			c.saveLocked()
			c.lastSave = c.now()
		}
	}
	c.reporter.Expire()
	return sample, ok
}

// pollOnce drains one bounded read from the link and pushes a sample when
// the chunk's completed lines carried both fields.
func (c *Controller) pollOnce() (model.Sample, bool) {
	lines, err := c.link.Poll(pollTimeout)
	if err != nil {
		c.reporter.Transient("%v", err)
	}
	if len(lines) == 0 {
		return model.Sample{}, false
	}

	sample, ok, rejects := parser.ScanChunk(lines, c.cfg.TempRange, c.cfg.PressRange, c.now().Unix())
	for _, e := range rejects {
		c.reporter.Transient("%v", e)
	}
	if !ok {
		return model.Sample{}, false
	}
	c.history.Push(sample)
	util.Info("Temp: %.1f C, Press: %.1f hPa, Alt: %.1f m",
		sample.Temperature, sample.Pressure, model.Altitude(sample.Pressure))
	return sample, true
}

// Shutdown saves the buffered samples one last time and closes the link.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saveLocked()
	c.link.Close()
}

// Save persists the buffer now. A non-empty filename becomes the new
// target for this and subsequent saves.
func (c *Controller) Save(filename string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if filename != "" {
		c.filename = filename
	}
	return c.saveLocked()
}

func (c *Controller) saveLocked() error {
	path := filepath.Join(c.dataDir, c.filename)
	if err := store.Save(path, c.history.Snapshot(), c.cfg.Delimiter); err != nil {
		c.reporter.Transient("%v", err)
		return err
	}
	util.Info("saved %d samples to %s", c.history.Len(), path)
	return nil
}

// TogglePause flips the acquisition pause flag and returns the new state.
func (c *Controller) TogglePause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = !c.paused
	return c.paused
}

// ClearErrors empties the transient list. The persistent list is cleared
// only while the link is up; unresolved conditions stay visible.
func (c *Controller) ClearErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reporter.ClearTransient()
	if c.link.Connected() {
		c.reporter.ClearPersistent()
	}
}

// SetBaud switches the preferred baud rate at runtime. Only the rates the
// sensor firmware supports are accepted.
func (c *Controller) SetBaud(baud int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if baud != 9600 && baud != 115200 {
		c.reporter.Transient("invalid baud rate: %d", baud)
		return fmt.Errorf("core: unsupported baud rate %d", baud)
	}
	c.cfg.BaudRate = baud
	c.link.SetBaud(baud)
	util.Info("baud rate set to %d", baud)
	return nil
}

// Reconnect re-arms the reconnection policy for an immediate attempt,
// clearing any exhausted-budget condition.
func (c *Controller) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.link.Reset()
}

// SetColors updates the display-only color settings.
func (c *Controller) SetColors(colors model.Colors) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Colors = colors
}

// Config returns a copy of the live configuration.
func (c *Controller) Config() model.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Snapshot returns the retained samples in logical order, oldest first.
func (c *Controller) Snapshot() []model.Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Snapshot()
}

// At returns the sample at the given logical index.
func (c *Controller) At(index int) (model.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.At(index)
}

// Len returns the number of retained samples.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Len()
}

// Smoothed exposes the buffer's cached centered moving average.
func (c *Controller) Smoothed(field model.Field, index int) float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Smoothed(field, index, model.DefaultSmoothWindow)
}

// Stats summarizes the samples inside the rolling statistics window.
func (c *Controller) Stats() model.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stats.Compute(c.history.Snapshot(), c.now().Unix(), model.DefaultStatsWindow)
}

// Status collects the read-only view for the rendering/CLI layer.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Connected:    c.link.Connected(),
		Unavailable:  c.link.Unavailable(),
		Paused:       c.paused,
		Port:         c.link.Port(),
		BaudRate:     c.link.Baud(),
		Filename:     c.filename,
		SaveInterval: c.cfg.SaveInterval,
		Samples:      c.history.Len(),
		Transient:    c.reporter.TransientMessages(),
		Persistent:   c.reporter.PersistentMessages(),
	}
}
