package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the deployment-level options of the monitor binary, kept
// separate from the sensor configuration the acquisition loop consumes.
type Settings struct {
	// ListenAddr is the web server address. Empty disables the server.
	ListenAddr string `yaml:"listen_addr"`

	// DataDir holds the data files and the error log.
	DataDir string `yaml:"data_dir"`

	// DevicePrefixes are the device path prefixes probed during discovery.
	DevicePrefixes []string `yaml:"device_prefixes"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{DataDir: "logs"}
}

// LoadSettings reads the YAML settings file. A missing file is not an
// error; defaults apply.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("[app] failed to read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("[app] failed to parse settings %s: %w", path, err)
	}
	if s.DataDir == "" {
		s.DataDir = "logs"
	}
	return s, nil
}
