// Package config loads the flat key=value settings file consumed at
// startup. Rejected values fall back to the hardware defaults and are
// surfaced as reported conditions; they never abort the load.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bmpmon/internal/model"
	"bmpmon/internal/report"
)

// defaultContent is written when no config file exists yet.
const defaultContent = `baud_rate=9600
save_interval=30
temp_min=-40
temp_max=85
press_min=300
press_max=1100
csv_delimiter=,
menu_bg_color=#808080
help_bg_color=#D3D3D3
graph_color_temp_low=blue
graph_color_temp_high=red
graph_color_press_low=green
graph_color_press_high=yellow
`

// Load reads the key=value config at path, creating a default file first
// when none exists. Individual invalid settings are reported through rep
// and replaced with defaults; only an unreadable file is an error, in
// which case the returned config is still usable (all defaults).
func Load(path string, rep *report.Reporter) (model.Config, error) {
	cfg := model.DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if werr := os.WriteFile(path, []byte(defaultContent), 0o644); werr != nil {
			return cfg, fmt.Errorf("config: create default file %s: %w", path, werr)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			rep.Transient("invalid config line: %s", line)
			continue
		}
		applyKey(&cfg, strings.TrimSpace(key), strings.TrimSpace(value), rep)
	}
	if err := sc.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

func applyKey(cfg *model.Config, key, value string, rep *report.Reporter) {
	switch key {
	case "baud_rate":
		baud, err := strconv.Atoi(value)
		if err != nil || (baud != 9600 && baud != 115200) {
			rep.Transient("invalid baud rate: %s", value)
			cfg.BaudRate = model.DefaultBaudRate
			return
		}
		cfg.BaudRate = baud

	case "save_interval":
		interval, err := strconv.Atoi(value)
		if err != nil || interval < 1 || interval > 3600 {
			rep.Transient("invalid save interval: %s", value)
			cfg.SaveInterval = model.DefaultSaveInterval
			return
		}
		cfg.SaveInterval = interval

	case "temp_min":
		v, err := parseFloat(value)
		if err != nil || v < model.HardTempMin || v > model.HardTempMax {
			rep.Transient("invalid temp_min: %s", value)
			cfg.TempRange.Min = model.HardTempMin
			return
		}
		cfg.TempRange.Min = v

	case "temp_max":
		v, err := parseFloat(value)
		if err != nil || v <= cfg.TempRange.Min || v > model.HardTempMax {
			rep.Transient("invalid temp_max: %s", value)
			cfg.TempRange.Max = model.HardTempMax
			return
		}
		cfg.TempRange.Max = v

	case "press_min":
		v, err := parseFloat(value)
		if err != nil || v < model.HardPressMin || v > model.HardPressMax {
			rep.Transient("invalid press_min: %s", value)
			cfg.PressRange.Min = model.HardPressMin
			return
		}
		cfg.PressRange.Min = v

	case "press_max":
		v, err := parseFloat(value)
		if err != nil || v <= cfg.PressRange.Min || v > model.HardPressMax {
			rep.Transient("invalid press_max: %s", value)
			cfg.PressRange.Max = model.HardPressMax
			return
		}
		cfg.PressRange.Max = v

	case "csv_delimiter":
		if value != "" {
			cfg.Delimiter = value[0]
		}

	case "menu_bg_color":
		cfg.Colors.MenuBG = value
	case "help_bg_color":
		cfg.Colors.HelpBG = value
	case "graph_color_temp_low":
		cfg.Colors.TempLow = value
	case "graph_color_temp_high":
		cfg.Colors.TempHigh = value
	case "graph_color_press_low":
		cfg.Colors.PressLow = value
	case "graph_color_press_high":
		cfg.Colors.PressHigh = value
	}
}

func parseFloat(value string) (float32, error) {
	v, err := strconv.ParseFloat(value, 32)
	return float32(v), err
}
