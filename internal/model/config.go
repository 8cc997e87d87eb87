// Package model defines shared configuration structures for bmpmon.
package model

// Hardware-plausible absolute bounds for the BMP280 sensor.
const (
	HardTempMin  float32 = -40.0
	HardTempMax  float32 = 85.0
	HardPressMin float32 = 300.0
	HardPressMax float32 = 1100.0
)

// Defaults applied when a setting is absent or rejected.
const (
	DefaultBaudRate     = 9600
	DefaultSaveInterval = 30 // seconds
	DefaultDelimiter    = ','
	DefaultCapacity     = 300
	DefaultStatsWindow  = 300 // seconds
	DefaultSmoothWindow = 5
)

// Range is a closed [Min,Max] validity interval for one sensor field.
type Range struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float32) bool {
	return v >= r.Min && v <= r.Max
}

// Colors carries the display-only keys consumed by the rendering layer.
// The acquisition core never interprets them.
type Colors struct {
	MenuBG    string `json:"menu_bg"`
	HelpBG    string `json:"help_bg"`
	TempLow   string `json:"temp_low"`
	TempHigh  string `json:"temp_high"`
	PressLow  string `json:"press_low"`
	PressHigh string `json:"press_high"`
}

// Config holds the validated scalar settings loaded at startup.
// BaudRate and Colors may change at runtime; everything else is write-once.
type Config struct {
	BaudRate     int    `json:"baud_rate"`
	SaveInterval int    `json:"save_interval"` // seconds
	Delimiter    byte   `json:"-"`
	TempRange    Range  `json:"temp_range"`
	PressRange   Range  `json:"press_range"`
	Colors       Colors `json:"colors"`
}

// DefaultConfig returns the hardware defaults used when no config file exists
// or individual settings fail validation.
func DefaultConfig() Config {
	return Config{
		BaudRate:     DefaultBaudRate,
		SaveInterval: DefaultSaveInterval,
		Delimiter:    DefaultDelimiter,
		TempRange:    Range{Min: HardTempMin, Max: HardTempMax},
		PressRange:   Range{Min: HardPressMin, Max: HardPressMax},
		Colors: Colors{
			MenuBG:    "#808080",
			HelpBG:    "#D3D3D3",
			TempLow:   "blue",
			TempHigh:  "red",
			PressLow:  "green",
			PressHigh: "yellow",
		},
	}
}
