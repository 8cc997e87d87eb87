// Package model defines shared data structures for the bmpmon pipeline.
package model

import "math"

// Sample is one validated temperature/pressure reading. Immutable once stored.
type Sample struct {
	Temperature float32 `json:"temperature"`
	Pressure    float32 `json:"pressure"`
	Timestamp   int64   `json:"timestamp"` // seconds since epoch
}

// Statistics summarizes samples inside the rolling window.
// Count == 0 means no data, not all-zero readings.
type Statistics struct {
	MinTemp  float32 `json:"min_temp"`
	MaxTemp  float32 `json:"max_temp"`
	AvgTemp  float32 `json:"avg_temp"`
	MinPress float32 `json:"min_press"`
	MaxPress float32 `json:"max_press"`
	AvgPress float32 `json:"avg_press"`
	Count    int     `json:"count"`
}

// Field selects which reading of a Sample an operation applies to.
type Field int

const (
	Temperature Field = iota
	Pressure
)

// Value returns the selected reading of s.
func (f Field) Value(s Sample) float32 {
	if f == Temperature {
		return s.Temperature
	}
	return s.Pressure
}

// Altitude derives barometric altitude in meters from a pressure in hPa,
// relative to the standard sea-level pressure of 1013.25 hPa.
func Altitude(pressure float32) float32 {
	return 44330.0 * (1.0 - float32(math.Pow(float64(pressure)/1013.25, 0.1903)))
}
