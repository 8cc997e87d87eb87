// Package parser converts raw sensor text lines into validated readings.
//
// Expected wire format (one reading per line, label then value):
//
//	Temp: 23.50 C
//	Pres: 990.25 hPa
//
// A sample is produced only when both fields appear among the completed
// lines of a single chunk, so every stored pair has near-simultaneous origin.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bmpmon/internal/model"
)

// ErrNotNumeric is returned by ParseValue when a line carries no parseable number.
var ErrNotNumeric = errors.New("parser: no numeric value")

// ParseValue extracts the first numeric token from line: an optional leading
// sign followed by digits with at most one fraction point. Trailing units or
// other text are ignored.
func ParseValue(line string) (float32, error) {
	start := strings.IndexAny(line, "-0123456789")
	if start < 0 {
		return 0, ErrNotNumeric
	}
	end := start
	if line[end] == '-' {
		end++
	}
	dot := false
scan:
	for end < len(line) {
		c := line[end]
		switch {
		case c >= '0' && c <= '9':
			end++
		case c == '.' && !dot:
			dot = true
			end++
		default:
			break scan
		}
	}
	v, err := strconv.ParseFloat(line[start:end], 32)
	if err != nil {
		return 0, ErrNotNumeric
	}
	return float32(v), nil
}

// ScanChunk inspects the completed lines of one read chunk. It returns the
// assembled sample stamped with now when both a temperature and a pressure
// reading were observed, plus one transient error per out-of-range value.
// A chunk yielding only one of the two fields contributes no sample.
func ScanChunk(lines []string, tempRange, pressRange model.Range, now int64) (model.Sample, bool, []error) {
	var (
		temp, press       float32
		gotTemp, gotPress bool
		rejects           []error
	)

	for _, line := range lines {
		switch {
		case strings.Contains(line, "Temp"):
			v, err := ParseValue(line)
			if err != nil {
				continue
			}
			if !tempRange.Contains(v) {
				rejects = append(rejects, fmt.Errorf("invalid temperature: %g", v))
				continue
			}
			temp = v
			gotTemp = true
		case strings.Contains(line, "Pres"):
			v, err := ParseValue(line)
			if err != nil {
				continue
			}
			if !pressRange.Contains(v) {
				rejects = append(rejects, fmt.Errorf("invalid pressure: %g", v))
				continue
			}
			press = v
			gotPress = true
		}
	}

	if !gotTemp || !gotPress {
		return model.Sample{}, false, rejects
	}
	return model.Sample{Temperature: temp, Pressure: press, Timestamp: now}, true, rejects
}
