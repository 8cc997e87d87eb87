// Package store persists buffered samples as delimiter-separated text and
// loads them back with per-line validation. Saves are atomic: data is
// written to a temporary file in the target directory and renamed over the
// final name, so the on-disk file is always a complete version.
package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bmpmon/internal/model"
)

// Save writes samples oldest-first to path, one line per sample in the
// fixed order temperature, pressure, timestamp. On any write failure the
// previous file is left untouched.
func Save(path string, samples []model.Sample, delim byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("store: create temp file %s: %w", tmp, err)
	}

	w := bufio.NewWriter(f)
	for _, s := range samples {
		line := formatSample(s, delim)
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("store: write temp file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("store: flush temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("store: rename temp file: %w", err)
	}
	return nil
}

// Load reads path and returns every valid sample in file order plus one
// error per rejected line. An absent file is not an error: it loads zero
// samples. A line is accepted only when it splits into exactly three
// fields on the configured delimiter, both values lie inside their ranges,
// and the timestamp is positive and not in the future relative to now.
func Load(path string, tempRange, pressRange model.Range, delim byte, now int64) ([]model.Sample, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("store: open data file %s: %w", path, err)
	}
	defer f.Close()

	var (
		samples []model.Sample
		rejects []error
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, ok := parseLine(line, tempRange, pressRange, delim, now)
		if !ok {
			rejects = append(rejects, fmt.Errorf("invalid data line: %s", line))
			continue
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return samples, rejects, fmt.Errorf("store: read data file: %w", err)
	}
	return samples, rejects, nil
}

func formatSample(s model.Sample, delim byte) string {
	d := string(delim)
	return strconv.FormatFloat(float64(s.Temperature), 'g', -1, 32) + d +
		strconv.FormatFloat(float64(s.Pressure), 'g', -1, 32) + d +
		strconv.FormatInt(s.Timestamp, 10)
}

func parseLine(line string, tempRange, pressRange model.Range, delim byte, now int64) (model.Sample, bool) {
	fields := strings.Split(line, string(delim))
	if len(fields) != 3 {
		return model.Sample{}, false
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 32)
	if err != nil {
		return model.Sample{}, false
	}
	press, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 32)
	if err != nil {
		return model.Sample{}, false
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return model.Sample{}, false
	}
	if !tempRange.Contains(float32(temp)) || !pressRange.Contains(float32(press)) {
		return model.Sample{}, false
	}
	if ts <= 0 || ts > now {
		return model.Sample{}, false
	}
	return model.Sample{
		Temperature: float32(temp),
		Pressure:    float32(press),
		Timestamp:   ts,
	}, true
}
