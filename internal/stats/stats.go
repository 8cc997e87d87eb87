// Package stats computes rolling statistics over a history snapshot.
package stats

import "bmpmon/internal/model"

// Compute scans the snapshot once and summarizes every sample whose
// timestamp lies within window seconds of now. With no samples in the
// window it returns a zeroed Statistics with Count 0; callers must treat
// that as "no data".
func Compute(samples []model.Sample, now int64, window int64) model.Statistics {
	var st model.Statistics
	var tempSum, pressSum float32
	first := true

	for _, s := range samples {
		if now-s.Timestamp > window {
			continue
		}
		if first {
			st.MinTemp, st.MaxTemp = s.Temperature, s.Temperature
			st.MinPress, st.MaxPress = s.Pressure, s.Pressure
			first = false
		} else {
			if s.Temperature < st.MinTemp {
				st.MinTemp = s.Temperature
			}
			if s.Temperature > st.MaxTemp {
				st.MaxTemp = s.Temperature
			}
			if s.Pressure < st.MinPress {
				st.MinPress = s.Pressure
			}
			if s.Pressure > st.MaxPress {
				st.MaxPress = s.Pressure
			}
		}
		tempSum += s.Temperature
		pressSum += s.Pressure
		st.Count++
	}

	if st.Count > 0 {
		st.AvgTemp = tempSum / float32(st.Count)
		st.AvgPress = pressSum / float32(st.Count)
	}
	return st
}
