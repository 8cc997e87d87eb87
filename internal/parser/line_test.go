package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bmpmon/internal/model"
)

var (
	tempRange  = model.Range{Min: -40, Max: 85}
	pressRange = model.Range{Min: 300, Max: 1100}
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		line    string
		want    float32
		wantErr bool
	}{
		{"Temp: 23.5 C", 23.5, false},
		{"Temperature = -12.25", -12.25, false},
		{"Pres: 990.0 hPa", 990.0, false},
		{"value 42", 42, false},
		{"BMP280 ready", 280, false}, // first numeric substring wins
		{"Temp: none", 0, true},
		{"", 0, true},
		{"Temp: -", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.line)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrNotNumeric, tt.line)
			continue
		}
		require.NoError(t, err, tt.line)
		require.Equal(t, tt.want, got, tt.line)
	}
}

func TestScanChunkCompletePair(t *testing.T) {
	s, ok, rejects := ScanChunk([]string{"Temp: 23.5", "Pres: 990.0"}, tempRange, pressRange, 1700000000)
	require.True(t, ok)
	require.Empty(t, rejects)
	require.Equal(t, float32(23.5), s.Temperature)
	require.Equal(t, float32(990.0), s.Pressure)
	require.Equal(t, int64(1700000000), s.Timestamp)
}

func TestScanChunkPartialPairDropped(t *testing.T) {
	_, ok, rejects := ScanChunk([]string{"Temp: 23.5"}, tempRange, pressRange, 1)
	require.False(t, ok)
	require.Empty(t, rejects)

	_, ok, _ = ScanChunk([]string{"Pres: 990.0"}, tempRange, pressRange, 1)
	require.False(t, ok)
}

func TestScanChunkOutOfRange(t *testing.T) {
	_, ok, rejects := ScanChunk([]string{"Temp: 999"}, tempRange, pressRange, 1)
	require.False(t, ok)
	require.Len(t, rejects, 1)
	require.Contains(t, rejects[0].Error(), "invalid temperature")

	// valid pressure plus rejected temperature still yields no sample
	_, ok, rejects = ScanChunk([]string{"Temp: 999", "Pres: 990.0"}, tempRange, pressRange, 1)
	require.False(t, ok)
	require.Len(t, rejects, 1)

	_, ok, rejects = ScanChunk([]string{"Temp: 23.5", "Pres: 12.0"}, tempRange, pressRange, 1)
	require.False(t, ok)
	require.Len(t, rejects, 1)
	require.Contains(t, rejects[0].Error(), "invalid pressure")
}

func TestScanChunkLaterReadingWins(t *testing.T) {
	s, ok, _ := ScanChunk([]string{"Temp: 20.0", "Temp: 21.0", "Pres: 990.0"}, tempRange, pressRange, 1)
	require.True(t, ok)
	require.Equal(t, float32(21.0), s.Temperature)
}

func TestScanChunkIgnoresUnrelatedLines(t *testing.T) {
	_, ok, rejects := ScanChunk([]string{"boot ok", "garbage 123", "Temp:"}, tempRange, pressRange, 1)
	require.False(t, ok)
	require.Empty(t, rejects)
}
