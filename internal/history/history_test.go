package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bmpmon/internal/model"
)

func sampleAt(i int) model.Sample {
	return model.Sample{
		Temperature: 20.0 + float32(i),
		Pressure:    1000.0 + float32(i),
		Timestamp:   int64(1700000000 + i),
	}
}

func TestPushAndAt(t *testing.T) {
	b := New(4)
	require.Equal(t, 0, b.Len())

	_, err := b.At(0)
	require.ErrorIs(t, err, ErrOutOfRange)

	for i := 0; i < 3; i++ {
		b.Push(sampleAt(i))
	}
	require.Equal(t, 3, b.Len())

	got, err := b.At(0)
	require.NoError(t, err)
	require.Equal(t, sampleAt(0), got)

	got, err = b.At(2)
	require.NoError(t, err)
	require.Equal(t, sampleAt(2), got)

	_, err = b.At(3)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = b.At(-1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestOldestRetainedAfterOverflow(t *testing.T) {
	const capacity = 5
	b := New(capacity)

	pushes := 17
	for i := 0; i < pushes; i++ {
		b.Push(sampleAt(i))
		if i >= capacity {
			require.Equal(t, capacity, b.Len())
			oldest, err := b.At(0)
			require.NoError(t, err)
			// at(0) is always the (push_count - N)-th inserted sample
			require.Equal(t, sampleAt(i+1-capacity), oldest)
		}
	}

	newest, ok := b.Last()
	require.True(t, ok)
	require.Equal(t, sampleAt(pushes-1), newest)
}

func TestClear(t *testing.T) {
	b := New(3)
	b.Push(sampleAt(0))
	b.Push(sampleAt(1))
	b.Clear()
	require.Equal(t, 0, b.Len())
	_, err := b.At(0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, ok := b.Last()
	require.False(t, ok)
}

// mean of up to window neighbors centered at index, clipped at buffer edges
func expectedSmoothed(b *Buffer, field model.Field, index, window int) float32 {
	var sum float32
	count := 0
	for i := index - window/2; i <= index+window/2; i++ {
		if i < 0 || i >= b.Len() {
			continue
		}
		s, _ := b.At(i)
		sum += field.Value(s)
		count++
	}
	return sum / float32(count)
}

func TestSmoothedCenteredMean(t *testing.T) {
	b := New(10)
	for i := 0; i < 8; i++ {
		b.Push(sampleAt(i * 3))
	}

	for _, field := range []model.Field{model.Temperature, model.Pressure} {
		for i := 0; i < b.Len(); i++ {
			want := expectedSmoothed(b, field, i, 5)
			require.InDelta(t, want, b.Smoothed(field, i, 5), 1e-4)
			// cached value must match on repeat access
			require.InDelta(t, want, b.Smoothed(field, i, 5), 1e-4)
		}
	}
}

func TestSmoothedRecomputedAfterPush(t *testing.T) {
	b := New(6)
	for i := 0; i < 6; i++ {
		b.Push(sampleAt(i))
	}
	before := b.Smoothed(model.Temperature, 5, 5)

	// push shifts the window, invalidating every cached entry
	b.Push(sampleAt(100))
	after := b.Smoothed(model.Temperature, 5, 5)
	require.NotEqual(t, before, after)
	require.InDelta(t, expectedSmoothed(b, model.Temperature, 5, 5), after, 1e-4)
}

func TestSmoothedEmptyAndClippedIndex(t *testing.T) {
	b := New(4)
	require.Equal(t, float32(0), b.Smoothed(model.Temperature, 0, 5))

	b.Push(sampleAt(2))
	// indices beyond occupancy clip to the newest sample
	require.Equal(t, b.Smoothed(model.Pressure, 0, 5), b.Smoothed(model.Pressure, 9, 5))
}

func TestSnapshotOrder(t *testing.T) {
	b := New(3)
	for i := 0; i < 5; i++ {
		b.Push(sampleAt(i))
	}
	snap := b.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, []model.Sample{sampleAt(2), sampleAt(3), sampleAt(4)}, snap)
}
