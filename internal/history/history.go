// Package history implements the fixed-capacity sample store with a lazy
// smoothing cache. The most recent N samples are kept in arrival order;
// logical index 0 is always the oldest retained sample.
package history

import (
	"errors"

	"bmpmon/internal/model"
)

// ErrOutOfRange is returned by At for a logical index outside the buffer.
var ErrOutOfRange = errors.New("history: index out of range")

// Buffer is a ring of samples plus one smoothed-value cache per field.
// Both caches are invalidated in full on every Push or Clear.
type Buffer struct {
	buf  []model.Sample
	head int // next write position
	size int

	tempCache  []float32
	pressCache []float32
}

// New creates a buffer holding at most capacity samples.
// A non-positive capacity falls back to the default of 300.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = model.DefaultCapacity
	}
	return &Buffer{
		buf:        make([]model.Sample, capacity),
		tempCache:  make([]float32, capacity),
		pressCache: make([]float32, capacity),
	}
}

// Push appends a sample, overwriting the oldest slot once at capacity.
func (b *Buffer) Push(s model.Sample) {
	b.buf[b.head] = s
	b.head = (b.head + 1) % len(b.buf)
	if b.size < len(b.buf) {
		b.size++
	}
	b.invalidate()
}

// Len returns the current occupancy, 0..Cap().
func (b *Buffer) Len() int { return b.size }

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// At returns the sample at the given logical index (0 = oldest retained).
func (b *Buffer) At(index int) (model.Sample, error) {
	if index < 0 || index >= b.size {
		return model.Sample{}, ErrOutOfRange
	}
	return b.buf[b.physical(index)], nil
}

// Last returns the most recent sample, or false when empty.
func (b *Buffer) Last() (model.Sample, bool) {
	if b.size == 0 {
		return model.Sample{}, false
	}
	return b.buf[b.physical(b.size-1)], true
}

// Clear resets occupancy to zero and invalidates both caches.
func (b *Buffer) Clear() {
	b.head = 0
	b.size = 0
	b.invalidate()
}

// Smoothed returns a centered moving average of up to window neighbors
// around the given logical index, clipped at the buffer edges. Values are
// computed lazily and cached until the next Push or Clear. A cache entry
// holding exactly zero is treated as uncomputed and recalculated on access.
func (b *Buffer) Smoothed(field model.Field, index, window int) float32 {
	if b.size == 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index > b.size-1 {
		index = b.size - 1
	}
	cache := b.tempCache
	if field == model.Pressure {
		cache = b.pressCache
	}
	if cache[index] == 0 {
		var sum float32
		count := 0
		lo := index - window/2
		if lo < 0 {
			lo = 0
		}
		hi := index + window/2
		if hi > b.size-1 {
			hi = b.size - 1
		}
		for i := lo; i <= hi; i++ {
			sum += field.Value(b.buf[b.physical(i)])
			count++
		}
		if count > 0 {
			cache[index] = sum / float32(count)
		} else {
			cache[index] = field.Value(b.buf[b.physical(index)])
		}
	}
	return cache[index]
}

// Snapshot copies the retained samples in logical order, oldest first.
func (b *Buffer) Snapshot() []model.Sample {
	out := make([]model.Sample, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.buf[b.physical(i)]
	}
	return out
}

// physical maps a logical index to the ring position.
func (b *Buffer) physical(index int) int {
	return (b.head + len(b.buf) - b.size + index) % len(b.buf)
}

func (b *Buffer) invalidate() {
	for i := range b.tempCache {
		b.tempCache[i] = 0
		b.pressCache[i] = 0
	}
}
