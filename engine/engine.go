// Package engine is the pixel engine behind bitmap images: it allocates and
// releases pixel buffers, extracts sub-regions, resamples and blends.
//
// Buffers hold premultiplied pixels in the pixel.Pixel8 layout, row-major,
// exactly width*height elements with no row padding.
package engine

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

// Common errors for engine operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("engine: invalid dimensions")

	// ErrTooLarge is returned when a dimension does not fit in 32 bits.
	ErrTooLarge = errors.New("engine: dimensions too large")

	// ErrDataTooSmall is returned when a pixel slice is shorter than width*height.
	ErrDataTooSmall = errors.New("engine: pixel data too small")

	// ErrZeroScale is returned when a scale target has no pixels.
	ErrZeroScale = errors.New("engine: can't scale to zero dimensions")

	// ErrNoDrawContext is returned when Scale is called without a draw context.
	ErrNoDrawContext = errors.New("engine: missing draw context")
)

// Buffer is an engine-allocated pixel buffer. Buffers are created by
// Allocate, Subimage, Scale, FromImage and Decompress and must be handed back
// to Free exactly once.
type Buffer struct {
	width  int
	height int
	pixels []uint32
	freed  bool
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// Pixels returns the pixel slice. It is nil once the buffer has been freed.
func (b *Buffer) Pixels() []uint32 {
	return b.pixels
}

// Stats counts buffer allocations and releases over the engine's lifetime.
type Stats struct {
	Allocated int64
	Freed     int64
}

// Live returns the number of buffers not yet freed.
func (s Stats) Live() int64 {
	return s.Allocated - s.Freed
}

type bufKey struct {
	width  int
	height int
}

// Engine allocates buffers from a size-keyed pool and implements the pixel
// operations. It is safe for concurrent use; the buffers it returns are not.
type Engine struct {
	mu      sync.Mutex
	buckets map[bufKey][][]uint32
	maxSize int

	allocated atomic.Int64
	freed     atomic.Int64
}

// New creates an engine that keeps at most maxPerBucket released pixel slices
// per size for reuse. Zero disables pooling.
func New(maxPerBucket int) *Engine {
	return &Engine{
		buckets: make(map[bufKey][][]uint32),
		maxSize: maxPerBucket,
	}
}

var defaultEngine = New(4)

// Default returns the process-wide engine.
func Default() *Engine {
	return defaultEngine
}

// CheckDimensions validates a width and height the way Allocate does.
func CheckDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if width > math.MaxInt32 || height > math.MaxInt32 || width > math.MaxInt/height {
		return ErrTooLarge
	}
	return nil
}

// Allocate returns a zeroed buffer of the given size.
func (e *Engine) Allocate(width, height int) (*Buffer, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}

	key := bufKey{width: width, height: height}
	var pixels []uint32

	e.mu.Lock()
	if bucket := e.buckets[key]; len(bucket) > 0 {
		pixels = bucket[len(bucket)-1]
		e.buckets[key] = bucket[:len(bucket)-1]
	}
	e.mu.Unlock()

	if pixels != nil {
		clear(pixels)
		Logger().Debug("reusing pooled buffer", "width", width, "height", height)
	} else {
		pixels = make([]uint32, width*height)
	}

	e.allocated.Add(1)
	return &Buffer{width: width, height: height, pixels: pixels}, nil
}

// Free releases a buffer. Freeing nil is a no-op; freeing twice panics.
func (e *Engine) Free(b *Buffer) {
	if b == nil {
		return
	}
	if b.freed {
		panic("engine: buffer freed twice")
	}
	pixels := b.pixels
	b.freed = true
	b.pixels = nil
	e.freed.Add(1)

	if e.maxSize <= 0 {
		return
	}
	key := bufKey{width: b.width, height: b.height}
	e.mu.Lock()
	defer e.mu.Unlock()
	if bucket := e.buckets[key]; len(bucket) < e.maxSize {
		e.buckets[key] = append(bucket, pixels)
	}
}

// Stats returns the allocation counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Allocated: e.allocated.Load(),
		Freed:     e.freed.Load(),
	}
}
