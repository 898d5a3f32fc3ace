// package buffer provides some audio buffer primitives.
package buffer

import (
	"github.com/pfcm/cymaglyph/interp"
)

// Ring is a ring buffer of samples with a single write head. Reads are always
// relative to the write head, so read before writing: Tap(d) is the sample
// written d writes ago.
type Ring struct {
	buf []float32
	w   int
}

// NewRing allocates a ring of size samples with room to grow to capacity
// without allocating.
func NewRing(size, capacity int) *Ring {
	var r Ring
	r.Init(size, capacity)
	return &r
}

// Init (re)allocates the ring's storage, for embedding a Ring by value.
func (r *Ring) Init(size, capacity int) {
	size = max(size, 1)
	r.buf = make([]float32, size, max(size, capacity))
	r.w = 0
}

// Len is the number of samples in the ring, which is also the longest delay
// it can provide.
func (r *Ring) Len() int { return len(r.buf) }

// Cap is the largest Len the ring can be resized to without allocating.
func (r *Ring) Cap() int { return cap(r.buf) }

// Write writes a sample at the write head and advances it.
func (r *Ring) Write(x float32) {
	r.buf[r.w] = x
	r.w++
	if r.w == len(r.buf) {
		r.w = 0
	}
}

// Oldest returns the sample that the next Write will overwrite.
func (r *Ring) Oldest() float32 { return r.buf[r.w] }

// Tap returns the sample written d writes ago. d is clamped to [1, Len].
func (r *Ring) Tap(d int) float32 {
	n := len(r.buf)
	d = interp.Clamp(d, 1, n)
	i := r.w - d
	if i < 0 {
		i += n
	}
	return r.buf[i]
}

// TapFrac is Tap with a fractional delay, linearly interpolated between the
// two nearest samples. d is clamped to [1, Len].
func (r *Ring) TapFrac(d float32) float32 {
	d = interp.Clamp(d, 1, float32(len(r.buf)))
	i := int(d)
	return interp.L(r.Tap(i), r.Tap(i+1), d-float32(i))
}

// Resize changes the length of the ring. Growing within the capacity, or
// shrinking, never allocates. Samples that become part of the ring are zeroed
// and the write head is kept in range.
func (r *Ring) Resize(size int) {
	size = max(size, 1)
	old := len(r.buf)
	if size > cap(r.buf) {
		b := make([]float32, size)
		copy(b, r.buf)
		r.buf = b
	} else {
		r.buf = r.buf[:size]
	}
	if size > old {
		clear(r.buf[old:])
	}
	if r.w >= size {
		r.w = 0
	}
}

// Reset zeroes the contents and rewinds the write head.
func (r *Ring) Reset() {
	clear(r.buf)
	r.w = 0
}
