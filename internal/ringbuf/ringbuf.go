// Package ringbuf provides the fixed-capacity FIFO window that rolling
// indicators keep their last N samples in. Storage is preallocated once, so
// pushes on the hot path never allocate.
package ringbuf

// Window is a fixed-capacity FIFO of float64 values.
// Not safe for concurrent use; each window belongs to one indicator.
type Window struct {
	buf  []float64
	head int // next write position
	n    int // values held, <= len(buf)
}

// New creates a window holding at most capacity values.
// It panics on a non-positive capacity; callers validate periods first.
func New(capacity int) *Window {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends v. Once the window is full the oldest value is overwritten and
// returned with evicted=true.
func (w *Window) Push(v float64) (old float64, evicted bool) {
	if w.n == len(w.buf) {
		old, evicted = w.buf[w.head], true
	} else {
		w.n++
	}
	w.buf[w.head] = v
	w.head++
	if w.head == len(w.buf) {
		w.head = 0
	}
	return old, evicted
}

// Len returns the number of values currently held.
func (w *Window) Len() int { return w.n }

// At returns the i-th held value, oldest first. It panics if i is out of range.
func (w *Window) At(i int) float64 {
	if i < 0 || i >= w.n {
		panic("ringbuf: index out of range")
	}
	start := w.head - w.n
	if start < 0 {
		start += len(w.buf)
	}
	idx := start + i
	if idx >= len(w.buf) {
		idx -= len(w.buf)
	}
	return w.buf[idx]
}

// Values returns the held values in storage order, without copying.
// Order is unspecified; use it only for order-independent reductions
// such as sums and variances. The slice is invalidated by the next Push.
func (w *Window) Values() []float64 {
	if w.n < len(w.buf) {
		// not yet wrapped: writes started at index 0
		return w.buf[:w.n]
	}
	return w.buf
}
