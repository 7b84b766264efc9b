// Package pool implements the buffer free list (this file) and the
// order-derived reference-count plan (plan.go).
package pool

// Buffer is one dense, row-major intermediate-result buffer. The
// scheduler only tracks identity and shape; numeric content is the
// node implementations' business.
type Buffer struct {
	// Rows and Cols are the buffer's concrete dimensions.
	Rows, Cols int

	// Data holds Rows·Cols values in row-major layout.
	Data []float64
}

// Zero overwrites the buffer with zeros (used for gradient
// accumulation targets).
func (b *Buffer) Zero() {
	for i := range b.Data {
		b.Data[i] = 0
	}
}

// shapeKey indexes the free list by exact dimensions.
type shapeKey struct{ rows, cols int }

// Pool is a shape-keyed free list of reusable buffers. It performs no
// internal locking; evaluation is single-threaded by contract.
type Pool struct {
	free map[shapeKey][]*Buffer

	allocated int // fresh allocations performed
	reused    int // free-list hits served
}

// New creates an empty Pool.
func New() *Pool {
	return &Pool{free: make(map[shapeKey][]*Buffer)}
}

// Request returns a free buffer of exactly rows×cols when one exists,
// else allocates fresh. Pool exhaustion is not an error by contract.
func (p *Pool) Request(rows, cols int) *Buffer {
	k := shapeKey{rows: rows, cols: cols}
	if list := p.free[k]; len(list) > 0 {
		b := list[len(list)-1]
		p.free[k] = list[:len(list)-1]
		p.reused++

		return b
	}

	p.allocated++

	return &Buffer{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Release returns b to the free list, making it eligible for reuse.
// Releasing nil is a no-op. Callers must not touch b afterwards; the
// plan discipline in the execution driver guarantees no live consumer
// still references it.
func (p *Pool) Release(b *Buffer) {
	if b == nil {
		return
	}
	k := shapeKey{rows: b.Rows, cols: b.Cols}
	p.free[k] = append(p.free[k], b)
}

// Stats reports lifetime counters: fresh allocations and free-list
// reuses. Tests use these to assert the buffer-sharing behavior.
func (p *Pool) Stats() (allocated, reused int) {
	return p.allocated, p.reused
}

// FreeCount returns how many buffers currently sit on the free list
// (all shapes), primarily for tests and diagnostics.
func (p *Pool) FreeCount() int {
	total := 0
	for _, list := range p.free {
		total += len(list)
	}

	return total
}
