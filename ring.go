// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

// ring is the FIFO item storage of a channel.
//
// Lamport ring buffer layout: monotonically increasing head/tail indices over
// a power-of-2 slot array, indexed with a mask. The physical slot count is
// rounded up, the logical limit is the exact channel capacity.
//
// ring is not synchronized. Every access happens under core.mu.
type ring[T any] struct {
	buffer []T
	head   uint64 // Next slot to pop
	tail   uint64 // Next slot to push
	mask   uint64
	limit  uint64 // Exact capacity
}

func newRing[T any](capacity int) ring[T] {
	if capacity == 0 {
		return ring[T]{}
	}
	n := uint64(roundToPow2(capacity))
	return ring[T]{
		buffer: make([]T, n),
		mask:   n - 1,
		limit:  uint64(capacity),
	}
}

func (r *ring[T]) len() int {
	return int(r.tail - r.head)
}

func (r *ring[T]) full() bool {
	return r.tail-r.head >= r.limit
}

func (r *ring[T]) empty() bool {
	return r.tail == r.head
}

// push appends elem at the tail. The caller checks full first.
func (r *ring[T]) push(elem T) {
	r.buffer[r.tail&r.mask] = elem
	r.tail++
}

// pop removes the head element. The caller checks empty first.
// The slot is cleared to allow garbage collection of referenced objects.
func (r *ring[T]) pop() T {
	var zero T
	elem := r.buffer[r.head&r.mask]
	r.buffer[r.head&r.mask] = zero
	r.head++
	return elem
}

// discard drops every buffered element and returns how many were dropped.
func (r *ring[T]) discard() int {
	n := r.len()
	clear(r.buffer)
	r.head = r.tail
	return n
}
