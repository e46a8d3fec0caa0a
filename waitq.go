// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

// waiter is a pending Send or Recv parked on a channel.
//
// Lifecycle:
//
//  1. The owner fills elem (senders only), links the waiter into a waitq and
//     releases core.mu, then blocks on ready.
//  2. A peer (or Close) unlinks the waiter under core.mu, settles elem and ok,
//     releases core.mu and sends exactly one token on ready.
//  3. Or the owner gives up (context done): it takes core.mu and, if the
//     waiter is still linked and the channel is open, unlinks it itself.
//     Otherwise the token is in flight and the owner must consume it before
//     reuse.
//
// After the token is sent the waker never touches the waiter again.
type waiter[T any] struct {
	prev, next *waiter[T]
	elem       T
	ready      chan struct{} // One-slot notification
	queued     bool          // Linked into a waitq, guarded by core.mu
	ok         bool          // Settled with an item (recv) or item taken (send)
}

func newWaiter[T any]() *waiter[T] {
	return &waiter[T]{ready: make(chan struct{}, 1)}
}

// wake delivers the notification. Must be called without core.mu held and
// only after the waiter has been unlinked.
func (w *waiter[T]) wake() {
	w.ready <- struct{}{}
}

func (w *waiter[T]) reset() {
	var zero T
	w.prev = nil
	w.next = nil
	w.elem = zero
	w.queued = false
	w.ok = false
}

// waitq is an intrusive doubly-linked FIFO list of parked waiters.
// Enqueue, dequeue and remove are O(1); no operation scans the list.
type waitq[T any] struct {
	first *waiter[T]
	last  *waiter[T]
	n     int
}

func (q *waitq[T]) enqueue(w *waiter[T]) {
	w.next = nil
	w.prev = q.last
	if q.last == nil {
		q.first = w
	} else {
		q.last.next = w
	}
	q.last = w
	w.queued = true
	q.n++
}

// dequeue unlinks and returns the oldest waiter, or nil.
func (q *waitq[T]) dequeue() *waiter[T] {
	w := q.first
	if w == nil {
		return nil
	}
	q.remove(w)
	return w
}

// remove unlinks w, which must be linked into q.
func (q *waitq[T]) remove(w *waiter[T]) {
	if w.prev == nil {
		q.first = w.next
	} else {
		w.prev.next = w.next
	}
	if w.next == nil {
		q.last = w.prev
	} else {
		w.next.prev = w.prev
	}
	w.prev = nil
	w.next = nil
	w.queued = false
	q.n--
}

// detach empties q in O(1) and returns its former head. The returned chain
// stays linked through next. Waiters on it keep queued set; once the channel
// is closed no waiter is linked into a live waitq, so owners consult the
// closed flag rather than queued.
func (q *waitq[T]) detach() *waiter[T] {
	head := q.first
	q.first = nil
	q.last = nil
	q.n = 0
	return head
}

func (q *waitq[T]) len() int {
	return q.n
}
