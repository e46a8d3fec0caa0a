// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

import (
	"context"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// core is the shared state behind every Sender and Receiver clone.
//
// A single mutex serializes the ring, the closed flag and both wait lists.
// Invariants under mu:
//   - 0 <= buf.len() <= capacity
//   - recvq non-empty implies buf empty and sendq empty
//   - sendq non-empty implies buf full and recvq empty
//   - closed implies both wait lists empty
//
// Wakeups happen after mu is released. The waiter is settled and unlinked
// inside the critical section, so a wake never races with a second claimant.
type core[T any] struct {
	_          pad
	closedHint atomix.Bool // Mirror of closed for lock-free fast paths
	_          pad
	senders    atomix.Int64 // Live Sender handles
	receivers  atomix.Int64 // Live Receiver handles
	_          pad
	mu         sync.Mutex
	buf        ring[T]
	sendq      waitq[T] // Senders parked on a full buffer
	recvq      waitq[T] // Receivers parked on an empty buffer
	closed     bool
	discarded  int // Items dropped because no Receiver was left
	capacity   int
	opts       Options
	waiters    sync.Pool
}

func newCore[T any](opts Options) *core[T] {
	c := &core[T]{
		buf:      newRing[T](opts.capacity),
		capacity: opts.capacity,
		opts:     opts,
	}
	c.waiters.New = func() any { return newWaiter[T]() }
	return c
}

func (c *core[T]) acquireWaiter() *waiter[T] {
	return c.waiters.Get().(*waiter[T])
}

func (c *core[T]) releaseWaiter(w *waiter[T]) {
	w.reset()
	c.waiters.Put(w)
}

// offerLocked completes a send without parking if possible.
// Returns ErrWouldBlock when the sender has to park. A returned waiter has
// been handed elem and must be woken after mu is released.
func (c *core[T]) offerLocked(elem T) (*waiter[T], error) {
	if c.closed {
		return nil, ErrClosed
	}
	if r := c.recvq.dequeue(); r != nil {
		r.elem = elem
		r.ok = true
		return r, nil
	}
	if !c.buf.full() {
		c.buf.push(elem)
		return nil, nil
	}
	return nil, ErrWouldBlock
}

// takeLocked completes a receive without parking if possible.
// Returns ErrWouldBlock when the receiver has to park. A returned waiter is a
// sender whose item was consumed and must be woken after mu is released.
func (c *core[T]) takeLocked() (T, *waiter[T], error) {
	var zero T
	if !c.buf.empty() {
		elem := c.buf.pop()
		// Admit exactly one parked sender into the freed slot
		if s := c.sendq.dequeue(); s != nil {
			c.buf.push(s.elem)
			s.elem = zero
			s.ok = true
			return elem, s, nil
		}
		return elem, nil, nil
	}
	// Empty buffer with a parked sender: rendezvous hand-off
	if s := c.sendq.dequeue(); s != nil {
		elem := s.elem
		s.elem = zero
		s.ok = true
		return elem, s, nil
	}
	if c.closed {
		return zero, nil, ErrClosed
	}
	return zero, nil, ErrWouldBlock
}

func (c *core[T]) trySend(elem T) error {
	if c.closedHint.LoadAcquire() {
		return ErrClosed
	}
	c.mu.Lock()
	w, err := c.offerLocked(elem)
	c.mu.Unlock()
	if w != nil {
		w.wake()
	}
	return err
}

func (c *core[T]) tryRecv() (T, error) {
	c.mu.Lock()
	elem, w, err := c.takeLocked()
	c.mu.Unlock()
	if w != nil {
		w.wake()
	}
	return elem, err
}

func (c *core[T]) send(ctx context.Context, elem T) error {
	if c.closedHint.LoadAcquire() {
		return ErrClosed
	}
	if c.opts.spin > 0 {
		sw := spin.Wait{}
		for range c.opts.spin {
			if err := c.trySend(elem); err != ErrWouldBlock {
				return err
			}
			sw.Once()
		}
	}

	c.mu.Lock()
	r, err := c.offerLocked(elem)
	if err != ErrWouldBlock {
		c.mu.Unlock()
		if r != nil {
			r.wake()
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		c.mu.Unlock()
		return err
	}
	w := c.acquireWaiter()
	w.elem = elem
	c.sendq.enqueue(w)
	c.mu.Unlock()

	ok, err := c.park(ctx, &c.sendq, w)
	c.releaseWaiter(w)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClosed
	}
	return nil
}

func (c *core[T]) recv(ctx context.Context) (T, error) {
	if c.opts.spin > 0 {
		sw := spin.Wait{}
		for range c.opts.spin {
			elem, err := c.tryRecv()
			if err != ErrWouldBlock {
				return elem, err
			}
			sw.Once()
		}
	}

	c.mu.Lock()
	elem, s, err := c.takeLocked()
	if err != ErrWouldBlock {
		c.mu.Unlock()
		if s != nil {
			s.wake()
		}
		return elem, err
	}
	if err := ctx.Err(); err != nil {
		c.mu.Unlock()
		return elem, err
	}
	w := c.acquireWaiter()
	c.recvq.enqueue(w)
	c.mu.Unlock()

	ok, err := c.park(ctx, &c.recvq, w)
	elem = w.elem
	c.releaseWaiter(w)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		return elem, ErrClosed
	}
	return elem, nil
}

// park blocks until w is settled or ctx is done.
//
// It reports whether w was settled successfully. If ctx is done while w is
// still linked into q, w is unlinked and ctx.Err() is returned: nothing was
// handed to or taken from it. If w was already settled, the settlement wins
// over cancellation so no item is lost or duplicated.
func (c *core[T]) park(ctx context.Context, q *waitq[T], w *waiter[T]) (bool, error) {
	select {
	case <-w.ready:
		return w.ok, nil
	case <-ctx.Done():
	}

	c.mu.Lock()
	if w.queued && !c.closed {
		q.remove(w)
		c.mu.Unlock()
		return false, ctx.Err()
	}
	c.mu.Unlock()
	// Settled or detached by close: the token is in flight
	<-w.ready
	return w.ok, nil
}

// close marks the channel closed and wakes every parked goroutine.
// Buffered items are kept for draining. Reports whether this call closed it.
func (c *core[T]) close() bool {
	return c.shutdown(false)
}

// shutdown closes the channel and optionally discards the buffer.
func (c *core[T]) shutdown(discard bool) bool {
	c.mu.Lock()
	if discard {
		c.discarded += c.buf.discard()
	}
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.closed = true
	c.closedHint.StoreRelease(true)
	recvs := c.recvq.detach()
	sends := c.sendq.detach()
	c.mu.Unlock()

	wakeChain(recvs)
	wakeChain(sends)
	return true
}

// wakeChain wakes a chain detached by waitq.detach. Each next pointer is read
// before the wake because the owner recycles its waiter right after.
func wakeChain[T any](w *waiter[T]) {
	for w != nil {
		next := w.next
		w.wake()
		w = next
	}
}

func (c *core[T]) releaseSender() {
	if c.senders.Add(-1) != 0 {
		return
	}
	c.shutdown(c.receivers.Load() == 0)
}

func (c *core[T]) releaseReceiver() {
	if c.receivers.Add(-1) != 0 {
		return
	}
	if c.opts.keepOpenWithoutReceivers && c.senders.Load() != 0 {
		return
	}
	c.shutdown(true)
}
