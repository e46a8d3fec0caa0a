// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

import (
	"context"
	"iter"
	"runtime"
	"sync"

	"code.hybscloud.com/atomix"
)

// Receiver is the receiving handle of a channel.
//
// A Receiver holds one reference to the channel. Clone it for every consumer
// goroutine and Release each clone when done. Unless the channel was built
// with KeepOpenWithoutReceivers, releasing the last Receiver closes the
// channel and discards buffered items.
//
// All methods are safe for concurrent use. Recv, TryRecv, All and Clone
// panic on a released handle; the introspection methods keep working.
type Receiver[T any] struct {
	view[T]
	released atomix.Bool
	once     sync.Once
	cleanup  runtime.Cleanup
}

func newReceiver[T any](c *core[T]) *Receiver[T] {
	c.receivers.Add(1)
	r := &Receiver[T]{view: view[T]{c: c}}
	r.cleanup = runtime.AddCleanup(r, (*core[T]).releaseReceiver, c)
	return r
}

func (r *Receiver[T]) live() *core[T] {
	if r.released.LoadAcquire() {
		panic("bchan: use of released Receiver")
	}
	return r.c
}

// Recv removes and returns the oldest item, parking while the channel is
// empty.
//
// Parked receivers are served in arrival order. Returns ErrClosed once the
// channel is closed and every buffered item has been received, and
// ctx.Err() if ctx is done before an item arrives. An item handed to this
// call is never dropped by a racing cancellation: it is returned instead.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	elem, err := r.live().recv(ctx)
	runtime.KeepAlive(r)
	return elem, err
}

// TryRecv removes and returns the oldest item without parking.
// Returns ErrWouldBlock if the channel is empty and open, ErrClosed if it
// is empty and closed.
func (r *Receiver[T]) TryRecv() (T, error) {
	elem, err := r.live().tryRecv()
	runtime.KeepAlive(r)
	return elem, err
}

// All returns an iterator receiving items until the channel is closed and
// drained, or ctx is done.
//
//	for job := range rx.All(ctx) {
//	    job.Run()
//	}
func (r *Receiver[T]) All(ctx context.Context) iter.Seq[T] {
	c := r.live()
	return func(yield func(T) bool) {
		defer runtime.KeepAlive(r)
		for {
			elem, err := c.recv(ctx)
			if err != nil {
				return
			}
			if !yield(elem) {
				return
			}
		}
	}
}

// Clone returns a new Receiver for the same channel, holding its own
// reference.
func (r *Receiver[T]) Clone() *Receiver[T] {
	clone := newReceiver(r.live())
	runtime.KeepAlive(r)
	return clone
}

// Release drops this handle's reference. Release is idempotent.
func (r *Receiver[T]) Release() {
	r.once.Do(func() {
		r.released.StoreRelease(true)
		r.cleanup.Stop()
		r.c.releaseReceiver()
	})
}
