// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

import (
	"context"
	"runtime"
	"sync"

	"code.hybscloud.com/atomix"
)

// Sender is the sending handle of a channel.
//
// A Sender holds one reference to the channel. Clone it to hand a reference
// to another goroutine, and Release every handle when done: releasing the
// last Sender closes the channel. A Sender that becomes unreachable without
// Release is released by a runtime cleanup.
//
// All methods are safe for concurrent use. Send, TrySend, Close and Clone
// panic on a released handle; the introspection methods keep working.
type Sender[T any] struct {
	view[T]
	released atomix.Bool
	once     sync.Once
	cleanup  runtime.Cleanup
}

func newSender[T any](c *core[T]) *Sender[T] {
	c.senders.Add(1)
	s := &Sender[T]{view: view[T]{c: c}}
	s.cleanup = runtime.AddCleanup(s, (*core[T]).releaseSender, c)
	return s
}

func (s *Sender[T]) live() *core[T] {
	if s.released.LoadAcquire() {
		panic("bchan: use of released Sender")
	}
	return s.c
}

// Send delivers elem to the channel, parking while it is full.
//
// If a receiver is parked, elem is handed to the longest-waiting one
// directly. Otherwise elem is appended to the buffer if a slot is free.
// Otherwise the calling goroutine parks behind earlier parked senders until a
// receive admits it.
//
// Returns ErrClosed if the channel is closed before elem is accepted, and
// ctx.Err() if ctx is done first. In both cases elem was not enqueued.
func (s *Sender[T]) Send(ctx context.Context, elem T) error {
	err := s.live().send(ctx, elem)
	runtime.KeepAlive(s)
	return err
}

// TrySend delivers elem without parking.
// Returns ErrWouldBlock if the channel is full, ErrClosed if it is closed.
func (s *Sender[T]) TrySend(elem T) error {
	err := s.live().trySend(elem)
	runtime.KeepAlive(s)
	return err
}

// Close closes the channel for every handle.
//
// Parked senders fail with ErrClosed. Parked receivers fail with ErrClosed
// (they only park on an empty buffer). Items already buffered stay available
// and are received in FIFO order before Recv starts returning ErrClosed.
//
// Close is idempotent. It reports whether this call closed the channel.
func (s *Sender[T]) Close() bool {
	closed := s.live().close()
	runtime.KeepAlive(s)
	return closed
}

// Clone returns a new Sender for the same channel, holding its own
// reference.
func (s *Sender[T]) Clone() *Sender[T] {
	clone := newSender(s.live())
	runtime.KeepAlive(s)
	return clone
}

// Release drops this handle's reference. Releasing the last Sender closes
// the channel. Release is idempotent.
func (s *Sender[T]) Release() {
	s.once.Do(func() {
		s.released.StoreRelease(true)
		s.cleanup.Stop()
		s.c.releaseSender()
	})
}
