// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

// Options configures channel creation.
type Options struct {
	// Capacity (exact, 0 means rendezvous)
	capacity int

	// Lifetime policy
	keepOpenWithoutReceivers bool

	// Performance hints
	spin int // Optimistic retries before parking
}

// Builder creates channels with fluent configuration.
//
// Example:
//
//	// Default channel: closes when every Receiver is released
//	tx, rx := bchan.Build[Event](bchan.New(1024))
//
//	// Rendezvous channel with a short spin before parking
//	tx, rx := bchan.Build[*Request](bchan.New(0).Spin(16))
//
//	// Keep accepting sends after all receivers are gone
//	tx, rx := bchan.Build[Job](bchan.New(64).KeepOpenWithoutReceivers())
type Builder struct {
	opts Options
}

// New creates a channel builder with the given capacity.
//
// Capacity is exact: unlike the lock-free ring sizes it is not rounded up.
// Capacity 0 creates a rendezvous channel where every Send completes only by
// direct hand-off to a receiver.
//
// Panics if capacity < 0.
func New(capacity int) *Builder {
	if capacity < 0 {
		panic("bchan: capacity must be >= 0")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// KeepOpenWithoutReceivers disables the receivers-gone close policy.
//
// By default releasing the last Receiver closes the channel and discards the
// buffered items, so senders fail fast with ErrClosed instead of filling a
// buffer nobody reads. With this option the channel stays open: sends fill the
// buffer and then park until a Sender closes the channel.
func (b *Builder) KeepOpenWithoutReceivers() *Builder {
	b.opts.keepOpenWithoutReceivers = true
	return b
}

// Spin sets the number of optimistic non-blocking retries Send and Recv make
// before parking the calling goroutine. Each retry is separated by a
// [spin.Wait] pause. n <= 0 disables spinning (the default).
//
// Spinning trades CPU for latency when the peer side is expected to act
// within a few hundred nanoseconds. It does not change ordering guarantees.
func (b *Builder) Spin(n int) *Builder {
	if n < 0 {
		n = 0
	}
	b.opts.spin = n
	return b
}

// Build creates a channel and returns its first Sender and Receiver handles.
//
// Each handle holds one reference. Clone handles to share them between
// goroutines and Release each clone when done.
func Build[T any](b *Builder) (*Sender[T], *Receiver[T]) {
	c := newCore[T](b.opts)
	return newSender(c), newReceiver(c)
}

// Bounded creates a channel with the given capacity and default options.
// Panics if capacity < 0.
func Bounded[T any](capacity int) (*Sender[T], *Receiver[T]) {
	return Build[T](New(capacity))
}

// Rendezvous creates a zero-capacity channel.
func Rendezvous[T any]() (*Sender[T], *Receiver[T]) {
	return Build[T](New(0))
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
