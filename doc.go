// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bchan provides a bounded multi-producer multi-consumer channel
// with backpressure, explicit close and draining semantics, and FIFO wakeup.
//
// A channel is a shared core reached through two kinds of handle:
//
//   - Sender: Send, TrySend, Close, Clone, Release
//   - Receiver: Recv, TryRecv, All, Clone, Release
//
// Both handles may be cloned and moved into any number of goroutines. Each
// buffered item is delivered to exactly one receive.
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	tx, rx := bchan.Bounded[Event](1024)
//	tx, rx := bchan.Rendezvous[*Request]()
//
// Builder API for non-default policies:
//
//	tx, rx := bchan.Build[Event](bchan.New(1024).Spin(16))
//	tx, rx := bchan.Build[Event](bchan.New(1024).KeepOpenWithoutReceivers())
//
// # Basic Usage
//
//	tx, rx := bchan.Bounded[int](16)
//	defer rx.Release()
//
//	go func() {
//	    defer tx.Release() // Last Sender released → channel closed
//	    for i := range 100 {
//	        if err := tx.Send(ctx, i); err != nil {
//	            return // ErrClosed or ctx.Err()
//	        }
//	    }
//	}()
//
//	for {
//	    v, err := rx.Recv(ctx)
//	    if bchan.IsClosed(err) {
//	        break // Closed and drained
//	    }
//	    if err != nil {
//	        return err // ctx.Err()
//	    }
//	    process(v)
//	}
//
// Or with range-over-func:
//
//	for v := range rx.All(ctx) {
//	    process(v)
//	}
//
// # Common Patterns
//
// Worker Pool (one dispatcher, many workers):
//
//	tx, rx := bchan.Bounded[Job](4096)
//
//	var wg sync.WaitGroup
//	for range numWorkers {
//	    wg.Add(1)
//	    go func(rx *bchan.Receiver[Job]) {
//	        defer wg.Done()
//	        defer rx.Release()
//	        for job := range rx.All(ctx) {
//	            job.Run()
//	        }
//	    }(rx.Clone())
//	}
//	rx.Release()
//
//	for job := range jobs {
//	    if tx.Send(ctx, job) != nil {
//	        break
//	    }
//	}
//	tx.Release() // Workers drain what is buffered, then exit
//	wg.Wait()
//
// Fan-in (many producers, last one out closes):
//
//	tx, rx := bchan.Bounded[Event](1024)
//	for _, src := range sources {
//	    go func(tx *bchan.Sender[Event]) {
//	        defer tx.Release()
//	        for ev := range src.Events() {
//	            tx.Send(ctx, ev)
//	        }
//	    }(tx.Clone())
//	}
//	tx.Release()
//
// # Capacity and Backpressure
//
// Capacity is exact and fixed at construction. Send parks the calling
// goroutine while the buffer holds Cap items; TrySend returns [ErrWouldBlock]
// instead. Each receive that frees a slot admits exactly one parked sender,
// in the order senders parked.
//
// Capacity 0 builds a rendezvous channel: Send completes only by handing the
// item to a receiver directly, and Recv only by taking it from a sender.
//
// Negative capacity panics at construction.
//
// # Hand-off
//
// When a receiver is parked on an empty channel, Send transfers the item to
// the longest-waiting receiver directly and wakes it; the item never passes
// through the buffer. When senders are parked on a full channel, Recv takes
// the head item and moves the longest-waiting sender's item into the freed
// slot in the same critical section.
//
// # Closing and Draining
//
// Close is idempotent and irreversible. After Close:
//
//   - Send and TrySend fail with [ErrClosed]; parked senders wake with it
//   - Items already buffered are still received, in FIFO order
//   - Once the buffer is empty, Recv and TryRecv fail with [ErrClosed]
//
// Lifecycle states ([State]):
//
//	OpenNotFull ⇄ OpenFull           send fills / recv frees the last slot
//	Open*       → ClosedDraining     Close with buffered items
//	Open*       → ClosedEmpty        Close with an empty buffer
//	ClosedDraining → ClosedEmpty     last buffered item received
//
// # Handle Lifetime
//
// Go has no destructors, so handles are released explicitly:
//
//   - Releasing the last Sender closes the channel
//   - Releasing the last Receiver closes the channel and discards buffered
//     items, so producers fail fast instead of filling a buffer nobody reads
//   - KeepOpenWithoutReceivers disables the second rule
//
// A handle that becomes unreachable without Release is released by a
// runtime cleanup. Relying on that delays closing until the next garbage
// collection; prefer defer Release().
//
// # Cancellation
//
// Send and Recv take a [context.Context]. If ctx is done while the goroutine
// is parked, the pending request is unlinked from the wait list in O(1) and
// ctx.Err() is returned. A cancelled Send never enqueues its item; a
// cancelled Recv never consumes one. If the request was satisfied in the same
// instant it was cancelled, the satisfaction wins and is reported.
//
// # Error Handling
//
// Blocking operations return [ErrClosed] or a context error. Non-blocking
// operations also return [ErrWouldBlock], sourced from
// [code.hybscloud.com/iox] for ecosystem consistency:
//
//	bchan.IsClosed(err)      // true if the channel is closed (and drained)
//	bchan.IsWouldBlock(err)  // true if TrySend/TryRecv could not proceed
//	bchan.IsSemantic(err)    // true if control flow signal
//	bchan.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Thread Safety
//
// Every method of Sender and Receiver is safe for concurrent use. One mutex
// per channel serializes the buffer, the closed flag and both wait lists.
// Wait lists are intrusive FIFO lists with O(1) insert, remove and wake, so a
// channel stays usable with millions of parked receivers. Wakeups are issued
// after the lock is released.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic flags and reference counts with
// explicit memory ordering, and [code.hybscloud.com/spin] for the optional
// pre-park spin.
package bchan
