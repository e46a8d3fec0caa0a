// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

import "context"

// Producer is the interface for sending elements into a channel.
//
// [*Sender] implements Producer. Code that only sends should accept a
// Producer so it can be driven by a test double.
type Producer[T any] interface {
	// Send delivers elem, parking the calling goroutine while the channel
	// is full. Returns nil once elem is buffered or handed to a receiver,
	// ErrClosed if the channel closed first, or ctx.Err() if ctx is done
	// before elem was accepted.
	Send(ctx context.Context, elem T) error

	// TrySend delivers elem without parking.
	// Returns ErrWouldBlock if the channel is full.
	TrySend(elem T) error
}

// Consumer is the interface for receiving elements from a channel.
//
// [*Receiver] implements Consumer. Each buffered element is claimed by
// exactly one receive, whichever Consumer it goes through.
type Consumer[T any] interface {
	// Recv removes and returns the oldest element, parking the calling
	// goroutine while the channel is empty. Returns ErrClosed once the
	// channel is closed and drained, or ctx.Err() if ctx is done first.
	Recv(ctx context.Context) (T, error)

	// TryRecv removes and returns the oldest element without parking.
	// Returns ErrWouldBlock if the channel is empty and open.
	TryRecv() (T, error)
}

var (
	_ Producer[int] = (*Sender[int])(nil)
	_ Consumer[int] = (*Receiver[int])(nil)
)
