// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrClosed indicates no further communication is possible on the channel.
//
// For Send: the channel was closed before the item was accepted. The item
// was not enqueued.
// For Recv: the channel is closed and every item sent before closing has
// already been received.
//
// ErrClosed is terminal. Retrying the operation always fails the same way.
var ErrClosed = errors.New("bchan: channel closed")

// ErrWouldBlock indicates a non-blocking operation cannot proceed immediately.
//
// For TrySend: the buffer is full and no receiver is parked (backpressure)
// For TryRecv: the buffer is empty, no sender is parked, and the channel
// is still open
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
// Blocking Send and Recv never return it; they park instead.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := tx.TrySend(item)
//	    if err == nil {
//	        break
//	    }
//	    if bchan.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err // ErrClosed
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsClosed reports whether err indicates the channel is closed.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
