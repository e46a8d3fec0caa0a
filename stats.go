// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

// State is the lifecycle state of a channel.
type State uint8

const (
	// OpenNotFull accepts sends without parking.
	OpenNotFull State = iota
	// OpenFull parks senders until a receive frees a slot.
	// Rendezvous channels are always OpenFull while open.
	OpenFull
	// ClosedDraining rejects sends; buffered items are still received.
	ClosedDraining
	// ClosedEmpty rejects every send and receive. Terminal.
	ClosedEmpty
)

func (s State) String() string {
	switch s {
	case OpenNotFull:
		return "open-not-full"
	case OpenFull:
		return "open-full"
	case ClosedDraining:
		return "closed-draining"
	case ClosedEmpty:
		return "closed-empty"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of a channel.
// Fields are read under the channel lock and are mutually consistent, but
// may be stale as soon as they are returned.
type Stats struct {
	Len              int  // Buffered items
	Cap              int  // Capacity (0 for rendezvous)
	Senders          int  // Live Sender handles
	Receivers        int  // Live Receiver handles
	WaitingSenders   int  // Senders parked on a full buffer
	WaitingReceivers int  // Receivers parked on an empty buffer
	Closed           bool // Closed flag
	Discarded        int  // Items dropped when the last Receiver was released
}

// State derives the lifecycle state from the snapshot.
func (s Stats) State() State {
	switch {
	case s.Closed && s.Len > 0:
		return ClosedDraining
	case s.Closed:
		return ClosedEmpty
	case s.Len >= s.Cap:
		return OpenFull
	default:
		return OpenNotFull
	}
}

func (c *core[T]) stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:              c.buf.len(),
		Cap:              c.capacity,
		Senders:          int(c.senders.Load()),
		Receivers:        int(c.receivers.Load()),
		WaitingSenders:   c.sendq.len(),
		WaitingReceivers: c.recvq.len(),
		Closed:           c.closed,
		Discarded:        c.discarded,
	}
}

// view is the read-only introspection shared by Sender and Receiver.
// It stays usable after the owning handle is released.
type view[T any] struct {
	c *core[T]
}

// Len returns the number of buffered items.
func (v view[T]) Len() int {
	v.c.mu.Lock()
	defer v.c.mu.Unlock()
	return v.c.buf.len()
}

// Cap returns the channel capacity.
func (v view[T]) Cap() int {
	return v.c.capacity
}

// IsClosed reports whether the channel has been closed.
func (v view[T]) IsClosed() bool {
	return v.c.closedHint.LoadAcquire()
}

// IsEmpty reports whether no items are buffered.
func (v view[T]) IsEmpty() bool {
	return v.Len() == 0
}

// IsFull reports whether the buffer has no free slot. Always true for
// rendezvous channels.
func (v view[T]) IsFull() bool {
	return v.Len() >= v.c.capacity
}

// Stats returns a consistent snapshot of the channel.
func (v view[T]) Stats() Stats {
	return v.c.stats()
}

// State returns the current lifecycle state.
func (v view[T]) State() State {
	return v.c.stats().State()
}
