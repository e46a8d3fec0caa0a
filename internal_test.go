// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bchan

import "testing"

func TestRoundToPow2(t *testing.T) {
	cases := map[int]int{0: 2, 1: 2, 2: 2, 3: 4, 4: 4, 1000: 1024, 1024: 1024, 1025: 2048}
	for in, want := range cases {
		if got := roundToPow2(in); got != want {
			t.Fatalf("roundToPow2(%d): got %d, want %d", in, got, want)
		}
	}
}

func TestRingExactLimit(t *testing.T) {
	r := newRing[int](3)
	if len(r.buffer) != 4 {
		t.Fatalf("physical slots: got %d, want 4", len(r.buffer))
	}

	// Multiple rounds of fill/drain across the wrap point
	for round := range 100 {
		for i := range 3 {
			if r.full() {
				t.Fatalf("round %d: full after %d pushes", round, i)
			}
			r.push(round*100 + i)
		}
		if !r.full() || r.len() != 3 {
			t.Fatalf("round %d: full=%v len=%d, want true/3", round, r.full(), r.len())
		}
		for i := range 3 {
			if got, want := r.pop(), round*100+i; got != want {
				t.Fatalf("round %d: pop got %d, want %d", round, got, want)
			}
		}
		if !r.empty() {
			t.Fatalf("round %d: not empty after drain", round)
		}
	}
}

func TestRingClearsSlots(t *testing.T) {
	r := newRing[*int](2)
	v := 1
	r.push(&v)
	r.push(&v)
	r.pop()
	if r.buffer[0] != nil {
		t.Fatal("popped slot still references element")
	}
	if n := r.discard(); n != 1 {
		t.Fatalf("discard: got %d, want 1", n)
	}
	if !r.empty() || r.buffer[1] != nil {
		t.Fatal("discard left elements behind")
	}
}

func TestRingZeroCapacity(t *testing.T) {
	r := newRing[int](0)
	if !r.full() || !r.empty() {
		t.Fatalf("zero ring: full=%v empty=%v, want true/true", r.full(), r.empty())
	}
	if r.discard() != 0 {
		t.Fatal("discard on zero ring")
	}
}

func TestWaitqFIFO(t *testing.T) {
	var q waitq[int]
	ws := make([]*waiter[int], 5)
	for i := range ws {
		ws[i] = newWaiter[int]()
		ws[i].elem = i
		q.enqueue(ws[i])
	}
	if q.len() != 5 {
		t.Fatalf("len: got %d, want 5", q.len())
	}

	// Remove head, middle and tail
	q.remove(ws[0])
	q.remove(ws[2])
	q.remove(ws[4])
	if q.len() != 2 {
		t.Fatalf("len after remove: got %d, want 2", q.len())
	}
	for _, w := range []*waiter[int]{ws[0], ws[2], ws[4]} {
		if w.queued || w.prev != nil || w.next != nil {
			t.Fatalf("removed waiter %d still linked", w.elem)
		}
	}

	for _, want := range []int{1, 3} {
		w := q.dequeue()
		if w == nil || w.elem != want {
			t.Fatalf("dequeue: got %v, want waiter %d", w, want)
		}
	}
	if q.dequeue() != nil || q.first != nil || q.last != nil {
		t.Fatal("queue not empty after draining")
	}
}

func TestWaitqDetach(t *testing.T) {
	var q waitq[int]
	for i := range 3 {
		w := newWaiter[int]()
		w.elem = i
		q.enqueue(w)
	}
	head := q.detach()
	if q.len() != 0 || q.first != nil || q.last != nil {
		t.Fatal("detach left queue non-empty")
	}

	wakeChain(head)
	i := 0
	for w := head; w != nil; w = w.next {
		select {
		case <-w.ready:
		default:
			t.Fatalf("waiter %d not woken", w.elem)
		}
		i++
	}
	if i != 3 {
		t.Fatalf("chain length: got %d, want 3", i)
	}
}

func TestWaiterReset(t *testing.T) {
	w := newWaiter[string]()
	w.elem = "x"
	w.ok = true
	w.queued = true
	w.reset()
	if w.elem != "" || w.ok || w.queued || w.ready == nil {
		t.Fatal("reset left state behind")
	}
}
