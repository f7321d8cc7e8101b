/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package socket

import (
	"sync"
	"sync/atomic"
	"time"
)

// InvalidFD is the sentinel descriptor value for a slot that currently
// holds no kernel descriptor.
const InvalidFD = ^uintptr(0)

// Slot is a single row of the descriptor table: the platform descriptor, its
// flags and connection state, and the identifier of the record that
// currently owns it. Slots are claimed lazily and released on close; the
// table itself never grows or shrinks after Init.
type Slot struct {
	// object holds the owning record's ID, or 0 if the slot is free.
	object uint64

	mu    sync.Mutex
	fd    uintptr
	flags Flag
	state State

	lastEvent atomic.Int64 // unix nano
}

// Object returns the ID currently claiming this slot, or InvalidID if free.
func (s *Slot) Object() ID {
	return ID(atomic.LoadUint64(&s.object))
}

// claim attempts to take ownership of a free slot for id. It returns false
// if the slot is already owned.
func (s *Slot) claim(id ID) bool {
	return atomic.CompareAndSwapUint64(&s.object, 0, uint64(id))
}

// release gives up ownership, resetting the slot to its zero state. Per
// invariant 6, fd/flags/state are reset together with object.
func (s *Slot) release() {
	s.mu.Lock()
	s.fd = InvalidFD
	s.flags = 0
	s.state = StateNotConnected
	s.mu.Unlock()

	atomic.StoreUint64(&s.object, 0)
}

// FD returns the platform descriptor currently installed in the slot.
func (s *Slot) FD() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fd
}

// SetFD installs fd as the slot's platform descriptor.
func (s *Slot) SetFD(fd uintptr) {
	s.mu.Lock()
	s.fd = fd
	s.mu.Unlock()
}

// Flags returns the slot's current flag bitmask.
func (s *Slot) Flags() Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// SetFlags replaces the slot's flag bitmask outright.
func (s *Slot) SetFlags(f Flag) {
	s.mu.Lock()
	s.flags = f
	s.mu.Unlock()
}

// AddFlags ORs mask into the slot's current flags and returns the result.
func (s *Slot) AddFlags(mask Flag) Flag {
	s.mu.Lock()
	s.flags = s.flags.Set(mask)
	f := s.flags
	s.mu.Unlock()
	return f
}

// ClearFlags clears mask from the slot's current flags and returns the
// result.
func (s *Slot) ClearFlags(mask Flag) Flag {
	s.mu.Lock()
	s.flags = s.flags.Clear(mask)
	f := s.flags
	s.mu.Unlock()
	return f
}

// State returns the slot's connection state.
func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState transitions the slot's connection state and stamps last_event
// with the time of the transition (read back through LastEvent).
func (s *Slot) SetState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.lastEvent.Store(time.Now().UnixNano())
}

// LastEvent returns the timestamp of the most recent state transition.
func (s *Slot) LastEvent() time.Time {
	return time.Unix(0, s.lastEvent.Load())
}

// ResetEvent clears the debounce marker, so the next state transition (or
// poll) is treated as novel rather than already-delivered. The stream
// adapter calls this at the start of every Read, per spec.md §4.F step 1.
func (s *Slot) ResetEvent() {
	s.lastEvent.Store(0)
}

// SlotTable is the fixed-size array of descriptor slots allocated at Init.
// Claiming a slot is lock-free: a shared cursor advances modulo capacity and
// each candidate is tried with a single CAS, bounded to len(slots) attempts
// before reporting exhaustion.
type SlotTable struct {
	slots  []Slot
	cursor atomic.Uint64
}

// NewSlotTable allocates a table of the given capacity. Capacity is fixed
// for the table's lifetime.
func NewSlotTable(capacity int) *SlotTable {
	t := &SlotTable{slots: make([]Slot, capacity)}
	for i := range t.slots {
		t.slots[i].fd = InvalidFD
	}
	return t
}

// Len returns the table's fixed capacity.
func (t *SlotTable) Len() int {
	return len(t.slots)
}

// Slot returns the slot at index i. Callers must have obtained i from
// Claim or a record's Base field.
func (t *SlotTable) Slot(i int32) *Slot {
	if i < 0 || int(i) >= len(t.slots) {
		return nil
	}
	return &t.slots[i]
}

// Claim finds a free slot and assigns it to id, returning its index, or -1
// and ErrorRegistryFull if the table is saturated.
func (t *SlotTable) Claim(id ID) (int32, error) {
	n := uint64(len(t.slots))
	if n == 0 {
		return -1, errorsNew(ErrorRegistryFull, "slot table has zero capacity")
	}

	for attempt := uint64(0); attempt < n; attempt++ {
		idx := t.cursor.Add(1) % n
		s := &t.slots[idx]
		if s.claim(id) {
			return int32(idx), nil
		}
	}

	return -1, errorsNew(ErrorRegistryFull, "no free slot after full sweep")
}

// Release frees the slot at index i, making it available for future claims.
func (t *SlotTable) Release(i int32) {
	if s := t.Slot(i); s != nil {
		s.release()
	}
}

// InUse counts the slots currently claimed by a record. It walks the table
// under no lock beyond each slot's own atomic object read, so the result is
// a snapshot that may be stale by the time the caller observes it; this is
// acceptable for a metrics gauge, not for correctness-sensitive code.
func (t *SlotTable) InUse() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].Object() != InvalidID {
			n++
		}
	}
	return n
}
