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

	libatm "github.com/rampantpixels/network-lib/atomic"
	"github.com/rampantpixels/network-lib/socket/address"
)

// Transport is the set of family-specific hooks a Record delegates to.
// TCP is the only concrete implementation in this repository; the
// interface leaves room for UDP/Unix transports without committing to
// them (spec non-goal).
type Transport interface {
	Open(rec *Record) error
	Connect(rec *Record, remote address.Address, timeoutMs int) error
	Listen(rec *Record, local address.Address) error
	Accept(rec *Record) (*Record, error)
	Read(rec *Record) (int, error)
	Write(rec *Record) (int, error)
	StreamInit(rec *Record) error
}

// Record is the per-socket heap object: identity, family, ring buffers,
// counters, remote/local address, and the transport hooks that know how to
// drive its descriptor. Exactly one Record exists per live socket.ID.
type Record struct {
	id ID

	ref atomic.Int32

	// base is the slot index into the owning registry's slot table, or
	// -1 if no slot is currently claimed.
	base libatm.Value[int32]

	family address.Family

	addrMu     sync.RWMutex
	addrLocal  address.Address
	addrRemote address.Address

	bufMu  sync.Mutex
	bufIn  []byte
	bufOut []byte

	// offsetReadIn/offsetWriteIn are ring cursors into bufIn.
	offsetReadIn  uint32
	offsetWriteIn uint32

	// offsetWriteOut is the linear fill level of bufOut.
	offsetWriteOut uint32

	bytesRead    atomic.Int64
	bytesWritten atomic.Int64

	streamMu sync.Mutex
	stream   interface{} // back-pointer to *stream.Stream, opaque here to avoid an import cycle

	transport Transport
	slots     *SlotTable

	destroyOnce sync.Once
	onDestroy   func(*Record)

	logger Logger
}

// newRecord allocates a Record with buffers sized from cfg and ref==1, per
// spec.md §3 "initialized to 1 at allocation".
func newRecord(id ID, family address.Family, bufSize int, transport Transport, slots *SlotTable, logger Logger, onDestroy func(*Record)) *Record {
	r := &Record{
		id:        id,
		family:    family,
		base:      libatm.NewValue[int32](),
		bufIn:     make([]byte, bufSize),
		bufOut:    make([]byte, bufSize),
		transport: transport,
		slots:     slots,
		logger:    nilLogger(logger),
		onDestroy: onDestroy,
	}
	r.base.SetDefaultLoad(-1)
	r.base.Store(-1)
	r.ref.Store(1)
	return r
}

// Slot returns the descriptor slot this record currently occupies, or nil
// if it has not claimed one.
func (r *Record) Slot() *Slot {
	if base := r.Base(); base >= 0 {
		return r.slots.Slot(base)
	}
	return nil
}

// ClaimSlot claims a free slot from the owning table and installs it as
// this record's base, returning the slot. If a slot is already claimed,
// that slot is returned unchanged. Fails if the table is saturated.
func (r *Record) ClaimSlot() (*Slot, error) {
	if r.Base() >= 0 {
		return r.Slot(), nil
	}

	idx, err := r.slots.Claim(r.id)
	if err != nil {
		return nil, err
	}

	r.SetBase(idx)
	return r.slots.Slot(idx), nil
}

// ReleaseSlot returns the record's claimed slot to the table and clears
// base. Per invariant 6, base is cleared before the slot is reset.
func (r *Record) ReleaseSlot() {
	base := r.Base()
	if base < 0 {
		return
	}
	r.SetBase(-1)
	r.slots.Release(base)
}

// ID returns the record's own identifier, used for reverse lookup from a
// slot back to its owning record.
func (r *Record) ID() ID { return r.id }

// Family returns the record's address family, immutable once set.
func (r *Record) Family() address.Family { return r.family }

// Base returns the claimed slot index, or -1 if none is currently claimed.
func (r *Record) Base() int32 { return r.base.Load() }

// SetBase installs the slot index this record currently occupies. -1
// clears the claim; per invariant 6, the record clears base before the
// slot itself is released.
func (r *Record) SetBase(idx int32) {
	r.base.Store(idx)
}

// AddrLocal returns the locally bound address, or nil.
func (r *Record) AddrLocal() address.Address {
	r.addrMu.RLock()
	defer r.addrMu.RUnlock()
	return r.addrLocal
}

// SetAddrLocal installs the record's exclusively-owned local address.
func (r *Record) SetAddrLocal(a address.Address) {
	r.addrMu.Lock()
	r.addrLocal = a
	r.addrMu.Unlock()
}

// AddrRemote returns the connected peer's address, or nil.
func (r *Record) AddrRemote() address.Address {
	r.addrMu.RLock()
	defer r.addrMu.RUnlock()
	return r.addrRemote
}

// SetAddrRemote installs the record's exclusively-owned remote address.
func (r *Record) SetAddrRemote(a address.Address) {
	r.addrMu.Lock()
	r.addrRemote = a
	r.addrMu.Unlock()
}

// Transport returns the family-specific hook set driving this record.
func (r *Record) Transport() Transport { return r.transport }

// BytesRead returns the lifetime count of bytes read from the descriptor.
func (r *Record) BytesRead() int64 { return r.bytesRead.Load() }

// BytesWritten returns the lifetime count of bytes written to the
// descriptor.
func (r *Record) BytesWritten() int64 { return r.bytesWritten.Load() }

// AttachStream records the stream adapter wrapping this record, enforcing
// invariant 4 ("at most one stream adapter references a given record").
// It returns false if a stream is already attached.
func (r *Record) AttachStream(s interface{}) bool {
	r.streamMu.Lock()
	defer r.streamMu.Unlock()

	if r.stream != nil {
		return false
	}
	r.stream = s
	return true
}

// Stream returns the attached stream adapter, or nil.
func (r *Record) Stream() interface{} {
	r.streamMu.Lock()
	defer r.streamMu.Unlock()
	return r.stream
}

// addRef increments the reference count. Called by the registry's lookup.
func (r *Record) addRef() int32 {
	return r.ref.Add(1)
}

// release decrements the reference count and destroys the record exactly
// when it transitions to zero, guarded by sync.Once so destruction is never
// reentrant (spec.md invariant 5).
func (r *Record) release() {
	if r.ref.Add(-1) == 0 {
		r.destroyOnce.Do(func() {
			if r.onDestroy != nil {
				r.onDestroy(r)
			}
		})
	}
}

// inBuffered returns the number of unread bytes currently sitting in the
// in-ring, per spec.md invariant 2.
func (r *Record) inBuffered() uint32 {
	cap := uint32(len(r.bufIn))
	if cap == 0 {
		return 0
	}
	return (r.offsetWriteIn - r.offsetReadIn + cap) % cap
}

// inFree returns the number of free bytes in the in-ring, reserving one
// slot to distinguish empty from full.
func (r *Record) inFree() uint32 {
	cap := uint32(len(r.bufIn))
	if cap == 0 {
		return 0
	}
	return cap - 1 - r.inBuffered()
}

// InAvailable returns the number of unread bytes currently buffered for a
// consumer (the stream adapter's AvailableRead).
func (r *Record) InAvailable() int {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	return int(r.inBuffered())
}

// InFree returns the number of free bytes in the in-ring, i.e. how many
// more bytes the transport may pull from the kernel before the next
// consumer drain.
func (r *Record) InFree() int {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	return int(r.inFree())
}

// FillIn is called by the transport after a kernel read returns n bytes
// already placed in tmp; it copies up to the ring's free space from tmp
// into bufIn, advancing offset_write_in, and returns how many bytes were
// accepted. The transport is responsible for not requesting more from the
// kernel than inFree() reports.
func (r *Record) FillIn(tmp []byte) int {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()

	free := r.inFree()
	n := uint32(len(tmp))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	cap := uint32(len(r.bufIn))
	for i := uint32(0); i < n; i++ {
		r.bufIn[(r.offsetWriteIn+i)%cap] = tmp[i]
	}
	r.offsetWriteIn = (r.offsetWriteIn + n) % cap
	return int(n)
}

// DrainIn copies buffered input into dst, advancing offset_read_in, and
// returns how many bytes were copied (up to len(dst) or the buffered
// count, whichever is smaller). bytes_read is incremented here, on
// delivery to the consumer, not when the transport fills the ring from the
// kernel (spec.md §4.F step 5).
func (r *Record) DrainIn(dst []byte) int {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()

	avail := r.inBuffered()
	n := uint32(len(dst))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	cap := uint32(len(r.bufIn))
	for i := uint32(0); i < n; i++ {
		dst[i] = r.bufIn[(r.offsetReadIn+i)%cap]
	}
	r.offsetReadIn = (r.offsetReadIn + n) % cap
	r.bytesRead.Add(int64(n))
	return int(n)
}

// QueueOut appends data to the linear out-buffer, up to its remaining
// capacity, and returns how many bytes were accepted. Per spec.md
// invariant 3, offset_write_out never exceeds len(bufOut).
func (r *Record) QueueOut(data []byte) int {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()

	room := len(r.bufOut) - int(r.offsetWriteOut)
	n := len(data)
	if n > room {
		n = room
	}
	if n == 0 {
		return 0
	}

	copy(r.bufOut[r.offsetWriteOut:], data[:n])
	r.offsetWriteOut += uint32(n)
	return n
}

// OutPending returns the slice of bufOut currently queued for send.
func (r *Record) OutPending() []byte {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	return r.bufOut[:r.offsetWriteOut]
}

// OutDrain reports that n bytes of the queued out-buffer were sent
// successfully, sliding the unsent tail to the buffer origin the way a
// partial send is handled per spec.md §4.D.
func (r *Record) OutDrain(n int) {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()

	if n <= 0 {
		return
	}
	if uint32(n) >= r.offsetWriteOut {
		r.offsetWriteOut = 0
		r.bytesWritten.Add(int64(n))
		return
	}

	copy(r.bufOut, r.bufOut[n:r.offsetWriteOut])
	r.offsetWriteOut -= uint32(n)
	r.bytesWritten.Add(int64(n))
}

// OutPendingLen returns how many bytes are currently queued for send.
func (r *Record) OutPendingLen() int {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	return int(r.offsetWriteOut)
}
