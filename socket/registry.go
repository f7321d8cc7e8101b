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
	"sync/atomic"

	libatm "github.com/rampantpixels/network-lib/atomic"
	"github.com/rampantpixels/network-lib/socket/address"
)

// Registry is the thread-safe handle-indirection table mapping opaque
// socket.ID values to live *Record objects. Lookup bumps the record's
// reference count; every successful Lookup must be paired with a Release.
type Registry struct {
	records libatm.MapTyped[ID, *Record]
	slots   *SlotTable
	cursor  atomic.Uint64
	logger  Logger
}

// NewRegistry creates an empty registry backed by the given slot table.
func NewRegistry(slots *SlotTable, logger Logger) *Registry {
	return &Registry{
		records: libatm.NewMapTyped[ID, *Record](),
		slots:   slots,
		logger:  nilLogger(logger),
	}
}

// Slots returns the registry's descriptor slot table.
func (reg *Registry) Slots() *SlotTable {
	return reg.slots
}

// reserve allocates the next free identifier. Identifiers are never
// handed out as InvalidID; the cursor wraps at uint64 max, which is not a
// concern for any process-lifetime socket count.
func (reg *Registry) reserve() ID {
	for {
		id := ID(reg.cursor.Add(1))
		if id == InvalidID {
			continue
		}
		if _, exists := reg.records.Load(id); !exists {
			return id
		}
	}
}

// set installs record under its own id. Internal: callers go through New.
func (reg *Registry) set(record *Record) {
	reg.records.Store(record.id, record)
}

// Lookup resolves id to its live Record, bumping the reference count. The
// caller MUST call Release exactly once for every successful Lookup.
func (reg *Registry) Lookup(id ID) (*Record, bool) {
	if !id.Valid() {
		return nil, false
	}

	rec, ok := reg.records.Load(id)
	if !ok {
		return nil, false
	}

	rec.addRef()
	return rec, true
}

// Release gives up a reference obtained from Lookup or New, destroying the
// record exactly when the reference count transitions to zero.
func (reg *Registry) Release(rec *Record) {
	if rec == nil {
		return
	}
	rec.release()
}

// free removes id's entry from the table. Called from a record's
// destruction path (ref==0), never directly by operation callers.
func (reg *Registry) free(id ID) {
	reg.records.Delete(id)
}

// New allocates a fresh Record of the given family and transport, reserves
// an identifier for it, and installs it in the table with ref==1. The
// caller owns that initial reference and must Release it when done.
func (reg *Registry) New(family address.Family, bufSize int, transport Transport) *Record {
	id := reg.reserve()

	rec := newRecord(id, family, bufSize, transport, reg.slots, reg.logger, func(r *Record) {
		r.ReleaseSlot()
		reg.free(r.id)
	})

	reg.set(rec)
	return rec
}

// Range calls fn for every record currently installed, skipping any record
// whose destruction races the call. Used by Module.Shutdown to close every
// live record best-effort.
func (reg *Registry) Range(fn func(*Record)) {
	reg.records.Range(func(_ ID, rec *Record) bool {
		fn(rec)
		return true
	})
}

// Len reports how many records are currently installed.
func (reg *Registry) Len() int {
	n := 0
	reg.records.Range(func(ID, *Record) bool {
		n++
		return true
	})
	return n
}
