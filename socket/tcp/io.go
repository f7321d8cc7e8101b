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

package tcp

import (
	"github.com/rampantpixels/network-lib/socket"
	"github.com/rampantpixels/network-lib/socket/event"
)

// Read implements spec.md §4.D's buffered read: pulls as much as the
// in-ring has room for and the kernel reports available, advancing
// offset_write_in, handling peer-close and teardown errors.
func (t *Transport) Read(rec *socket.Record) (int, error) {
	slot := rec.Slot()
	if slot == nil || slot.FD() == socket.InvalidFD {
		return 0, nil
	}

	free := rec.InFree()
	if free <= 0 {
		return 0, nil
	}

	want := free
	if n, err := sys.fionread(slot.FD()); err == nil && n > 0 && n < want {
		want = n
	}

	tmp := make([]byte, want)
	n, err := sys.recv(slot.FD(), tmp)

	switch {
	case err == nil && n == 0:
		t.onHangup(rec, slot)
		return 0, nil

	case err == nil:
		accepted := rec.FillIn(tmp[:n])
		return accepted, nil

	case isWouldBlock(err):
		return 0, nil

	case isTeardown(err):
		t.onHangup(rec, slot)
		return 0, socket.ErrorFilter(err)

	default:
		t.logger.Warn("tcp: read error on socket %d: %v", rec.ID(), err)
		return 0, socket.ErrorFilter(err)
	}
}

// Write implements spec.md §4.D's buffered write: drains the out-buffer by
// repeated send, sliding the unsent tail on partial sends and tracking
// REFLUSH for the would-block case.
func (t *Transport) Write(rec *socket.Record) (int, error) {
	slot := rec.Slot()
	if slot == nil || slot.FD() == socket.InvalidFD {
		return 0, nil
	}

	total := 0
	for {
		pending := rec.OutPending()
		if len(pending) == 0 {
			slot.ClearFlags(socket.FlagReflush)
			return total, nil
		}

		n, err := sys.send(slot.FD(), pending)
		if n > 0 {
			rec.OutDrain(n)
			total += n
		}

		if err == nil {
			if n < len(pending) {
				slot.AddFlags(socket.FlagReflush)
				return total, nil
			}
			continue
		}

		if isWouldBlock(err) {
			slot.AddFlags(socket.FlagReflush)
			return total, nil
		}

		if isTeardown(err) {
			t.onHangup(rec, slot)
			return total, socket.ErrorFilter(err)
		}

		t.logger.Warn("tcp: write error on socket %d: %v", rec.ID(), err)
		return total, socket.ErrorFilter(err)
	}
}

// FlushIfQueued calls Write only when the out-buffer actually has data
// pending, matching spec.md §4.F's "flush() invokes buffered write if the
// out-buffer is non-empty and state is CONNECTED".
func (t *Transport) FlushIfQueued(rec *socket.Record) error {
	if rec.OutPendingLen() == 0 {
		return nil
	}
	if slot := rec.Slot(); slot == nil || slot.State() != socket.StateConnected {
		return nil
	}

	_, err := t.Write(rec)
	return err
}

func (t *Transport) onHangup(rec *socket.Record, slot *socket.Slot) {
	alreadyNotified := slot.Flags().Has(socket.FlagHangupPending)
	if !alreadyNotified {
		slot.AddFlags(socket.FlagHangupPending)
	}

	_ = t.Close(rec)

	if !alreadyNotified {
		t.metrics.IncHangup()
		t.bus.Post(event.Hangup, uint64(rec.ID()))
	}
}
