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
)

// Close drives rec into closed state per spec.md §4.C: puts the descriptor
// in non-blocking mode to avoid blocking on shutdown, performs a
// full-duplex shutdown, closes it, releases the slot, and zeroes the
// record's local/remote addresses. The record itself survives until its
// refcount reaches zero; a record with no claimed slot is already closed
// and this is a no-op.
func (t *Transport) Close(rec *socket.Record) error {
	slot := rec.Slot()
	if slot == nil {
		return nil
	}

	fd := slot.FD()
	if fd != socket.InvalidFD {
		_ = sys.setNonblock(fd, true)
		_ = sys.shutdown(fd, shutBoth)
		_ = sys.close(fd)
	}

	rec.ReleaseSlot()
	rec.SetAddrLocal(nil)
	rec.SetAddrRemote(nil)
	t.metrics.IncClose()

	return nil
}
