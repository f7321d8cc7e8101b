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
	"time"

	"github.com/rampantpixels/network-lib/socket"
)

// Readiness reports whether rec's descriptor is writable or in the
// exception set, with a zero timeout meaning "poll, don't block". Used by
// socket/poller to drive the CONNECTING->CONNECTED transition.
func (t *Transport) Readiness(rec *socket.Record, timeout time.Duration) (writable bool, exception bool, err error) {
	slot := rec.Slot()
	if slot == nil || slot.FD() == socket.InvalidFD {
		return false, false, nil
	}
	return sys.selectWrite(slot.FD(), timeout)
}

// Pending reports the kernel's FIONREAD count for rec's descriptor, or the
// ioctl's error (with a zero count) on socket error, matching spec.md §4.E's "peek FIONREAD"
// readiness probe for the CONNECTED state.
func (t *Transport) Pending(rec *socket.Record) (int, error) {
	slot := rec.Slot()
	if slot == nil || slot.FD() == socket.InvalidFD {
		return 0, nil
	}
	return sys.fionread(slot.FD())
}
