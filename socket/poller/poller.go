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

// Package poller reconciles the CONNECTING/CONNECTED/DISCONNECTED state
// machine from a non-blocking readiness probe, exactly per spec.md §4.E.
package poller

import (
	"time"

	"github.com/rampantpixels/network-lib/socket"
)

// Prober is the minimal readiness-probing surface a transport must expose
// for its records to be driven by Poll. socket/tcp.Transport satisfies it.
type Prober interface {
	Readiness(rec *socket.Record, timeout time.Duration) (writable bool, exception bool, err error)
	Pending(rec *socket.Record) (int, error)
	Close(rec *socket.Record) error
}

// Poll reconciles rec's connection state from its current slot state and
// a non-blocking readiness probe, returning the (possibly updated) state.
//
// The CONNECTED->DISCONNECTED fall-through is intentional: after
// discovering a hangup via a negative FIONREAD, the DISCONNECTED handling
// below still runs in the same call, so a socket with buffered input
// pending is not closed out from under a consumer still draining it.
func Poll(prober Prober, rec *socket.Record) socket.State {
	slot := rec.Slot()
	if slot == nil {
		return socket.StateNotConnected
	}

	st := slot.State()

	if st == socket.StateNotConnected || st == socket.StateListening {
		return st
	}

	if st == socket.StateConnecting {
		writable, exception, err := prober.Readiness(rec, 0)
		if err != nil || exception {
			_ = prober.Close(rec)
			slot.SetState(socket.StateDisconnected)
			return socket.StateDisconnected
		}
		if writable {
			slot.SetState(socket.StateConnected)
			return socket.StateConnected
		}
		return st
	}

	if st == socket.StateConnected {
		n, err := prober.Pending(rec)
		if err != nil || n < 0 {
			slot.SetState(socket.StateDisconnected)
		} else {
			return st
		}
	}

	// Reached only for StateDisconnected, either inherited or just set
	// above. rec comes from the caller, who holds its reference; Poll does
	// no lookup of its own. The record is closed only once its buffered
	// input has drained.
	if rec.InAvailable() == 0 {
		_ = prober.Close(rec)
	}
	return socket.StateDisconnected
}
