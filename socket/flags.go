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

// Flag is a bitmask describing the transient and configuration state of a
// descriptor slot. Configuration bits (BLOCKING, REUSE_ADDR, REUSE_PORT,
// TCP_NODELAY) survive descriptor recreation; transient bits (POLLED,
// CONNECTION_PENDING, ERROR_PENDING, HANGUP_PENDING, REFLUSH) are owned by
// the poller and transport and are cleared as their condition resolves.
type Flag uint16

const (
	// FlagBlocking marks the descriptor as performing blocking syscalls
	// (recv, send, accept, connect, select) rather than returning
	// EWOULDBLOCK/EAGAIN immediately.
	FlagBlocking Flag = 1 << iota

	// FlagReuseAddr requests SO_REUSEADDR on bind.
	FlagReuseAddr

	// FlagReusePort requests SO_REUSEPORT on bind, where supported.
	FlagReusePort

	// FlagTCPNoDelay disables Nagle's algorithm. Cleared, the default
	// Nagle-enabled behavior applies.
	FlagTCPNoDelay

	// FlagPolled marks the slot as registered with an external readiness
	// source, so the buffered transport must not perform its own
	// opportunistic reads.
	FlagPolled

	// FlagConnectionPending marks a non-blocking connect still in
	// progress, awaiting writability to resolve SO_ERROR.
	FlagConnectionPending

	// FlagErrorPending marks that select observed the descriptor in the
	// exception set and a pending socket error has not yet been consumed.
	FlagErrorPending

	// FlagHangupPending marks that a peer-initiated close has already
	// been observed and reported, preventing duplicate HANGUP events.
	FlagHangupPending

	// FlagReflush marks that a prior flush drained only part of the
	// out-buffer and the caller must retry once the descriptor is
	// writable again.
	FlagReflush
)

// Has reports whether all bits of mask are set in f.
func (f Flag) Has(mask Flag) bool {
	return f&mask == mask
}

// Set returns f with every bit of mask set.
func (f Flag) Set(mask Flag) Flag {
	return f | mask
}

// Clear returns f with every bit of mask cleared, leaving all other bits
// untouched.
func (f Flag) Clear(mask Flag) Flag {
	return f &^ mask
}
