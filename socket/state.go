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

// State is the connection lifecycle of a socket record, reconciled by the
// poller from level-triggered readiness probes rather than driven directly
// by transport calls.
type State uint8

const (
	// StateNotConnected is the initial state of a freshly created or
	// bound-but-not-listening socket.
	StateNotConnected State = iota

	// StateConnecting marks a non-blocking connect awaiting writability.
	StateConnecting

	// StateConnected marks an established, readable/writable connection.
	StateConnected

	// StateListening marks a socket that has entered the kernel's
	// listen backlog and no longer transitions through connect states
	// itself; accepted connections get their own records.
	StateListening

	// StateDisconnected marks a socket whose peer has gone away or which
	// experienced a socket error. The record may still hold buffered
	// input pending drain; see the poller's CONNECTED->DISCONNECTED
	// fall-through.
	StateDisconnected
)

// String renders the state the way the teacher's enum types render
// themselves, for logging and test assertions.
func (s State) String() string {
	switch s {
	case StateNotConnected:
		return "not_connected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateListening:
		return "listening"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
