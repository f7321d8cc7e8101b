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

// Package stream presents a socket as a sequential byte stream: Read,
// Write, EOS, AvailableRead, Flush, Seek (current-only), Tell, Size,
// Truncate (no-op), and LastModified, exactly per spec.md §4.F.
package stream

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/rampantpixels/network-lib/socket"
)

// discardSeekChunk bounds how much scratch space Seek's discard-read loop
// allocates per call, regardless of how large an offset is requested.
const discardSeekChunk = 4096

// Stream wraps exactly one socket.ID. The back-pointer invariant (spec.md
// invariant 4, "at most one stream adapter references a given record") is
// enforced in New via Record.AttachStream.
type Stream struct {
	reg *socket.Registry
	rec *socket.Record

	closeOnce sync.Once
}

// New wraps id, retaining exactly one reference on the underlying record
// for the Stream's lifetime. It fails if id does not resolve to a live
// socket, or if a Stream is already attached to that record.
func New(reg *socket.Registry, id socket.ID) (*Stream, error) {
	rec, ok := reg.Lookup(id)
	if !ok {
		return nil, socket.NewError(socket.ErrorInvalidHandle, nil)
	}

	s := &Stream{reg: reg, rec: rec}

	if !rec.AttachStream(s) {
		reg.Release(rec)
		return nil, socket.NewError(socket.ErrorParamsInvalid, nil)
	}

	if err := rec.Transport().StreamInit(rec); err != nil {
		reg.Release(rec)
		return nil, err
	}

	runtime.SetFinalizer(s, (*Stream).release)
	return s, nil
}

// release gives up the Stream's one retained reference. Per spec.md §9's
// resolution of the "double socket_destroy" ambiguity: the second release
// site the original notes is the lookup-internal release inherent to any
// operation resolving the id, not a second owned reference, so the net
// balance here stays at exactly one release.
func (s *Stream) release() {
	s.closeOnce.Do(func() {
		s.reg.Release(s.rec)
	})
}

// Close releases the Stream's reference deterministically, so callers do
// not have to rely on the garbage collector running the finalizer.
func (s *Stream) Close() error {
	runtime.SetFinalizer(s, nil)
	s.release()
	return nil
}

// EOS reports true iff the socket is no longer connected (or never got a
// descriptor) and no buffered input remains.
func (s *Stream) EOS() bool {
	slot := s.rec.Slot()
	disconnected := slot == nil || slot.FD() == socket.InvalidFD || slot.State() != socket.StateConnected
	return disconnected && s.rec.InAvailable() == 0
}

// AvailableRead returns the number of bytes immediately readable without
// blocking on the kernel.
func (s *Stream) AvailableRead() int {
	return s.rec.InAvailable()
}

// Read pulls fresh bytes from the transport when the socket is live and
// the in-ring has room, then drains buffered input into p, per spec.md
// §4.F's read() steps.
func (s *Stream) Read(p []byte) (int, error) {
	slot := s.rec.Slot()
	if slot != nil {
		slot.ResetEvent()
	}

	if slot == nil || (slot.State() != socket.StateConnected && slot.State() != socket.StateDisconnected) {
		return 0, nil
	}

	if !slot.Flags().Has(socket.FlagPolled) && slot.State() == socket.StateConnected {
		_, _ = s.rec.Transport().Read(s.rec)
	}

	n := s.rec.DrainIn(p)
	if n == 0 && s.EOS() {
		return 0, io.EOF
	}
	return n, nil
}

// Write queues p into the out-buffer, flushing as needed to make room for
// data that does not fit outright, and returns once everything has been
// queued or an unrecoverable error occurs.
func (s *Stream) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n := s.rec.QueueOut(p[total:])
		total += n

		if total == len(p) {
			break
		}

		pendingBefore := s.rec.OutPendingLen()
		if err := s.flush(); err != nil {
			return total, err
		}
		if s.rec.OutPendingLen() == pendingBefore {
			// The flush made no room at all (would-block or the socket is
			// not CONNECTED); avoid spinning.
			return total, socket.NewError(socket.ErrorBufferFull, nil)
		}
	}

	return total, s.flush()
}

// Flush invokes the transport's buffered write if the out-buffer is
// non-empty and the socket is CONNECTED, per spec.md §4.F.
func (s *Stream) Flush() error {
	return s.flush()
}

func (s *Stream) flush() error {
	slot := s.rec.Slot()
	if slot == nil || slot.State() != socket.StateConnected {
		return nil
	}
	if s.rec.OutPendingLen() == 0 {
		return nil
	}

	_, err := s.rec.Transport().Write(s.rec)
	return err
}

// Tell returns the lifetime count of bytes read, standing in for a seek
// position on a sequential, non-seekable medium.
func (s *Stream) Tell() int64 {
	return s.rec.BytesRead()
}

// Size is a no-op returning zero: a socket stream has no notion of size.
func (s *Stream) Size() int64 {
	return 0
}

// Truncate is a no-op: a socket stream has no notion of truncation.
func (s *Stream) Truncate(int64) error {
	return nil
}

// LastModified returns the current wall-clock time: a socket stream has no
// persisted modification timestamp to report.
func (s *Stream) LastModified() time.Time {
	return time.Now()
}

// Seek implements io.Seeker for the CURRENT whence only, and only with a
// non-negative offset: a sequential stream cannot seek backward or to an
// arbitrary absolute position, but skipping forward is implemented as a
// discard-read of offset bytes into a null sink, per spec.md §4.F.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekCurrent || offset < 0 {
		return 0, socket.NewError(socket.ErrorParamsInvalid, nil)
	}

	sink := make([]byte, discardSeekChunk)
	for remaining := offset; remaining > 0; {
		chunk := sink
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}

		n, err := s.Read(chunk)
		remaining -= int64(n)
		if err != nil {
			if err == io.EOF {
				break
			}
			return s.Tell(), err
		}
		if n == 0 {
			break
		}
	}
	return s.Tell(), nil
}
