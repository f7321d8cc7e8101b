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

package stream_test

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rampantpixels/network-lib/socket"
	"github.com/rampantpixels/network-lib/socket/address"
	"github.com/rampantpixels/network-lib/socket/stream"
)

// echoTransport is a scriptable socket.Transport double: Read copies from
// incoming into the record's in-ring, Write drains the record's out-buffer
// into sent.
type echoTransport struct {
	incoming  []byte
	sent      []byte
	streamErr error
}

func (t *echoTransport) Open(*socket.Record) error { return nil }
func (t *echoTransport) Connect(*socket.Record, address.Address, int) error {
	return nil
}
func (t *echoTransport) Listen(*socket.Record, address.Address) error { return nil }
func (t *echoTransport) Accept(*socket.Record) (*socket.Record, error) {
	return nil, nil
}

func (t *echoTransport) Read(rec *socket.Record) (int, error) {
	n := rec.FillIn(t.incoming)
	t.incoming = t.incoming[n:]
	return n, nil
}

func (t *echoTransport) Write(rec *socket.Record) (int, error) {
	pending := rec.OutPending()
	t.sent = append(t.sent, pending...)
	rec.OutDrain(len(pending))
	return len(pending), nil
}

func (t *echoTransport) StreamInit(*socket.Record) error { return t.streamErr }

func newConnected(tr *echoTransport) (*socket.Registry, socket.ID) {
	reg := socket.NewRegistry(socket.NewSlotTable(4), nil)
	rec := reg.New(address.FamilyIPv4, 256, tr)
	slot, err := rec.ClaimSlot()
	Expect(err).ToNot(HaveOccurred())
	slot.SetFD(3)
	slot.SetState(socket.StateConnected)
	return reg, rec.ID()
}

var _ = Describe("Stream", func() {
	It("reads bytes the transport makes available", func() {
		tr := &echoTransport{incoming: []byte("hello")}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		buf := make([]byte, 5)
		n, err := s.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(string(buf)).To(Equal("hello"))
	})

	It("writes bytes through to the transport", func() {
		tr := &echoTransport{}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		n, err := s.Write([]byte("world"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(string(tr.sent)).To(Equal("world"))
	})

	It("reports AvailableRead for buffered-but-undrained input", func() {
		tr := &echoTransport{incoming: []byte("abc")}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		_, _ = s.Read(make([]byte, 1))
		Expect(s.AvailableRead()).To(Equal(2))
	})

	It("enforces at most one Stream attached to a record", func() {
		tr := &echoTransport{}
		reg, id := newConnected(tr)

		s1, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s1.Close()

		_, err = stream.New(reg, id)
		Expect(err).To(HaveOccurred())
	})

	It("fails to attach to an id that does not resolve", func() {
		reg := socket.NewRegistry(socket.NewSlotTable(1), nil)
		_, err := stream.New(reg, socket.ID(123456))
		Expect(err).To(HaveOccurred())
	})

	It("surfaces a StreamInit failure instead of attaching", func() {
		tr := &echoTransport{streamErr: socket.NewError(socket.ErrorDescriptorCreate, nil)}
		reg, id := newConnected(tr)

		_, err := stream.New(reg, id)
		Expect(err).To(HaveOccurred())
	})

	It("is safe to Close more than once", func() {
		tr := &echoTransport{}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Close()).ToNot(HaveOccurred())
		Expect(func() { _ = s.Close() }).ToNot(Panic())
	})

	It("reports EOF once disconnected and drained", func() {
		tr := &echoTransport{}
		reg := socket.NewRegistry(socket.NewSlotTable(4), nil)
		rec := reg.New(address.FamilyIPv4, 64, tr)
		slot, err := rec.ClaimSlot()
		Expect(err).ToNot(HaveOccurred())
		slot.SetFD(3)
		slot.SetState(socket.StateDisconnected)
		id := rec.ID()

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		Expect(s.EOS()).To(BeTrue())
		_, err = s.Read(make([]byte, 8))
		Expect(err).To(Equal(io.EOF))
	})

	It("Tell reports the lifetime read counter; Size is always zero", func() {
		tr := &echoTransport{incoming: []byte("xy")}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		_, _ = s.Read(make([]byte, 2))
		_, _ = s.Write([]byte("z"))

		Expect(s.Tell()).To(Equal(int64(2)))
		Expect(s.Size()).To(Equal(int64(0)))
	})

	It("Seek rejects every whence but CURRENT, and every negative offset", func() {
		tr := &echoTransport{}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		pos, err := s.Seek(0, io.SeekCurrent)
		Expect(err).ToNot(HaveOccurred())
		Expect(pos).To(Equal(s.Tell()))

		_, err = s.Seek(5, io.SeekStart)
		Expect(err).To(HaveOccurred())

		_, err = s.Seek(-1, io.SeekCurrent)
		Expect(err).To(HaveOccurred())
	})

	It("Seek with a positive CURRENT offset discard-reads that many bytes", func() {
		tr := &echoTransport{incoming: []byte("abcde")}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		pos, err := s.Seek(2, io.SeekCurrent)
		Expect(err).ToNot(HaveOccurred())
		Expect(pos).To(Equal(int64(2)))
		Expect(s.Tell()).To(Equal(int64(2)))

		rest := make([]byte, 3)
		n, err := s.Read(rest)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(3))
		Expect(string(rest)).To(Equal("cde"))
	})

	It("Truncate is a no-op", func() {
		tr := &echoTransport{}
		reg, id := newConnected(tr)

		s, err := stream.New(reg, id)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		Expect(s.Truncate(0)).ToNot(HaveOccurred())
	})
})
