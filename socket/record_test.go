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

package socket_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rampantpixels/network-lib/socket"
	"github.com/rampantpixels/network-lib/socket/address"
)

var _ = Describe("Record", func() {
	var (
		reg *socket.Registry
		tr  *fakeTransport
		rec *socket.Record
	)

	BeforeEach(func() {
		tr = &fakeTransport{}
		reg = socket.NewRegistry(socket.NewSlotTable(4), nil)
		rec = reg.New(address.FamilyIPv4, 16, tr)
	})

	It("starts with no slot claimed", func() {
		Expect(rec.Base()).To(Equal(int32(-1)))
		Expect(rec.Slot()).To(BeNil())
	})

	It("claims a slot on demand and reports it via Base/Slot", func() {
		slot, err := rec.ClaimSlot()
		Expect(err).ToNot(HaveOccurred())
		Expect(rec.Base()).To(BeNumerically(">=", 0))
		Expect(rec.Slot()).To(BeIdenticalTo(slot))
	})

	It("is idempotent claiming a slot twice", func() {
		s1, err := rec.ClaimSlot()
		Expect(err).ToNot(HaveOccurred())
		s2, err := rec.ClaimSlot()
		Expect(err).ToNot(HaveOccurred())
		Expect(s1).To(BeIdenticalTo(s2))
	})

	It("clears Base before releasing the slot itself", func() {
		_, err := rec.ClaimSlot()
		Expect(err).ToNot(HaveOccurred())

		rec.ReleaseSlot()
		Expect(rec.Base()).To(Equal(int32(-1)))
		Expect(rec.Slot()).To(BeNil())
	})

	It("round-trips local and remote addresses", func() {
		local := address.IPv4Any(8080)
		rec.SetAddrLocal(local)
		Expect(rec.AddrLocal()).To(Equal(local))

		remote, err := address.Parse("10.0.0.1:9090")
		Expect(err).ToNot(HaveOccurred())
		rec.SetAddrRemote(remote)
		Expect(rec.AddrRemote()).To(Equal(remote))
	})

	It("enforces at most one attached stream", func() {
		Expect(rec.AttachStream("first")).To(BeTrue())
		Expect(rec.AttachStream("second")).To(BeFalse())
		Expect(rec.Stream()).To(Equal("first"))
	})

	Describe("the input ring buffer", func() {
		It("fills and drains in FIFO order", func() {
			n := rec.FillIn([]byte("hello"))
			Expect(n).To(Equal(5))
			Expect(rec.InAvailable()).To(Equal(5))

			buf := make([]byte, 5)
			got := rec.DrainIn(buf)
			Expect(got).To(Equal(5))
			Expect(string(buf)).To(Equal("hello"))
			Expect(rec.InAvailable()).To(Equal(0))
		})

		It("never fills past the ring's free capacity", func() {
			big := make([]byte, 64)
			for i := range big {
				big[i] = byte(i)
			}
			n := rec.FillIn(big)
			Expect(n).To(BeNumerically("<", len(big)))
			Expect(rec.InFree()).To(Equal(0))
		})

		It("tracks lifetime bytes read on consumer drain, not on kernel fill", func() {
			rec.FillIn([]byte("abc"))
			rec.FillIn([]byte("de"))
			Expect(rec.BytesRead()).To(Equal(int64(0)))

			rec.DrainIn(make([]byte, 3))
			Expect(rec.BytesRead()).To(Equal(int64(3)))

			rec.DrainIn(make([]byte, 2))
			Expect(rec.BytesRead()).To(Equal(int64(5)))
		})
	})

	Describe("the output buffer", func() {
		It("queues and reports pending bytes", func() {
			n := rec.QueueOut([]byte("payload"))
			Expect(n).To(Equal(7))
			Expect(rec.OutPendingLen()).To(Equal(7))
			Expect(rec.OutPending()).To(Equal([]byte("payload")))
		})

		It("slides the unsent tail on a partial drain", func() {
			rec.QueueOut([]byte("abcdef"))
			rec.OutDrain(2)
			Expect(rec.OutPending()).To(Equal([]byte("cdef")))
			Expect(rec.BytesWritten()).To(Equal(int64(2)))
		})

		It("resets to empty when the whole buffer drains", func() {
			rec.QueueOut([]byte("abc"))
			rec.OutDrain(3)
			Expect(rec.OutPendingLen()).To(Equal(0))
		})

		It("never queues more than the buffer's remaining room", func() {
			rec.QueueOut(make([]byte, 16))
			n := rec.QueueOut([]byte("overflow"))
			Expect(n).To(Equal(0))
		})
	})
})
