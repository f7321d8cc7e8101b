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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rampantpixels/network-lib/socket"
)

var _ = Describe("SlotTable", func() {
	It("reports its fixed capacity", func() {
		t := socket.NewSlotTable(8)
		Expect(t.Len()).To(Equal(8))
	})

	It("claims a free slot and installs the owning id", func() {
		t := socket.NewSlotTable(4)
		idx, err := t.Claim(socket.ID(42))
		Expect(err).ToNot(HaveOccurred())

		s := t.Slot(idx)
		Expect(s).ToNot(BeNil())
		Expect(s.Object()).To(Equal(socket.ID(42)))
		Expect(s.FD()).To(Equal(socket.InvalidFD))
	})

	It("never hands out the same slot twice", func() {
		t := socket.NewSlotTable(3)
		seen := map[int32]bool{}
		for i := 0; i < 3; i++ {
			idx, err := t.Claim(socket.ID(i + 1))
			Expect(err).ToNot(HaveOccurred())
			Expect(seen[idx]).To(BeFalse())
			seen[idx] = true
		}
	})

	It("reports exhaustion once every slot is claimed", func() {
		t := socket.NewSlotTable(2)
		_, err := t.Claim(socket.ID(1))
		Expect(err).ToNot(HaveOccurred())
		_, err = t.Claim(socket.ID(2))
		Expect(err).ToNot(HaveOccurred())

		_, err = t.Claim(socket.ID(3))
		Expect(err).To(HaveOccurred())
	})

	It("frees a slot on Release, making it claimable again", func() {
		t := socket.NewSlotTable(1)
		idx, err := t.Claim(socket.ID(1))
		Expect(err).ToNot(HaveOccurred())

		t.Release(idx)

		_, err = t.Claim(socket.ID(2))
		Expect(err).ToNot(HaveOccurred())
	})

	It("resets fd, flags and state on Release", func() {
		t := socket.NewSlotTable(1)
		idx, _ := t.Claim(socket.ID(1))
		s := t.Slot(idx)

		s.SetFD(7)
		s.SetFlags(socket.FlagTCPNoDelay)
		s.SetState(socket.StateConnected)

		t.Release(idx)

		Expect(s.FD()).To(Equal(socket.InvalidFD))
		Expect(s.Flags()).To(Equal(socket.Flag(0)))
		Expect(s.State()).To(Equal(socket.StateNotConnected))
		Expect(s.Object()).To(Equal(socket.InvalidID))
	})

	It("counts in-use slots", func() {
		t := socket.NewSlotTable(3)
		Expect(t.InUse()).To(Equal(0))

		idx1, _ := t.Claim(socket.ID(1))
		_, _ = t.Claim(socket.ID(2))
		Expect(t.InUse()).To(Equal(2))

		t.Release(idx1)
		Expect(t.InUse()).To(Equal(1))
	})

	It("returns nil for an out-of-range index", func() {
		t := socket.NewSlotTable(2)
		Expect(t.Slot(-1)).To(BeNil())
		Expect(t.Slot(2)).To(BeNil())
	})
})

var _ = Describe("Slot flag helpers", func() {
	It("adds and clears flags through the slot directly", func() {
		t := socket.NewSlotTable(1)
		idx, _ := t.Claim(socket.ID(1))
		s := t.Slot(idx)

		f := s.AddFlags(socket.FlagReflush)
		Expect(f.Has(socket.FlagReflush)).To(BeTrue())

		f = s.ClearFlags(socket.FlagReflush)
		Expect(f.Has(socket.FlagReflush)).To(BeFalse())
	})

	It("stamps LastEvent on every SetState call", func() {
		t := socket.NewSlotTable(1)
		idx, _ := t.Claim(socket.ID(1))
		s := t.Slot(idx)

		before := s.LastEvent()
		s.SetState(socket.StateConnecting)
		Expect(s.LastEvent()).ToNot(BeTemporally("<", before))
	})

	It("clears LastEvent back to the zero instant on ResetEvent", func() {
		t := socket.NewSlotTable(1)
		idx, _ := t.Claim(socket.ID(1))
		s := t.Slot(idx)

		s.SetState(socket.StateConnecting)
		s.ResetEvent()
		Expect(s.LastEvent()).To(Equal(time.Unix(0, 0)))
	})
})
