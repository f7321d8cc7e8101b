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
)

var _ = Describe("Flag", func() {
	It("sets and has a single bit", func() {
		var f socket.Flag
		f = f.Set(socket.FlagBlocking)
		Expect(f.Has(socket.FlagBlocking)).To(BeTrue())
		Expect(f.Has(socket.FlagTCPNoDelay)).To(BeFalse())
	})

	It("clears only the requested bit, leaving the rest", func() {
		f := socket.FlagConnectionPending.Set(socket.FlagErrorPending)
		f = f.Clear(socket.FlagConnectionPending)
		Expect(f.Has(socket.FlagConnectionPending)).To(BeFalse())
		Expect(f.Has(socket.FlagErrorPending)).To(BeTrue())
	})

	It("is a no-op clearing a bit that was never set", func() {
		f := socket.FlagReflush
		cleared := f.Clear(socket.FlagHangupPending)
		Expect(cleared).To(Equal(f))
	})
})
