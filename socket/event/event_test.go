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

package event_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rampantpixels/network-lib/socket/event"
)

var _ = Describe("Kind", func() {
	It("stringifies the known kinds", func() {
		Expect(event.Hangup.String()).To(Equal("hangup"))
		Expect(event.Connected.String()).To(Equal("connected"))
		Expect(event.Error.String()).To(Equal("error"))
	})

	It("falls back to unknown for anything else", func() {
		Expect(event.Kind(99).String()).To(Equal("unknown"))
	})
})

var _ = Describe("Bus", func() {
	It("delivers a posted event only to subscribers of that kind", func() {
		bus := event.New()
		hangups := bus.Subscribe(event.Hangup)
		connects := bus.Subscribe(event.Connected)

		bus.Post(event.Hangup, 42)

		Expect(bus.Wait(context.Background())).To(Succeed())
		Eventually(hangups).Should(Receive(Equal(event.ID(42))))
		Consistently(connects).ShouldNot(Receive())
	})

	It("fans a single event out to every subscriber of that kind", func() {
		bus := event.New()
		a := bus.Subscribe(event.Connected)
		b := bus.Subscribe(event.Connected)

		bus.Post(event.Connected, 7)
		Expect(bus.Wait(context.Background())).To(Succeed())

		Eventually(a).Should(Receive(Equal(event.ID(7))))
		Eventually(b).Should(Receive(Equal(event.ID(7))))
	})

	It("drops events for a full subscriber channel instead of blocking", func() {
		bus := event.New()
		ch := bus.Subscribe(event.Error)

		for i := 0; i < 100; i++ {
			bus.Post(event.Error, event.ID(i))
		}

		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(len(ch)).To(BeNumerically("<=", cap(ch)))
	})

	It("Wait returns once every in-flight dispatch has drained", func() {
		bus := event.New()
		ch := bus.Subscribe(event.Connected)
		bus.Post(event.Connected, 1)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		Expect(bus.Wait(ctx)).To(Succeed())
		Eventually(ch).Should(Receive(Equal(event.ID(1))))
	})
})
