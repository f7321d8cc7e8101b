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

// Package metrics exposes the descriptor table and the socket lifecycle as
// Prometheus collectors: a gauge tracking claimed slots against capacity,
// and counters for accept, connect, close and HANGUP events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rampantpixels/network-lib/socket"
)

const namespace = "socknet"

// Collector bundles the slot-table gauge and the lifecycle counters. A nil
// *Collector is valid: every Inc method is a no-op on a nil receiver, so
// callers do not need to branch on whether metrics are enabled.
type Collector struct {
	slotsTotal prometheus.Gauge
	slotsInUse prometheus.GaugeFunc

	accepts  prometheus.Counter
	connects prometheus.Counter
	closes   prometheus.Counter
	hangups  prometheus.Counter
}

// New builds a Collector reading live occupancy from slots. It does not
// register anything; call Register to attach it to a prometheus.Registerer.
func New(slots *socket.SlotTable) *Collector {
	c := &Collector{
		slotsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "slots",
			Name:      "capacity",
			Help:      "Fixed capacity of the descriptor slot table.",
		}),
		accepts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tcp",
			Name:      "accepts_total",
			Help:      "Total inbound connections accepted.",
		}),
		connects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tcp",
			Name:      "connects_total",
			Help:      "Total outbound connections established.",
		}),
		closes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tcp",
			Name:      "closes_total",
			Help:      "Total descriptors closed.",
		}),
		hangups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tcp",
			Name:      "hangups_total",
			Help:      "Total peer hangups observed.",
		}),
	}
	c.slotsTotal.Set(float64(slots.Len()))
	c.slotsInUse = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "slots",
		Name:      "in_use",
		Help:      "Slots currently claimed by a live socket.",
	}, func() float64 {
		return float64(slots.InUse())
	})
	return c
}

// Register attaches every collector to reg. A nil reg or a nil Collector is
// a deliberate no-op, matching the "metrics are optional" contract: a
// module with no configured registerer runs exactly as it would with one,
// minus the exposition.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if c == nil || reg == nil {
		return nil
	}
	for _, coll := range []prometheus.Collector{c.slotsTotal, c.slotsInUse, c.accepts, c.connects, c.closes, c.hangups} {
		if err := reg.Register(coll); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) IncAccept() {
	if c != nil {
		c.accepts.Inc()
	}
}

func (c *Collector) IncConnect() {
	if c != nil {
		c.connects.Inc()
	}
}

func (c *Collector) IncClose() {
	if c != nil {
		c.closes.Inc()
	}
}

func (c *Collector) IncHangup() {
	if c != nil {
		c.hangups.Inc()
	}
}
