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

// Package module is the composition root binding the registry, slot table,
// TCP transport, event bus and metrics collector into the single *Module
// handle an application inits once and shuts down once. It exists as its
// own package (rather than living in package socket, as spec.md's module
// layout sketches it) only because socket.Record's Transport field is
// satisfied by *tcp.Transport, and tcp imports socket — putting Init here
// keeps the import graph acyclic while Init's behavior matches spec.md
// §4.G exactly.
package module

import (
	"context"
	"fmt"

	"github.com/rampantpixels/network-lib/ioutils/fileDescriptor"
	"github.com/rampantpixels/network-lib/socket"
	"github.com/rampantpixels/network-lib/socket/address"
	"github.com/rampantpixels/network-lib/socket/event"
	"github.com/rampantpixels/network-lib/socket/metrics"
	"github.com/rampantpixels/network-lib/socket/poller"
	"github.com/rampantpixels/network-lib/socket/tcp"
)

// fdHeadroom caps how many extra descriptors Init asks for beyond
// MaxSockets, per spec.md §4.A's registry sizing formula extended to the
// OS descriptor ceiling.
const fdHeadroom = 256

// Module is the live handle returned by Init: the registry, the TCP
// transport bound to it, the event bus, and the metrics collector, ready
// to allocate and drive sockets until Shutdown.
type Module struct {
	cfg      *socket.Config
	registry *socket.Registry
	bus      *event.Bus
	tcp      *tcp.Transport
	metrics  *metrics.Collector
	logger   socket.Logger
}

// Init validates cfg, raises the process descriptor ceiling, allocates the
// registry and slot table, probes the platform network stack, registers
// metrics, and returns a ready Module. Matches spec.md §4.G / SPEC_FULL §9.
func Init(cfg *socket.Config) (*Module, error) {
	if cfg == nil {
		cfg = socket.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = socket.NewDiscardLogger()
	}

	headroom := fdHeadroom
	if cfg.MaxSockets < headroom {
		headroom = cfg.MaxSockets
	}
	want := cfg.MaxSockets + headroom
	if _, _, err := fileDescriptor.SystemFileDescriptor(want); err != nil {
		logger.Warn("module: could not raise descriptor limit to %d: %v", want, err)
	}

	if err := tcp.NetworkStartup(logger); err != nil {
		return nil, err
	}

	slots := socket.NewSlotTable(cfg.MaxSockets)
	registry := socket.NewRegistry(slots, logger)
	bus := event.New()
	mtr := metrics.New(slots)
	if err := mtr.Register(cfg.Registerer); err != nil {
		return nil, fmt.Errorf("module: registering metrics: %w", err)
	}

	transport := tcp.New(registry, bus, logger, cfg.BufferSize, mtr, cfg.SlotFlags())

	return &Module{
		cfg:      cfg,
		registry: registry,
		bus:      bus,
		tcp:      transport,
		metrics:  mtr,
		logger:   logger,
	}, nil
}

// Registry exposes the handle registry directly for callers that need raw
// Lookup/Release access (e.g. building a stream.Stream).
func (m *Module) Registry() *socket.Registry { return m.registry }

// Bus exposes the event bus for subscribing to HANGUP/CONNECTED/ERROR.
func (m *Module) Bus() *event.Bus { return m.bus }

// NewTCP allocates a fresh TCP record of the given family with no
// descriptor claimed yet, matching spec.md §4.D's tcp_create.
func (m *Module) NewTCP(family address.Family) *socket.Record {
	return m.tcp.Create(family)
}

// Transport returns the module's TCP transport, for callers driving
// Open/Connect/Listen/Accept directly or constructing a poller.
func (m *Module) Transport() *tcp.Transport { return m.tcp }

// Poll reconciles rec's connection state via the module's TCP transport,
// a thin convenience over poller.Poll(m.Transport(), rec).
func (m *Module) Poll(rec *socket.Record) socket.State {
	return poller.Poll(m.tcp, rec)
}

// Shutdown closes every live record best-effort, bounded by ctx. Records
// that do not close before ctx is done are abandoned; their descriptors
// leak until process exit, which Shutdown reports as an error rather than
// hiding.
func (m *Module) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.registry.Range(func(rec *socket.Record) {
			_ = m.tcp.Close(rec)
		})
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("module: shutdown did not complete before context: %w", ctx.Err())
	}
}
