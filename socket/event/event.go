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

// Package event implements the Event Bus external collaborator: a small
// in-process fan-out of socket lifecycle notifications.
package event

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Kind identifies the category of a posted event.
type Kind uint8

const (
	// Hangup is posted the first time a peer-initiated close is observed
	// for a socket (see the TCP transport's HANGUP_PENDING debounce).
	Hangup Kind = iota
	// Connected is posted by the TCP transport's Connect when the connect
	// completes within that call; a pending connect later resolved by the
	// poller posts nothing.
	Connected
	// Error is a placeholder kind for socket-level error notifications.
	Error
)

func (k Kind) String() string {
	switch k {
	case Hangup:
		return "hangup"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ID is the minimal identifier type the bus deals in; callers pass their
// socket.ID values in as this type to avoid an import cycle with socket.
type ID = uint64

// subscriber is one Subscribe call's channel plus the kind it filters on.
type subscriber struct {
	kind Kind
	ch   chan ID
}

// Bus is an in-process, channel-fan-out event bus. Post is non-blocking:
// dispatch to each subscriber runs on its own errgroup goroutine, and a
// subscriber whose channel is full drops the event rather than stalling
// the poster.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscriber
	eg   *errgroup.Group
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{eg: &errgroup.Group{}}
}

// Subscribe registers interest in kind and returns a channel that receives
// every ID subsequently posted under that kind. The channel is buffered so
// a slow subscriber does not block the poster under normal load.
func (b *Bus) Subscribe(kind Kind) <-chan ID {
	ch := make(chan ID, 64)

	b.mu.Lock()
	b.subs = append(b.subs, &subscriber{kind: kind, ch: ch})
	b.mu.Unlock()

	return ch
}

// Post notifies every subscriber registered for kind that id experienced
// that event. Dispatch happens on background goroutines managed by an
// errgroup so a blocked subscriber cannot make Post itself block.
func (b *Bus) Post(kind Kind, id ID) {
	b.mu.RLock()
	targets := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind == kind {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		sub := s
		b.eg.Go(func() error {
			select {
			case sub.ch <- id:
			default:
			}
			return nil
		})
	}
}

// Wait blocks until every in-flight dispatch goroutine has returned, or ctx
// is done. Subscriber channels are never closed by the bus.
func (b *Bus) Wait(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- b.eg.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
