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

package tcp

import (
	"time"

	"github.com/rampantpixels/network-lib/socket"
	"github.com/rampantpixels/network-lib/socket/address"
	"github.com/rampantpixels/network-lib/socket/event"
	"github.com/rampantpixels/network-lib/socket/metrics"
)

// Transport implements socket.Transport for TCP records: open, connect,
// listen, accept, and ring-buffered read/write, matching spec.md §4.D.
type Transport struct {
	registry     *socket.Registry
	bus          *event.Bus
	logger       socket.Logger
	bufSize      int
	metrics      *metrics.Collector
	defaultFlags socket.Flag
}

// New builds a TCP transport bound to reg for allocating accepted
// connections, and bus for posting HANGUP/CONNECTED notifications. mtr may
// be nil; every Collector method tolerates a nil receiver. defaultFlags
// (BLOCKING/TCP_NODELAY/...) is applied by Open to a claimed slot whose
// flags are still all zero; a slot already given flags through
// SetBlocking/SetReuseAddr/SetReusePort keeps only those.
func New(reg *socket.Registry, bus *event.Bus, logger socket.Logger, bufSize int, mtr *metrics.Collector, defaultFlags socket.Flag) *Transport {
	if bufSize <= 0 {
		bufSize = socket.DefaultBufferSize
	}
	return &Transport{registry: reg, bus: bus, logger: logger, bufSize: bufSize, metrics: mtr, defaultFlags: defaultFlags}
}

// Create allocates a new TCP record with no descriptor yet claimed,
// matching spec.md §4.D tcp_create.
func (t *Transport) Create(family address.Family) *socket.Record {
	return t.registry.New(family, t.bufSize, t)
}

// Open lazily claims a slot and creates the kernel descriptor for rec's
// family, applying the record's remembered BLOCKING/REUSE_ADDR/
// REUSE_PORT/TCP_NODELAY flags. A no-op if a descriptor already exists.
func (t *Transport) Open(rec *socket.Record) error {
	slot, err := rec.ClaimSlot()
	if err != nil {
		return errDescriptor(socket.ErrorDescriptorCreate, err)
	}

	if slot.FD() != socket.InvalidFD {
		return nil
	}

	if slot.Flags() == 0 {
		slot.SetFlags(t.defaultFlags)
	}

	fd, err := sys.socket(rec.Family())
	if err != nil {
		return errDescriptor(socket.ErrorDescriptorCreate, err)
	}

	flags := slot.Flags()
	if flags.Has(socket.FlagReuseAddr) {
		_ = sys.setReuseAddr(fd, true)
	}
	if flags.Has(socket.FlagReusePort) {
		_ = sys.setReusePort(fd, true)
	}
	if flags.Has(socket.FlagTCPNoDelay) {
		_ = sys.setNoDelay(fd, true)
	}
	if !flags.Has(socket.FlagBlocking) {
		_ = sys.setNonblock(fd, true)
	}

	slot.SetFD(fd)
	return nil
}

// Bind assigns local as rec's bound local address, opening a descriptor
// first if needed.
func (t *Transport) Bind(rec *socket.Record, local address.Address) error {
	if err := t.Open(rec); err != nil {
		return err
	}

	slot := rec.Slot()
	if err := sys.bind(slot.FD(), local); err != nil {
		return errDescriptor(socket.ErrorDescriptorBind, err)
	}

	rec.SetAddrLocal(local.Clone())
	return nil
}

// Listen implements spec.md §4.D tcp_listen: requires NOT_CONNECTED, a
// descriptor, and a bound local address; transitions to LISTENING.
func (t *Transport) Listen(rec *socket.Record, local address.Address) error {
	slot := rec.Slot()
	if slot == nil || slot.State() != socket.StateNotConnected {
		return errState("listen requires state NOT_CONNECTED")
	}

	if rec.AddrLocal() == nil {
		if local == nil {
			return errState("listen requires a bound local address")
		}
		if err := t.Bind(rec, local); err != nil {
			return err
		}
	}

	if err := sys.listen(slot.FD(), platformSomaxconn); err != nil {
		return errDescriptor(socket.ErrorDescriptorListen, err)
	}

	slot.SetState(socket.StateListening)
	return nil
}

// Accept implements spec.md §4.D tcp_accept with a zero timeout: a blocking
// listener waits in accept for a connection, a non-blocking one returns
// nil at once when none is pending. An accepted connection gets a brand
// new record.
func (t *Transport) Accept(rec *socket.Record) (*socket.Record, error) {
	return t.AcceptTimeout(rec, 0)
}

// AcceptTimeout is Accept with an explicit timeout, matching spec.md's
// tcp_accept(id, timeout_ms) signature more literally than the Transport
// interface (which carries no timeout parameter) allows.
func (t *Transport) AcceptTimeout(rec *socket.Record, timeoutMs int) (*socket.Record, error) {
	slot := rec.Slot()
	if slot == nil || slot.State() != socket.StateListening {
		return nil, errState("accept requires state LISTENING")
	}

	listenFD := slot.FD()
	wasBlocking := slot.Flags().Has(socket.FlagBlocking)

	if wasBlocking && timeoutMs > 0 {
		_ = sys.setNonblock(listenFD, true)
		defer func() { _ = sys.setNonblock(listenFD, false) }()
	}

	newfd, peer, err := sys.accept(listenFD)
	if err != nil {
		if !isWouldBlock(err) {
			return nil, errDescriptor(socket.ErrorDescriptorAccept, err)
		}
		if timeoutMs <= 0 {
			return nil, nil
		}

		readable, _, serr := sys.selectRead(listenFD, time.Duration(timeoutMs)*time.Millisecond)
		if serr != nil {
			return nil, errDescriptor(socket.ErrorDescriptorAccept, serr)
		}
		if !readable {
			return nil, nil
		}

		newfd, peer, err = sys.accept(listenFD)
		if err != nil {
			if isWouldBlock(err) {
				return nil, nil
			}
			return nil, errDescriptor(socket.ErrorDescriptorAccept, err)
		}
	}

	child := t.registry.New(rec.Family(), t.bufSize, t)
	cslot, cerr := child.ClaimSlot()
	if cerr != nil {
		_ = sys.close(newfd)
		t.registry.Release(child)
		return nil, cerr
	}

	// Flags carry over from the listener, with CONNECTION_PENDING cleared
	// (the accept flag-clear bug resolution; see DESIGN.md).
	cslot.SetFlags(slot.Flags().Clear(socket.FlagConnectionPending))
	cslot.SetFD(newfd)
	cslot.SetState(socket.StateConnected)
	_ = sys.setNonblock(newfd, !cslot.Flags().Has(socket.FlagBlocking))

	child.SetAddrRemote(peer)
	if local, lerr := sys.sockname(newfd); lerr == nil {
		child.SetAddrLocal(local)
	}

	t.metrics.IncAccept()
	return child, nil
}

// Connect implements spec.md §4.D tcp_connect's completion policy.
func (t *Transport) Connect(rec *socket.Record, remote address.Address, timeoutMs int) error {
	slot := rec.Slot()
	if slot != nil && slot.State() != socket.StateNotConnected {
		return errState("connect requires state NOT_CONNECTED")
	}

	if err := t.Open(rec); err != nil {
		return err
	}
	slot = rec.Slot()

	slot.ClearFlags(socket.FlagConnectionPending | socket.FlagErrorPending | socket.FlagHangupPending)

	wasBlocking := slot.Flags().Has(socket.FlagBlocking)
	if wasBlocking && timeoutMs > 0 {
		_ = sys.setNonblock(slot.FD(), true)
		defer func() { _ = sys.setNonblock(slot.FD(), false) }()
	}

	complete, err := sys.connect(slot.FD(), remote)
	if err != nil {
		return errDescriptor(socket.ErrorDescriptorConnect, err)
	}

	if complete {
		slot.SetState(socket.StateConnected)
		t.finishConnect(rec, remote)
		t.bus.Post(event.Connected, uint64(rec.ID()))
		t.metrics.IncConnect()
		return nil
	}

	if timeoutMs == 0 {
		slot.AddFlags(socket.FlagConnectionPending)
		slot.SetState(socket.StateConnecting)
		return nil
	}

	writable, exception, serr := sys.selectWrite(slot.FD(), time.Duration(timeoutMs)*time.Millisecond)
	if serr != nil {
		return errDescriptor(socket.ErrorDescriptorConnect, serr)
	}
	if !writable && !exception {
		return errDescriptor(socket.ErrorDescriptorConnectTimeout, errConnectTimeout)
	}

	if serr = sys.getSockError(slot.FD()); serr != nil {
		slot.AddFlags(socket.FlagErrorPending)
		return errDescriptor(socket.ErrorDescriptorConnect, serr)
	}

	slot.SetState(socket.StateConnected)
	t.finishConnect(rec, remote)
	t.bus.Post(event.Connected, uint64(rec.ID()))
	t.metrics.IncConnect()
	return nil
}

func (t *Transport) finishConnect(rec *socket.Record, remote address.Address) {
	rec.SetAddrRemote(remote.Clone())
	if slot := rec.Slot(); slot != nil {
		if local, err := sys.sockname(slot.FD()); err == nil {
			rec.SetAddrLocal(local)
		}
	}
}

// SetDelay toggles TCP_NODELAY, remembered in the slot's flags across
// descriptor recreation per spec.md §4.D tcp_set_delay.
func (t *Transport) SetDelay(rec *socket.Record, noDelay bool) error {
	slot := rec.Slot()
	if slot == nil {
		return errState("set_delay requires a claimed descriptor")
	}

	if noDelay {
		slot.AddFlags(socket.FlagTCPNoDelay)
	} else {
		slot.ClearFlags(socket.FlagTCPNoDelay)
	}

	if fd := slot.FD(); fd != socket.InvalidFD {
		return sys.setNoDelay(fd, noDelay)
	}
	return nil
}

// Delay reports the current TCP_NODELAY setting.
func (t *Transport) Delay(rec *socket.Record) bool {
	if slot := rec.Slot(); slot != nil {
		return slot.Flags().Has(socket.FlagTCPNoDelay)
	}
	return false
}

// SetBlocking toggles BLOCKING, matching spec.md §4.C's set_blocking: it
// lazily claims a slot if rec does not have one yet, then applies the
// kernel call only if a live descriptor already exists.
func (t *Transport) SetBlocking(rec *socket.Record, blocking bool) error {
	slot, err := rec.ClaimSlot()
	if err != nil {
		return err
	}

	if blocking {
		slot.AddFlags(socket.FlagBlocking)
	} else {
		slot.ClearFlags(socket.FlagBlocking)
	}

	if fd := slot.FD(); fd != socket.InvalidFD {
		return sys.setNonblock(fd, !blocking)
	}
	return nil
}

// Blocking reports the current BLOCKING setting, or false for a record with
// no claimed slot.
func (t *Transport) Blocking(rec *socket.Record) bool {
	if slot := rec.Slot(); slot != nil {
		return slot.Flags().Has(socket.FlagBlocking)
	}
	return false
}

// SetReuseAddr toggles SO_REUSEADDR, matching spec.md §4.C's
// reuse_address: it lazily claims a slot if rec does not have one yet,
// then applies the kernel call only if a live descriptor already exists.
func (t *Transport) SetReuseAddr(rec *socket.Record, enable bool) error {
	slot, err := rec.ClaimSlot()
	if err != nil {
		return err
	}

	if enable {
		slot.AddFlags(socket.FlagReuseAddr)
	} else {
		slot.ClearFlags(socket.FlagReuseAddr)
	}

	if fd := slot.FD(); fd != socket.InvalidFD {
		return sys.setReuseAddr(fd, enable)
	}
	return nil
}

// ReuseAddr reports the current SO_REUSEADDR setting, or false for a
// record with no claimed slot.
func (t *Transport) ReuseAddr(rec *socket.Record) bool {
	if slot := rec.Slot(); slot != nil {
		return slot.Flags().Has(socket.FlagReuseAddr)
	}
	return false
}

// SetReusePort toggles SO_REUSEPORT, matching spec.md §4.C's reuse_port
// (a no-op on the kernel side on Windows; see sysops_windows.go): it
// lazily claims a slot if rec does not have one yet, then applies the
// kernel call only if a live descriptor already exists.
func (t *Transport) SetReusePort(rec *socket.Record, enable bool) error {
	slot, err := rec.ClaimSlot()
	if err != nil {
		return err
	}

	if enable {
		slot.AddFlags(socket.FlagReusePort)
	} else {
		slot.ClearFlags(socket.FlagReusePort)
	}

	if fd := slot.FD(); fd != socket.InvalidFD {
		return sys.setReusePort(fd, enable)
	}
	return nil
}

// ReusePort reports the current SO_REUSEPORT setting, or false for a
// record with no claimed slot.
func (t *Transport) ReusePort(rec *socket.Record) bool {
	if slot := rec.Slot(); slot != nil {
		return slot.Flags().Has(socket.FlagReusePort)
	}
	return false
}

// StreamInit is invoked once by the stream adapter's constructor; TCP
// records need no extra setup beyond having an open descriptor.
func (t *Transport) StreamInit(rec *socket.Record) error {
	return t.Open(rec)
}

var platformSomaxconn = 128

var errConnectTimeout = &timeoutError{}

type timeoutError struct{}

func (*timeoutError) Error() string { return "connect did not complete before the given timeout" }

func errDescriptor(code socket.ErrCode, cause error) error {
	return socket.NewError(code, cause)
}

func errState(msg string) error {
	return socket.NewStateError(msg)
}
