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

	"github.com/rampantpixels/network-lib/socket/address"
)

// shutHow mirrors the platform-agnostic half of a full-duplex shutdown.
type shutHow int

const (
	shutRead shutHow = iota
	shutWrite
	shutBoth
)

// sysOps is the platform facade every raw syscall in this package goes
// through, implemented once per build tag (sysops_posix.go,
// sysops_windows.go) exactly as ioutils/fileDescriptor splits its
// RLIMIT_NOFILE handling across _ok.go/_ko.go.
type sysOps interface {
	socket(family address.Family) (uintptr, error)
	bind(fd uintptr, local address.Address) error
	listen(fd uintptr, backlog int) error
	connect(fd uintptr, remote address.Address) (complete bool, err error)
	accept(fd uintptr) (newfd uintptr, peer address.Address, err error)
	setNonblock(fd uintptr, nonblock bool) error
	setReuseAddr(fd uintptr, enable bool) error
	setReusePort(fd uintptr, enable bool) error
	setNoDelay(fd uintptr, enable bool) error
	getSockError(fd uintptr) error
	fionread(fd uintptr) (int, error)
	selectWrite(fd uintptr, timeout time.Duration) (writable bool, exception bool, err error)
	selectRead(fd uintptr, timeout time.Duration) (readable bool, exception bool, err error)
	sockname(fd uintptr) (address.Address, error)
	peername(fd uintptr) (address.Address, error)
	recv(fd uintptr, buf []byte) (int, error)
	send(fd uintptr, buf []byte) (int, error)
	shutdown(fd uintptr, how shutHow) error
	close(fd uintptr) error
}

// isWouldBlock reports whether err is the platform's would-block signal
// from a non-blocking syscall.
func isWouldBlock(err error) bool {
	return isWouldBlockPlatform(err)
}

// isTeardown reports whether err indicates the connection has gone away
// (reset, broken pipe, timed out, not connected) as opposed to a
// transient or programmer error.
func isTeardown(err error) bool {
	return isTeardownPlatform(err)
}
