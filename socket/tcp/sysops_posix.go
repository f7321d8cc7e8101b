//go:build !windows

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

	"golang.org/x/sys/unix"

	"github.com/rampantpixels/network-lib/socket/address"
)

type posixSys struct{}

var sys sysOps = posixSys{}

func (posixSys) socket(family address.Family) (uintptr, error) {
	domain := unix.AF_INET
	if family == address.FamilyIPv6 {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return 0, err
	}
	return uintptr(fd), nil
}

func (posixSys) bind(fd uintptr, local address.Address) error {
	return unix.Bind(int(fd), address.SockaddrPosix(local))
}

func (posixSys) listen(fd uintptr, backlog int) error {
	return unix.Listen(int(fd), backlog)
}

func (posixSys) connect(fd uintptr, remote address.Address) (bool, error) {
	err := unix.Connect(int(fd), address.SockaddrPosix(remote))
	if err == nil {
		return true, nil
	}
	if err == unix.EINPROGRESS {
		return false, nil
	}
	return false, err
}

func (posixSys) accept(fd uintptr) (uintptr, address.Address, error) {
	nfd, sa, err := unix.Accept(int(fd))
	if err != nil {
		return 0, nil, err
	}
	return uintptr(nfd), address.FromSockaddrPosix(sa), nil
}

func (posixSys) setNonblock(fd uintptr, nonblock bool) error {
	return unix.SetNonblock(int(fd), nonblock)
}

func (posixSys) setReuseAddr(fd uintptr, enable bool) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, boolToInt(enable))
}

func (posixSys) setReusePort(fd uintptr, enable bool) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, boolToInt(enable))
}

func (posixSys) setNoDelay(fd uintptr, enable bool) error {
	return unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, boolToInt(enable))
}

func (posixSys) getSockError(fd uintptr) error {
	val, err := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if val == 0 {
		return nil
	}
	return unix.Errno(val)
}

func (posixSys) fionread(fd uintptr) (int, error) {
	return unix.IoctlGetInt(int(fd), unix.FIONREAD)
}

func (posixSys) selectWrite(fd uintptr, timeout time.Duration) (bool, bool, error) {
	var w, e unix.FdSet
	fdSetSet(&w, int(fd))
	fdSetSet(&e, int(fd))

	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	n, err := unix.Select(int(fd)+1, nil, &w, &e, &tv)
	if err != nil {
		return false, false, err
	}
	if n == 0 {
		return false, false, nil
	}
	return fdSetIsSet(&w, int(fd)), fdSetIsSet(&e, int(fd)), nil
}

func (posixSys) selectRead(fd uintptr, timeout time.Duration) (bool, bool, error) {
	var r, e unix.FdSet
	fdSetSet(&r, int(fd))
	fdSetSet(&e, int(fd))

	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	n, err := unix.Select(int(fd)+1, &r, nil, &e, &tv)
	if err != nil {
		return false, false, err
	}
	if n == 0 {
		return false, false, nil
	}
	return fdSetIsSet(&r, int(fd)), fdSetIsSet(&e, int(fd)), nil
}

func (posixSys) sockname(fd uintptr) (address.Address, error) {
	sa, err := unix.Getsockname(int(fd))
	if err != nil {
		return nil, err
	}
	return address.FromSockaddrPosix(sa), nil
}

func (posixSys) peername(fd uintptr) (address.Address, error) {
	sa, err := unix.Getpeername(int(fd))
	if err != nil {
		return nil, err
	}
	return address.FromSockaddrPosix(sa), nil
}

func (posixSys) recv(fd uintptr, buf []byte) (int, error) {
	return unix.Read(int(fd), buf)
}

func (posixSys) send(fd uintptr, buf []byte) (int, error) {
	return unix.Write(int(fd), buf)
}

func (posixSys) shutdown(fd uintptr, how shutHow) error {
	var h int
	switch how {
	case shutRead:
		h = unix.SHUT_RD
	case shutWrite:
		h = unix.SHUT_WR
	default:
		h = unix.SHUT_RDWR
	}
	return unix.Shutdown(int(fd), h)
}

func (posixSys) close(fd uintptr) error {
	return unix.Close(int(fd))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fdSetSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= int64(1) << (uint(fd) % 64)
}

func fdSetIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(int64(1)<<(uint(fd)%64)) != 0
}

func isWouldBlockPlatform(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINPROGRESS
}

func isTeardownPlatform(err error) bool {
	switch err {
	case unix.ECONNRESET, unix.EPIPE, unix.ETIMEDOUT, unix.ENOTCONN, unix.ECONNABORTED, unix.ECONNREFUSED:
		return true
	default:
		return false
	}
}
