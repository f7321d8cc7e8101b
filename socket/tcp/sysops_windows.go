//go:build windows

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
	"sync"
	"time"

	"golang.org/x/sys/windows"

	"github.com/rampantpixels/network-lib/socket/address"
)

var wsaInit sync.Once

func ensureWSAStartup() {
	wsaInit.Do(func() {
		var data windows.WSAData
		_ = windows.WSAStartup(uint32(0x0202), &data)
	})
}

type windowsSys struct{}

var sys sysOps = windowsSys{}

func (windowsSys) socket(family address.Family) (uintptr, error) {
	ensureWSAStartup()

	domain := windows.AF_INET
	if family == address.FamilyIPv6 {
		domain = windows.AF_INET6
	}

	fd, err := windows.Socket(domain, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		return 0, err
	}
	return uintptr(fd), nil
}

func (windowsSys) bind(fd uintptr, local address.Address) error {
	return windows.Bind(windows.Handle(fd), address.SockaddrWindows(local))
}

func (windowsSys) listen(fd uintptr, backlog int) error {
	return windows.Listen(windows.Handle(fd), int32(backlog))
}

func (windowsSys) connect(fd uintptr, remote address.Address) (bool, error) {
	err := windows.Connect(windows.Handle(fd), address.SockaddrWindows(remote))
	if err == nil {
		return true, nil
	}
	if err == windows.WSAEWOULDBLOCK || err == windows.WSAEINPROGRESS {
		return false, nil
	}
	return false, err
}

func (windowsSys) accept(fd uintptr) (uintptr, address.Address, error) {
	nfd, sa, err := windows.Accept(windows.Handle(fd))
	if err != nil {
		return 0, nil, err
	}
	return uintptr(nfd), address.FromSockaddrWindows(sa), nil
}

func (windowsSys) setNonblock(fd uintptr, nonblock bool) error {
	var arg uint32
	if nonblock {
		arg = 1
	}
	return windows.IoctlSocket(windows.Handle(fd), windows.FIONBIO, &arg)
}

func (windowsSys) setReuseAddr(fd uintptr, enable bool) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, boolToInt(enable))
}

func (windowsSys) setReusePort(fd uintptr, enable bool) error {
	// SO_REUSEPORT has no Windows equivalent; SO_REUSEADDR is the closest
	// analogue and is already applied by setReuseAddr.
	return nil
}

func (windowsSys) setNoDelay(fd uintptr, enable bool) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_TCP, windows.TCP_NODELAY, boolToInt(enable))
}

func (windowsSys) getSockError(fd uintptr) error {
	val, err := windows.GetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_ERROR)
	if err != nil {
		return err
	}
	if val == 0 {
		return nil
	}
	return windows.Errno(val)
}

func (windowsSys) fionread(fd uintptr) (int, error) {
	var n uint32
	if err := windows.IoctlSocket(windows.Handle(fd), windows.FIONREAD, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (windowsSys) selectWrite(fd uintptr, timeout time.Duration) (bool, bool, error) {
	var w, e windows.FdSet
	w.Count = 1
	w.Array[0] = windows.Handle(fd)
	e.Count = 1
	e.Array[0] = windows.Handle(fd)

	tv := windows.NsecToTimeval(timeout.Nanoseconds())
	n, err := windows.Select(0, nil, &w, &e, &tv)
	if err != nil {
		return false, false, err
	}
	if n == 0 {
		return false, false, nil
	}
	return w.Count > 0, e.Count > 0, nil
}

func (windowsSys) selectRead(fd uintptr, timeout time.Duration) (bool, bool, error) {
	var r, e windows.FdSet
	r.Count = 1
	r.Array[0] = windows.Handle(fd)
	e.Count = 1
	e.Array[0] = windows.Handle(fd)

	tv := windows.NsecToTimeval(timeout.Nanoseconds())
	n, err := windows.Select(0, &r, nil, &e, &tv)
	if err != nil {
		return false, false, err
	}
	if n == 0 {
		return false, false, nil
	}
	return r.Count > 0, e.Count > 0, nil
}

func (windowsSys) sockname(fd uintptr) (address.Address, error) {
	sa, err := windows.Getsockname(windows.Handle(fd))
	if err != nil {
		return nil, err
	}
	return address.FromSockaddrWindows(sa), nil
}

func (windowsSys) peername(fd uintptr) (address.Address, error) {
	sa, err := windows.Getpeername(windows.Handle(fd))
	if err != nil {
		return nil, err
	}
	return address.FromSockaddrWindows(sa), nil
}

func (windowsSys) recv(fd uintptr, buf []byte) (int, error) {
	return windows.Read(windows.Handle(fd), buf)
}

func (windowsSys) send(fd uintptr, buf []byte) (int, error) {
	return windows.Write(windows.Handle(fd), buf)
}

func (windowsSys) shutdown(fd uintptr, how shutHow) error {
	var h int
	switch how {
	case shutRead:
		h = windows.SHUT_RD
	case shutWrite:
		h = windows.SHUT_WR
	default:
		h = windows.SHUT_RDWR
	}
	return windows.Shutdown(windows.Handle(fd), h)
}

func (windowsSys) close(fd uintptr) error {
	return windows.Closesocket(windows.Handle(fd))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isWouldBlockPlatform(err error) bool {
	return err == windows.WSAEWOULDBLOCK || err == windows.WSAEINPROGRESS
}

func isTeardownPlatform(err error) bool {
	switch err {
	case windows.WSAECONNRESET, windows.WSAECONNABORTED, windows.WSAETIMEDOUT, windows.WSAENOTCONN, windows.WSAECONNREFUSED:
		return true
	default:
		return false
	}
}
