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

package address

import (
	"golang.org/x/sys/unix"
)

// SockaddrPosix converts a to the unix.Sockaddr representation needed by
// golang.org/x/sys/unix bind/connect/accept calls, mirrored from gVisor's
// hostinet socket address conversion.
func SockaddrPosix(a Address) unix.Sockaddr {
	if a == nil {
		return nil
	}

	switch a.Family() {
	case FamilyIPv4:
		var addr [4]byte
		copy(addr[:], a.IP().To4())
		return &unix.SockaddrInet4{Port: int(a.Port()), Addr: addr}
	case FamilyIPv6:
		var addr [16]byte
		copy(addr[:], a.IP().To16())
		return &unix.SockaddrInet6{Port: int(a.Port()), Addr: addr}
	default:
		return nil
	}
}

// FromSockaddrPosix converts a resolved unix.Sockaddr (as returned by
// unix.Getsockname/Getpeername/Accept) back into an Address.
func FromSockaddrPosix(sa unix.Sockaddr) Address {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make([]byte, 4)
		copy(ip, v.Addr[:])
		return New(ip, uint16(v.Port))
	case *unix.SockaddrInet6:
		ip := make([]byte, 16)
		copy(ip, v.Addr[:])
		return New(ip, uint16(v.Port))
	default:
		return nil
	}
}
