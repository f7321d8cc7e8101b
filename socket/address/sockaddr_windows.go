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

package address

import (
	"golang.org/x/sys/windows"
)

// SockaddrWindows converts a to the windows.Sockaddr representation needed
// by golang.org/x/sys/windows bind/connect/accept calls.
func SockaddrWindows(a Address) windows.Sockaddr {
	if a == nil {
		return nil
	}

	switch a.Family() {
	case FamilyIPv4:
		var addr [4]byte
		copy(addr[:], a.IP().To4())
		return &windows.SockaddrInet4{Port: int(a.Port()), Addr: addr}
	case FamilyIPv6:
		var addr [16]byte
		copy(addr[:], a.IP().To16())
		return &windows.SockaddrInet6{Port: int(a.Port()), Addr: addr}
	default:
		return nil
	}
}

// FromSockaddrWindows converts a resolved windows.Sockaddr back into an
// Address.
func FromSockaddrWindows(sa windows.Sockaddr) Address {
	switch v := sa.(type) {
	case *windows.SockaddrInet4:
		ip := make([]byte, 4)
		copy(ip, v.Addr[:])
		return New(ip, uint16(v.Port))
	case *windows.SockaddrInet6:
		ip := make([]byte, 16)
		copy(ip, v.Addr[:])
		return New(ip, uint16(v.Port))
	default:
		return nil
	}
}
