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

// Package address is the concrete implementation of the NetworkAddress
// external collaborator: an address-family-aware value object usable as a
// local or remote endpoint for a TCP socket record.
package address

import (
	"fmt"
	"net"
)

// Family identifies the address family a socket or address value belongs
// to. Once set on a record (at first descriptor creation) it is immutable.
type Family uint8

const (
	// FamilyIPv4 is AF_INET.
	FamilyIPv4 Family = iota
	// FamilyIPv6 is AF_INET6.
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// Address is an exclusively-owned endpoint value: an IP plus a port, bound
// to one address family. Clone returns an independent copy so a record's
// address_local/address_remote fields never alias another record's value.
type Address interface {
	Family() Family
	IP() net.IP
	Port() uint16
	SetPort(port uint16)
	Clone() Address
	Equal(other Address) bool
	String() string
}

type address struct {
	family Family
	ip     net.IP
	port   uint16
}

// New builds an Address from an IP and port. The family is inferred from
// the IP's shape (a 4-byte or 4-in-6 form is IPv4, anything else IPv6).
func New(ip net.IP, port uint16) Address {
	f := FamilyIPv6
	if ip4 := ip.To4(); ip4 != nil {
		f = FamilyIPv4
		ip = ip4
	}

	return &address{family: f, ip: ip, port: port}
}

// IPv4Any returns the IPv4 wildcard address (0.0.0.0) with the given port,
// suitable for binding a listener on every local interface.
func IPv4Any(port uint16) Address {
	return &address{family: FamilyIPv4, ip: net.IPv4zero.To4(), port: port}
}

// IPv6Any returns the IPv6 wildcard address (::) with the given port.
func IPv6Any(port uint16) Address {
	return &address{family: FamilyIPv6, ip: net.IPv6zero, port: port}
}

// Parse builds an Address from a "host:port" string.
func Parse(hostport string) (Address, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, err
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("address: invalid host %q", host)
	}

	var port uint16
	if _, err = fmt.Sscanf(portStr, "%d", &port); err != nil {
		return nil, fmt.Errorf("address: invalid port %q: %w", portStr, err)
	}

	return New(ip, port), nil
}

func (a *address) Family() Family { return a.family }
func (a *address) IP() net.IP     { return a.ip }
func (a *address) Port() uint16   { return a.port }

func (a *address) SetPort(port uint16) {
	a.port = port
}

func (a *address) Clone() Address {
	ip := make(net.IP, len(a.ip))
	copy(ip, a.ip)
	return &address{family: a.family, ip: ip, port: a.port}
}

func (a *address) Equal(other Address) bool {
	if other == nil {
		return false
	}
	return a.family == other.Family() && a.port == other.Port() && a.ip.Equal(other.IP())
}

func (a *address) String() string {
	return net.JoinHostPort(a.ip.String(), fmt.Sprintf("%d", a.port))
}
