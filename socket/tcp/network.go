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
	"github.com/rampantpixels/network-lib/socket"
	"github.com/rampantpixels/network-lib/socket/address"
)

// NetworkStartup verifies the platform network stack is usable before Init
// hands out a registry: it opens and closes a throwaway datagram socket per
// family (IPv6 failures are tolerated, since not every host has it
// configured), and performs any platform-specific one-time setup
// (WSAStartup on Windows).
//
// A close error on the probe socket is logged at Debug and otherwise
// ignored: it says nothing about whether TCP sockets will work, so it must
// not fail Init, but it is not nothing either, so it is not silently
// dropped.
func NetworkStartup(logger socket.Logger) error {
	logger = requireLogger(logger)

	if err := platformNetworkStartup(); err != nil {
		return err
	}

	if err := probeDatagram(address.FamilyIPv4, logger); err != nil {
		return err
	}
	_ = probeDatagram(address.FamilyIPv6, logger)
	return nil
}

func probeDatagram(family address.Family, logger socket.Logger) error {
	fd, err := openDatagram(family)
	if err != nil {
		if family == address.FamilyIPv6 {
			return err
		}
		return errDescriptor(socket.ErrorDescriptorCreate, err)
	}

	if err := closeDatagram(fd); err != nil {
		logger.Debug("tcp: network startup probe close (%s): %v", family, err)
	}
	return nil
}

func requireLogger(l socket.Logger) socket.Logger {
	if l == nil {
		return socket.NewDiscardLogger()
	}
	return l
}
