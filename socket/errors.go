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

package socket

import (
	"strings"

	"github.com/rampantpixels/network-lib/errors"
)

const (
	ErrorParamsInvalid errors.CodeError = iota + errors.MinPkgSocket
	ErrorRegistryFull
	ErrorInvalidHandle
	ErrorInvalidState
	ErrorDescriptorCreate
	ErrorDescriptorBind
	ErrorDescriptorListen
	ErrorDescriptorAccept
	ErrorDescriptorConnect
	ErrorDescriptorConnectTimeout
	ErrorDescriptorRead
	ErrorDescriptorWrite
	ErrorDescriptorClose
	ErrorAddressResolve
	ErrorBufferFull
	ErrorNilPointer
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorParamsInvalid)
	errors.RegisterIdFctMessage(ErrorParamsInvalid, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorParamsInvalid:
		return "given parameters are invalid"
	case ErrorRegistryFull:
		return "registry has no free slot available"
	case ErrorInvalidHandle:
		return "handle does not resolve to a live socket"
	case ErrorInvalidState:
		return "operation not valid for the current connection state"
	case ErrorDescriptorCreate:
		return "error occurred while creating the socket descriptor"
	case ErrorDescriptorBind:
		return "error occurred while binding the socket descriptor"
	case ErrorDescriptorListen:
		return "error occurred while entering listen state"
	case ErrorDescriptorAccept:
		return "error occurred while accepting an incoming connection"
	case ErrorDescriptorConnect:
		return "error occurred while connecting the socket descriptor"
	case ErrorDescriptorConnectTimeout:
		return "connect did not complete before the given timeout"
	case ErrorDescriptorRead:
		return "error occurred while reading from the socket descriptor"
	case ErrorDescriptorWrite:
		return "error occurred while writing to the socket descriptor"
	case ErrorDescriptorClose:
		return "error occurred while closing the socket descriptor"
	case ErrorAddressResolve:
		return "error occurred while resolving a network address"
	case ErrorBufferFull:
		return "ring buffer has no room for the requested operation"
	case ErrorNilPointer:
		return "cannot call function for a nil pointer"
	}

	return ""
}

// ErrCode is the coded-error type shared by this package's sentinels,
// exported so subpackages (tcp, poller, stream) can build errors carrying
// the same MinPkgSocket-range codes without importing errors directly.
type ErrCode = errors.CodeError

// NewError wraps cause under code, falling back to code's registered
// message when cause is nil.
func NewError(code ErrCode, cause error) error {
	if cause != nil {
		return errors.New(code.Uint16(), cause.Error())
	}
	return errors.New(code.Uint16(), getMessage(code))
}

// NewStateError builds an ErrorInvalidState error carrying msg as detail,
// used whenever an operation is attempted in the wrong connection state.
func NewStateError(msg string) error {
	return errors.New(ErrorInvalidState.Uint16(), msg)
}

// errorsNew builds a coded error carrying this package's MinPkgSocket-range
// code and the given detail, the way the teacher's packages wrap a code
// with call-site context rather than relying on the registered message
// alone.
func errorsNew(code errors.CodeError, detail string) error {
	return errors.New(code.Uint16(), detail)
}

// closedConnSubstrings lists the lower-cased fragments identifying an error
// as the unavoidable noise of closing an already-shutting-down descriptor,
// mirrored from the teacher's socket basic filter.
var closedConnSubstrings = []string{
	"use of closed network connection",
}

// ErrorFilter drops errors that only report a socket closing as expected
// (e.g. concurrent Close racing a blocked read), so callers tearing down a
// connection do not have to special-case them at every call site. Any other
// error, including one that merely mentions a closed connection deeper in
// its chain, is returned unchanged.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	for _, frag := range closedConnSubstrings {
		if strings.HasPrefix(msg, frag) {
			return nil
		}
	}

	return err
}
