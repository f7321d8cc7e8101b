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
	"github.com/sirupsen/logrus"
)

// Logger is the domain-tagged logging contract accepted by every component
// of the socket object system. Implementations are expected to attach their
// own component field (see NewLogrusLogger) rather than have callers repeat
// it in every format string.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// discardLogger drops every entry. Used whenever a nil Logger is supplied,
// so the rest of the package never has to nil-check before logging.
type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{}) {}
func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}

// NewDiscardLogger returns a Logger that discards every entry.
func NewDiscardLogger() Logger {
	return discardLogger{}
}

// logrusLogger adapts a *logrus.Entry, pre-tagged with a component field,
// to the Logger contract.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps l, tagging every entry emitted through the returned
// Logger with a "component" field the way the teacher's logger/types field
// set tags entries with file/caller context. A nil l defaults to
// logrus.StandardLogger().
func NewLogrusLogger(l *logrus.Logger, component string) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}

	return &logrusLogger{
		entry: l.WithField("component", component),
	}
}

func nilLogger(l Logger) Logger {
	if l == nil {
		return NewDiscardLogger()
	}

	return l
}

func (l *logrusLogger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}
