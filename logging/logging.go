// Copyright (c) 2015 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package logging routes the log output of every heartpop component through a
// single swappable bark.Logger. Components ask for a named logger once, and
// the verbosity of each name can be tuned at runtime.
package logging

import (
	"github.com/uber-common/bark"
)

var defaultFacility = NewFacility(nil)

// SetLogger replaces the logger that all named loggers forward to.
func SetLogger(log bark.Logger) { defaultFacility.SetLogger(log) }

// SetLevel sets the minimum severity for the named logger.
func SetLevel(logName string, level Level) error { return defaultFacility.SetLevel(logName, level) }

// SetLevels sets the minimum severity for several named loggers at once.
func SetLevels(levels map[string]Level) error { return defaultFacility.SetLevels(levels) }

// Logger returns a logger that tags its output with logName and obeys the
// level configured for that name.
func Logger(logName string) bark.Logger { return defaultFacility.Logger(logName) }
