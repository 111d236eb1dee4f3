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

package logging

import (
	"fmt"
	"sync"

	"github.com/uber-common/bark"
)

// Facility hands out named loggers and filters their output by the level set
// for each name before forwarding it to the underlying bark.Logger.
type Facility struct {
	logger bark.Logger
	levels map[string]Level

	mu sync.RWMutex
}

// NewFacility returns a Facility forwarding to log. A nil log discards
// everything.
func NewFacility(log bark.Logger) *Facility {
	if log == nil {
		log = Discard()
	}
	return &Facility{
		logger: log,
		levels: make(map[string]Level),
	}
}

// SetLevels sets the minimum severity of several named loggers. Levels more
// severe than Fatal are rejected, nothing is changed in that case.
func (f *Facility) SetLevels(levels map[string]Level) error {
	for logName, level := range levels {
		if level < Fatal {
			return fmt.Errorf("cannot set a level above %s for %s", Fatal, logName)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for logName, level := range levels {
		f.levels[logName] = level
	}
	return nil
}

// SetLevel sets the minimum severity of a single named logger.
func (f *Facility) SetLevel(logName string, level Level) error {
	return f.SetLevels(map[string]Level{logName: level})
}

// SetLogger swaps the underlying logger.
func (f *Facility) SetLogger(log bark.Logger) {
	if log == nil {
		log = Discard()
	}
	f.mu.Lock()
	f.logger = log
	f.mu.Unlock()
}

// Logger returns a named logger bound to this facility.
func (f *Facility) Logger(logName string) bark.Logger {
	return &namedLogger{
		name:      logName,
		forwardTo: f,
	}
}

// target returns the logger a message of the given level should be written
// to, or nil when the level of logName filters it out.
func (f *Facility) target(logName string, wantLevel Level, fields bark.Fields) bark.Logger {
	f.mu.RLock()
	defer f.mu.RUnlock()

	// Panic=0 ... Debug=5: a name set to Warn drops Info and Debug.
	if setLevel, ok := f.levels[logName]; ok && setLevel < wantLevel {
		return nil
	}

	logger := f.logger
	if len(fields) > 0 {
		logger = logger.WithFields(fields)
	}
	return logger
}

// Log writes msg at wantLevel on behalf of logName.
func (f *Facility) Log(logName string, wantLevel Level, fields bark.Fields, msg []interface{}) {
	logger := f.target(logName, wantLevel, fields)
	if logger == nil {
		return
	}

	switch wantLevel {
	case Debug:
		logger.Debug(msg...)
	case Info:
		logger.Info(msg...)
	case Warn:
		logger.Warn(msg...)
	case Error:
		logger.Error(msg...)
	case Fatal:
		logger.Fatal(msg...)
	case Panic:
		logger.Panic(msg...)
	}
}

// Logf is the formatting variant of Log.
func (f *Facility) Logf(logName string, wantLevel Level, fields bark.Fields, format string, msg []interface{}) {
	logger := f.target(logName, wantLevel, fields)
	if logger == nil {
		return
	}

	switch wantLevel {
	case Debug:
		logger.Debugf(format, msg...)
	case Info:
		logger.Infof(format, msg...)
	case Warn:
		logger.Warnf(format, msg...)
	case Error:
		logger.Errorf(format, msg...)
	case Fatal:
		logger.Fatalf(format, msg...)
	case Panic:
		logger.Panicf(format, msg...)
	}
}
