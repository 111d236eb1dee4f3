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
)

// Level is the severity of a log line. Lower values are more severe.
type Level uint8

const (
	// Panic log level
	Panic Level = iota
	// Fatal log level
	Fatal
	// Error log level
	Error
	// Warn log level
	Warn
	// Info log level
	Info
	// Debug log level
	Debug
)

var levelNames = map[Level]string{
	Panic: "panic",
	Fatal: "fatal",
	Error: "error",
	Warn:  "warn",
	Info:  "info",
	Debug: "debug",
}

func (lvl Level) String() string {
	if name, ok := levelNames[lvl]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", uint8(lvl))
}

// Parse converts a level name into a Level. "warning" is accepted as an alias
// of "warn".
func Parse(lvl string) (Level, error) {
	if lvl == "warning" {
		return Warn, nil
	}
	for level, name := range levelNames {
		if name == lvl {
			return level, nil
		}
	}
	return Debug, fmt.Errorf("invalid log level: %q", lvl)
}
