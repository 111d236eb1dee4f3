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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-common/bark"
)

func TestNamedLoggerFields(t *testing.T) {
	rec := newRecorder()
	f := NewFacility(rec)

	logger := f.Logger("node").WithField("local", "1:0")
	logger.WithFields(bark.Fields{"local": "2:0", "remote": "3:0"}).Info("ping")
	logger.Warnf("heartbeat %d", 4)

	lines := rec.lines()
	require.Len(t, lines, 2)
	assert.Equal(t, bark.Fields{"local": "2:0", "remote": "3:0"}, lines[0].fields, "expected later fields to win")
	assert.Equal(t, bark.Fields{"local": "1:0"}, lines[1].fields)
	assert.Equal(t, "heartbeat 4", lines[1].msg)
}

func TestNamedLoggerWithError(t *testing.T) {
	rec := newRecorder()
	f := NewFacility(rec)

	err := errors.New("send failed")
	var logger bark.Logger = f.Logger("transport").WithField("local", "1:0")
	logger.WithError(err).Warn("failed to send message")

	lines := rec.lines()
	require.Len(t, lines, 1)
	assert.Equal(t, bark.Fields{"local": "1:0", "error": err}, lines[0].fields)
}

func TestNamedLoggerDoesNotShareFields(t *testing.T) {
	l := NewFacility(nil).Logger("node")
	a := l.WithField("a", 1)
	b := a.WithField("b", 2)

	assert.Equal(t, bark.Fields{"a": 1}, a.Fields())
	assert.Equal(t, bark.Fields{"a": 1, "b": 2}, b.Fields())
	assert.Nil(t, l.Fields())
}

func TestDefaultFacility(t *testing.T) {
	rec := newRecorder()
	SetLogger(rec)
	defer SetLogger(nil)

	require.NoError(t, SetLevels(map[string]Level{"quiet": Error}))
	Logger("quiet").Info("dropped")
	Logger("loud").Info("kept")

	lines := rec.lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0].msg)
}
