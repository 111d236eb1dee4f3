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

package gossip

import (
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Clock supplies the logical time the protocol runs on. Values must never
// decrease.
type Clock interface {
	Now() int64
}

// ManualClock is a Clock that only moves when told to. It is meant for
// simulations where a driver advances time for all nodes in lock-step.
type ManualClock struct {
	now int64
}

// NewManualClock returns a ManualClock reading start.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current logical time.
func (c *ManualClock) Now() int64 {
	return atomic.LoadInt64(&c.now)
}

// Advance moves the clock forward by d and returns the new time. Negative
// values are ignored so the clock stays monotonic.
func (c *ManualClock) Advance(d int64) int64 {
	if d < 0 {
		d = 0
	}
	return atomic.AddInt64(&c.now, d)
}

// periodClock counts protocol periods elapsed since the Unix epoch on an
// underlying wall clock. Nodes with roughly synchronised wall clocks agree on
// the logical time, which keeps the ages carried in gossip meaningful.
type periodClock struct {
	clock  clock.Clock
	period time.Duration
}

// NewPeriodClock returns a Clock that ticks once per period of c.
func NewPeriodClock(c clock.Clock, period time.Duration) Clock {
	if period <= 0 {
		period = time.Second
	}
	return periodClock{clock: c, period: period}
}

func (c periodClock) Now() int64 {
	return c.clock.Now().UnixNano() / int64(c.period)
}
