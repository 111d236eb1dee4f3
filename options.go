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

package heartpop

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/gossip"
	"github.com/uber/heartpop-go/logging"
)

type configuration struct {
	// TickPeriod is the interval between two protocol ticks when the node
	// is driven by its own loop. It is also the logical time unit of the
	// default logical clock.
	TickPeriod time.Duration

	// JoinRetryInterval is how long a joining node waits for a join reply
	// before asking the introducer again.
	JoinRetryInterval time.Duration

	FailTimeout   int64
	RemoveTimeout int64
	Fanout        int
}

// An Option modifies a Heartpop instance while it is being created. Options
// are applied in order, after the defaults.
type Option func(*Heartpop) error

// applyOptions applies runtime configuration options to the specified
// Heartpop instance.
func applyOptions(hp *Heartpop, opts []Option) error {
	for _, option := range opts {
		if err := option(hp); err != nil {
			return err
		}
	}
	return nil
}

// checkOptions checks that the Heartpop instance has been properly configured
// with all the required options.
func checkOptions(hp *Heartpop) []error {
	errs := []error{}
	if hp.address == "" {
		errs = append(errs, errors.New("identity is required"))
	}
	if hp.transport == nil {
		errs = append(errs, errors.New("transport is required"))
	}
	if hp.config.TickPeriod <= 0 {
		errs = append(errs, errors.New("tick period must be positive"))
	}
	return errs
}

// Runtime options

// Identity sets the address the node runs as, either "<id>:<port>" or an
// IPv4 "host:port".
func Identity(address string) Option {
	return func(hp *Heartpop) error {
		if _, err := gossip.ParseIdentity(address); err != nil {
			return err
		}
		hp.address = address
		return nil
	}
}

// Transport sets the transport gossip messages travel over.
func Transport(t gossip.Transport) Option {
	return func(hp *Heartpop) error {
		hp.transport = t
		return nil
	}
}

// Logger sets the logger every heartpop component writes to.
func Logger(l log.Logger) Option {
	return func(hp *Heartpop) error {
		logging.SetLogger(l)
		hp.logger = l
		return nil
	}
}

// Statter sets the reporter protocol stats are sent to.
func Statter(s log.StatsReporter) Option {
	return func(hp *Heartpop) error {
		hp.statter = s
		return nil
	}
}

// Clock sets the wall clock the protocol loop is scheduled on.
func Clock(c clock.Clock) Option {
	return func(hp *Heartpop) error {
		hp.clock = c
		return nil
	}
}

// LogicalClock sets the clock that timestamps membership entries. By default
// logical time counts tick periods on the wall clock.
func LogicalClock(c gossip.Clock) Option {
	return func(hp *Heartpop) error {
		hp.logicalClock = c
		return nil
	}
}

// Audit sets the sink membership additions and removals are reported to.
func Audit(a gossip.Audit) Option {
	return func(hp *Heartpop) error {
		hp.audit = a
		return nil
	}
}

// TickPeriod sets the interval of the protocol loop.
func TickPeriod(period time.Duration) Option {
	return func(hp *Heartpop) error {
		hp.config.TickPeriod = period
		return nil
	}
}

// JoinRetryInterval sets how often a join request is repeated while no join
// reply arrives.
func JoinRetryInterval(interval time.Duration) Option {
	return func(hp *Heartpop) error {
		hp.config.JoinRetryInterval = interval
		return nil
	}
}

// FailTimeout sets after how many logical time units without a new
// heartbeat a peer becomes suspicious.
func FailTimeout(units int64) Option {
	return func(hp *Heartpop) error {
		hp.config.FailTimeout = units
		return nil
	}
}

// RemoveTimeout sets after how many logical time units without a new
// heartbeat a peer is removed.
func RemoveTimeout(units int64) Option {
	return func(hp *Heartpop) error {
		hp.config.RemoveTimeout = units
		return nil
	}
}

// Fanout sets how many peers are pinged every tick.
func Fanout(n int) Option {
	return func(hp *Heartpop) error {
		hp.config.Fanout = n
		return nil
	}
}

// Default options

// defaultLogger is the default logger that is used for Heartpop if one is
// not provided by the user.
func defaultLogger(hp *Heartpop) error {
	return Logger(logging.Discard())(hp)
}

func defaultStatter(hp *Heartpop) error {
	return Statter(noopStatsReporter{})(hp)
}

func defaultClock(hp *Heartpop) error {
	return Clock(clock.New())(hp)
}

func defaultConfiguration(hp *Heartpop) error {
	hp.config = &configuration{
		TickPeriod:        time.Second,
		JoinRetryInterval: 5 * time.Second,
	}
	return nil
}

// defaultOptions are the default options/values when Heartpop is created.
// They can be overridden at runtime.
var defaultOptions = []Option{
	defaultConfiguration,
	defaultLogger,
	defaultStatter,
	defaultClock,
}

type noopStatsReporter struct{}

func (noopStatsReporter) IncCounter(name string, tags log.Tags, value int64)      {}
func (noopStatsReporter) UpdateGauge(name string, tags log.Tags, value int64)     {}
func (noopStatsReporter) RecordTimer(name string, tags log.Tags, d time.Duration) {}
