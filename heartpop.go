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

// Package heartpop runs a heartbeat gossip membership protocol for a group of
// cooperating processes.
//
// Every node keeps a table of the peers it believes are alive. On each
// protocol tick a node raises its own heartbeat and pushes its table to a few
// random peers; peers whose heartbeat stops going up are first suspected and
// then removed. The protocol itself lives in package gossip. This package
// wires a gossip node to a transport, a clock, logging and stats, and drives
// it from a background loop.
package heartpop

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/events"
	"github.com/uber/heartpop-go/gossip"
	"github.com/uber/heartpop-go/logging"
)

var (
	// ErrNotBootstrapped is returned by calls that need a started node.
	ErrNotBootstrapped = errors.New("heartpop is not bootstrapped")

	// ErrAlreadyBootstrapped is returned when Bootstrap is called twice.
	ErrAlreadyBootstrapped = errors.New("heartpop is already bootstrapped")

	// ErrDestroyed is returned by calls on a destroyed instance.
	ErrDestroyed = errors.New("heartpop was destroyed")
)

// A JoinRetryEvent is sent every time a joining node repeats its join request.
type JoinRetryEvent struct {
	Introducer string `json:"introducer"`
	Attempt    int    `json:"attempt"`
}

// Heartpop is a member of a gossip group.
type Heartpop struct {
	events.SyncEventEmitter

	app     string
	address string
	config  *configuration

	transport    gossip.Transport
	clock        clock.Clock
	logicalClock gossip.Clock
	audit        gossip.Audit

	node *gossip.Node

	logger  log.Logger
	log     log.Logger
	statter log.StatsReporter

	state struct {
		sync.RWMutex
		bootstrapped bool
		destroyed    bool
		introducer   string
		startTime    time.Time
		stop         chan struct{}
		done         chan struct{}
	}
}

// New returns a Heartpop for app configured with opts. The Identity and
// Transport options are required.
func New(app string, opts ...Option) (*Heartpop, error) {
	hp := &Heartpop{app: app}

	if err := applyOptions(hp, defaultOptions); err != nil {
		panic(err)
	}
	if err := applyOptions(hp, opts); err != nil {
		return nil, err
	}
	if errs := checkOptions(hp); len(errs) != 0 {
		return nil, errs[0]
	}

	identity := gossip.MustParseIdentity(hp.address)

	if hp.logicalClock == nil {
		hp.logicalClock = gossip.NewPeriodClock(hp.clock, hp.config.TickPeriod)
	}
	if hp.audit == nil {
		hp.audit = gossip.NewLoggerAudit(logging.Logger("audit"), hp.logicalClock)
	}

	node, err := gossip.NewNode(identity, hp.transport, &gossip.Options{
		FailTimeout:   hp.config.FailTimeout,
		RemoveTimeout: hp.config.RemoveTimeout,
		Fanout:        hp.config.Fanout,
		Clock:         hp.logicalClock,
		Audit:         hp.audit,
	})
	if err != nil {
		return nil, err
	}

	hp.node = node
	hp.log = logging.Logger("heartpop").WithField("local", identity.String())

	node.RegisterListener(hp)
	hp.RegisterListener(newStatter(identity.String(), hp.statter))
	hp.RegisterListener(&eventLogger{logger: logging.Logger("membership")})

	return hp, nil
}

// HandleEvent forwards the events of the gossip node to the listeners
// registered on hp.
func (hp *Heartpop) HandleEvent(event events.Event) {
	hp.EmitEvent(event)
}

// App returns the application name.
func (hp *Heartpop) App() string {
	return hp.app
}

// WhoAmI returns the address the node runs as.
func (hp *Heartpop) WhoAmI() string {
	return hp.address
}

// Node returns the underlying gossip node.
func (hp *Heartpop) Node() *gossip.Node {
	return hp.node
}

// Bootstrap starts the node. A node whose address is the introducer forms a
// new group; any other node sends a join request to the introducer. Unless
// stopped is set, a background loop then ticks the node every tick period
// and repeats the join request until it is answered. With stopped set the
// caller drives the node through Tick.
func (hp *Heartpop) Bootstrap(introducer string, stopped bool) error {
	target, err := gossip.ParseIdentity(introducer)
	if err != nil {
		return err
	}

	hp.state.Lock()
	defer hp.state.Unlock()

	if hp.state.destroyed {
		return ErrDestroyed
	}
	if hp.state.bootstrapped {
		return ErrAlreadyBootstrapped
	}

	if err := hp.node.Start(target); err != nil {
		return err
	}

	hp.state.bootstrapped = true
	hp.state.introducer = introducer
	hp.state.startTime = hp.clock.Now()

	hp.log.WithFields(log.Fields{
		"introducer": introducer,
		"stopped":    stopped,
	}).Info("bootstrap complete")

	if !stopped {
		hp.state.stop = make(chan struct{})
		hp.state.done = make(chan struct{})
		go hp.run(hp.clock.Ticker(hp.config.TickPeriod), hp.state.stop, hp.state.done)
	}

	return nil
}

func (hp *Heartpop) run(ticker *clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	lastJoin := hp.clock.Now()
	attempts := 0

	for {
		select {
		case <-stop:
			return

		case <-ticker.C:
			hp.node.Tick()

			if hp.node.Phase() != gossip.Joining {
				continue
			}

			now := hp.clock.Now()
			if now.Sub(lastJoin) < hp.config.JoinRetryInterval {
				continue
			}

			if err := hp.node.SendJoinRequest(); err != nil {
				continue
			}

			lastJoin = now
			attempts++

			hp.log.WithField("attempt", attempts).Warn("join reply not received, retrying")
			hp.EmitEvent(JoinRetryEvent{
				Introducer: hp.introducer(),
				Attempt:    attempts,
			})
		}
	}
}

func (hp *Heartpop) introducer() string {
	hp.state.RLock()
	defer hp.state.RUnlock()
	return hp.state.introducer
}

// Tick runs one protocol period right away.
func (hp *Heartpop) Tick() error {
	if err := hp.ready(); err != nil {
		return err
	}

	hp.node.Tick()
	return nil
}

func (hp *Heartpop) ready() error {
	hp.state.RLock()
	defer hp.state.RUnlock()

	if hp.state.destroyed {
		return ErrDestroyed
	}
	if !hp.state.bootstrapped {
		return ErrNotBootstrapped
	}
	return nil
}

// Joined reports whether the node is a member of a group.
func (hp *Heartpop) Joined() bool {
	return hp.node.Joined()
}

// Members returns the peers the node knows about, sorted by address.
func (hp *Heartpop) Members() []gossip.Member {
	return hp.node.Members()
}

// MemberStats returns the node's view of the group.
func (hp *Heartpop) MemberStats() gossip.MemberStats {
	return hp.node.MemberStats()
}

// ProtocolStats returns tick timings and message rates.
func (hp *Heartpop) ProtocolStats() gossip.ProtocolStats {
	return hp.node.ProtocolStats()
}

// Checksum returns the checksum of the node's view of the group.
func (hp *Heartpop) Checksum() uint32 {
	return hp.node.Checksum()
}

// Uptime returns how long ago the node was bootstrapped.
func (hp *Heartpop) Uptime() time.Duration {
	hp.state.RLock()
	defer hp.state.RUnlock()

	if !hp.state.bootstrapped {
		return 0
	}
	return hp.clock.Now().Sub(hp.state.startTime)
}

// Destroyed reports whether Destroy was called.
func (hp *Heartpop) Destroyed() bool {
	hp.state.RLock()
	defer hp.state.RUnlock()
	return hp.state.destroyed
}

// Destroy stops the protocol loop. The node stops gossiping and its peers
// remove it once its heartbeat ages out. The transport is left to its owner.
func (hp *Heartpop) Destroy() {
	hp.state.Lock()
	if hp.state.destroyed {
		hp.state.Unlock()
		return
	}
	hp.state.destroyed = true
	stop, done := hp.state.stop, hp.state.done
	hp.state.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	hp.log.Info("destroyed")
}
