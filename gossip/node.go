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
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/events"
	"github.com/uber/heartpop-go/logging"
	"github.com/uber/heartpop-go/util"
)

var (
	// ErrAlreadyStarted is returned by Start when the node has left the
	// Uninitialized phase.
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNotJoining is returned by SendJoinRequest when the node is not
	// waiting for a join reply.
	ErrNotJoining = errors.New("node is not joining")

	// ErrInvalidOptions is returned by NewNode for inconsistent options.
	ErrInvalidOptions = errors.New("invalid node options")
)

// A Transport moves opaque messages between nodes. Delivery is best effort:
// messages may be lost, duplicated or reordered.
type Transport interface {
	// Send hands msg, which the transport now owns, to the node at to.
	Send(from, to Identity, msg []byte) error

	// Receive returns and forgets everything buffered for local so far.
	Receive(local Identity) [][]byte
}

// Phase is the lifecycle stage of a node.
type Phase int

const (
	// Uninitialized nodes have not been started and ignore ticks.
	Uninitialized Phase = iota
	// Joining nodes have sent a join request and wait for the reply.
	Joining
	// InGroup nodes have joined and take part in gossip.
	InGroup
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Joining:
		return "joining"
	case InGroup:
		return "member"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Options is a configuration struct passed to the NewNode constructor. Zero
// values are replaced by defaults.
type Options struct {
	// FailTimeout is the age, in logical time units, at which an entry
	// becomes suspicious.
	FailTimeout int64

	// RemoveTimeout is the age at which an entry is considered dead and
	// removed. It must be larger than FailTimeout.
	RemoveTimeout int64

	// Fanout is the number of peers pinged per tick.
	Fanout int

	Clock Clock
	Audit Audit
	Rand  *rand.Rand
}

func defaultOptions() *Options {
	return &Options{
		FailTimeout:   5,
		RemoveTimeout: 20,
		Fanout:        2,
	}
}

func mergeDefaultOptions(opts *Options) *Options {
	def := defaultOptions()

	if opts == nil {
		opts = &Options{}
	}

	opts.FailTimeout = util.Select(opts.FailTimeout, def.FailTimeout)
	opts.RemoveTimeout = util.Select(opts.RemoveTimeout, def.RemoveTimeout)
	opts.Fanout = util.Select(opts.Fanout, def.Fanout)

	if opts.Clock == nil {
		opts.Clock = NewPeriodClock(clock.New(), time.Second)
	}

	if opts.Audit == nil {
		opts.Audit = NewLoggerAudit(logging.Logger("audit"), opts.Clock)
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return opts
}

func checkOptions(opts *Options) error {
	if opts.FailTimeout < 0 || opts.RemoveTimeout <= opts.FailTimeout {
		return errors.Wrapf(ErrInvalidOptions, "remove timeout %d must exceed fail timeout %d",
			opts.RemoveTimeout, opts.FailTimeout)
	}
	if opts.Fanout < 0 {
		return errors.Wrapf(ErrInvalidOptions, "negative fanout %d", opts.Fanout)
	}
	return nil
}

// A Node runs the gossip membership protocol for one identity. All protocol
// work happens inside Start, SendJoinRequest and Tick, which are serialized
// by the node's mutex together with every read accessor.
//
// Events are emitted synchronously while the mutex is held, so listeners
// must not call back into the node.
type Node struct {
	events.SyncEventEmitter

	identity  Identity
	transport Transport
	clock     Clock
	audit     Audit
	logger    log.Logger

	mu         sync.Mutex
	phase      Phase
	introducer Identity
	heartbeat  int64
	numMembers int

	memberlist   *memberlist
	detector     *failureDetector
	disseminator *disseminator

	tickTiming metrics.Histogram
	sendRate   metrics.Meter
	recvRate   metrics.Meter
}

// NewNode returns a node for identity in the Uninitialized phase.
func NewNode(identity Identity, transport Transport, opts *Options) (*Node, error) {
	if transport == nil {
		return nil, errors.Wrap(ErrInvalidOptions, "transport is required")
	}

	opts = mergeDefaultOptions(opts)
	if err := checkOptions(opts); err != nil {
		return nil, err
	}

	n := &Node{
		identity:  identity,
		transport: transport,
		clock:     opts.Clock,
		audit:     opts.Audit,
		logger:    logging.Logger("node").WithField("local", identity.String()),

		tickTiming: metrics.NewHistogram(metrics.NewUniformSample(100)),
		sendRate:   metrics.NewMeter(),
		recvRate:   metrics.NewMeter(),
	}

	n.memberlist = newMemberlist(n)
	n.detector = newFailureDetector(n, opts.FailTimeout, opts.RemoveTimeout)
	n.disseminator = newDisseminator(n, opts.Fanout, opts.Rand)

	return n, nil
}

// Start leaves the Uninitialized phase. A node whose identity is the
// introducer forms a new group on its own; any other node asks the
// introducer to be let in.
func (n *Node) Start(introducer Identity) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.phase != Uninitialized {
		return ErrAlreadyStarted
	}

	n.introducer = introducer

	if introducer == n.identity {
		n.phase = InGroup
		n.logger.Info("started group as introducer")
		return nil
	}

	n.phase = Joining
	n.sendJoinRequest()

	n.logger.WithField("introducer", introducer.String()).Info("sent join request")
	return nil
}

// SendJoinRequest asks the introducer again. Retrying is left to the caller.
func (n *Node) SendJoinRequest() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.phase != Joining {
		return ErrNotJoining
	}

	n.sendJoinRequest()
	return nil
}

func (n *Node) sendJoinRequest() {
	n.send(n.introducer, EncodeMessage(Message{Kind: JoinRequest, Source: n.identity}))
}

// Tick runs one protocol period: every message buffered by the transport is
// handled, then a member prunes dead peers and gossips.
func (n *Node) Tick() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.phase == Uninitialized {
		return
	}

	start := time.Now()
	now := n.clock.Now()

	inbound := n.transport.Receive(n.identity)
	for _, buf := range inbound {
		n.handle(buf, now)
	}

	if n.phase == InGroup {
		n.detector.Prune(now)
		n.numMembers = n.memberlist.NumMembers()
		n.disseminator.Disseminate(now)
	}

	duration := time.Since(start)
	n.tickTiming.Update(int64(duration))

	n.emit(TickCompleteEvent{
		Local:      n.identity.String(),
		Handled:    len(inbound),
		NumMembers: n.numMembers,
		Heartbeat:  n.heartbeat,
		Checksum:   n.memberlist.Checksum(),
		Duration:   duration,
	})
}

func (n *Node) send(to Identity, msg []byte) bool {
	if err := n.transport.Send(n.identity, to, msg); err != nil {
		n.logger.WithFields(log.Fields{
			"remote": to.String(),
			"error":  err,
		}).Warn("failed to send message")
		return false
	}

	n.sendRate.Mark(1)
	return true
}

func (n *Node) selfEntry(now int64) Entry {
	return Entry{Identity: n.identity, Heartbeat: n.heartbeat, Timestamp: now}
}

func (n *Node) emit(event events.Event) {
	n.EmitEvent(event)
}

// Identity returns the identity the node runs as.
func (n *Node) Identity() Identity {
	return n.identity
}

// Phase returns the current lifecycle phase.
func (n *Node) Phase() Phase {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.phase
}

// Joined reports whether the node is a member of a group.
func (n *Node) Joined() bool {
	return n.Phase() == InGroup
}

// Heartbeat returns the node's own heartbeat counter.
func (n *Node) Heartbeat() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.heartbeat
}

// NumMembers returns the number of peers known after the last handled
// message or pruning pass.
func (n *Node) NumMembers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.numMembers
}

// Entries returns a copy of the membership table in table order.
func (n *Node) Entries() []Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.memberlist.Snapshot()
}

// Members returns the known peers sorted by address, classified by the age
// of their last heartbeat.
func (n *Node) Members() []Member {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.members()
}

func (n *Node) members() []Member {
	now := n.clock.Now()

	list := make(members, 0, n.memberlist.NumMembers())
	for _, e := range n.memberlist.Snapshot() {
		list = append(list, Member{
			Address:   e.Identity.String(),
			Heartbeat: e.Heartbeat,
			Timestamp: e.Timestamp,
			Status:    n.detector.Status(e, now),
		})
	}
	sort.Sort(list)
	return list
}

// Checksum returns the checksum of the node's view of the group.
func (n *Node) Checksum() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.memberlist.Checksum()
}
