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
	"errors"
	"math/rand"
	"sync"

	"github.com/uber/heartpop-go/events"
)

// loopback delivers every message to an in-memory inbox. Identities added to
// crashed neither send nor receive.
type loopback struct {
	sync.Mutex
	inboxes map[Identity][][]byte
	crashed map[Identity]bool
}

func newLoopback() *loopback {
	return &loopback{
		inboxes: make(map[Identity][][]byte),
		crashed: make(map[Identity]bool),
	}
}

func (l *loopback) Send(from, to Identity, msg []byte) error {
	l.Lock()
	defer l.Unlock()

	if l.crashed[from] || l.crashed[to] {
		return nil
	}
	l.inboxes[to] = append(l.inboxes[to], msg)
	return nil
}

func (l *loopback) Receive(local Identity) [][]byte {
	l.Lock()
	defer l.Unlock()

	msgs := l.inboxes[local]
	delete(l.inboxes, local)
	return msgs
}

// inject queues msg for to as if some peer had sent it.
func (l *loopback) inject(to Identity, msg Message) {
	l.Lock()
	defer l.Unlock()
	l.inboxes[to] = append(l.inboxes[to], EncodeMessage(msg))
}

func (l *loopback) pending(to Identity) int {
	l.Lock()
	defer l.Unlock()
	return len(l.inboxes[to])
}

func (l *loopback) isCrashed(id Identity) bool {
	l.Lock()
	defer l.Unlock()
	return l.crashed[id]
}

func (l *loopback) crash(id Identity) {
	l.Lock()
	defer l.Unlock()
	l.crashed[id] = true
	delete(l.inboxes, id)
}

// nopAudit discards audit records.
type nopAudit struct{}

func (nopAudit) LogAdd(self, peer Identity)    {}
func (nopAudit) LogRemove(self, peer Identity) {}

func testIdentity(id int32) Identity {
	return Identity{ID: id, Port: 0}
}

func testOptions(c Clock, seed int64) *Options {
	return &Options{
		Clock: c,
		Audit: nopAudit{},
		Rand:  rand.New(rand.NewSource(seed)),
	}
}

func newTestNode(id int32, t Transport, c Clock) *Node {
	n, err := NewNode(testIdentity(id), t, testOptions(c, int64(id)))
	if err != nil {
		panic(err)
	}
	return n
}

// testGroup is a set of nodes on one loopback network ticked in lock-step.
type testGroup struct {
	net   *loopback
	clock *ManualClock
	nodes []*Node
}

// newTestGroup starts n nodes with ids 1..n, node 1 being the introducer.
func newTestGroup(n int) *testGroup {
	g := &testGroup{
		net:   newLoopback(),
		clock: NewManualClock(0),
	}

	for i := 1; i <= n; i++ {
		g.nodes = append(g.nodes, newTestNode(int32(i), g.net, g.clock))
	}
	for _, node := range g.nodes {
		if err := node.Start(testIdentity(1)); err != nil {
			panic(err)
		}
	}
	return g
}

// tick advances time by one unit and ticks every node that has not crashed.
func (g *testGroup) tick(rounds int) {
	for r := 0; r < rounds; r++ {
		g.clock.Advance(1)
		for _, node := range g.nodes {
			if !g.net.isCrashed(node.Identity()) {
				node.Tick()
			}
		}
	}
}

func (g *testGroup) alive() []*Node {
	var nodes []*Node
	for _, node := range g.nodes {
		if !g.net.isCrashed(node.Identity()) {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// eventRecorder collects events emitted by a node.
type eventRecorder struct {
	sync.Mutex
	events []events.Event
}

func (r *eventRecorder) HandleEvent(e events.Event) {
	r.Lock()
	r.events = append(r.events, e)
	r.Unlock()
}

func (r *eventRecorder) removed() []MemberRemovedEvent {
	r.Lock()
	defer r.Unlock()

	var out []MemberRemovedEvent
	for _, e := range r.events {
		if ev, ok := e.(MemberRemovedEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

func (r *eventRecorder) dropped() []MessageDroppedEvent {
	r.Lock()
	defer r.Unlock()

	var out []MessageDroppedEvent
	for _, e := range r.events {
		if ev, ok := e.(MessageDroppedEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

func (r *eventRecorder) rejected() []MergeRejectedEvent {
	r.Lock()
	defer r.Unlock()

	var out []MergeRejectedEvent
	for _, e := range r.events {
		if ev, ok := e.(MergeRejectedEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

var assertErr = errors.New("send failed")
