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

package transport

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/gossip"
	"github.com/uber/heartpop-go/logging"
)

// EmulNetOptions configures an emulated network.
type EmulNetOptions struct {
	// DropProbability is the chance, between 0 and 1, that a message is
	// lost on the way.
	DropProbability float64

	// InboxCapacity bounds the number of messages buffered per node. Zero
	// means unbounded.
	InboxCapacity int

	Rand *rand.Rand
}

// Counters counts the traffic of one node on an emulated network.
type Counters struct {
	Address  string `json:"address"`
	Sent     int64  `json:"sent"`
	Received int64  `json:"received"`
	Dropped  int64  `json:"dropped"`
}

type endpoint struct {
	inbox    *Inbox
	counters Counters
}

// EmulNet is an in-process network connecting nodes that live in the same
// program. Messages sent to a node are buffered in its inbox until it calls
// Receive.
type EmulNet struct {
	mu        sync.Mutex
	opts      EmulNetOptions
	endpoints map[gossip.Identity]*endpoint
	closed    bool
	logger    log.Logger
}

// NewEmulNet returns an empty network.
func NewEmulNet(opts *EmulNetOptions) *EmulNet {
	if opts == nil {
		opts = &EmulNetOptions{}
	}

	o := *opts
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &EmulNet{
		opts:      o,
		endpoints: make(map[gossip.Identity]*endpoint),
		logger:    logging.Logger("emulnet"),
	}
}

// Attach connects id to the network. Attaching an identity twice keeps its
// inbox and counters.
func (n *EmulNet) Attach(id gossip.Identity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.endpoints[id]; ok {
		return
	}
	n.endpoints[id] = &endpoint{
		inbox:    NewInbox(n.opts.InboxCapacity),
		counters: Counters{Address: id.String()},
	}
}

// Detach disconnects id and discards whatever it had not received yet.
// Messages sent to it afterwards are lost, as if the node had crashed.
func (n *EmulNet) Detach(id gossip.Identity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ep, ok := n.endpoints[id]; ok {
		discarded := ep.inbox.Drain()
		n.logger.WithFields(log.Fields{
			"member":    id.String(),
			"discarded": len(discarded),
		}).Debug("detached node")
	}
	delete(n.endpoints, id)
}

// Send implements gossip.Transport. Messages to identities that are not
// attached and messages picked by the drop probability are lost silently.
func (n *EmulNet) Send(from, to gossip.Identity, msg []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}

	if src, ok := n.endpoints[from]; ok {
		src.counters.Sent++
	}

	dst, ok := n.endpoints[to]
	if !ok {
		return nil
	}

	if n.opts.DropProbability > 0 && n.opts.Rand.Float64() < n.opts.DropProbability {
		dst.counters.Dropped++
		return nil
	}

	if !dst.inbox.Push(msg) {
		dst.counters.Dropped++
		return ErrInboxFull
	}
	return nil
}

// Receive implements gossip.Transport.
func (n *EmulNet) Receive(local gossip.Identity) [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()

	ep, ok := n.endpoints[local]
	if !ok {
		return nil
	}

	msgs := ep.inbox.Drain()
	ep.counters.Received += int64(len(msgs))
	return msgs
}

// Counters returns the traffic counters of every attached node sorted by
// address.
func (n *EmulNet) Counters() []Counters {
	n.mu.Lock()
	defer n.mu.Unlock()

	counters := make([]Counters, 0, len(n.endpoints))
	for _, ep := range n.endpoints {
		counters = append(counters, ep.counters)
	}
	sort.Slice(counters, func(i, j int) bool { return counters[i].Address < counters[j].Address })
	return counters
}

// Close shuts the network down. Buffered messages are discarded and further
// sends fail with ErrClosed.
func (n *EmulNet) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	for _, ep := range n.endpoints {
		ep.inbox.Drain()
	}
}
