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
	"math/rand"

	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/util"
)

// disseminator raises the local heartbeat and pushes the local view to a few
// random peers once per tick.
type disseminator struct {
	node   *Node
	fanout int
	rand   *rand.Rand
}

func newDisseminator(n *Node, fanout int, r *rand.Rand) *disseminator {
	return &disseminator{
		node:   n,
		fanout: fanout,
		rand:   r,
	}
}

// SelectTargets picks min(len(entries), fanout) distinct entries uniformly at
// random. It shuffles only the prefix it returns.
func (d *disseminator) SelectTargets(entries []Entry) []Entry {
	k := util.Min(len(entries), d.fanout)
	if k <= 0 {
		return nil
	}

	indexes := make([]int, len(entries))
	for i := range indexes {
		indexes[i] = i
	}

	targets := make([]Entry, k)
	for i := 0; i < k; i++ {
		j := i + d.rand.Intn(len(indexes)-i)
		indexes[i], indexes[j] = indexes[j], indexes[i]
		targets[i] = entries[indexes[i]]
	}
	return targets
}

// Disseminate runs one gossip round and returns the number of pings sent. The
// table is expected to be pruned already.
func (d *disseminator) Disseminate(now int64) int {
	d.node.heartbeat++

	snapshot := d.node.memberlist.Snapshot()
	targets := d.SelectTargets(snapshot)
	if len(targets) == 0 {
		return 0
	}

	members := make([]Entry, 0, len(snapshot)+1)
	members = append(members, d.node.selfEntry(now))
	members = append(members, snapshot...)

	buf := EncodeMessage(Message{
		Kind:    Ping,
		Source:  d.node.identity,
		Members: members,
	})

	sent := 0
	for _, target := range targets {
		// each send gets its own buffer, the transport takes ownership
		msg := make([]byte, len(buf))
		copy(msg, buf)

		if !d.node.send(target.Identity, msg) {
			continue
		}
		sent++

		d.node.emit(PingSendEvent{
			Local:      d.node.identity.String(),
			Remote:     target.Identity.String(),
			NumMembers: len(members),
		})
	}

	d.node.logger.WithFields(log.Fields{
		"heartbeat": d.node.heartbeat,
		"targets":   len(targets),
		"sent":      sent,
	}).Debug("gossip round complete")

	return sent
}
