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
	log "github.com/uber-common/bark"
)

// a grave remembers a peer removed as dead.
type grave struct {
	heartbeat int64
	buriedAt  int64
}

// failureDetector ages the entries of a memberlist and decides which gossiped
// entries may be merged into it.
type failureDetector struct {
	node          *Node
	failTimeout   int64
	removeTimeout int64

	graveyard map[Identity]grave
}

func newFailureDetector(n *Node, failTimeout, removeTimeout int64) *failureDetector {
	return &failureDetector{
		node:          n,
		failTimeout:   failTimeout,
		removeTimeout: removeTimeout,
		graveyard:     make(map[Identity]grave),
	}
}

// Status classifies e by how long ago its heartbeat last went up. The
// timestamp may come off the wire, so it is compared against thresholds
// derived from now instead of being subtracted from it.
func (d *failureDetector) Status(e Entry, now int64) string {
	switch {
	case e.Timestamp <= now-d.removeTimeout:
		return Dead
	case e.Timestamp <= now-d.failTimeout:
		return Suspect
	default:
		return Alive
	}
}

// Admit inserts an entry for a peer the local table does not know yet. The
// entry is rejected when it was already suspicious by the time it got here,
// or when the peer was recently removed and has not shown a newer heartbeat.
// Admitted entries are stamped with the local receipt time.
func (d *failureDetector) Admit(e Entry, now int64) bool {
	if e.Identity == d.node.identity {
		return false
	}

	if g, ok := d.graveyard[e.Identity]; ok {
		if e.Heartbeat <= g.heartbeat {
			d.reject(e, RejectedBuried)
			return false
		}
	}

	if d.Status(e, now) != Alive {
		d.reject(e, RejectedStale)
		return false
	}

	if !d.node.memberlist.Insert(Entry{Identity: e.Identity, Heartbeat: e.Heartbeat, Timestamp: now}) {
		return false
	}

	delete(d.graveyard, e.Identity)
	return true
}

// Merge applies one gossiped entry to the table.
func (d *failureDetector) Merge(e Entry, now int64) {
	local, ok := d.node.memberlist.Member(e.Identity)
	if !ok {
		d.Admit(e, now)
		return
	}

	if d.Status(local, now) == Dead {
		d.remove(local, now)
		return
	}

	d.node.memberlist.UpdateHeartbeat(e.Identity, e.Heartbeat, now)
}

// Forget clears any memory of a removed peer so that it can be inserted
// again directly, as happens when it sends a join request.
func (d *failureDetector) Forget(id Identity) {
	delete(d.graveyard, id)
}

// Prune removes every dead entry and returns how many were removed. Graves
// older than the removal timeout are cleared as well.
func (d *failureDetector) Prune(now int64) int {
	for id, g := range d.graveyard {
		if now-g.buriedAt >= d.removeTimeout {
			delete(d.graveyard, id)
		}
	}

	removed := 0
	for _, e := range d.node.memberlist.Snapshot() {
		if d.Status(e, now) == Dead {
			d.remove(e, now)
			removed++
		}
	}
	return removed
}

func (d *failureDetector) remove(e Entry, now int64) {
	if _, ok := d.node.memberlist.Remove(e.Identity, now); !ok {
		return
	}

	d.graveyard[e.Identity] = grave{heartbeat: e.Heartbeat, buriedAt: now}

	d.node.logger.WithFields(log.Fields{
		"member":    e.Identity.String(),
		"heartbeat": e.Heartbeat,
		"age":       now - e.Timestamp,
	}).Info("removed dead member")
}

func (d *failureDetector) reject(e Entry, reason RejectReason) {
	d.node.logger.WithFields(log.Fields{
		"member":    e.Identity.String(),
		"heartbeat": e.Heartbeat,
		"reason":    string(reason),
	}).Debug("rejected gossiped member")

	d.node.emit(MergeRejectedEvent{
		Local:     d.node.identity.String(),
		Member:    e.Identity.String(),
		Heartbeat: e.Heartbeat,
		Reason:    reason,
	})
}
