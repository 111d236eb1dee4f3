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
	"bytes"
	"sort"

	"github.com/dgryski/go-farm"
)

// A memberlist is the membership table of one node. It is not safe for
// concurrent use; the owning Node serializes every access.
type memberlist struct {
	node     *Node
	entries  []Entry
	checksum uint32
}

func newMemberlist(n *Node) *memberlist {
	m := &memberlist{node: n}
	m.computeChecksum()
	return m
}

// indexOf returns the position of id in the table, or -1.
func (m *memberlist) indexOf(id Identity) int {
	for i := range m.entries {
		if m.entries[i].Identity == id {
			return i
		}
	}
	return -1
}

// Member returns the entry for id.
func (m *memberlist) Member(id Identity) (Entry, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return m.entries[i], true
}

func (m *memberlist) NumMembers() int {
	return len(m.entries)
}

// Insert adds entry unless its identity is already known or is the local
// node's own identity.
func (m *memberlist) Insert(entry Entry) bool {
	if entry.Identity == m.node.identity || m.indexOf(entry.Identity) >= 0 {
		return false
	}

	m.entries = append(m.entries, entry)
	m.computeChecksum()

	m.node.audit.LogAdd(m.node.identity, entry.Identity)
	m.node.emit(MemberAddedEvent{
		Local:     m.node.identity.String(),
		Member:    entry.Identity.String(),
		Heartbeat: entry.Heartbeat,
	})

	return true
}

// UpdateHeartbeat raises the heartbeat of id to heartbeat and stamps it with
// now. Equal or lower heartbeats are ignored.
func (m *memberlist) UpdateHeartbeat(id Identity, heartbeat, now int64) bool {
	i := m.indexOf(id)
	if i < 0 || heartbeat <= m.entries[i].Heartbeat {
		return false
	}

	m.entries[i].Heartbeat = heartbeat
	m.entries[i].Timestamp = now
	return true
}

// Remove deletes the entry for id and returns it.
func (m *memberlist) Remove(id Identity, now int64) (Entry, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}

	entry := m.entries[i]
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	m.computeChecksum()

	m.node.audit.LogRemove(m.node.identity, id)
	m.node.emit(MemberRemovedEvent{
		Local:     m.node.identity.String(),
		Member:    id.String(),
		Heartbeat: entry.Heartbeat,
		Age:       now - entry.Timestamp,
	})

	return entry, true
}

// Snapshot returns a copy of the table in table order.
func (m *memberlist) Snapshot() []Entry {
	snapshot := make([]Entry, len(m.entries))
	copy(snapshot, m.entries)
	return snapshot
}

// Checksum identifies the group as seen by this node: the local identity plus
// every known peer. Nodes with converged views report the same checksum
// regardless of heartbeats.
func (m *memberlist) Checksum() uint32 {
	return m.checksum
}

func (m *memberlist) computeChecksum() {
	m.checksum = farm.Fingerprint32([]byte(m.genChecksumString()))
}

func (m *memberlist) genChecksumString() string {
	addresses := make(sort.StringSlice, 0, len(m.entries)+1)
	addresses = append(addresses, m.node.identity.String())
	for _, e := range m.entries {
		addresses = append(addresses, e.Identity.String())
	}
	addresses.Sort()

	var buffer bytes.Buffer
	for _, address := range addresses {
		buffer.WriteString(address)
		buffer.WriteString(";")
	}
	return buffer.String()
}
