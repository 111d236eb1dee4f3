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

import "time"

// A MemberAddedEvent is sent when a peer enters the local membership table.
type MemberAddedEvent struct {
	Local     string `json:"local"`
	Member    string `json:"member"`
	Heartbeat int64  `json:"heartbeat"`
}

// A MemberRemovedEvent is sent when a dead peer is pruned from the local
// membership table.
type MemberRemovedEvent struct {
	Local     string `json:"local"`
	Member    string `json:"member"`
	Heartbeat int64  `json:"heartbeat"`
	Age       int64  `json:"age"`
}

// RejectReason tells why an entry received via gossip was not admitted.
type RejectReason string

const (
	// RejectedStale means the entry was already too old when it arrived.
	RejectedStale RejectReason = "stale"

	// RejectedBuried means the entry belongs to a peer that was recently
	// removed and its heartbeat did not advance past the one it died with.
	RejectedBuried RejectReason = "buried"
)

// A MergeRejectedEvent is sent when an unknown entry carried by a ping or join
// reply is not admitted.
type MergeRejectedEvent struct {
	Local     string       `json:"local"`
	Member    string       `json:"member"`
	Heartbeat int64        `json:"heartbeat"`
	Reason    RejectReason `json:"reason"`
}

// A JoinRequestReceiveEvent is sent when a member handles a join request.
type JoinRequestReceiveEvent struct {
	Local  string `json:"local"`
	Source string `json:"source"`
}

// A JoinCompleteEvent is sent when a joining node accepts a join reply and
// becomes a member.
type JoinCompleteEvent struct {
	Local     string `json:"local"`
	Source    string `json:"source"`
	NumJoined int    `json:"numJoined"`
}

// A PingSendEvent is sent for every ping handed to the transport.
type PingSendEvent struct {
	Local      string `json:"local"`
	Remote     string `json:"remote"`
	NumMembers int    `json:"numMembers"`
}

// A PingReceiveEvent is sent when a ping has been merged into the table.
type PingReceiveEvent struct {
	Local      string `json:"local"`
	Source     string `json:"source"`
	NumMembers int    `json:"numMembers"`
}

// A MessageDroppedEvent is sent when an inbound message is discarded, either
// because it could not be decoded or because the node is not in a phase that
// handles its kind.
type MessageDroppedEvent struct {
	Local  string `json:"local"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// A TickCompleteEvent is sent at the end of every Tick.
type TickCompleteEvent struct {
	Local      string        `json:"local"`
	Handled    int           `json:"handled"`
	NumMembers int           `json:"numMembers"`
	Heartbeat  int64         `json:"heartbeat"`
	Checksum   uint32        `json:"checksum"`
	Duration   time.Duration `json:"duration"`
}
