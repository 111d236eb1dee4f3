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
	"github.com/pkg/errors"
	log "github.com/uber-common/bark"
)

// handle decodes and dispatches one inbound message. Nothing a peer sends can
// make handle fail; bad messages are logged and dropped.
func (n *Node) handle(buf []byte, now int64) {
	n.recvRate.Mark(1)
	defer func() {
		n.numMembers = n.memberlist.NumMembers()
	}()

	msg, err := DecodeMessage(buf)
	if err != nil {
		kind := "unknown"
		if len(buf) > 0 {
			kind = MessageKind(buf[0]).String()
		}

		n.logger.WithFields(log.Fields{
			"kind":  kind,
			"size":  len(buf),
			"error": err,
		}).Error("dropped undecodable message")

		n.dropped(kind, errors.Cause(err).Error())
		return
	}

	switch msg.Kind {
	case JoinRequest:
		n.handleJoinRequest(msg, now)
	case JoinReply:
		n.handleJoinReply(msg, now)
	case Ping:
		n.handlePing(msg, now)
	}
}

func (n *Node) handleJoinRequest(msg Message, now int64) {
	if n.phase != InGroup {
		n.logger.WithField("source", msg.Source.String()).Debug("ignored join request while not a member")
		n.dropped(msg.Kind.String(), "not a member")
		return
	}

	n.emit(JoinRequestReceiveEvent{
		Local:  n.identity.String(),
		Source: msg.Source.String(),
	})

	// a join request is first hand evidence, it overrides earlier removals
	n.detector.Forget(msg.Source)
	n.memberlist.Insert(Entry{Identity: msg.Source, Heartbeat: 0, Timestamp: now})

	members := append([]Entry{n.selfEntry(now)}, n.memberlist.Snapshot()...)

	n.send(msg.Source, EncodeMessage(Message{
		Kind:    JoinReply,
		Source:  n.identity,
		Members: members,
	}))

	n.logger.WithFields(log.Fields{
		"source":  msg.Source.String(),
		"members": len(members),
	}).Info("answered join request")
}

func (n *Node) handleJoinReply(msg Message, now int64) {
	if n.phase != Joining {
		n.logger.WithField("source", msg.Source.String()).Debug("ignored join reply while not joining")
		n.dropped(msg.Kind.String(), "not joining")
		return
	}

	joined := 0
	for _, e := range msg.Members {
		if n.detector.Admit(e, now) {
			joined++
		}
	}

	n.phase = InGroup

	n.logger.WithFields(log.Fields{
		"source": msg.Source.String(),
		"joined": joined,
	}).Info("joined group")

	n.emit(JoinCompleteEvent{
		Local:     n.identity.String(),
		Source:    msg.Source.String(),
		NumJoined: joined,
	})
}

func (n *Node) handlePing(msg Message, now int64) {
	for _, e := range msg.Members {
		if e.Identity == n.identity {
			continue
		}
		n.detector.Merge(e, now)
	}

	n.emit(PingReceiveEvent{
		Local:      n.identity.String(),
		Source:     msg.Source.String(),
		NumMembers: len(msg.Members),
	})
}

func (n *Node) dropped(kind, reason string) {
	n.emit(MessageDroppedEvent{
		Local:  n.identity.String(),
		Kind:   kind,
		Reason: reason,
	})
}
