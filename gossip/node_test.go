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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestNewNodeDefaults(t *testing.T) {
	n, err := NewNode(testIdentity(1), newLoopback(), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(5), n.detector.failTimeout)
	assert.Equal(t, int64(20), n.detector.removeTimeout)
	assert.Equal(t, 2, n.disseminator.fanout)
	assert.Equal(t, Uninitialized, n.Phase())
}

func TestNewNodeInvalidOptions(t *testing.T) {
	_, err := NewNode(testIdentity(1), nil, nil)
	assert.Equal(t, ErrInvalidOptions, errors.Cause(err))

	_, err = NewNode(testIdentity(1), newLoopback(), &Options{FailTimeout: 20, RemoveTimeout: 20})
	assert.Equal(t, ErrInvalidOptions, errors.Cause(err))

	_, err = NewNode(testIdentity(1), newLoopback(), &Options{FailTimeout: 30})
	assert.Equal(t, ErrInvalidOptions, errors.Cause(err), "remove timeout defaults to 20")

	_, err = NewNode(testIdentity(1), newLoopback(), &Options{Fanout: -1})
	assert.Equal(t, ErrInvalidOptions, errors.Cause(err))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "joining", Joining.String())
	assert.Equal(t, "member", InGroup.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

type NodeTestSuite struct {
	suite.Suite
	clock    *ManualClock
	net      *loopback
	node     *Node
	recorder *eventRecorder
}

func (s *NodeTestSuite) SetupTest() {
	s.clock = NewManualClock(0)
	s.net = newLoopback()
	s.node = newTestNode(1, s.net, s.clock)

	s.recorder = &eventRecorder{}
	s.node.RegisterListener(s.recorder)
}

func (s *NodeTestSuite) startAsIntroducer() {
	s.Require().NoError(s.node.Start(testIdentity(1)))
}

func (s *NodeTestSuite) TestStartAsIntroducer() {
	s.startAsIntroducer()

	s.Equal(InGroup, s.node.Phase())
	s.True(s.node.Joined())
	s.Empty(s.node.Entries())
	s.Equal(0, s.net.pending(testIdentity(1)))
}

func (s *NodeTestSuite) TestStartSendsJoinRequest() {
	s.Require().NoError(s.node.Start(testIdentity(9)))

	s.Equal(Joining, s.node.Phase())
	s.False(s.node.Joined())

	msgs := s.net.Receive(testIdentity(9))
	s.Require().Len(msgs, 1)

	msg, err := DecodeMessage(msgs[0])
	s.Require().NoError(err)
	s.Equal(Message{Kind: JoinRequest, Source: testIdentity(1)}, msg)
}

func (s *NodeTestSuite) TestStartTwice() {
	s.startAsIntroducer()
	s.Equal(ErrAlreadyStarted, s.node.Start(testIdentity(1)))
}

func (s *NodeTestSuite) TestSendJoinRequest() {
	s.Equal(ErrNotJoining, s.node.SendJoinRequest())

	s.Require().NoError(s.node.Start(testIdentity(9)))
	s.NoError(s.node.SendJoinRequest())
	s.Equal(2, s.net.pending(testIdentity(9)))
}

func (s *NodeTestSuite) TestTickBeforeStart() {
	transport := &MockTransport{}
	node := newTestNode(1, transport, s.clock)

	node.Tick()

	transport.AssertNotCalled(s.T(), "Receive", mock.Anything)
	s.Equal(int64(0), node.Heartbeat())
}

func (s *NodeTestSuite) TestTickIncrementsHeartbeatOnce() {
	s.startAsIntroducer()

	s.node.Tick()
	s.Equal(int64(1), s.node.Heartbeat())
	s.node.Tick()
	s.Equal(int64(2), s.node.Heartbeat())
}

func (s *NodeTestSuite) TestJoiningNodeDoesNotGossip() {
	s.Require().NoError(s.node.Start(testIdentity(9)))
	s.net.Receive(testIdentity(9))

	s.node.Tick()
	s.Equal(int64(0), s.node.Heartbeat())
	s.Equal(0, s.net.pending(testIdentity(9)))
}

func (s *NodeTestSuite) TestJoinRequestIgnoredWhileJoining() {
	s.Require().NoError(s.node.Start(testIdentity(9)))
	s.net.inject(testIdentity(1), Message{Kind: JoinRequest, Source: testIdentity(2)})

	s.node.Tick()

	s.Empty(s.node.Entries())
	s.Equal(0, s.net.pending(testIdentity(2)))
	s.Require().Len(s.recorder.dropped(), 1)
	s.Equal("not a member", s.recorder.dropped()[0].Reason)
}

func (s *NodeTestSuite) TestJoinReplyIgnoredWhenMember() {
	s.startAsIntroducer()
	s.net.inject(testIdentity(1), Message{
		Kind:    JoinReply,
		Source:  testIdentity(2),
		Members: []Entry{{Identity: testIdentity(2), Timestamp: s.clock.Now()}},
	})

	s.node.Tick()

	s.Empty(s.node.Entries())
	s.Len(s.recorder.dropped(), 1)
}

func (s *NodeTestSuite) TestMalformedMessageDropped() {
	s.startAsIntroducer()

	s.net.Send(testIdentity(2), testIdentity(1), []byte{byte(Ping), 0, 0})
	s.net.Send(testIdentity(2), testIdentity(1), []byte{7, 0, 0, 0, 2, 0, 0})
	s.net.inject(testIdentity(1), Message{
		Kind:    Ping,
		Source:  testIdentity(2),
		Members: []Entry{{Identity: testIdentity(2), Heartbeat: 1, Timestamp: s.clock.Now()}},
	})

	s.node.Tick()

	dropped := s.recorder.dropped()
	s.Require().Len(dropped, 2)
	s.Equal(ErrMalformedMessage.Error(), dropped[0].Reason)
	s.Equal(ErrUnknownMessageKind.Error(), dropped[1].Reason)

	s.Len(s.node.Entries(), 1, "valid messages in the same tick are still handled")
}

func (s *NodeTestSuite) TestJoinRequestAnswered() {
	s.startAsIntroducer()
	s.net.inject(testIdentity(1), Message{Kind: JoinRequest, Source: testIdentity(2)})

	s.node.Tick()

	entries := s.node.Entries()
	s.Require().Len(entries, 1)
	s.Equal(Entry{Identity: testIdentity(2), Heartbeat: 0, Timestamp: 0}, entries[0])

	msgs := s.net.Receive(testIdentity(2))
	s.Require().Len(msgs, 2, "join reply followed by the ping of the same tick")

	reply, err := DecodeMessage(msgs[0])
	s.Require().NoError(err)
	s.Equal(JoinReply, reply.Kind)
	s.Equal([]Entry{
		{Identity: testIdentity(1), Heartbeat: 0, Timestamp: 0},
		{Identity: testIdentity(2), Heartbeat: 0, Timestamp: 0},
	}, reply.Members, "self entry followed by the full table, requester included")
	s.Equal(headerSize+countSize+(len(entries)+1)*recordSize, len(msgs[0]))

	ping, err := DecodeMessage(msgs[1])
	s.Require().NoError(err)
	s.Equal(Ping, ping.Kind)
	s.Equal(int64(1), ping.Members[0].Heartbeat)
}

func (s *NodeTestSuite) TestPingSkipsSelf() {
	s.startAsIntroducer()
	s.net.inject(testIdentity(1), Message{
		Kind:   Ping,
		Source: testIdentity(2),
		Members: []Entry{
			{Identity: testIdentity(2), Heartbeat: 3, Timestamp: 0},
			{Identity: testIdentity(1), Heartbeat: 99, Timestamp: 0},
		},
	})

	s.node.Tick()

	for _, e := range s.node.Entries() {
		s.NotEqual(testIdentity(1), e.Identity)
	}
	s.Equal(int64(1), s.node.Heartbeat(), "gossip about self never touches the own heartbeat")
}

func (s *NodeTestSuite) TestRepeatedPingIsIdempotent() {
	s.startAsIntroducer()
	ping := Message{
		Kind:   Ping,
		Source: testIdentity(2),
		Members: []Entry{
			{Identity: testIdentity(2), Heartbeat: 3, Timestamp: 0},
			{Identity: testIdentity(3), Heartbeat: 8, Timestamp: 0},
		},
	}

	s.net.inject(testIdentity(1), ping)
	s.node.Tick()
	once := s.node.Entries()
	checksum := s.node.Checksum()

	s.net.inject(testIdentity(1), ping)
	s.net.inject(testIdentity(1), ping)
	s.node.Tick()

	s.Equal(once, s.node.Entries())
	s.Equal(checksum, s.node.Checksum())
}

func (s *NodeTestSuite) TestNumMembersFollowsTable() {
	s.startAsIntroducer()
	s.net.inject(testIdentity(1), Message{Kind: JoinRequest, Source: testIdentity(2)})
	s.net.inject(testIdentity(1), Message{Kind: JoinRequest, Source: testIdentity(3)})

	s.node.Tick()
	s.Equal(2, s.node.NumMembers())
}

func (s *NodeTestSuite) TestDeadPeerIsNotResurrectedByStalePing() {
	s.startAsIntroducer()
	s.net.inject(testIdentity(1), Message{
		Kind:    Ping,
		Source:  testIdentity(2),
		Members: []Entry{{Identity: testIdentity(2), Heartbeat: 4, Timestamp: 0}},
	})
	s.node.Tick()
	s.Len(s.node.Entries(), 1)

	s.clock.Advance(20)
	s.node.Tick()
	s.Empty(s.node.Entries())

	// a third node still carries peer 2 with the heartbeat it died with
	for i := 0; i < 5; i++ {
		s.clock.Advance(1)
		s.net.inject(testIdentity(1), Message{
			Kind:   Ping,
			Source: testIdentity(3),
			Members: []Entry{
				{Identity: testIdentity(3), Heartbeat: int64(i + 1), Timestamp: s.clock.Now()},
				{Identity: testIdentity(2), Heartbeat: 4, Timestamp: s.clock.Now()},
			},
		})
		s.node.Tick()

		for _, e := range s.node.Entries() {
			s.NotEqual(testIdentity(2), e.Identity, "dead peer came back in tick %d", i)
		}
	}
}

func (s *NodeTestSuite) TestMembers() {
	s.startAsIntroducer()
	s.net.inject(testIdentity(1), Message{
		Kind:   Ping,
		Source: testIdentity(3),
		Members: []Entry{
			{Identity: testIdentity(3), Heartbeat: 1, Timestamp: 0},
			{Identity: testIdentity(2), Heartbeat: 1, Timestamp: 0},
		},
	})
	s.node.Tick()
	s.clock.Advance(6)

	members := s.node.Members()
	s.Equal([]Member{
		{Address: "2:0", Heartbeat: 1, Timestamp: 0, Status: Suspect},
		{Address: "3:0", Heartbeat: 1, Timestamp: 0, Status: Suspect},
	}, members)

	stats := s.node.MemberStats()
	s.Equal("1:0", stats.Local)
	s.Equal("member", stats.Phase)
	s.Equal(s.node.Checksum(), stats.Checksum)
	s.Equal(members, stats.Members)
}

func (s *NodeTestSuite) TestProtocolStats() {
	s.startAsIntroducer()
	s.net.inject(testIdentity(1), Message{Kind: JoinRequest, Source: testIdentity(2)})

	s.node.Tick()
	s.node.Tick()

	stats := s.node.ProtocolStats()
	s.Equal(int64(2), stats.Timing.Count)
	s.Equal(int64(1), stats.Received)
	s.Equal(int64(3), stats.Sent, "one join reply and a ping per tick")
}

func TestNodeTestSuite(t *testing.T) {
	suite.Run(t, new(NodeTestSuite))
}
