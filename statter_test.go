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

package heartpop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/uber/heartpop-go/gossip"
	"github.com/uber/heartpop-go/test/mocks"
)

type StatterTestSuite struct {
	suite.Suite
	reporter *mocks.StatsReporter
	statter  *statter
}

func (s *StatterTestSuite) SetupTest() {
	s.reporter = &mocks.StatsReporter{}
	s.reporter.On("IncCounter", mock.Anything, mock.Anything, mock.Anything).Return()
	s.reporter.On("UpdateGauge", mock.Anything, mock.Anything, mock.Anything).Return()
	s.reporter.On("RecordTimer", mock.Anything, mock.Anything, mock.Anything).Return()

	s.statter = newStatter("127.0.0.1:3001", s.reporter)
}

func (s *StatterTestSuite) TestMembershipCounters() {
	s.statter.HandleEvent(gossip.MemberAddedEvent{})
	s.statter.HandleEvent(gossip.MemberRemovedEvent{})
	s.statter.HandleEvent(gossip.MergeRejectedEvent{Reason: gossip.RejectedBuried})

	s.reporter.AssertCalled(s.T(), "IncCounter", "heartpop.127_0_0_1_3001.membership.add", mock.Anything, int64(1))
	s.reporter.AssertCalled(s.T(), "IncCounter", "heartpop.127_0_0_1_3001.membership.remove", mock.Anything, int64(1))
	s.reporter.AssertCalled(s.T(), "IncCounter", "heartpop.127_0_0_1_3001.membership.reject.buried", mock.Anything, int64(1))
}

func (s *StatterTestSuite) TestProtocolCounters() {
	s.statter.HandleEvent(gossip.JoinRequestReceiveEvent{})
	s.statter.HandleEvent(gossip.JoinCompleteEvent{NumJoined: 3})
	s.statter.HandleEvent(JoinRetryEvent{Attempt: 1})
	s.statter.HandleEvent(gossip.PingSendEvent{})
	s.statter.HandleEvent(gossip.PingReceiveEvent{})
	s.statter.HandleEvent(gossip.MessageDroppedEvent{Kind: "ping"})

	for _, key := range []string{"join.recv", "join.complete", "join.retry", "ping.send", "ping.recv", "message.dropped.ping"} {
		s.reporter.AssertCalled(s.T(), "IncCounter", "heartpop.127_0_0_1_3001."+key, mock.Anything, int64(1))
	}
	s.reporter.AssertCalled(s.T(), "UpdateGauge", "heartpop.127_0_0_1_3001.join.num-joined", mock.Anything, int64(3))
}

func (s *StatterTestSuite) TestTickComplete() {
	s.statter.HandleEvent(gossip.TickCompleteEvent{
		NumMembers: 4,
		Heartbeat:  10,
		Checksum:   77,
		Duration:   time.Millisecond,
	})

	s.reporter.AssertCalled(s.T(), "RecordTimer", "heartpop.127_0_0_1_3001.protocol.tick", mock.Anything, time.Millisecond)
	s.reporter.AssertCalled(s.T(), "UpdateGauge", "heartpop.127_0_0_1_3001.num-members", mock.Anything, int64(4))
	s.reporter.AssertCalled(s.T(), "UpdateGauge", "heartpop.127_0_0_1_3001.heartbeat", mock.Anything, int64(10))
	s.reporter.AssertCalled(s.T(), "UpdateGauge", "heartpop.127_0_0_1_3001.checksum", mock.Anything, int64(77))
}

func (s *StatterTestSuite) TestUnknownEventIgnored() {
	s.statter.HandleEvent(struct{}{})
	s.reporter.AssertNotCalled(s.T(), "IncCounter", mock.Anything, mock.Anything, mock.Anything)
}

func (s *StatterTestSuite) TestKeysAreCached() {
	first := s.statter.key("ping.send")
	s.Equal(first, s.statter.key("ping.send"))
	s.Len(s.statter.keys, 1)
}

func TestStatterTestSuite(t *testing.T) {
	suite.Run(t, new(StatterTestSuite))
}

func TestToStatsPrefix(t *testing.T) {
	assert.Equal(t, "heartpop.10_0_0_1_3000.", toStatsPrefix("10.0.0.1:3000"))
	assert.Equal(t, "heartpop.4_0.", toStatsPrefix("4:0"))
}
