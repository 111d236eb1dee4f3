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
	"strings"
	"sync"

	"github.com/uber-common/bark"
	"github.com/uber/heartpop-go/events"
	"github.com/uber/heartpop-go/gossip"
)

// statter turns events into calls on a bark.StatsReporter. Keys are prefixed
// with the node's address so several nodes can report to one backend.
type statter struct {
	reporter bark.StatsReporter
	prefix   string
	keys     map[string]string
	mutex    sync.RWMutex
}

func newStatter(address string, reporter bark.StatsReporter) *statter {
	return &statter{
		reporter: reporter,
		prefix:   toStatsPrefix(address),
		keys:     make(map[string]string),
	}
}

func (s *statter) HandleEvent(event events.Event) {
	switch event := event.(type) {
	case gossip.MemberAddedEvent:
		s.reporter.IncCounter(s.key("membership.add"), nil, 1)

	case gossip.MemberRemovedEvent:
		s.reporter.IncCounter(s.key("membership.remove"), nil, 1)

	case gossip.MergeRejectedEvent:
		s.reporter.IncCounter(s.key("membership.reject."+string(event.Reason)), nil, 1)

	case gossip.JoinRequestReceiveEvent:
		s.reporter.IncCounter(s.key("join.recv"), nil, 1)

	case gossip.JoinCompleteEvent:
		s.reporter.IncCounter(s.key("join.complete"), nil, 1)
		s.reporter.UpdateGauge(s.key("join.num-joined"), nil, int64(event.NumJoined))

	case JoinRetryEvent:
		s.reporter.IncCounter(s.key("join.retry"), nil, 1)

	case gossip.PingSendEvent:
		s.reporter.IncCounter(s.key("ping.send"), nil, 1)

	case gossip.PingReceiveEvent:
		s.reporter.IncCounter(s.key("ping.recv"), nil, 1)

	case gossip.MessageDroppedEvent:
		s.reporter.IncCounter(s.key("message.dropped."+event.Kind), nil, 1)

	case gossip.TickCompleteEvent:
		s.reporter.RecordTimer(s.key("protocol.tick"), nil, event.Duration)
		s.reporter.UpdateGauge(s.key("num-members"), nil, int64(event.NumMembers))
		s.reporter.UpdateGauge(s.key("heartbeat"), nil, event.Heartbeat)
		s.reporter.UpdateGauge(s.key("checksum"), nil, int64(event.Checksum))
	}
}

func (s *statter) key(suffix string) string {
	s.mutex.RLock()
	key, ok := s.keys[suffix]
	s.mutex.RUnlock()

	if ok {
		return key
	}

	// Upgrade to RW, double-check.
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key, ok = s.keys[suffix]
	if !ok {
		key = s.prefix + suffix
		s.keys[suffix] = key
	}
	return key
}

// Transform address into Stats-compatible prefix.
// For example, from 192.168.0.12:3000 to heartpop.192_168_0_12_3000.
func toStatsPrefix(address string) string {
	prefix := strings.Replace(address, ".", "_", -1)
	prefix = strings.Replace(prefix, ":", "_", -1)
	return "heartpop." + prefix + "."
}
