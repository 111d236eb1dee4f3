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
	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/events"
	"github.com/uber/heartpop-go/gossip"
)

// eventLogger writes membership changes to the "membership" logger.
type eventLogger struct {
	logger log.Logger
}

func (l *eventLogger) HandleEvent(event events.Event) {
	switch event := event.(type) {
	case gossip.MemberAddedEvent:
		l.logger.WithFields(log.Fields{
			"local":     event.Local,
			"member":    event.Member,
			"heartbeat": event.Heartbeat,
		}).Info("heartpop member added")

	case gossip.MemberRemovedEvent:
		l.logger.WithFields(log.Fields{
			"local":     event.Local,
			"member":    event.Member,
			"heartbeat": event.Heartbeat,
			"age":       event.Age,
		}).Info("heartpop member removed")

	case gossip.JoinCompleteEvent:
		l.logger.WithFields(log.Fields{
			"local":     event.Local,
			"source":    event.Source,
			"numJoined": event.NumJoined,
		}).Info("heartpop join complete")

	case gossip.MessageDroppedEvent:
		l.logger.WithFields(log.Fields{
			"local":  event.Local,
			"kind":   event.Kind,
			"reason": event.Reason,
		}).Debug("heartpop dropped message")
	}
}
