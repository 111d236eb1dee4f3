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

// Audit records membership changes for observers outside the protocol. It is
// called synchronously from the protocol loop.
type Audit interface {
	LogAdd(self, peer Identity)
	LogRemove(self, peer Identity)
}

type loggerAudit struct {
	logger log.Logger
	clock  Clock
}

// NewLoggerAudit returns an Audit writing one info line per change to logger.
func NewLoggerAudit(logger log.Logger, c Clock) Audit {
	return &loggerAudit{logger: logger, clock: c}
}

func (a *loggerAudit) LogAdd(self, peer Identity) {
	a.logger.WithFields(log.Fields{
		"local":  self.String(),
		"member": peer.String(),
		"time":   a.clock.Now(),
	}).Info("node joined")
}

func (a *loggerAudit) LogRemove(self, peer Identity) {
	a.logger.WithFields(log.Fields{
		"local":  self.String(),
		"member": peer.String(),
		"time":   a.clock.Now(),
	}).Info("node removed")
}
