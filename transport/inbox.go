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

// Package transport contains the gossip.Transport implementations: an
// in-process emulated network for simulations and tests, and a TChannel
// transport for real deployments.
package transport

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned when sending through a transport that has been
	// shut down.
	ErrClosed = errors.New("transport closed")

	// ErrInboxFull is returned when the receiver's inbox is at capacity and
	// the message was discarded.
	ErrInboxFull = errors.New("inbox full")
)

// An Inbox buffers inbound messages for one node until its next tick. The
// zero value is an unbounded inbox ready to use.
type Inbox struct {
	mu       sync.Mutex
	msgs     [][]byte
	capacity int
	dropped  int64
}

// NewInbox returns an inbox holding at most capacity messages. A capacity of
// zero or less means unbounded.
func NewInbox(capacity int) *Inbox {
	return &Inbox{capacity: capacity}
}

// Push appends msg unless the inbox is full. The inbox takes ownership of msg.
func (b *Inbox) Push(msg []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.capacity > 0 && len(b.msgs) >= b.capacity {
		b.dropped++
		return false
	}

	b.msgs = append(b.msgs, msg)
	return true
}

// Drain returns everything pushed so far in arrival order and empties the
// inbox. Messages pushed while the caller handles the result are kept for the
// next Drain.
func (b *Inbox) Drain() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := b.msgs
	b.msgs = nil
	return msgs
}

// Len returns the number of buffered messages.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.msgs)
}

// Dropped returns the number of messages rejected because the inbox was full.
func (b *Inbox) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
