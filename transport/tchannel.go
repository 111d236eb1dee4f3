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

package transport

import (
	"errors"
	"sync"
	"time"

	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/gossip"
	"github.com/uber/heartpop-go/logging"
	"github.com/uber/heartpop-go/shared"
	"github.com/uber/heartpop-go/util"
	"github.com/uber/tchannel-go"
	"github.com/uber/tchannel-go/raw"

	"golang.org/x/net/context"
)

// MessageEndpoint is the tchannel method gossip messages are delivered to.
const MessageEndpoint = "/heartpop/message"

// ErrChannelNotListening is returned when a transport is created on a
// channel that is not listening yet.
var ErrChannelNotListening = errors.New("tchannel is not listening")

// TChannelOptions configures a TChannel transport.
type TChannelOptions struct {
	// InboxCapacity bounds the number of buffered inbound messages. Zero
	// means unbounded.
	InboxCapacity int

	// SendTimeout bounds every outbound call.
	SendTimeout time.Duration
}

func defaultTChannelOptions() *TChannelOptions {
	return &TChannelOptions{
		InboxCapacity: 1024,
		SendTimeout:   500 * time.Millisecond,
	}
}

func mergeDefaultTChannelOptions(opts *TChannelOptions) *TChannelOptions {
	def := defaultTChannelOptions()
	if opts == nil {
		return def
	}

	o := *opts
	o.InboxCapacity = util.Select(o.InboxCapacity, def.InboxCapacity)
	o.SendTimeout = util.Select(o.SendTimeout, def.SendTimeout)
	return &o
}

// TChannel carries gossip messages as raw tchannel calls. Sends are fire and
// forget: each runs on its own goroutine and failures are only logged.
type TChannel struct {
	channel  shared.TChannel
	identity gossip.Identity
	inbox    *Inbox
	timeout  time.Duration
	logger   log.Logger

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// NewTChannel registers the message endpoint on ch and returns a transport
// for the identity ch listens on.
func NewTChannel(ch shared.TChannel, opts *TChannelOptions) (*TChannel, error) {
	if ch.State() != tchannel.ChannelListening {
		return nil, ErrChannelNotListening
	}

	identity, err := gossip.ParseIdentity(ch.PeerInfo().HostPort)
	if err != nil {
		return nil, err
	}

	opts = mergeDefaultTChannelOptions(opts)

	t := &TChannel{
		channel:  ch,
		identity: identity,
		inbox:    NewInbox(opts.InboxCapacity),
		timeout:  opts.SendTimeout,
		logger:   logging.Logger("transport").WithField("local", identity.String()),
	}

	ch.Register(raw.Wrap(t), MessageEndpoint)
	return t, nil
}

// Identity returns the gossip identity of the channel.
func (t *TChannel) Identity() gossip.Identity {
	return t.identity
}

// Send implements gossip.Transport.
func (t *TChannel) Send(from, to gossip.Identity, msg []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return ErrClosed
	}

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		if err := t.call(to.HostPort(), msg); err != nil {
			t.logger.WithFields(log.Fields{
				"remote": to.String(),
				"error":  err,
			}).Debug("gossip call failed")
		}
	}()
	return nil
}

func (t *TChannel) call(hostPort string, msg []byte) error {
	ctx, cancel := shared.NewTChannelContext(t.timeout)
	defer cancel()

	peer := t.channel.Peers().GetOrAdd(hostPort)
	call, err := peer.BeginCall(ctx, t.channel.ServiceName(), MessageEndpoint, &tchannel.CallOptions{
		Format: tchannel.Raw,
	})
	if err != nil {
		return err
	}

	_, _, _, err = raw.WriteArgs(call, nil, msg)
	return err
}

// Receive implements gossip.Transport.
func (t *TChannel) Receive(local gossip.Identity) [][]byte {
	if local != t.identity {
		return nil
	}
	return t.inbox.Drain()
}

// Handle buffers an inbound message until the next tick.
func (t *TChannel) Handle(ctx context.Context, args *raw.Args) (*raw.Res, error) {
	if !t.inbox.Push(args.Arg3) {
		t.logger.WithField("caller", args.Caller).Warn("inbox full, dropped message")
	}
	return &raw.Res{}, nil
}

// OnError is called by tchannel when handling a call fails.
func (t *TChannel) OnError(ctx context.Context, err error) {
	t.logger.WithField("error", err).Warn("failed to handle gossip call")
}

// Dropped returns the number of inbound messages lost to a full inbox.
func (t *TChannel) Dropped() int64 {
	return t.inbox.Dropped()
}

// Close stops sending and waits for calls in flight to finish. The channel
// itself is left open for its owner to close.
func (t *TChannel) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.inflight.Wait()
}
