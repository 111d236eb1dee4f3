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
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// MessageKind tags the variant of a Message on the wire.
type MessageKind uint8

const (
	// JoinRequest asks the introducer to be admitted to the group.
	JoinRequest MessageKind = iota
	// JoinReply answers a JoinRequest with the introducer's view.
	JoinReply
	// Ping carries the sender's view to a gossip target.
	Ping
)

func (k MessageKind) String() string {
	switch k {
	case JoinRequest:
		return "join-request"
	case JoinReply:
		return "join-reply"
	case Ping:
		return "ping"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k MessageKind) hasMembers() bool {
	return k == JoinReply || k == Ping
}

var (
	// ErrMalformedMessage is returned when a buffer is too short or its length
	// does not match the member count it declares.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownMessageKind is returned when a buffer carries a kind tag this
	// node does not understand.
	ErrUnknownMessageKind = errors.New("unknown message kind")
)

const (
	// kind(1) + id(4) + port(2)
	headerSize = 1 + 4 + 2

	countSize = 4

	// id(4) + port(2) + heartbeat(8) + timestamp(8)
	recordSize = 4 + 2 + 8 + 8
)

// A Message is the decoded form of everything nodes exchange.
type Message struct {
	Kind   MessageKind
	Source Identity

	// Members is empty for JoinRequest. For JoinReply and Ping the sender's
	// own entry comes first.
	Members []Entry
}

// EncodedSize returns the number of bytes EncodeMessage produces for m.
func (m Message) EncodedSize() int {
	if !m.Kind.hasMembers() {
		return headerSize
	}
	return headerSize + countSize + len(m.Members)*recordSize
}

// EncodeMessage serialises m into a newly allocated buffer owned by the
// caller. Members of a JoinRequest are not encoded.
func EncodeMessage(m Message) []byte {
	buf := make([]byte, m.EncodedSize())

	buf[0] = byte(m.Kind)
	putIdentity(buf[1:], m.Source)

	if !m.Kind.hasMembers() {
		return buf
	}

	binary.BigEndian.PutUint32(buf[headerSize:], uint32(len(m.Members)))

	off := headerSize + countSize
	for _, e := range m.Members {
		putIdentity(buf[off:], e.Identity)
		binary.BigEndian.PutUint64(buf[off+6:], uint64(e.Heartbeat))
		binary.BigEndian.PutUint64(buf[off+14:], uint64(e.Timestamp))
		off += recordSize
	}

	return buf
}

// DecodeMessage parses buf. It never returns a partially decoded message: on
// any error the Message is zero.
func DecodeMessage(buf []byte) (Message, error) {
	if len(buf) < headerSize {
		return Message{}, errors.Wrapf(ErrMalformedMessage, "header needs %d bytes, got %d", headerSize, len(buf))
	}

	kind := MessageKind(buf[0])
	msg := Message{
		Kind:   kind,
		Source: getIdentity(buf[1:]),
	}

	switch kind {
	case JoinRequest:
		if len(buf) != headerSize {
			return Message{}, errors.Wrapf(ErrMalformedMessage, "%s has %d trailing bytes", kind, len(buf)-headerSize)
		}
		return msg, nil

	case JoinReply, Ping:
		// handled below

	default:
		return Message{}, errors.Wrapf(ErrUnknownMessageKind, "tag %d from %s", uint8(kind), msg.Source)
	}

	if len(buf) < headerSize+countSize {
		return Message{}, errors.Wrapf(ErrMalformedMessage, "%s without member count", kind)
	}

	count := int64(binary.BigEndian.Uint32(buf[headerSize:]))
	want := int64(headerSize+countSize) + count*recordSize
	if int64(len(buf)) != want {
		return Message{}, errors.Wrapf(ErrMalformedMessage,
			"%s declares %d members (%d bytes), buffer has %d bytes", kind, count, want, len(buf))
	}

	msg.Members = make([]Entry, 0, count)
	for off := headerSize + countSize; off < len(buf); off += recordSize {
		msg.Members = append(msg.Members, Entry{
			Identity:  getIdentity(buf[off:]),
			Heartbeat: int64(binary.BigEndian.Uint64(buf[off+6:])),
			Timestamp: int64(binary.BigEndian.Uint64(buf[off+14:])),
		})
	}

	return msg, nil
}

func putIdentity(b []byte, id Identity) {
	binary.BigEndian.PutUint32(b, uint32(id.ID))
	binary.BigEndian.PutUint16(b[4:], id.Port)
}

func getIdentity(b []byte) Identity {
	return Identity{
		ID:   int32(binary.BigEndian.Uint32(b)),
		Port: binary.BigEndian.Uint16(b[4:]),
	}
}
