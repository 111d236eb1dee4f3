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
	"net"
	"strconv"
)

// An Identity names a node of the group. It is derived once from the node's
// endpoint and compared by value everywhere after that.
type Identity struct {
	ID   int32
	Port uint16
}

// ParseIdentity resolves an endpoint into an Identity. Two address forms are
// accepted: "<id>:<port>" where id is a decimal integer (emulated endpoints
// such as "1:0"), and "<a.b.c.d>:<port>" where the IPv4 address, read
// big-endian, becomes the id.
func ParseIdentity(address string) (Identity, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid address %q: %v", address, err)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid port in address %q: %v", address, err)
	}

	if id, err := strconv.ParseInt(host, 10, 32); err == nil {
		return Identity{ID: int32(id), Port: uint16(port)}, nil
	}

	ip := net.ParseIP(host).To4()
	if ip == nil {
		return Identity{}, fmt.Errorf("invalid host in address %q: want an integer id or an IPv4 address", address)
	}

	return Identity{ID: int32(binary.BigEndian.Uint32(ip)), Port: uint16(port)}, nil
}

// MustParseIdentity is ParseIdentity for addresses known to be valid. It
// panics on error.
func MustParseIdentity(address string) Identity {
	id, err := ParseIdentity(address)
	if err != nil {
		panic(err)
	}
	return id
}

// String renders the identity as "<id>:<port>".
func (i Identity) String() string {
	return fmt.Sprintf("%d:%d", i.ID, i.Port)
}

// HostPort renders the identity as an IPv4 host:port, for transports that
// need a routable address.
func (i Identity) HostPort() string {
	ip := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(ip, uint32(i.ID))
	return net.JoinHostPort(ip.String(), strconv.Itoa(int(i.Port)))
}
