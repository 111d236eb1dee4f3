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

import "fmt"

const (
	// Alive is the status of a member whose heartbeat is fresh.
	Alive = "alive"

	// Suspect is the status of a member that has not refreshed its heartbeat
	// for FailTimeout. Suspects are kept but never admitted from gossip.
	Suspect = "suspect"

	// Dead is the status of a member that has not refreshed its heartbeat for
	// RemoveTimeout. Dead members are pruned.
	Dead = "dead"
)

// An Entry is one row of a membership table.
type Entry struct {
	Identity

	// Heartbeat is the highest heartbeat counter seen for the member.
	Heartbeat int64

	// Timestamp is the local logical time at which Heartbeat was last
	// raised. On the wire it carries the sender's time instead.
	Timestamp int64
}

func (e Entry) String() string {
	return fmt.Sprintf("%s(heartbeat=%d, timestamp=%d)", e.Identity, e.Heartbeat, e.Timestamp)
}

// A Member is a read-only view of an Entry together with its status at the
// time the view was taken.
type Member struct {
	Address   string `json:"address"`
	Heartbeat int64  `json:"heartbeat"`
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
}

type members []Member

func (s members) Len() int           { return len(s) }
func (s members) Less(i, j int) bool { return s[i].Address < s[j].Address }
func (s members) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
