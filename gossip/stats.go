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
	"time"
)

// MemberStats contains the members of a node's table and the checksum of its
// view.
type MemberStats struct {
	Local     string   `json:"local"`
	Phase     string   `json:"phase"`
	Heartbeat int64    `json:"heartbeat"`
	Checksum  uint32   `json:"checksum"`
	Members   []Member `json:"members"`
}

// MemberStats returns the node's view sorted by address.
func (n *Node) MemberStats() MemberStats {
	n.mu.Lock()
	defer n.mu.Unlock()

	return MemberStats{
		Local:     n.identity.String(),
		Phase:     n.phase.String(),
		Heartbeat: n.heartbeat,
		Checksum:  n.memberlist.Checksum(),
		Members:   n.members(),
	}
}

// ProtocolStats contains stats about the protocol periods run by the node.
type ProtocolStats struct {
	Timing   Timing  `json:"timing"`
	SendRate float64 `json:"sendRate"`
	RecvRate float64 `json:"recvRate"`
	Sent     int64   `json:"sent"`
	Received int64   `json:"received"`
}

// Timing describes the distribution of tick durations in nanoseconds.
type Timing struct {
	Type   string  `json:"type"`
	Min    int64   `json:"min"`
	Max    int64   `json:"max"`
	Sum    int64   `json:"sum"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Count  int64   `json:"count"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// ProtocolStats returns timing and message rates for the node.
func (n *Node) ProtocolStats() ProtocolStats {
	timing := n.tickTiming
	return ProtocolStats{
		Timing: Timing{
			Type:   "histogram",
			Min:    timing.Min(),
			Max:    timing.Max(),
			Sum:    timing.Sum(),
			Mean:   timing.Mean(),
			StdDev: timing.StdDev(),
			Count:  timing.Count(),
			Median: timing.Percentile(0.5),
			P95:    timing.Percentile(0.95),
			P99:    timing.Percentile(0.99),
		},
		SendRate: n.sendRate.Rate1(),
		RecvRate: n.recvRate.Rate1(),
		Sent:     n.sendRate.Count(),
		Received: n.recvRate.Count(),
	}
}

// MeanTickDuration is a convenience accessor for the average tick duration.
func (s ProtocolStats) MeanTickDuration() time.Duration {
	return time.Duration(s.Timing.Mean)
}
