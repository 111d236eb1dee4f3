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

// Package metrics exports gossip events as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uber/heartpop-go/events"
	"github.com/uber/heartpop-go/gossip"
)

// A Collector is an event listener that keeps a Prometheus registry up to
// date with what a node reports. Each collector owns its registry so several
// nodes can run in one process.
type Collector struct {
	registry *prometheus.Registry

	members   prometheus.Gauge
	heartbeat prometheus.Gauge
	checksum  prometheus.Gauge

	added         prometheus.Counter
	removed       prometheus.Counter
	rejected      *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	joinRequests  prometheus.Counter
	joins         prometheus.Counter
	pingsSent     prometheus.Counter
	pingsReceived prometheus.Counter

	tickDuration prometheus.Histogram
}

// NewCollector returns a collector whose metrics are prefixed with namespace.
func NewCollector(namespace string) *Collector {
	startTime := time.Now()

	c := &Collector{
		registry: prometheus.NewRegistry(),

		members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "members",
			Help:      "Number of peers in the membership table.",
		}),
		heartbeat: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heartbeat",
			Help:      "Own heartbeat counter.",
		}),
		checksum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "checksum",
			Help:      "Checksum of the membership view.",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_added_total",
			Help:      "Peers inserted into the membership table.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_removed_total",
			Help:      "Dead peers removed from the membership table.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merges_rejected_total",
			Help:      "Gossiped peers that were not admitted.",
		}, []string{"reason"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Inbound messages discarded without being handled.",
		}, []string{"kind", "reason"}),
		joinRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_requests_total",
			Help:      "Join requests answered.",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Join replies accepted.",
		}),
		pingsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pings_sent_total",
			Help:      "Pings handed to the transport.",
		}),
		pingsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pings_received_total",
			Help:      "Pings merged into the membership table.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent in one protocol tick.",
			// 10us .. ~160ms
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		}),
	}

	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Time since the collector was created.",
	}, func() float64 { return time.Since(startTime).Seconds() })

	c.registry.MustRegister(
		c.members, c.heartbeat, c.checksum,
		c.added, c.removed, c.rejected, c.dropped,
		c.joinRequests, c.joins, c.pingsSent, c.pingsReceived,
		c.tickDuration, uptime,
	)

	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// HandleEvent implements events.EventListener.
func (c *Collector) HandleEvent(event events.Event) {
	switch event := event.(type) {
	case gossip.MemberAddedEvent:
		c.added.Inc()

	case gossip.MemberRemovedEvent:
		c.removed.Inc()

	case gossip.MergeRejectedEvent:
		c.rejected.WithLabelValues(string(event.Reason)).Inc()

	case gossip.MessageDroppedEvent:
		c.dropped.WithLabelValues(event.Kind, event.Reason).Inc()

	case gossip.JoinRequestReceiveEvent:
		c.joinRequests.Inc()

	case gossip.JoinCompleteEvent:
		c.joins.Inc()

	case gossip.PingSendEvent:
		c.pingsSent.Inc()

	case gossip.PingReceiveEvent:
		c.pingsReceived.Inc()

	case gossip.TickCompleteEvent:
		c.members.Set(float64(event.NumMembers))
		c.heartbeat.Set(float64(event.Heartbeat))
		c.checksum.Set(float64(event.Checksum))
		c.tickDuration.Observe(event.Duration.Seconds())
	}
}
