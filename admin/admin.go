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

// Package admin serves a small HTTP API for inspecting a running node.
package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/uber-common/bark"
	"github.com/uber/heartpop-go/gossip"
	"github.com/uber/heartpop-go/logging"
)

// A Source is what the admin API reports on. *heartpop.Heartpop implements it.
type Source interface {
	App() string
	WhoAmI() string
	Joined() bool
	Uptime() time.Duration
	MemberStats() gossip.MemberStats
	ProtocolStats() gossip.ProtocolStats
}

// Stats is the body of GET /stats.
type Stats struct {
	App      string               `json:"app"`
	Address  string               `json:"address"`
	Uptime   time.Duration        `json:"uptime"`
	Protocol gossip.ProtocolStats `json:"protocol"`
}

type server struct {
	source Source
	logger log.Logger
}

// NewHandler returns the admin API for src. When metrics is not nil it is
// mounted on /metrics.
func NewHandler(src Source, metrics http.Handler) http.Handler {
	s := &server{
		source: src,
		logger: logging.Logger("admin").WithField("local", src.WhoAmI()),
	}

	r := mux.NewRouter()
	r.Methods("GET").Path("/members").HandlerFunc(s.handleMembers)
	r.Methods("GET").Path("/stats").HandlerFunc(s.handleStats)
	r.Methods("GET").Path("/health").HandlerFunc(s.handleHealth)
	if metrics != nil {
		r.Methods("GET").Path("/metrics").Handler(metrics)
	}
	return r
}

func (s *server) handleMembers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.source.MemberStats())
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Stats{
		App:      s.source.App(),
		Address:  s.source.WhoAmI(),
		Uptime:   s.source.Uptime(),
		Protocol: s.source.ProtocolStats(),
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.source.Joined() {
		http.Error(w, "not joined", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("OK\n"))
}

func (s *server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithField("error", err).Warn("failed to write response")
	}
}
