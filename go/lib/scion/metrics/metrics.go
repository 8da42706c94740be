// Copyright 2020 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics defines the small ExportMetric-shaped interfaces the
// packager and path cache report through, plus a Prometheus-backed
// implementation of each. Kept as plain interfaces (rather than a direct
// Prometheus dependency on every caller) so tests can substitute the
// generated mocks in mock_metrics, the way lib/periodic's internal metrics
// package is consumed through ExportMetric.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the Prometheus namespace every metric in this package is
// registered under.
const Namespace = "scion_host"

// PacketMetrics is consumed by the packager (component G) to report
// packing/unpacking outcomes.
type PacketMetrics interface {
	PacketsPacked()
	PacketsUnpacked()
	ChecksumFailures()
	ScmpReceived(scmpType uint8)
}

// PathCacheMetrics is consumed by the path cache (component H) to report
// lookups, refreshes and SCMP-driven invalidation.
type PathCacheMetrics interface {
	CacheHit()
	CacheMiss()
	Refresh()
	PathBroken()
}

// PromPacketMetrics is a Prometheus-backed PacketMetrics.
type PromPacketMetrics struct {
	packed    prometheus.Counter
	unpacked  prometheus.Counter
	checksums prometheus.Counter
	scmp      *prometheus.CounterVec
}

// NewPromPacketMetrics registers and returns a PromPacketMetrics on reg. If
// reg is nil, prometheus.DefaultRegisterer is used.
func NewPromPacketMetrics(reg prometheus.Registerer) *PromPacketMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PromPacketMetrics{
		packed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "packager", Name: "packets_packed_total",
			Help: "Number of packets successfully packed.",
		}),
		unpacked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "packager", Name: "packets_unpacked_total",
			Help: "Number of packets successfully unpacked.",
		}),
		checksums: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "packager", Name: "checksum_failures_total",
			Help: "Number of inbound packets dropped for a checksum mismatch.",
		}),
		scmp: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "packager", Name: "scmp_received_total",
			Help: "Number of SCMP messages received, by type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.packed, m.unpacked, m.checksums, m.scmp)
	return m
}

func (m *PromPacketMetrics) PacketsPacked()   { m.packed.Inc() }
func (m *PromPacketMetrics) PacketsUnpacked() { m.unpacked.Inc() }
func (m *PromPacketMetrics) ChecksumFailures() { m.checksums.Inc() }
func (m *PromPacketMetrics) ScmpReceived(scmpType uint8) {
	m.scmp.WithLabelValues(strconv.Itoa(int(scmpType))).Inc()
}

// PromPathCacheMetrics is a Prometheus-backed PathCacheMetrics.
type PromPathCacheMetrics struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	refresh  prometheus.Counter
	broken   prometheus.Counter
}

// NewPromPathCacheMetrics registers and returns a PromPathCacheMetrics on
// reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewPromPathCacheMetrics(reg prometheus.Registerer) *PromPathCacheMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PromPathCacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "pathcache", Name: "hits_total",
			Help: "Number of lookups served without triggering a refresh.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "pathcache", Name: "misses_total",
			Help: "Number of lookups that triggered a control-plane refresh.",
		}),
		refresh: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "pathcache", Name: "refreshes_total",
			Help: "Number of times an entry was repopulated via store.",
		}),
		broken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "pathcache", Name: "paths_marked_broken_total",
			Help: "Number of paths marked broken by an SCMP notification.",
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.refresh, m.broken)
	return m
}

func (m *PromPathCacheMetrics) CacheHit()    { m.hits.Inc() }
func (m *PromPathCacheMetrics) CacheMiss()   { m.misses.Inc() }
func (m *PromPathCacheMetrics) Refresh()     { m.refresh.Inc() }
func (m *PromPathCacheMetrics) PathBroken()  { m.broken.Inc() }
