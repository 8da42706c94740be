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

// Package path holds the Path heap object: a RawPath augmented with
// expiration, next-hop and MTU information, a mutable attribute set, and an
// atomic broken flag shared by every holder of the path.
package path

import (
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
)

// GeoCoordinates is a router's reported geographic position.
type GeoCoordinates struct {
	Latitude  float32
	Longitude float32
	Address   string
}

// Interface identifies one (AS, interface ID) pair a path traverses,
// tagged with its role at that AS.
type Interface struct {
	IA      addr.IsdAsn
	Ingress uint16
	Egress  uint16
}

// Interfaces is the per-AS ingress/egress interface-ID record for a path,
// populated from a daemon reply's flat interface list.
type Interfaces struct {
	Hops []Interface
}

// HopMetadata is the per-AS router metadata record for a path.
type HopMetadata struct {
	Hops []HopInfo
}

// HopInfo is one AS's router metadata.
type HopInfo struct {
	IngressRouterGeo GeoCoordinates
	EgressRouterGeo  GeoCoordinates
	InternalHops     uint32
	Notes            string
}

// LinkType classifies a link traversed between two consecutive hops.
type LinkType uint8

const (
	LinkTypeUnset LinkType = iota
	LinkTypeCore
	LinkTypePeer
	LinkTypeChild
	LinkTypeInternal
)

// LinkMetadata is the per-link metadata record for a path.
type LinkMetadata struct {
	Links []LinkInfo
}

// LinkInfo is one link's reported type, latency and bandwidth.
type LinkInfo struct {
	Type      LinkType
	Latency   time.Duration
	Bandwidth uint64 // kbps
}

// Attributes is the fixed set of well-known attribute records on a Path,
// plus an open, user-reserved key range for anything else. The known set is
// small and closed; the user-reserved range is open, per the data model's
// call for a typed-attribute set keyed by integer.
type Attributes struct {
	Interfaces   *Interfaces
	HopMetadata  *HopMetadata
	LinkMetadata *LinkMetadata
	Reserved     map[int]any
}

// Path is a RawPath augmented with everything a sender needs to use it:
// when it expires, the control-plane MTU quoted for it, the underlay
// address of the first-hop router, and a mutually-visible broken flag.
//
// A Path is shared by reference. The only state safe to mutate after
// publication is Broken (atomic); the attribute set must be fully populated
// before the Path is handed to a cache or application code.
type Path struct {
	Raw        spath.RawPath
	Expiry     time.Time
	MTU        uint16
	NextHop    netip.AddrPort
	Attrs      Attributes
	brokenFlag atomic.Bool
}

// Broken reports whether an SCMP error has marked this path unusable.
func (p *Path) Broken() bool { return p.brokenFlag.Load() }

// MarkBroken atomically marks the path unusable. It does not remove the
// path from any cache holding it; callers consult Broken() to steer
// selection away from it.
func (p *Path) MarkBroken() { p.brokenFlag.Store(true) }

// Expired reports whether the path's expiry is at or before now.
func (p *Path) Expired(now time.Time) bool { return !p.Expiry.After(now) }

// HasInterface reports whether the path's interface list contains AS ia
// acting as the given interface (matched against either ingress or egress).
func (p *Path) HasInterface(ia addr.IsdAsn, iface uint16) bool {
	if p.Attrs.Interfaces == nil {
		return false
	}
	for _, h := range p.Attrs.Interfaces.Hops {
		if h.IA != ia {
			continue
		}
		if h.Ingress == iface || h.Egress == iface {
			return true
		}
	}
	return false
}

// HasLink reports whether the path's interface list contains the exact
// directed hop (ia, ingress) -> (ia, egress), used for internal-connection
// SCMP invalidation.
func (p *Path) HasLink(ia addr.IsdAsn, ingress, egress uint16) bool {
	if p.Attrs.Interfaces == nil {
		return false
	}
	for _, h := range p.Attrs.Interfaces.Hops {
		if h.IA == ia && h.Ingress == ingress && h.Egress == egress {
			return true
		}
	}
	return false
}
