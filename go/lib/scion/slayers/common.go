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

// Package slayers implements the wire header codecs of the SCION data
// plane: the common+address header, path metadata, UDP and SCMP, all
// serialized through go/lib/scion/bitstream and additionally exposed as
// gopacket layers.
package slayers

import "github.com/google/gopacket"

// PathType identifies the kind of path carried in a SCION header.
type PathType uint8

const (
	PathTypeEmpty   PathType = 0
	PathTypeSCION   PathType = 1
	PathTypeOneHop  PathType = 2
	PathTypeEPIC    PathType = 3
	PathTypeColibri PathType = 4
)

// L4ProtocolType identifies the next-header/protocol field of a SCION
// common header.
type L4ProtocolType uint8

const (
	L4UDP        L4ProtocolType = 17
	L4SCMP       L4ProtocolType = 202
	L4HopByHop   L4ProtocolType = 200
	L4End2End    L4ProtocolType = 201
	L4BFD        L4ProtocolType = 203
)

// AddrType is the 4-bit host address type field (0 = IPv4, 3 = IPv6, the
// value a SCION common header's dst/src-host-type nibble carries).
type AddrType uint8

const (
	AddrTypeIPv4 AddrType = 0
	AddrTypeIPv6 AddrType = 3
)

// HostLen returns the wire length in bytes of a host address of this type,
// or 0 and false if unsupported.
func (t AddrType) HostLen() (int, bool) {
	switch t {
	case AddrTypeIPv4:
		return 4, true
	case AddrTypeIPv6:
		return 16, true
	default:
		return 0, false
	}
}

var (
	LayerTypeSCION        = gopacket.RegisterLayerType(1001, gopacket.LayerTypeMetadata{Name: "SCION", Decoder: gopacket.DecodeFunc(decodeSCION)})
	LayerTypeSCIONUDP     = gopacket.RegisterLayerType(1002, gopacket.LayerTypeMetadata{Name: "SCION/UDP", Decoder: gopacket.DecodeFunc(decodeSCIONUDP)})
	LayerTypeSCMP         = gopacket.RegisterLayerType(1003, gopacket.LayerTypeMetadata{Name: "SCMP", Decoder: gopacket.DecodeFunc(decodeSCMP)})
	LayerTypeHopByHopExtn = gopacket.RegisterLayerType(1004, gopacket.LayerTypeMetadata{Name: "SCION/HBH"})
	LayerTypeEndToEndExtn = gopacket.RegisterLayerType(1005, gopacket.LayerTypeMetadata{Name: "SCION/E2E"})
)

// LayerClassSCION is the gopacket layer class the SCION layer decodes
// into. A bare LayerType already satisfies gopacket.LayerClass.
var LayerClassSCION gopacket.LayerClass = LayerTypeSCION
