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

// Package snet implements the header cache and packager: the pipeline that
// assembles an outbound SCION packet's header block from a path, a set of
// extensions and an L4 header, and the inverse pipeline that validates and
// parses an inbound one. Named after the real scionproto/scion host-side
// network library package that owns exactly this domain.
package snet

import (
	"encoding/binary"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/extn"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// L4Header is implemented by every transport-layer header this library
// places after the SCION path and extensions: today slayers.UDP and
// slayers.SCMP.
type L4Header interface {
	Size() int
	FlowLabel() uint32
	ChecksumOffset() int
	Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool
}

// payloadSizer is implemented by L4 headers that carry their own length
// field (slayers.UDP); SCMP has none, so this is an optional interface
// probed via type assertion rather than part of L4Header.
type payloadSizer interface {
	SetPayload(payload []byte)
}

// portSetter is implemented by L4 headers with source/destination ports
// (slayers.UDP); SCMP has none.
type portSetter interface {
	SetPorts(src, dst uint16)
}

// HeaderCache owns the serialized header block for one flow: a SCION
// common+address header, optional path, optional HBH/E2E extensions, and
// an L4 header, built once by Build and cheaply refreshed by UpdatePayload
// for successive sends that change only the payload (and, rarely, the L4
// header's own mutable fields).
//
// A HeaderCache is owned by one flow and must not be mutated concurrently;
// nothing here is safe to share across goroutines without external locking.
type HeaderCache struct {
	buf         []byte
	nhOffset    int // offset of the SCION common header's NextHdr byte
	l4Offset    int // offset where the L4 header begins
	l4Size      int // size of the L4 header alone, excluding payload
	payloadSize int
	l4Proto     slayers.L4ProtocolType
	srcSum      uint32 // src SCION address's pseudo-header checksum contribution
	dstSum      uint32 // dst SCION address's pseudo-header checksum contribution
	hasExts     bool   // true if HBH or E2E extensions were present at Build time
}

// Bytes returns the serialized header block (common header, path,
// extensions, L4 header) built by the most recent Build/UpdatePayload
// call. The payload is not included; callers concatenate it themselves
// before handing the result to the underlay.
func (hc *HeaderCache) Bytes() []byte { return hc.buf }

// Build assembles the full header block for one outbound packet: a SCION
// common+address header between local and remote, the given path, any
// HBH/E2E extensions, and the L4 header, followed logically (but not
// physically, see Bytes) by payload.
func (hc *HeaderCache) Build(
	trafficClass uint8,
	local, remote addr.Endpoint,
	path spath.RawPath,
	l4Proto slayers.L4ProtocolType,
	l4 L4Header,
	hbhExts, e2eExts []extn.Extension,
	payload []byte,
) error {
	if l4Proto != slayers.L4SCMP {
		if ps, ok := l4.(portSetter); ok {
			ps.SetPorts(local.Port, remote.Port)
		}
	}
	if ps, ok := l4.(payloadSizer); ok {
		ps.SetPayload(payload)
	}

	dstType := hostAddrType(remote.Host)
	srcType := hostAddrType(local.Host)

	allExts := make([]extn.Extension, 0, len(hbhExts)+len(e2eExts))
	allExts = append(allExts, hbhExts...)
	allExts = append(allExts, e2eExts...)
	hbhSize, e2eSize := extn.ComputeSize(allExts)

	nextHdr := l4Proto
	switch {
	case e2eSize > 0:
		nextHdr = slayers.L4End2End
	case hbhSize > 0:
		nextHdr = slayers.L4HopByHop
	}

	cmn := &slayers.CommonHeader{
		Version:      slayers.SCIONVersion,
		TrafficClass: trafficClass,
		PathType:     path.Type,
		NextHdr:      nextHdr,
		DstType:      dstType,
		SrcType:      srcType,
		DstIA:        remote.IA,
		SrcIA:        local.IA,
		DstHost:      remote.Host,
		SrcHost:      local.Host,
	}

	srcSCION := addr.SCIONAddress{IA: local.IA, Host: local.Host}
	dstSCION := addr.SCIONAddress{IA: remote.IA, Host: remote.Host}

	cmnSize := cmn.Size()
	pathSize := path.Size()
	l4Size := l4.Size()

	if (cmnSize+pathSize)%slayers.LineLen != 0 {
		return serrors.Wrap("header length not a multiple of the SCION line length",
			scerr.ErrLogicError, "cmnSize", cmnSize, "pathSize", pathSize)
	}
	cmn.HdrLen = uint8((cmnSize + pathSize) / slayers.LineLen)
	plen := hbhSize + e2eSize + l4Size + len(payload)
	if plen > 0xFFFF {
		return serrors.Wrap("packet payload length exceeds SCION header limit", scerr.ErrPacketTooBig, "plen", plen)
	}
	cmn.PayloadLen = uint16(plen)
	cmn.FlowID = (addrFlowHash(dstSCION) ^ addrFlowHash(srcSCION) ^ l4.FlowLabel()) & 0xfffff

	total := cmnSize + pathSize + hbhSize + e2eSize + l4Size
	buf := make([]byte, total)
	w := bitstream.NewWriteStream(buf)
	ec := bitstream.NewTraceError()

	if !cmn.Serialize(w, ec) {
		return serrors.Wrap("failed to serialize SCION header", scerr.ErrLogicError, "cause", ec.Err())
	}
	if pathSize > 0 {
		if !w.SerializeBytes(path.Raw, ec) {
			return serrors.Wrap("failed to serialize path", scerr.ErrLogicError, "cause", ec.Err())
		}
	}
	if hbhSize > 0 {
		hbhNext := l4Proto
		if e2eSize > 0 {
			hbhNext = slayers.L4End2End
		}
		hdr := slayers.ExtnHeader{NextHdr: hbhNext, ExtLen: uint8((hbhSize - slayers.ExtnHdrLen) / slayers.LineLen)}
		if !hdr.Serialize(w, ec) {
			return serrors.Wrap("failed to serialize HBH options header", scerr.ErrLogicError, "cause", ec.Err())
		}
		if !extn.Write(w, allExts, extn.HopByHop, hbhSize, ec) {
			return serrors.Wrap("failed to serialize HBH options", scerr.ErrLogicError, "cause", ec.Err())
		}
	}
	if e2eSize > 0 {
		hdr := slayers.ExtnHeader{NextHdr: l4Proto, ExtLen: uint8((e2eSize - slayers.ExtnHdrLen) / slayers.LineLen)}
		if !hdr.Serialize(w, ec) {
			return serrors.Wrap("failed to serialize E2E options header", scerr.ErrLogicError, "cause", ec.Err())
		}
		if !extn.Write(w, allExts, extn.EndToEnd, e2eSize, ec) {
			return serrors.Wrap("failed to serialize E2E options", scerr.ErrLogicError, "cause", ec.Err())
		}
	}

	l4Offset, _ := w.Pos()
	if !l4.Serialize(w, ec) {
		return serrors.Wrap("failed to serialize L4 header", scerr.ErrLogicError, "cause", ec.Err())
	}

	pseudo := slayers.PseudoHeaderSum(srcSCION, dstSCION, uint16(l4Size+len(payload)), l4Proto)
	chk := slayers.InternetChecksum(pseudo, buf[l4Offset:l4Offset+l4Size], payload)
	binary.BigEndian.PutUint16(buf[l4Offset+l4.ChecksumOffset():], chk)

	hc.buf = buf
	hc.nhOffset = 4
	hc.l4Offset = l4Offset
	hc.l4Size = l4Size
	hc.payloadSize = len(payload)
	hc.l4Proto = l4Proto
	hc.srcSum = srcSCION.Checksum()
	hc.dstSum = dstSCION.Checksum()
	hc.hasExts = hbhSize > 0 || e2eSize > 0
	return nil
}

// UpdatePayload rebuilds only the L4 header and checksum for a new payload
// (and, optionally, a new L4 header/proto), leaving the SCION common
// header's path and any extensions untouched except for the patched
// NextHdr and PayloadLen fields. Only supported for flows built without
// HBH/E2E extensions, since NextHdr otherwise already points at the
// extension chain rather than the L4 proto directly and the in-place
// optimization has nothing stable to patch.
func (hc *HeaderCache) UpdatePayload(l4Proto slayers.L4ProtocolType, l4 L4Header, payload []byte) error {
	if hc.buf == nil {
		return serrors.Wrap("header cache has no built header to update", scerr.ErrLogicError)
	}
	if hc.hasExts {
		return serrors.Wrap("in-place payload update unsupported when extensions are present",
			scerr.ErrNotImplemented)
	}
	if ps, ok := l4.(payloadSizer); ok {
		ps.SetPayload(payload)
	}

	newL4Size := l4.Size()
	oldPlen := binary.BigEndian.Uint16(hc.buf[6:8])
	newPlen := int(oldPlen) - (hc.l4Size + hc.payloadSize) + (newL4Size + len(payload))
	if newPlen < 0 || newPlen > 0xFFFF {
		return serrors.Wrap("updated payload length exceeds SCION header limit", scerr.ErrPacketTooBig, "plen", newPlen)
	}

	total := hc.l4Offset + newL4Size
	if cap(hc.buf) >= total {
		hc.buf = hc.buf[:total]
	} else {
		newBuf := make([]byte, total)
		copy(newBuf, hc.buf[:hc.l4Offset])
		hc.buf = newBuf
	}

	w := bitstream.NewWriteStream(hc.buf[hc.l4Offset:])
	ec := bitstream.NewTraceError()
	if !l4.Serialize(w, ec) {
		return serrors.Wrap("failed to serialize updated L4 header", scerr.ErrLogicError, "cause", ec.Err())
	}

	binary.BigEndian.PutUint16(hc.buf[6:8], uint16(newPlen))
	hc.buf[hc.nhOffset] = uint8(l4Proto)

	pseudo := hc.srcSum + hc.dstSum + uint32(newL4Size+len(payload)) + uint32(l4Proto)
	l4Bytes := hc.buf[hc.l4Offset : hc.l4Offset+newL4Size]
	chk := slayers.InternetChecksum(pseudo, l4Bytes, payload)
	binary.BigEndian.PutUint16(hc.buf[hc.l4Offset+l4.ChecksumOffset():], chk)

	hc.l4Size = newL4Size
	hc.payloadSize = len(payload)
	hc.l4Proto = l4Proto
	return nil
}

func hostAddrType(a addr.IPAddress) slayers.AddrType {
	if a.Is6() {
		return slayers.AddrTypeIPv6
	}
	return slayers.AddrTypeIPv4
}

// addrFlowHash mixes a SCION address's bytes into a 32-bit value, used as
// one of the three XOR terms of the deterministic flow label. Not a
// cryptographic hash; grounded on the same FNV-1a-style mixing
// slayers.flowHash uses for the L4 contribution, applied here over the
// address's IA and host bytes instead of an L4 header's fields.
func addrFlowHash(a addr.SCIONAddress) uint32 {
	const offsetBasis = 2166136261
	const prime = 16777619
	h := uint32(offsetBasis)
	ia := uint64(a.IA)
	for i := 0; i < 8; i++ {
		h = (h ^ uint32(ia>>(8*i))&0xff) * prime
	}
	for _, b := range a.Host.Bytes() {
		h = (h ^ uint32(b)) * prime
	}
	h ^= h >> 16
	return h & 0xfffff
}
