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

// Package spath implements the SCION path representations: the opaque
// RawPath carried in a packet, the Decoded view of a SCION path's meta/info/
// hop fields, in-place path reversal, hop iteration and path digests.
package spath

import (
	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// MaxRawLen is the largest opaque path buffer this library will carry: the
// 1020-byte SCION header ceiling minus the 36-byte fixed common+address
// portion.
const MaxRawLen = 1020 - 36

// RawPath is a path carried opaquely: who it runs between, its wire type,
// and its raw bytes.
type RawPath struct {
	SrcIA addr.IsdAsn
	DstIA addr.IsdAsn
	Type  slayers.PathType
	Raw   []byte
}

// IsEmpty reports whether this is the Empty path type (AS-local delivery,
// no path bytes).
func (p *RawPath) IsEmpty() bool { return p.Type == slayers.PathTypeEmpty }

// FirstAS returns the AS the path originates at. For a SCION path this is
// SrcIA; for the Empty path there is no path to originate from, so the
// caller's own local IsdAsn must be used instead (see snet.Packager.Pack).
func (p *RawPath) FirstAS() addr.IsdAsn { return p.SrcIA }

// Size returns the on-wire length of the path: 0 for Empty, else len(Raw).
func (p *RawPath) Size() int {
	if p.IsEmpty() {
		return 0
	}
	return len(p.Raw)
}

// Validate checks the 984-byte ceiling and, for SCION paths, that the raw
// buffer is a well-formed path-meta-prefixed blob.
func (p *RawPath) Validate() error {
	if len(p.Raw) > MaxRawLen {
		return serrors.New("path exceeds maximum raw length", "len", len(p.Raw), "max", MaxRawLen)
	}
	if p.Type != slayers.PathTypeSCION {
		return nil
	}
	_, err := DecodeMeta(p.Raw)
	return err
}

// DecodeMeta parses and validates the 4-byte path-meta header prefixing a
// SCION RawPath buffer, also checking that the buffer's total length
// matches 4 + 8*numInf + 12*numHop.
func DecodeMeta(raw []byte) (*slayers.MetaHdr, error) {
	if len(raw) < slayers.MetaHdrLen {
		return nil, serrors.Wrap("path buffer shorter than meta header", scerr.ErrInvalidPacket, "len", len(raw))
	}
	m := &slayers.MetaHdr{}
	r := bitstream.NewReadStream(raw[:slayers.MetaHdrLen])
	ec := bitstream.NewTraceError()
	if !m.Serialize(r, ec) {
		return nil, serrors.Wrap("malformed path-meta header", scerr.ErrInvalidPacket, "cause", ec.Err())
	}
	numInf := m.NumINF()
	numHop := m.NumHops()
	if numInf < 1 || numInf > 3 {
		return nil, serrors.Wrap("invalid segment count", scerr.ErrInvalidPacket, "numInf", numInf)
	}
	if numHop < 2 || numHop > 64 {
		return nil, serrors.Wrap("invalid hop count", scerr.ErrInvalidPacket, "numHop", numHop)
	}
	want := slayers.MetaHdrLen + slayers.InfoLen*numInf + slayers.HopLen*numHop
	if len(raw) != want {
		return nil, serrors.Wrap("path length does not match meta header", scerr.ErrInvalidPacket,
			"want", want, "have", len(raw))
	}
	return m, nil
}

// Digest computes a process-local fingerprint of the path's interface
// sequence, suitable for deduplicating otherwise-distinct Path objects that
// traverse the same routers. For the Empty path it digests an empty hop
// sequence; for a SCION path it decodes the full hop-field list and feeds
// the logical hop pairs in path direction.
func (p *RawPath) Digest() (Digest, error) {
	if p.IsEmpty() {
		return ComputeDigest(uint64(p.SrcIA), nil), nil
	}
	d, err := DecodeFull(p)
	if err != nil {
		return Digest{}, err
	}
	return ComputeDigest(uint64(p.SrcIA), HopPairs(d)), nil
}

// ReverseInPlace reverses the path so that it can be used to respond to the
// peer it arrived from, per spec: for Empty it is a no-op, for SCION it
// reverses segments/hops, flips ConsDir, recomputes currInf/currHf and swaps
// segment lengths and src/dst IAs.
func (p *RawPath) ReverseInPlace() error {
	switch p.Type {
	case slayers.PathTypeEmpty:
		return nil
	case slayers.PathTypeSCION:
		d, err := DecodeFull(p)
		if err != nil {
			return err
		}
		d.Reverse()
		raw, err := d.Encode()
		if err != nil {
			return err
		}
		p.Raw = raw
		p.SrcIA, p.DstIA = p.DstIA, p.SrcIA
		return nil
	default:
		return serrors.Wrap("reversal not supported for path type", scerr.ErrNotImplemented, "type", p.Type)
	}
}
