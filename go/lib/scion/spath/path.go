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

package spath

import (
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// Decoded is the fully-parsed view of a SCION path: the path-meta header
// plus one InfoField per segment and one HopField per hop.
type Decoded struct {
	Meta       slayers.MetaHdr
	InfoFields []slayers.InfoField
	HopFields  []slayers.HopField
}

// DecodeFull parses p.Raw (which must be PathTypeSCION) into a Decoded.
func DecodeFull(p *RawPath) (*Decoded, error) {
	if p.Type != slayers.PathTypeSCION {
		return nil, serrors.Wrap("not a SCION path", scerr.ErrInvalidArgument, "type", p.Type)
	}
	meta, err := DecodeMeta(p.Raw)
	if err != nil {
		return nil, err
	}
	d := &Decoded{Meta: *meta}
	r := bitstream.NewReadStream(p.Raw)
	ec := bitstream.NewTraceError()
	if !r.Seek(slayers.MetaHdrLen, 0, ec) {
		return nil, serrors.Wrap("seek past meta header failed", scerr.ErrInvalidPacket, "cause", ec.Err())
	}
	numInf := meta.NumINF()
	d.InfoFields = make([]slayers.InfoField, numInf)
	for i := 0; i < numInf; i++ {
		if !d.InfoFields[i].Serialize(r, ec) {
			return nil, serrors.Wrap("failed to decode info field", scerr.ErrInvalidPacket, "idx", i, "cause", ec.Err())
		}
	}
	numHop := meta.NumHops()
	d.HopFields = make([]slayers.HopField, numHop)
	for i := 0; i < numHop; i++ {
		if !d.HopFields[i].Serialize(r, ec) {
			return nil, serrors.Wrap("failed to decode hop field", scerr.ErrInvalidPacket, "idx", i, "cause", ec.Err())
		}
	}
	return d, nil
}

// Size returns the wire length of the encoded path.
func (d *Decoded) Size() int {
	return slayers.MetaHdrLen + slayers.InfoLen*len(d.InfoFields) + slayers.HopLen*len(d.HopFields)
}

// Encode serializes the decoded path back into raw bytes.
func (d *Decoded) Encode() ([]byte, error) {
	buf := make([]byte, d.Size())
	w := bitstream.NewWriteStream(buf)
	ec := bitstream.NewTraceError()
	if !d.Meta.Serialize(w, ec) {
		return nil, serrors.Wrap("failed to encode path-meta header", scerr.ErrLogicError, "cause", ec.Err())
	}
	for i := range d.InfoFields {
		if !d.InfoFields[i].Serialize(w, ec) {
			return nil, serrors.Wrap("failed to encode info field", scerr.ErrLogicError, "idx", i, "cause", ec.Err())
		}
	}
	for i := range d.HopFields {
		if !d.HopFields[i].Serialize(w, ec) {
			return nil, serrors.Wrap("failed to encode hop field", scerr.ErrLogicError, "idx", i, "cause", ec.Err())
		}
	}
	return buf, nil
}

// Reverse reverses the decoded path in place: reverses segment and hop
// order, flips every info field's ConsDir bit, and recomputes currInf/currHf
// and the segment-length ordering.
func (d *Decoded) Reverse() {
	numInf := len(d.InfoFields)
	numHop := len(d.HopFields)

	for i, j := 0, numInf-1; i < j; i, j = i+1, j-1 {
		d.InfoFields[i], d.InfoFields[j] = d.InfoFields[j], d.InfoFields[i]
	}
	for i := range d.InfoFields {
		d.InfoFields[i].ConsDir = !d.InfoFields[i].ConsDir
	}
	for i, j := 0, numHop-1; i < j; i, j = i+1, j-1 {
		d.HopFields[i], d.HopFields[j] = d.HopFields[j], d.HopFields[i]
	}

	d.Meta.CurrINF = uint8(numInf - int(d.Meta.CurrINF) - 1)
	d.Meta.CurrHF = uint8(numHop - int(d.Meta.CurrHF) - 1)

	switch numInf {
	case 2:
		d.Meta.SegLen[0], d.Meta.SegLen[1] = d.Meta.SegLen[1], d.Meta.SegLen[0]
	case 3:
		d.Meta.SegLen[0], d.Meta.SegLen[2] = d.Meta.SegLen[2], d.Meta.SegLen[0]
	}
}
