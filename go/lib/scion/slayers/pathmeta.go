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

package slayers

import (
	"fmt"
	"io"

	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
)

// MetaHdrLen is the fixed size of a SCION path-meta header.
const MetaHdrLen = 4

// InfoLen is the fixed size of one InfoField.
const InfoLen = 8

// HopLen is the fixed size of one HopField.
const HopLen = 12

// MetaHdr is the SCION path-meta header: current info/hop-field indices and
// the three segment lengths.
type MetaHdr struct {
	CurrINF uint8
	CurrHF  uint8
	SegLen  [3]uint8
}

// NumINF reports how many of the three segments are present (nonzero
// length), counting from SegLen[0].
func (m *MetaHdr) NumINF() int {
	n := 0
	for _, l := range m.SegLen {
		if l > 0 {
			n++
		}
	}
	return n
}

// NumHops reports the total hop-field count across all segments.
func (m *MetaHdr) NumHops() int {
	total := 0
	for _, l := range m.SegLen {
		total += int(l)
	}
	return total
}

// Serialize reads or writes the path-meta header:
// CurrINF(2)|CurrHF(6)|Reserved(6)|SegLen[0](6)|SegLen[1](6)|SegLen[2](6).
func (m *MetaHdr) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU8Bits(stream, &m.CurrINF, 2, ec) {
		return false
	}
	if !serializeU8Bits(stream, &m.CurrHF, 6, ec) {
		return false
	}
	var reserved uint8
	if !serializeU8Bits(stream, &reserved, 6, ec) {
		return false
	}
	if stream.IsWriting() {
		reserved = 0
	} else if reserved != 0 {
		return bitstream.Report(ec, "non-zero reserved bits in path-meta header")
	}
	for i := range m.SegLen {
		if !serializeU8Bits(stream, &m.SegLen[i], 6, ec) {
			return false
		}
	}
	if m.SegLen[2] > 0 && m.SegLen[1] == 0 {
		return bitstream.Report(ec, "segLen[2] set without segLen[1]")
	}
	if m.SegLen[1] > 0 && m.SegLen[0] == 0 {
		return bitstream.Report(ec, "segLen[1] set without segLen[0]")
	}
	numSegs := m.NumINF()
	if numSegs > 0 && int(m.CurrINF) >= numSegs {
		return bitstream.Report(ec, "currInf out of range", "currInf", m.CurrINF, "numSegs", numSegs)
	}
	numHops := m.NumHops()
	if numHops > 0 && int(m.CurrHF) >= numHops {
		return bitstream.Report(ec, "currHf out of range", "currHf", m.CurrHF, "numHops", numHops)
	}
	return true
}

// InfoField is a per-segment header: construction-direction/peering flags,
// segment ID, and construction timestamp.
type InfoField struct {
	ConsDir   bool
	Peering   bool
	SegID     uint16
	Timestamp uint32
}

func (f *InfoField) Size() int { return InfoLen }

// Serialize reads or writes Flags(8)|Reserved(8)|SegID(16)|Timestamp(32).
func (f *InfoField) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	var flags uint8
	if stream.IsWriting() {
		if f.ConsDir {
			flags |= 0x1
		}
		if f.Peering {
			flags |= 0x2
		}
	}
	if !serializeU8Bits(stream, &flags, 8, ec) {
		return false
	}
	if !stream.IsWriting() {
		f.ConsDir = flags&0x1 != 0
		f.Peering = flags&0x2 != 0
	}
	var reserved uint8
	if !serializeU8Bits(stream, &reserved, 8, ec) {
		return false
	}
	if !serializeU16(stream, &f.SegID, 16, ec) {
		return false
	}
	return serializeU32(stream, &f.Timestamp, 32, ec)
}

func (f *InfoField) Print(out io.Writer, indent int) {
	fmt.Fprintf(out, "%*sInfoField consDir=%v peering=%v segID=%#04x ts=%d\n",
		indent, "", f.ConsDir, f.Peering, f.SegID, f.Timestamp)
}

// HopField is a per-router forwarding record: expiry, ingress/egress
// interfaces and a 6-byte MAC.
type HopField struct {
	IngressRouterAlert bool
	EgressRouterAlert  bool
	ExpTime            uint8
	ConsIngress        uint16
	ConsEgress         uint16
	Mac                [6]byte
}

func (f *HopField) Size() int { return HopLen }

// Serialize reads or writes Flags(8)|ExpTime(8)|ConsIngress(16)|ConsEgress(16)|MAC(48).
func (f *HopField) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	var flags uint8
	if stream.IsWriting() {
		if f.IngressRouterAlert {
			flags |= 0x1
		}
		if f.EgressRouterAlert {
			flags |= 0x2
		}
	}
	if !serializeU8Bits(stream, &flags, 8, ec) {
		return false
	}
	if !stream.IsWriting() {
		f.IngressRouterAlert = flags&0x1 != 0
		f.EgressRouterAlert = flags&0x2 != 0
	}
	if !serializeU8Bits(stream, &f.ExpTime, 8, ec) {
		return false
	}
	if !serializeU16(stream, &f.ConsIngress, 16, ec) {
		return false
	}
	if !serializeU16(stream, &f.ConsEgress, 16, ec) {
		return false
	}
	return stream.SerializeBytes(f.Mac[:], ec)
}

func (f *HopField) Print(out io.Writer, indent int) {
	fmt.Fprintf(out, "%*sHopField ingress=%d egress=%d exp=%d\n",
		indent, "", f.ConsIngress, f.ConsEgress, f.ExpTime)
}
