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

// Package extn implements the SCION hop-by-hop and end-to-end extension
// header mechanism: TLV-encoded options with alignment padding, and the
// SPAO and ID-INT extensions built on top of it.
package extn

import (
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
)

// Category distinguishes hop-by-hop from end-to-end extensions.
type Category int

const (
	HopByHop Category = iota
	EndToEnd
)

// Extension is one hop-by-hop or end-to-end option carried in a packet.
// An extension not marked Valid is skipped by size computation and
// emission; Parse marks an extension Valid only if its option type was
// actually present in the parsed stream.
type Extension interface {
	Category() Category
	OptionType() slayers.OptionType
	Valid() bool
	SetValid(bool)

	// Size returns the extension's wire size in bytes, including its own
	// internal alignment padding. pos is the byte offset from the start of
	// the options area, needed to compute that padding.
	Size(pos int) int

	Parse(r bitstream.Stream, ec bitstream.ErrorContext) bool
	Write(w bitstream.Stream, pos int, ec bitstream.ErrorContext) bool
}

// padding returns the number of bytes needed to align n+offset to align
// (a power of two).
func padding(n, align, offset int) int {
	total := n + offset
	rem := total % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// insertPadding writes n bytes of Pad1/PadN options to the stream.
func insertPadding(n int, w bitstream.Stream, ec bitstream.ErrorContext) bool {
	if n == 0 {
		return true
	}
	opt := slayers.OptionTLV{}
	if n == 1 {
		opt.Type = slayers.OptTypePad1
	} else {
		opt.Type = slayers.OptTypePadN
		opt.Data = make([]byte, n-2)
	}
	return opt.Serialize(w, ec)
}

// ComputeSize computes the HBH and E2E options-area sizes (0 if no
// extension of that category is valid), each a multiple of 4 bytes.
// Hop-by-hop extensions are sized before end-to-end ones: their ordering
// on the wire is fixed, and an extension's own padding depends on its
// position within its area.
func ComputeSize(exts []Extension) (hbh, e2e int) {
	anyHBH, anyE2E := false, false
	for _, e := range exts {
		if !e.Valid() {
			continue
		}
		switch e.Category() {
		case HopByHop:
			anyHBH = true
		case EndToEnd:
			anyE2E = true
		}
	}
	if anyHBH {
		hbh = slayers.ExtnHdrLen
		for _, e := range exts {
			if e.Valid() && e.Category() == HopByHop {
				hbh += e.Size(hbh)
			}
		}
	}
	if anyE2E {
		e2e = slayers.ExtnHdrLen
		for _, e := range exts {
			if e.Valid() && e.Category() == EndToEnd {
				e2e += e.Size(e2e)
			}
		}
	}
	return hbh, e2e
}

// Write emits every valid extension of the given category in order,
// padding between them as each reports it needs, then pads the whole area
// out to the next 4-byte boundary. areaLen is the value ComputeSize
// returned for this category (used only to size the final padding).
func Write(w bitstream.Stream, exts []Extension, cat Category, areaLen int, ec bitstream.ErrorContext) bool {
	pos := slayers.ExtnHdrLen
	for _, e := range exts {
		if !e.Valid() || e.Category() != cat {
			continue
		}
		if !e.Write(w, pos, ec) {
			return false
		}
		pos += e.Size(pos)
	}
	if pos != areaLen {
		if !insertPadding(areaLen-pos, w, ec) {
			return false
		}
	}
	return true
}

// Parse reads a TLV stream of options, dispatching each recognized type to
// the matching extension's Parse method and marking it Valid. All
// extensions are first marked invalid; unrecognized option types
// (including Pad1/PadN) are consumed and discarded. r must be scoped to
// exactly the options area (e.g. a stream over the HBH/E2E area's bytes
// only) so that Lookahead fails at the area boundary rather than reading
// into the next header. Lookahead-based dispatch requires a concrete
// ReadStream; extensions never write during Parse.
func Parse(r *bitstream.ReadStream, exts []Extension, ec bitstream.ErrorContext) bool {
	for _, e := range exts {
		e.SetValid(false)
	}
	for {
		b, ok := r.Lookahead(1, ec)
		if !ok {
			break
		}
		optType := slayers.OptionType(b[0])
		matched := false
		for _, e := range exts {
			if e.OptionType() == optType {
				if !e.Parse(r, ec) {
					return false
				}
				e.SetValid(true)
				matched = true
				break
			}
		}
		if !matched {
			opt := slayers.OptionTLV{}
			if !opt.Serialize(r, ec) {
				return false
			}
		}
	}
	return true
}
