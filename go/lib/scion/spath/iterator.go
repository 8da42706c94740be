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

// HopIterator walks the hop fields of a Decoded path and yields logical
// hops: (egressOut, ingressIn) pairs in path direction. At a segment
// boundary, the two hop fields that encode the same transit AS (the last of
// one segment and the first of the next) are consumed together rather than
// each producing its own pair — except at a peering-segment boundary, where
// they are not merged (the "segChange" exception, see spec §4.D/§9).
type HopIterator struct {
	hops   []HopField
	hopDir uint64 // bit i set: hop field i belongs to a ConsDir segment
	segChg uint64 // bit i set: hop field i starts a merge-boundary
	index  int
	prev   HopPair
	cur    HopPair
	done   bool
}

// HopField is the minimal view of a hop field the iterator needs: its
// construction-direction ingress/egress interface IDs.
type HopField struct {
	ConsIngress uint16
	ConsEgress  uint16
}

// NewHopIterator builds an iterator over d's hop fields.
func NewHopIterator(d *Decoded) *HopIterator {
	it := &HopIterator{}
	it.hops = make([]HopField, len(d.HopFields))
	for i, hf := range d.HopFields {
		it.hops[i] = HopField{ConsIngress: hf.ConsIngress, ConsEgress: hf.ConsEgress}
	}
	if len(it.hops) > 64 {
		it.hops = it.hops[:64]
	}
	var sum uint
	for i, inf := range d.InfoFields {
		if i >= len(d.Meta.SegLen) {
			break
		}
		segLen := uint(d.Meta.SegLen[i])
		if inf.ConsDir {
			it.hopDir |= mask(segLen) << sum
		}
		if !inf.Peering || i == 0 {
			it.segChg |= 1 << sum
		}
		sum += segLen
	}
	it.advance()
	return it
}

func mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// Next advances the iterator and reports whether a value is available.
func (it *HopIterator) Next() bool {
	if it.done {
		return false
	}
	it.advance()
	return !it.done
}

// Value returns the current logical hop pair: the previous hop field's
// path-direction egress and the current hop field's path-direction ingress.
func (it *HopIterator) Value() HopPair {
	return HopPair{Ingress: it.cur.Ingress, Egress: it.prev.Egress}
}

func (it *HopIterator) advance() {
	steps := 1
	if it.segChg&(1<<uint(it.index)) != 0 {
		steps = 2
	}
	for i := 0; i < steps; i++ {
		if it.index >= len(it.hops) {
			it.done = true
			return
		}
		hf := it.hops[it.index]
		it.prev = it.cur
		if it.hopDir&(1<<uint(it.index)) != 0 {
			it.cur = HopPair{Ingress: hf.ConsIngress, Egress: hf.ConsEgress}
		} else {
			it.cur = HopPair{Ingress: hf.ConsEgress, Egress: hf.ConsIngress}
		}
		it.index++
	}
}

// HopPairs returns the full sequence of logical (egressOut, ingressIn)
// hops for d, used for path digests and interface-list attributes.
func HopPairs(d *Decoded) []HopPair {
	if len(d.HopFields) == 0 {
		return nil
	}
	it := NewHopIterator(d)
	var out []HopPair
	for !it.done {
		out = append(out, it.Value())
		it.Next()
	}
	return out
}
