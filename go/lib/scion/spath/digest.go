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
	"crypto/rand"
	"encoding/binary"
	"math/bits"
	"sync"
)

// Digest is a 128-bit non-cryptographic fingerprint of a path's interface
// sequence. Digests are stable within a process only: they depend on a
// process-random seed and must never be persisted or transmitted (spec §9
// Open Questions).
type Digest [16]byte

// maxDigestHops bounds how many (ingress,egress) pairs contribute to a
// digest, matching the reference's fixed 64-entry stack buffer. No valid
// SCION path can exceed 64 hop fields, so this bound is never actually hit.
const maxDigestHops = 64

var (
	seedOnce sync.Once
	seed1    uint64
	seed2    uint64
)

func ensureSeed() {
	seedOnce.Do(func() {
		var b [16]byte
		if _, err := rand.Read(b[:]); err != nil {
			// crypto/rand failing is catastrophic for the whole process;
			// fall back to a fixed seed rather than panicking, since a
			// digest collision is not a security property.
			seed1, seed2 = 0x9e3779b97f4a7c15, 0xc2b2ae3d27d4eb4f
			return
		}
		seed1 = binary.LittleEndian.Uint64(b[0:8])
		seed2 = binary.LittleEndian.Uint64(b[8:16])
	})
}

// HopPair is one (ingress,egress) interface pair on a path, in path
// direction.
type HopPair struct {
	Ingress uint16
	Egress  uint16
}

// ComputeDigest hashes srcIA and the sequence of hop pairs (capped at the
// first 64) with MurmurHash3 x64-128, seeded per-process.
func ComputeDigest(srcIA uint64, hops []HopPair) Digest {
	ensureSeed()
	if len(hops) > maxDigestHops {
		hops = hops[:maxDigestHops]
	}
	data := make([]byte, 8+4*len(hops))
	binary.LittleEndian.PutUint64(data[0:8], srcIA)
	for i, h := range hops {
		off := 8 + 4*i
		binary.LittleEndian.PutUint16(data[off:], h.Ingress)
		binary.LittleEndian.PutUint16(data[off+2:], h.Egress)
	}
	h1, h2 := murmur3x64128(data, seed1)
	h3, h4 := murmur3x64128(data, seed2)
	var d Digest
	binary.LittleEndian.PutUint64(d[0:8], h1^h3)
	binary.LittleEndian.PutUint64(d[8:16], h2^h4)
	return d
}

// murmur3x64128 is a direct translation of the public-domain MurmurHash3
// x64-128 algorithm (Austin Appleby), returning its two 64-bit output
// words. Not a cryptographic hash; used only for path-digest fingerprinting.
func murmur3x64128(data []byte, seed uint64) (h1, h2 uint64) {
	const c1 = 0x87c37b91114253d5
	const c2 = 0x4cf5ad432745937f

	h1, h2 = seed, seed
	nblocks := len(data) / 16

	for i := 0; i < nblocks; i++ {
		block := data[i*16 : i*16+16]
		k1 := binary.LittleEndian.Uint64(block[0:8])
		k2 := binary.LittleEndian.Uint64(block[8:16])

		k1 *= c1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= c2
		h1 ^= k1

		h1 = bits.RotateLeft64(h1, 27)
		h1 += h2
		h1 = h1*5 + 0x52dce729

		k2 *= c2
		k2 = bits.RotateLeft64(k2, 33)
		k2 *= c1
		h2 ^= k2

		h2 = bits.RotateLeft64(h2, 31)
		h2 += h1
		h2 = h2*5 + 0x38495ab5
	}

	tail := data[nblocks*16:]
	var k1, k2 uint64
	switch len(tail) {
	case 15:
		k2 ^= uint64(tail[14]) << 48
		fallthrough
	case 14:
		k2 ^= uint64(tail[13]) << 40
		fallthrough
	case 13:
		k2 ^= uint64(tail[12]) << 32
		fallthrough
	case 12:
		k2 ^= uint64(tail[11]) << 24
		fallthrough
	case 11:
		k2 ^= uint64(tail[10]) << 16
		fallthrough
	case 10:
		k2 ^= uint64(tail[9]) << 8
		fallthrough
	case 9:
		k2 ^= uint64(tail[8])
		k2 *= c2
		k2 = bits.RotateLeft64(k2, 33)
		k2 *= c1
		h2 ^= k2
		fallthrough
	case 8:
		k1 ^= uint64(tail[7]) << 56
		fallthrough
	case 7:
		k1 ^= uint64(tail[6]) << 48
		fallthrough
	case 6:
		k1 ^= uint64(tail[5]) << 40
		fallthrough
	case 5:
		k1 ^= uint64(tail[4]) << 32
		fallthrough
	case 4:
		k1 ^= uint64(tail[3]) << 24
		fallthrough
	case 3:
		k1 ^= uint64(tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint64(tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint64(tail[0])
		k1 *= c1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= c2
		h1 ^= k1
	}

	h1 ^= uint64(len(data))
	h2 ^= uint64(len(data))
	h1 += h2
	h2 += h1
	h1 = fmix64(h1)
	h2 = fmix64(h2)
	h1 += h2
	h2 += h1
	return h1, h2
}

func fmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}
