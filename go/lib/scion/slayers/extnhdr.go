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
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
)

// OptionType identifies a hop-by-hop/end-to-end option TLV's type byte.
type OptionType uint8

const (
	OptTypePad1       OptionType = 0
	OptTypePadN       OptionType = 1
	OptTypeSPAO       OptionType = 2
	OptTypeIdInt      OptionType = 253
	OptTypeIdIntEntry OptionType = 254
)

// ExtnHdrLen is the fixed size of an HBH/E2E options-area header.
const ExtnHdrLen = 2

// ExtnHeader is the 2-byte header fronting an HBH or E2E options area:
// next-header and ext-len (in 4-byte units, minus the 2-byte header itself).
type ExtnHeader struct {
	NextHdr L4ProtocolType
	ExtLen  uint8
}

// AreaLen returns the options-area length in bytes, 4*ExtLen+2.
func (h *ExtnHeader) AreaLen() int { return 4*int(h.ExtLen) + ExtnHdrLen }

func (h *ExtnHeader) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	v := uint8(h.NextHdr)
	if !serializeU8Bits(stream, &v, 8, ec) {
		return false
	}
	h.NextHdr = L4ProtocolType(v)
	return serializeU8Bits(stream, &h.ExtLen, 8, ec)
}

// OptionTLV is one raw hop-by-hop/end-to-end option: a type byte, and
// (unless Pad1) a length byte followed by that many data bytes.
type OptionTLV struct {
	Type OptionType
	Data []byte
}

// Size returns the TLV's wire size: 1 byte for Pad1, 2+len(Data) otherwise.
func (o *OptionTLV) Size() int {
	if o.Type == OptTypePad1 {
		return 1
	}
	return 2 + len(o.Data)
}

func (o *OptionTLV) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	v := uint8(o.Type)
	if !serializeU8Bits(stream, &v, 8, ec) {
		return false
	}
	o.Type = OptionType(v)
	if o.Type == OptTypePad1 {
		return true
	}
	dataLen := uint8(len(o.Data))
	if !serializeU8Bits(stream, &dataLen, 8, ec) {
		return false
	}
	if !stream.IsWriting() {
		o.Data = make([]byte, dataLen)
	}
	return stream.SerializeBytes(o.Data, ec)
}

// SPAOMinDataLen is the minimum dataLen an SPAO option must declare: the
// fixed fields before the variable-length authenticator.
const SPAOMinDataLen = 12

// SPAO is the SCION Packet Authenticator Option body (the authentication
// tag itself is transported opaquely; this library does not verify it).
type SPAO struct {
	SPI           uint32
	Algorithm     uint8
	Timestamp     uint64 // low 48 bits significant
	Authenticator []byte // 0..36 bytes
}

// DataLen is the option's declared data length: the fixed fields plus the
// authenticator.
func (s *SPAO) DataLen() int { return SPAOMinDataLen + len(s.Authenticator) }

func (s *SPAO) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !stream.SerializeUint32(&s.SPI, ec) {
		return false
	}
	if !serializeU8Bits(stream, &s.Algorithm, 8, ec) {
		return false
	}
	var reserved uint8
	if !serializeU8Bits(stream, &reserved, 8, ec) {
		return false
	}
	if !serializeU64Bits(stream, &s.Timestamp, 48, ec) {
		return false
	}
	return true
}

func serializeU64Bits(stream bitstream.Stream, v *uint64, n int, ec bitstream.ErrorContext) bool {
	return stream.SerializeBits(v, n, ec)
}

// ParseSPAO decodes an SPAO body from an option's raw Data, given its
// declared dataLen (the authenticator length is dataLen-SPAOMinDataLen).
func ParseSPAO(data []byte) (*SPAO, bool) {
	if len(data) < SPAOMinDataLen {
		return nil, false
	}
	s := &SPAO{}
	r := bitstream.NewReadStream(data)
	ec := bitstream.NullError
	if !s.Serialize(r, ec) {
		return nil, false
	}
	authLen := len(data) - SPAOMinDataLen
	if authLen > 36 {
		return nil, false
	}
	s.Authenticator = append([]byte(nil), data[SPAOMinDataLen:]...)
	_ = authLen
	return s, true
}

// EncodeSPAO serializes s into a freshly allocated Data buffer sized to
// DataLen(), suitable for use as an OptionTLV's Data.
func EncodeSPAO(s *SPAO) []byte {
	buf := make([]byte, s.DataLen())
	w := bitstream.NewWriteStream(buf)
	s.Serialize(w, bitstream.NullError)
	copy(buf[SPAOMinDataLen:], s.Authenticator)
	return buf
}
