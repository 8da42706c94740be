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

	"github.com/google/gopacket"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// LineLen is the SCION header unit of length: hlen is expressed in these.
const LineLen = 4

// CmnHdrLen is the length of the SCION common header, before the address
// header.
const CmnHdrLen = 12

// MinHdrLineLen is the minimum number of LineLen-units a valid header must
// occupy (9 lines = 36 bytes: common header + two 4-byte-min addresses).
const MinHdrLineLen = 9

// SCIONVersion is the only header version this codec supports.
const SCIONVersion = 0

// BaseLayer implements the gopacket.Layer accessors shared by every layer
// in this package. Kept local rather than importing gopacket/layers to
// avoid pulling in its much larger surface for two methods.
type BaseLayer struct {
	Contents []byte
	Payload  []byte
}

func (b *BaseLayer) LayerContents() []byte { return b.Contents }
func (b *BaseLayer) LayerPayload() []byte  { return b.Payload }

// CommonHeader is the SCION common header plus the address header: version,
// traffic class and flow label; next-header/hlen/payload-length; path type
// and address type/length nibbles; the destination and source ISD-AS and
// host addresses.
type CommonHeader struct {
	BaseLayer

	Version      uint8
	TrafficClass uint8
	FlowID       uint32 // low 20 bits significant

	NextHdr    L4ProtocolType
	HdrLen     uint8 // in LineLen units
	PayloadLen uint16

	PathType PathType
	DstType  AddrType
	SrcType  AddrType

	DstIA   addr.IsdAsn
	SrcIA   addr.IsdAsn
	DstHost addr.IPAddress
	SrcHost addr.IPAddress
}

// AddrHdrLen returns the length in bytes of the address header (the two
// ISD-AS fields plus the two host addresses).
func (h *CommonHeader) AddrHdrLen() int {
	dstLen, _ := h.DstType.HostLen()
	srcLen, _ := h.SrcType.HostLen()
	return 16 + dstLen + srcLen
}

// Size returns the total length of the common+address header in bytes.
func (h *CommonHeader) Size() int {
	return CmnHdrLen + h.AddrHdrLen()
}

// Checksum returns the pseudo-header checksum contribution of the address
// header: the sum of the destination and source SCION address checksums.
func (h *CommonHeader) Checksum() uint32 {
	dst := addr.SCIONAddress{IA: h.DstIA, Host: h.DstHost}
	src := addr.SCIONAddress{IA: h.SrcIA, Host: h.SrcHost}
	return dst.Checksum() + src.Checksum()
}

// Serialize reads or writes the header through stream, depending on its
// direction.
func (h *CommonHeader) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	var v64 uint64
	var v16 uint16

	// Word 1: version(4) | traffic class(8) | flow label(20).
	if !serializeU8Bits(stream, &h.Version, 4, ec) {
		return false
	}
	if !stream.IsWriting() && h.Version != SCIONVersion {
		return bitstream.Report(ec, "unknown SCION version", "version", h.Version)
	}
	if !serializeU8Bits(stream, &h.TrafficClass, 8, ec) {
		return false
	}
	if !serializeU32(stream, &h.FlowID, 20, ec) {
		return false
	}

	// Word 2: next-header(8) | hlen(8) | payload-length(16).
	v8u := uint8(h.NextHdr)
	if !serializeU8Bits(stream, &v8u, 8, ec) {
		return false
	}
	h.NextHdr = L4ProtocolType(v8u)
	if !serializeU8Bits(stream, &h.HdrLen, 8, ec) {
		return false
	}
	if !serializeU16(stream, &h.PayloadLen, 16, ec) {
		return false
	}

	// Word 3: path-type(8) | dst-host-type(4) | src-host-type(4) | reserved(16).
	v8u = uint8(h.PathType)
	if !serializeU8Bits(stream, &v8u, 8, ec) {
		return false
	}
	h.PathType = PathType(v8u)

	packed := packAddrTypes(h.DstType, h.SrcType)
	if !serializeU8Bits(stream, &packed, 8, ec) {
		return false
	}
	dstType, srcType, ok := unpackAddrTypes(packed)
	if !ok {
		return bitstream.Report(ec, "unsupported host address type")
	}
	h.DstType, h.SrcType = dstType, srcType

	v16 = 0
	if !serializeU16(stream, &v16, 16, ec) {
		return false
	}
	if v16 != 0 {
		return bitstream.Report(ec, "non-zero reserved bits in common header")
	}

	// Address header.
	v64 = uint64(h.DstIA)
	if !stream.SerializeUint64(&v64, ec) {
		return false
	}
	h.DstIA = addr.IsdAsn(v64)
	v64 = uint64(h.SrcIA)
	if !stream.SerializeUint64(&v64, ec) {
		return false
	}
	h.SrcIA = addr.IsdAsn(v64)

	if !serializeHost(stream, h.DstType, &h.DstHost, ec) {
		return false
	}
	if !serializeHost(stream, h.SrcType, &h.SrcHost, ec) {
		return false
	}
	if uint32(h.HdrLen)*LineLen < MinHdrLineLen*LineLen {
		return bitstream.Report(ec, "header length below minimum", "hlen", h.HdrLen)
	}
	return true
}

func serializeU8Bits(stream bitstream.Stream, v *uint8, n int, ec bitstream.ErrorContext) bool {
	val := uint64(*v)
	if !stream.SerializeBits(&val, n, ec) {
		return false
	}
	*v = uint8(val)
	return true
}

func serializeU16(stream bitstream.Stream, v *uint16, n int, ec bitstream.ErrorContext) bool {
	val := uint64(*v)
	if !stream.SerializeBits(&val, n, ec) {
		return false
	}
	*v = uint16(val)
	return true
}

func serializeU32(stream bitstream.Stream, v *uint32, n int, ec bitstream.ErrorContext) bool {
	val := uint64(*v)
	if !stream.SerializeBits(&val, n, ec) {
		return false
	}
	*v = uint32(val)
	return true
}

func packAddrTypes(dst, src AddrType) uint8 {
	return uint8(dst)<<4 | uint8(src)
}

func unpackAddrTypes(b uint8) (dst, src AddrType, ok bool) {
	dst = AddrType(b >> 4 & 0xf)
	src = AddrType(b & 0xf)
	if _, ok1 := dst.HostLen(); !ok1 {
		return dst, src, false
	}
	if _, ok2 := src.HostLen(); !ok2 {
		return dst, src, false
	}
	return dst, src, true
}

func serializeHost(stream bitstream.Stream, t AddrType, host *addr.IPAddress, ec bitstream.ErrorContext) bool {
	n, ok := t.HostLen()
	if !ok {
		return report(ec, "unsupported host address type")
	}
	buf := make([]byte, n)
	if stream.IsWriting() {
		copy(buf, host.Bytes())
	}
	if !stream.SerializeBytes(buf, ec) {
		return false
	}
	if !stream.IsWriting() {
		parsed, err := addr.IPAddressFromBytes(buf)
		if err != nil {
			return report(ec, "invalid host address bytes")
		}
		*host = parsed
	}
	return true
}

func report(ec bitstream.ErrorContext, msg string, ctx ...interface{}) bool {
	return bitstream.Report(ec, msg, ctx...)
}

// Print writes a human-readable dump of the header to out, each line
// indented by indent spaces.
func (h *CommonHeader) Print(out io.Writer, indent int) {
	pad := fmt.Sprintf("%*s", indent, "")
	fmt.Fprintf(out, "%sSCION v%d tc=%d flow=%#x nh=%d hlen=%d plen=%d pathType=%d\n",
		pad, h.Version, h.TrafficClass, h.FlowID, h.NextHdr, h.HdrLen, h.PayloadLen, h.PathType)
	fmt.Fprintf(out, "%s  dst=%s,%s src=%s,%s\n", pad, h.DstIA, h.DstHost, h.SrcIA, h.SrcHost)
}

// --- gopacket adapters ---

func (h *CommonHeader) LayerType() gopacket.LayerType   { return LayerTypeSCION }
func (h *CommonHeader) CanDecode() gopacket.LayerClass   { return LayerClassSCION }
func (h *CommonHeader) NextLayerType() gopacket.LayerType {
	return nextLayerType(h.NextHdr)
}
func (h *CommonHeader) NetworkFlow() gopacket.Flow { return gopacket.Flow{} }

// DecodeFromBytes decodes the common+address header from data, per
// gopacket.DecodingLayer.
func (h *CommonHeader) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < CmnHdrLen {
		df.SetTruncated()
		return serrors.Wrap("packet shorter than common header", scerr.ErrInvalidPacket,
			"min", CmnHdrLen, "actual", len(data))
	}
	r := bitstream.NewReadStream(data)
	ec := bitstream.NewTraceError()
	if !h.Serialize(r, ec) {
		df.SetTruncated()
		return serrors.Wrap("failed to decode SCION header", scerr.ErrInvalidPacket, "cause", ec.Err())
	}
	hdrBytes := int(h.HdrLen) * LineLen
	if len(data) < hdrBytes {
		df.SetTruncated()
		return serrors.Wrap("buffer shorter than declared header length", scerr.ErrInvalidPacket,
			"expected", hdrBytes, "actual", len(data))
	}
	h.Contents = data[:h.Size()]
	h.Payload = data[h.Size():]
	return nil
}

// SerializeTo serializes the common+address header, per
// gopacket.SerializableLayer. It does not compute hlen/plen; callers build
// those through the header cache (component F), which owns the full
// header assembly.
func (h *CommonHeader) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	size := h.Size()
	buf, err := b.PrependBytes(size)
	if err != nil {
		return err
	}
	w := bitstream.NewWriteStream(buf)
	ec := bitstream.NewTraceError()
	if !h.Serialize(w, ec) {
		return serrors.Wrap("failed to serialize SCION header", scerr.ErrLogicError, "cause", ec.Err())
	}
	return nil
}

func decodeSCION(data []byte, pb gopacket.PacketBuilder) error {
	h := &CommonHeader{}
	if err := h.DecodeFromBytes(data, pb); err != nil {
		return err
	}
	pb.AddLayer(h)
	pb.SetNetworkLayer(h)
	return pb.NextDecoder(h.NextLayerType())
}

func nextLayerType(t L4ProtocolType) gopacket.LayerType {
	switch t {
	case L4HopByHop:
		return LayerTypeHopByHopExtn
	case L4End2End:
		return LayerTypeEndToEndExtn
	case L4UDP:
		return LayerTypeSCIONUDP
	case L4SCMP:
		return LayerTypeSCMP
	default:
		return gopacket.LayerTypePayload
	}
}
