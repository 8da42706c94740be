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

	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// UDPHdrLen is the fixed size of a SCION/UDP header in bytes.
const UDPHdrLen = 8

// UDP is the SCION transport-layer UDP header: source port, destination
// port, length (header + payload) and checksum.
type UDP struct {
	BaseLayer
	SrcPort  uint16
	DstPort  uint16
	Len      uint16
	Checksum uint16
}

// Size returns the fixed header size.
func (u *UDP) Size() int { return UDPHdrLen }

// ChecksumOffset returns the byte offset of the Checksum field within the
// serialized header, for the header cache's checksum-patching pass.
func (u *UDP) ChecksumOffset() int { return 6 }

// SetPayload sets Len to the header size plus len(payload).
func (u *UDP) SetPayload(payload []byte) {
	u.Len = uint16(UDPHdrLen + len(payload))
}

// SetPorts sets the source and destination ports.
func (u *UDP) SetPorts(src, dst uint16) {
	u.SrcPort = src
	u.DstPort = dst
}

// FlowLabel is the UDP-specific contribution to the SCION flow label:
// hash(proto<<16 | sport<<8 | dport).
func (u *UDP) FlowLabel() uint32 {
	return flowHash(uint32(L4UDP)<<16 | uint32(u.SrcPort)<<8 | uint32(u.DstPort))
}

// Serialize reads or writes the header through stream.
func (u *UDP) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU16(stream, &u.SrcPort, 16, ec) {
		return false
	}
	if !serializeU16(stream, &u.DstPort, 16, ec) {
		return false
	}
	if !serializeU16(stream, &u.Len, 16, ec) {
		return false
	}
	return serializeU16(stream, &u.Checksum, 16, ec)
}

func (u *UDP) Print(out io.Writer, indent int) {
	fmt.Fprintf(out, "%*sUDP %d -> %d len=%d chksum=%#04x\n",
		indent, "", u.SrcPort, u.DstPort, u.Len, u.Checksum)
}

func (u *UDP) LayerType() gopacket.LayerType    { return LayerTypeSCIONUDP }
func (u *UDP) CanDecode() gopacket.LayerClass   { return LayerTypeSCIONUDP }
func (u *UDP) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (u *UDP) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < UDPHdrLen {
		df.SetTruncated()
		return serrors.Wrap("SCION/UDP header truncated", scerr.ErrInvalidPacket,
			"min", UDPHdrLen, "actual", len(data))
	}
	r := bitstream.NewReadStream(data[:UDPHdrLen])
	ec := bitstream.NewTraceError()
	if !u.Serialize(r, ec) {
		return serrors.Wrap("failed to decode SCION/UDP header", scerr.ErrInvalidPacket, "cause", ec.Err())
	}
	u.Contents = data[:UDPHdrLen]
	u.Payload = data[UDPHdrLen:]
	return nil
}

func (u *UDP) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	buf, err := b.PrependBytes(UDPHdrLen)
	if err != nil {
		return err
	}
	if opts.FixLengths {
		u.Len = uint16(UDPHdrLen + len(b.Bytes()) - UDPHdrLen)
	}
	w := bitstream.NewWriteStream(buf)
	ec := bitstream.NewTraceError()
	if !u.Serialize(w, ec) {
		return serrors.Wrap("failed to serialize SCION/UDP header", scerr.ErrLogicError, "cause", ec.Err())
	}
	return nil
}

func decodeSCIONUDP(data []byte, pb gopacket.PacketBuilder) error {
	u := &UDP{}
	if err := u.DecodeFromBytes(data, pb); err != nil {
		return err
	}
	pb.AddLayer(u)
	return pb.NextDecoder(gopacket.LayerTypePayload)
}

// flowHash is a small deterministic mixing function used only to derive
// the SCION flow label from an L4's identifying fields; it is not a
// cryptographic hash and carries no security property.
func flowHash(v uint32) uint32 {
	v ^= v >> 16
	v *= 0x7feb352d
	v ^= v >> 15
	v *= 0x846ca68b
	v ^= v >> 16
	return v & 0xfffff
}
