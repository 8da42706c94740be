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

// ScmpType identifies the kind of SCMP message.
type ScmpType uint8

const (
	ScmpTypeDstUnreach   ScmpType = 1
	ScmpTypePacketTooBig ScmpType = 2
	ScmpTypeParamProblem ScmpType = 4
	ScmpTypeExtIfDown    ScmpType = 5
	ScmpTypeIntConnDown  ScmpType = 6

	ScmpTypeEchoRequest  ScmpType = 128
	ScmpTypeEchoReply    ScmpType = 129
	ScmpTypeTraceRequest ScmpType = 130
	ScmpTypeTraceReply   ScmpType = 131
)

// IsError reports whether a message of this type is an error message
// (types 1,2,4,5,6), carrying the offending packet as payload, as opposed
// to an informational message (128..131).
func (t ScmpType) IsError() bool {
	switch t {
	case ScmpTypeDstUnreach, ScmpTypePacketTooBig, ScmpTypeParamProblem,
		ScmpTypeExtIfDown, ScmpTypeIntConnDown:
		return true
	default:
		return false
	}
}

// DstUnreachCode enumerates Code values for ScmpTypeDstUnreach.
type DstUnreachCode uint8

const (
	CodeNoRoute DstUnreachCode = iota
	CodeDenied
	CodeBeyondScope
	CodeAddrUnreach
	CodePortUnreach
	CodePolicy
	CodeRejectRoute
)

// ParamProblemCode enumerates Code values for ScmpTypeParamProblem.
type ParamProblemCode uint8

const (
	CodeErrHdrField ParamProblemCode = iota
	CodeUnknownNextHdr
	CodeInvalComHdr
	CodeInvalAddrHdr
	CodeInvalPathHdr
	CodeInvalExtHdr
	CodeInvalHBHOpt
	CodeInvalE2EOpt
	CodeUnknownHBHOpt
	CodeUnknownE2EOpt
)

// ScmpHdrLen is the size of the fixed SCMP header: type, code, checksum.
const ScmpHdrLen = 4

// SCMP is the fixed SCMP header. Body holds the decoded type-specific
// payload; Quoted holds the offending packet bytes for error messages.
type SCMP struct {
	BaseLayer
	Type     ScmpType
	Code     uint8
	Checksum uint16
	Body     ScmpBody
	Quoted   []byte
}

// ScmpBody is implemented by every concrete SCMP message body.
type ScmpBody interface {
	Size() int
	Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool
}

// FlowLabel is the SCMP-specific contribution to the SCION flow label:
// hash(proto).
func (s *SCMP) FlowLabel() uint32 {
	return flowHash(uint32(L4SCMP))
}

func (s *SCMP) Size() int {
	bodySize := 0
	if s.Body != nil {
		bodySize = s.Body.Size()
	}
	return ScmpHdrLen + bodySize + len(s.Quoted)
}

// ChecksumOffset returns the byte offset of the Checksum field within the
// serialized header, for the header cache's checksum-patching pass.
func (s *SCMP) ChecksumOffset() int { return 2 }

// Serialize reads or writes the fixed header, body and (for error types)
// quoted packet through stream, direction-agnostic like every other codec
// in this package. Unlike DecodeFromBytes/SerializeTo (the gopacket
// adapters, which only cover the decode/prepend-buffer shape), this is the
// entry point the header cache (snet.HeaderCache) uses to place an SCMP
// message inline among the other headers of a packet under construction.
// In read mode, Quoted must already be sized to the expected remainder
// (the header cache never reads; unpacking an inbound SCMP message instead
// goes through DecodeFromBytes, which slices Quoted directly off the
// input buffer without this constraint).
func (s *SCMP) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	v := uint8(s.Type)
	if !serializeU8Bits(stream, &v, 8, ec) {
		return false
	}
	s.Type = ScmpType(v)
	if !serializeU8Bits(stream, &s.Code, 8, ec) {
		return false
	}
	if !serializeU16(stream, &s.Checksum, 16, ec) {
		return false
	}
	if !stream.IsWriting() && s.Body == nil {
		body, _, err := newScmpBody(s.Type)
		if err != nil {
			return bitstream.Report(ec, "unknown SCMP type", "type", s.Type)
		}
		s.Body = body
	}
	if s.Body != nil && !s.Body.Serialize(stream, ec) {
		return false
	}
	if s.Type.IsError() {
		return stream.SerializeBytes(s.Quoted, ec)
	}
	return true
}

func (s *SCMP) Print(out io.Writer, indent int) {
	fmt.Fprintf(out, "%*sSCMP type=%d code=%d chksum=%#04x\n", indent, "", s.Type, s.Code, s.Checksum)
}

func (s *SCMP) LayerType() gopacket.LayerType    { return LayerTypeSCMP }
func (s *SCMP) CanDecode() gopacket.LayerClass   { return LayerTypeSCMP }
func (s *SCMP) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (s *SCMP) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < ScmpHdrLen {
		df.SetTruncated()
		return serrors.Wrap("SCMP header truncated", scerr.ErrInvalidPacket, "min", ScmpHdrLen, "actual", len(data))
	}
	s.Type = ScmpType(data[0])
	s.Code = data[1]
	s.Checksum = uint16(data[2])<<8 | uint16(data[3])

	body, bodySize, err := newScmpBody(s.Type)
	if err != nil {
		return err
	}
	s.Body = body
	rest := data[ScmpHdrLen:]
	if bodySize > len(rest) {
		df.SetTruncated()
		return serrors.Wrap("SCMP body truncated", scerr.ErrInvalidPacket, "expected", bodySize, "actual", len(rest))
	}
	r := bitstream.NewReadStream(rest[:bodySize])
	ec := bitstream.NewTraceError()
	if body != nil && !body.Serialize(r, ec) {
		return serrors.Wrap("failed to decode SCMP body", scerr.ErrInvalidPacket, "cause", ec.Err())
	}
	s.Contents = data[:ScmpHdrLen+bodySize]
	s.Payload = rest[bodySize:]
	if s.Type.IsError() {
		s.Quoted = s.Payload
	}
	return nil
}

func (s *SCMP) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bodySize := 0
	if s.Body != nil {
		bodySize = s.Body.Size()
	}
	buf, err := b.PrependBytes(ScmpHdrLen + bodySize)
	if err != nil {
		return err
	}
	buf[0] = uint8(s.Type)
	buf[1] = s.Code
	buf[2] = 0
	buf[3] = 0
	if s.Body != nil {
		w := bitstream.NewWriteStream(buf[ScmpHdrLen:])
		ec := bitstream.NewTraceError()
		if !s.Body.Serialize(w, ec) {
			return serrors.Wrap("failed to serialize SCMP body", scerr.ErrLogicError, "cause", ec.Err())
		}
	}
	if opts.ComputeChecksums {
		buf[2] = uint8(s.Checksum >> 8)
		buf[3] = uint8(s.Checksum)
	}
	return nil
}

func decodeSCMP(data []byte, pb gopacket.PacketBuilder) error {
	s := &SCMP{}
	if err := s.DecodeFromBytes(data, pb); err != nil {
		return err
	}
	pb.AddLayer(s)
	return pb.NextDecoder(gopacket.LayerTypePayload)
}

func newScmpBody(t ScmpType) (ScmpBody, int, error) {
	switch t {
	case ScmpTypeDstUnreach:
		return &ScmpDstUnreach{}, 4, nil
	case ScmpTypePacketTooBig:
		return &ScmpPacketTooBig{}, 4, nil
	case ScmpTypeParamProblem:
		return &ScmpParamProblem{}, 4, nil
	case ScmpTypeExtIfDown:
		return &ScmpExtIfDown{}, 16, nil
	case ScmpTypeIntConnDown:
		return &ScmpIntConnDown{}, 24, nil
	case ScmpTypeEchoRequest, ScmpTypeEchoReply:
		return &ScmpEcho{}, 4, nil
	case ScmpTypeTraceRequest:
		return &ScmpTraceRequest{}, 20, nil
	case ScmpTypeTraceReply:
		return &ScmpTraceReply{}, 20, nil
	default:
		if uint8(t) < 128 {
			return &ScmpUnknownError{Type: uint8(t)}, 0, nil
		}
		return nil, 0, serrors.Wrap("unknown informational SCMP type", scerr.ErrInvalidPacket, "type", t)
	}
}

// ScmpDstUnreach carries no fields beyond the reserved word; Code
// distinguishes the reason (see DstUnreachCode).
type ScmpDstUnreach struct{ Reserved uint32 }

func (b *ScmpDstUnreach) Size() int { return 4 }
func (b *ScmpDstUnreach) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	return serializeU32(stream, &b.Reserved, 32, ec)
}

// ScmpPacketTooBig reports the MTU the offending packet exceeded.
type ScmpPacketTooBig struct {
	Reserved uint16
	MTU      uint16
}

func (b *ScmpPacketTooBig) Size() int { return 4 }
func (b *ScmpPacketTooBig) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU16(stream, &b.Reserved, 16, ec) {
		return false
	}
	return serializeU16(stream, &b.MTU, 16, ec)
}

// ScmpParamProblem points at the offending header field. Code selects from
// the ParamProblemCode catalog.
type ScmpParamProblem struct {
	Reserved uint16
	Pointer  uint16
}

func (b *ScmpParamProblem) Size() int { return 4 }
func (b *ScmpParamProblem) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU16(stream, &b.Reserved, 16, ec) {
		return false
	}
	return serializeU16(stream, &b.Pointer, 16, ec)
}

// ScmpExtIfDown reports an external interface failure, identified by the
// owning AS and its interface ID.
type ScmpExtIfDown struct {
	Sender addr.IsdAsn
	Iface  uint64
}

func (b *ScmpExtIfDown) Size() int { return 16 }
func (b *ScmpExtIfDown) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	v := uint64(b.Sender)
	if !stream.SerializeUint64(&v, ec) {
		return false
	}
	b.Sender = addr.IsdAsn(v)
	return stream.SerializeUint64(&b.Iface, ec)
}

// ScmpIntConnDown reports an internal connectivity failure between two
// border routers of the same AS.
type ScmpIntConnDown struct {
	Sender  addr.IsdAsn
	Ingress uint64
	Egress  uint64
}

func (b *ScmpIntConnDown) Size() int { return 24 }
func (b *ScmpIntConnDown) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	v := uint64(b.Sender)
	if !stream.SerializeUint64(&v, ec) {
		return false
	}
	b.Sender = addr.IsdAsn(v)
	if !stream.SerializeUint64(&b.Ingress, ec) {
		return false
	}
	return stream.SerializeUint64(&b.Egress, ec)
}

// ScmpEcho is the shared body of EchoRequest/EchoReply.
type ScmpEcho struct {
	Id  uint16
	Seq uint16
}

func (b *ScmpEcho) Size() int { return 4 }
func (b *ScmpEcho) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU16(stream, &b.Id, 16, ec) {
		return false
	}
	return serializeU16(stream, &b.Seq, 16, ec)
}

// ScmpTraceRequest carries an identifier and sequence number plus padding
// the responding router fills in.
type ScmpTraceRequest struct {
	Id       uint16
	Seq      uint16
	Reserved [16]byte
}

func (b *ScmpTraceRequest) Size() int { return 20 }
func (b *ScmpTraceRequest) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU16(stream, &b.Id, 16, ec) {
		return false
	}
	if !serializeU16(stream, &b.Seq, 16, ec) {
		return false
	}
	return stream.SerializeBytes(b.Reserved[:], ec)
}

// ScmpTraceReply identifies the replying router by AS and interface.
type ScmpTraceReply struct {
	Id     uint16
	Seq    uint16
	Sender addr.IsdAsn
	Iface  uint64
}

func (b *ScmpTraceReply) Size() int { return 20 }
func (b *ScmpTraceReply) Serialize(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU16(stream, &b.Id, 16, ec) {
		return false
	}
	if !serializeU16(stream, &b.Seq, 16, ec) {
		return false
	}
	v := uint64(b.Sender)
	if !stream.SerializeUint64(&v, ec) {
		return false
	}
	b.Sender = addr.IsdAsn(v)
	return stream.SerializeUint64(&b.Iface, ec)
}

// ScmpUnknownError is a synthetic catch-all produced when parsing
// encounters an error-class type (< 128) this library does not recognize;
// it is never placed on the wire.
type ScmpUnknownError struct {
	Type uint8
	Code uint8
}

func (b *ScmpUnknownError) Size() int { return 0 }
func (b *ScmpUnknownError) Serialize(bitstream.Stream, bitstream.ErrorContext) bool { return true }

func (b *ScmpUnknownError) Error() string {
	return fmt.Sprintf("unknown SCMP error type=%d code=%d", b.Type, b.Code)
}
