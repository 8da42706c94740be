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

package extn

import (
	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
)

// IdIntInstruction is one ID-INT telemetry instruction opcode.
type IdIntInstruction uint8

const (
	IdIntNop            IdIntInstruction = 0x00
	IdIntIsd            IdIntInstruction = 0x01
	IdIntBrLinkType     IdIntInstruction = 0x02
	IdIntDeviceTypeRole IdIntInstruction = 0x03
	IdIntCpuMemUsage    IdIntInstruction = 0x04
	IdIntNodeIpv4Addr   IdIntInstruction = 0x44
	IdIntGpsLat         IdIntInstruction = 0x47
	IdIntGpsLong        IdIntInstruction = 0x48
	IdIntAsn            IdIntInstruction = 0x81
	IdIntIngressTstamp  IdIntInstruction = 0x82
	IdIntEgressTstamp   IdIntInstruction = 0x83
)

// Instruction bitmap bits selecting which fixed fields an ID-INT entry's
// metadata carries (independent of the per-slot instruction catalog above).
const (
	IdIntInstNodeID  uint8 = 1 << 3
	IdIntInstNodeCnt uint8 = 1 << 2
	IdIntInstIgrIf   uint8 = 1 << 1
	IdIntInstEgrIf   uint8 = 1 << 0
)

// AgrMode selects which routers along the path append telemetry entries.
type AgrMode uint8

const (
	AgrOff      AgrMode = 0
	AgrAS       AgrMode = 1
	AgrBorder   AgrMode = 2
	AgrInternal AgrMode = 3
)

// AgrFunction combines telemetry values contributed by multiple hops.
type AgrFunction uint8

const (
	AgrFirst   AgrFunction = 0
	AgrLast    AgrFunction = 1
	AgrMinimum AgrFunction = 2
	AgrMaximum AgrFunction = 3
	AgrSum     AgrFunction = 4
)

// Verifier selects who is expected to validate the telemetry MACs.
type Verifier uint8

const (
	VerifierThirdParty  Verifier = 0
	VerifierDestination Verifier = 1
	VerifierSource      Verifier = 2
)

// idIntMinDataLen is the fixed-field size of the ID-INT main option
// (everything but the optional third-party verifier address).
const idIntMinDataLen = 20

// IdIntOpt is the ID-INT main hop-by-hop option: telemetry instructions,
// aggregation mode and a stack of per-hop entries is carried separately as
// IdIntEntry options immediately following it.
type IdIntOpt struct {
	Flags      uint8 // InfraMode|Discard|Encrypted|SizeExceeded, bits 4..1
	AgrMode    AgrMode
	VType      Verifier
	StackLen   uint8
	TOS        uint8
	DelayHops  uint8
	Bitmap     uint8 // 4-bit instruction-slot bitmap
	AgrFunc    [4]AgrFunction
	Instr      [4]IdIntInstruction
	SourceTS   uint64 // 48 bits significant
	SourcePort uint16
	Verifier   addr.Endpoint // only meaningful when VType == VerifierThirdParty

	valid bool
}

const (
	IdIntFlagInfraMode    uint8 = 1 << 4
	IdIntFlagDiscard      uint8 = 1 << 3
	IdIntFlagEncrypted    uint8 = 1 << 2
	IdIntFlagSizeExceeded uint8 = 1 << 1
)

func (o *IdIntOpt) Category() Category            { return HopByHop }
func (o *IdIntOpt) OptionType() slayers.OptionType { return slayers.OptTypeIdInt }
func (o *IdIntOpt) Valid() bool                    { return o.valid }
func (o *IdIntOpt) SetValid(v bool)                { o.valid = v }

// dataLen is the option's declared payload length, matching the reference's
// IdIntOpt::size(): the fixed fields, plus the verifier address when
// VType is ThirdParty.
func (o *IdIntOpt) dataLen() int {
	n := idIntMinDataLen
	if o.VType == VerifierThirdParty {
		n += 8 // IsdAsn
		if o.Verifier.Host.Is6() {
			n += 16
		} else {
			n += 4
		}
	}
	return n
}

// Size returns the TLV's wire size, padded so the option's total length is
// of the form 4n+2 (the main option is always followed by a 2-byte TLV
// header for the next option, which this keeps 4-byte aligned).
func (o *IdIntOpt) Size(pos int) int {
	raw := 2 + o.dataLen()
	pad := ((2 - raw)%4 + 4) % 4
	return raw + pad
}

func (o *IdIntOpt) Write(w bitstream.Stream, pos int, ec bitstream.ErrorContext) bool {
	dl := uint8(o.dataLen())
	typeByte := uint8(slayers.OptTypeIdInt)
	dataLenByte := dl
	if !serializeU8Bits(w, &typeByte, 8, ec) {
		return false
	}
	if !serializeU8Bits(w, &dataLenByte, 8, ec) {
		return false
	}
	if !o.serializeBody(w, ec) {
		return false
	}
	pad := o.Size(pos) - (2 + int(dl))
	return insertPadding(pad, w, ec)
}

func (o *IdIntOpt) Parse(r bitstream.Stream, ec bitstream.ErrorContext) bool {
	var typeByte, dataLenByte uint8
	if !serializeU8Bits(r, &typeByte, 8, ec) {
		return false
	}
	if slayers.OptionType(typeByte) != slayers.OptTypeIdInt {
		return bitstream.Report(ec, "incorrect ID-INT option type")
	}
	if !serializeU8Bits(r, &dataLenByte, 8, ec) {
		return false
	}
	if dataLenByte < idIntMinDataLen {
		return bitstream.Report(ec, "ID-INT dataLen below minimum", "dataLen", dataLenByte)
	}
	return o.serializeBody(r, ec)
}

func (o *IdIntOpt) serializeBody(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	var version uint8
	if !serializeU8Bits(stream, &version, 3, ec) {
		return false
	}
	if !stream.IsWriting() && version != 0 {
		return bitstream.Report(ec, "unknown ID-INT version", "version", version)
	}
	if !serializeU8Bits(stream, &o.Flags, 5, ec) {
		return false
	}
	if !stream.IsWriting() && o.Flags&0x1 != 0 {
		return bitstream.Report(ec, "invalid ID-INT header: low flag bit reserved")
	}
	agrMode := uint8(o.AgrMode)
	if !serializeU8Bits(stream, &agrMode, 2, ec) {
		return false
	}
	o.AgrMode = AgrMode(agrMode)
	vtype := uint8(o.VType)
	if !serializeU8Bits(stream, &vtype, 2, ec) {
		return false
	}
	o.VType = Verifier(vtype)
	var verifAddrType uint8
	if stream.IsWriting() && o.VType == VerifierThirdParty && o.Verifier.Host.Is6() {
		verifAddrType = 1
	}
	if !serializeU8Bits(stream, &verifAddrType, 4, ec) {
		return false
	}
	if !serializeU8Bits(stream, &o.StackLen, 8, ec) {
		return false
	}
	if !serializeU8Bits(stream, &o.TOS, 8, ec) {
		return false
	}
	if !serializeU8Bits(stream, &o.DelayHops, 6, ec) {
		return false
	}
	if !stream.AdvanceBits(10, ec) {
		return false
	}
	if !serializeU8Bits(stream, &o.Bitmap, 4, ec) {
		return false
	}
	for i := range o.AgrFunc {
		v := uint8(o.AgrFunc[i])
		if !serializeU8Bits(stream, &v, 3, ec) {
			return false
		}
		o.AgrFunc[i] = AgrFunction(v)
	}
	for i := range o.Instr {
		v := uint8(o.Instr[i])
		if !serializeU8Bits(stream, &v, 8, ec) {
			return false
		}
		o.Instr[i] = IdIntInstruction(v)
	}
	if !serializeU64Bits(stream, &o.SourceTS, 48, ec) {
		return false
	}
	if !stream.SerializeUint16(&o.SourcePort, ec) {
		return false
	}
	if o.VType == VerifierThirdParty {
		var ia uint64
		if stream.IsWriting() {
			ia = uint64(o.Verifier.IA)
		}
		if !stream.SerializeUint64(&ia, ec) {
			return false
		}
		if !stream.IsWriting() {
			o.Verifier.IA = addr.IsdAsn(ia)
		}
		hostLen := 4
		if verifAddrType == 1 {
			hostLen = 16
		}
		buf := make([]byte, hostLen)
		if stream.IsWriting() {
			copy(buf, o.Verifier.Host.Bytes())
		}
		if !stream.SerializeBytes(buf, ec) {
			return false
		}
		if !stream.IsWriting() {
			host, err := addr.IPAddressFromBytes(buf)
			if err != nil {
				return bitstream.Report(ec, "invalid ID-INT verifier host bytes")
			}
			o.Verifier.Host = host
		}
	}
	return true
}

// IdIntEntry is one per-hop ID-INT telemetry stack entry.
type IdIntEntry struct {
	Flags     uint8 // Source|Ingress|Egress|Aggregate|Encrypted, bits 4..0
	Hop       uint8 // 6 bits
	Mask      uint8 // 4-bit instruction-slot bitmap
	ML        [4]uint8 // 3-bit metadata-length selectors, each <= 4
	Nonce     [12]byte // present only when Flags&IdIntFlagEncrypted != 0
	Mac       [4]byte
	Metadata  []byte // sized by mdSize()

	valid bool
}

const (
	IdIntEntryFlagSource    uint8 = 1 << 4
	IdIntEntryFlagIngress   uint8 = 1 << 3
	IdIntEntryFlagEgress    uint8 = 1 << 2
	IdIntEntryFlagAggregate uint8 = 1 << 1
	IdIntEntryFlagEncrypted uint8 = 1 << 0
)

func (e *IdIntEntry) Category() Category            { return HopByHop }
func (e *IdIntEntry) OptionType() slayers.OptionType { return slayers.OptTypeIdIntEntry }
func (e *IdIntEntry) Valid() bool                    { return e.valid }
func (e *IdIntEntry) SetValid(v bool)                { e.valid = v }

// mdSize computes the metadata field size, padded to 4-byte alignment
// counting the 2-byte TLV header, exactly as the reference's mdSize().
func (e *IdIntEntry) mdSize() int {
	size := 0
	if e.Mask&IdIntInstNodeID != 0 {
		size += 4
	}
	if e.Mask&IdIntInstNodeCnt != 0 {
		size += 2
	}
	if e.Mask&IdIntInstIgrIf != 0 {
		size += 2
	}
	if e.Mask&IdIntInstEgrIf != 0 {
		size += 2
	}
	for _, ml := range e.ML {
		n := int(ml) << 1
		if n > 8 {
			n = 8
		}
		size += n
	}
	pad := (4 - (size+2)%4) % 4
	return size + pad
}

// dataLen is the entry's declared payload length: the 4-byte
// flags/hop/mask/ML header, the metadata region, the 12-byte nonce when
// encrypted, and the 4-byte MAC.
func (e *IdIntEntry) dataLen() int {
	n := 4 + 4 + e.mdSize()
	if e.Flags&IdIntEntryFlagEncrypted != 0 {
		n += len(e.Nonce)
	}
	return n
}

// Size returns the TLV's wire size; IdIntEntry options are fixed-size once
// their flags/mask are set, so position-dependent padding never applies.
func (e *IdIntEntry) Size(pos int) int { return 2 + e.dataLen() }

func (e *IdIntEntry) Write(w bitstream.Stream, pos int, ec bitstream.ErrorContext) bool {
	typeByte := uint8(slayers.OptTypeIdIntEntry)
	dl := uint8(e.dataLen())
	if !serializeU8Bits(w, &typeByte, 8, ec) {
		return false
	}
	if !serializeU8Bits(w, &dl, 8, ec) {
		return false
	}
	return e.serializeBody(w, ec)
}

func (e *IdIntEntry) Parse(r bitstream.Stream, ec bitstream.ErrorContext) bool {
	var typeByte, dl uint8
	if !serializeU8Bits(r, &typeByte, 8, ec) {
		return false
	}
	if slayers.OptionType(typeByte) != slayers.OptTypeIdIntEntry {
		return bitstream.Report(ec, "incorrect ID-INT entry option type")
	}
	if !serializeU8Bits(r, &dl, 8, ec) {
		return false
	}
	if dl < 8 {
		return bitstream.Report(ec, "ID-INT entry dataLen below minimum", "dataLen", dl)
	}
	return e.serializeBody(r, ec)
}

func (e *IdIntEntry) serializeBody(stream bitstream.Stream, ec bitstream.ErrorContext) bool {
	if !serializeU8Bits(stream, &e.Flags, 5, ec) {
		return false
	}
	if !stream.AdvanceBits(3, ec) {
		return false
	}
	if !serializeU8Bits(stream, &e.Hop, 6, ec) {
		return false
	}
	if !stream.AdvanceBits(2, ec) {
		return false
	}
	if !serializeU8Bits(stream, &e.Mask, 4, ec) {
		return false
	}
	for i := range e.ML {
		if !serializeU8Bits(stream, &e.ML[i], 3, ec) {
			return false
		}
		if !stream.IsWriting() && e.ML[i] > 4 {
			return bitstream.Report(ec, "invalid ID-INT metadata length selector", "ml", e.ML[i])
		}
	}
	if e.Flags&IdIntEntryFlagEncrypted != 0 {
		if !stream.SerializeBytes(e.Nonce[:], ec) {
			return false
		}
	}
	if !stream.IsWriting() {
		e.Metadata = make([]byte, e.mdSize())
	}
	if !stream.SerializeBytes(e.Metadata, ec) {
		return false
	}
	return stream.SerializeBytes(e.Mac[:], ec)
}

func serializeU8Bits(stream bitstream.Stream, v *uint8, n int, ec bitstream.ErrorContext) bool {
	val := uint64(*v)
	if !stream.SerializeBits(&val, n, ec) {
		return false
	}
	*v = uint8(val)
	return true
}

func serializeU64Bits(stream bitstream.Stream, v *uint64, n int, ec bitstream.ErrorContext) bool {
	return stream.SerializeBits(v, n, ec)
}
