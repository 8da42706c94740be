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
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
)

// SPAOExtension carries a SCION Packet Authenticator Option as an
// end-to-end extension. The authenticator bytes are transported opaquely;
// this library computes neither MAC generation nor verification.
type SPAOExtension struct {
	SPAO  slayers.SPAO
	valid bool
}

func (e *SPAOExtension) Category() Category            { return EndToEnd }
func (e *SPAOExtension) OptionType() slayers.OptionType { return slayers.OptTypeSPAO }
func (e *SPAOExtension) Valid() bool                    { return e.valid }
func (e *SPAOExtension) SetValid(v bool)                { e.valid = v }

// Size returns the option's TLV size, padded up to 4-byte alignment
// relative to pos.
func (e *SPAOExtension) Size(pos int) int {
	raw := 2 + e.SPAO.DataLen()
	return raw + padding(raw, 4, pos)
}

func (e *SPAOExtension) Write(w bitstream.Stream, pos int, ec bitstream.ErrorContext) bool {
	data := slayers.EncodeSPAO(&e.SPAO)
	opt := slayers.OptionTLV{Type: slayers.OptTypeSPAO, Data: data}
	if !opt.Serialize(w, ec) {
		return false
	}
	return insertPadding(e.Size(pos)-(2+len(data)), w, ec)
}

func (e *SPAOExtension) Parse(r bitstream.Stream, ec bitstream.ErrorContext) bool {
	opt := slayers.OptionTLV{}
	if !opt.Serialize(r, ec) {
		return false
	}
	spao, ok := slayers.ParseSPAO(opt.Data)
	if !ok {
		return bitstream.Report(ec, "malformed SPAO option")
	}
	e.SPAO = *spao
	return true
}
