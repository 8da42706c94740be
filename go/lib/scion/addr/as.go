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

// Package addr implements the SCION address model: ISD and AS numbers,
// packed ISD-AS identifiers, generic IP addresses and SCION addresses and
// endpoints built from them.
package addr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// Isd is a 16-bit Isolation Domain identifier. The zero value is
// unspecified.
type Isd uint16

// IsZero reports whether the ISD is unspecified.
func (i Isd) IsZero() bool { return i == 0 }

func (i Isd) String() string { return strconv.FormatUint(uint64(i), 10) }

// Asn is a 48-bit Autonomous System number. The zero value is unspecified.
type Asn uint64

const asnBits = 48
const asnMax = (uint64(1) << asnBits) - 1

// MaxBgpAsn is the largest ASN representable in plain decimal ("BGP") form.
const MaxBgpAsn = Asn(1<<32 - 1)

// IsZero reports whether the ASN is unspecified.
func (a Asn) IsZero() bool { return a == 0 }

// String renders the ASN in decimal form for values that fit in the legacy
// 32-bit BGP space, and in the three-group hex form otherwise.
func (a Asn) String() string {
	if a <= MaxBgpAsn {
		return strconv.FormatUint(uint64(a), 10)
	}
	return fmt.Sprintf("%x:%x:%x",
		(uint64(a)>>32)&0xffff, (uint64(a)>>16)&0xffff, uint64(a)&0xffff)
}

// ParseAsn parses both textual forms of an ASN: a decimal integer up to
// 2^32-1, or three colon-separated groups of 1-4 lowercase hex digits.
func ParseAsn(s string) (Asn, error) {
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, serrors.Wrap("invalid decimal AS number", scerr.ErrSyntaxError, "value", s, "cause", err)
		}
		return Asn(v), nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, serrors.Wrap("AS number must have 3 hex groups", scerr.ErrSyntaxError, "value", s)
	}
	var asn uint64
	for _, p := range parts {
		if len(p) < 1 || len(p) > 4 {
			return 0, serrors.Wrap("AS number hex group must be 1-4 digits", scerr.ErrSyntaxError, "value", s)
		}
		v, err := strconv.ParseUint(p, 16, 16)
		if err != nil {
			return 0, serrors.Wrap("invalid hex AS number group", scerr.ErrSyntaxError, "value", s, "cause", err)
		}
		asn = (asn << 16) | v
	}
	return Asn(asn), nil
}

// IsdAsn is a packed 64-bit identifier: the top 16 bits hold the ISD, the
// bottom 48 the ASN.
type IsdAsn uint64

// MakeIsdAsn packs an ISD and ASN into a single identifier.
func MakeIsdAsn(isd Isd, as Asn) IsdAsn {
	return IsdAsn(uint64(isd)<<asnBits | (uint64(as) & asnMax))
}

// ISD returns the ISD component.
func (ia IsdAsn) ISD() Isd { return Isd(uint64(ia) >> asnBits) }

// AS returns the ASN component.
func (ia IsdAsn) AS() Asn { return Asn(uint64(ia) & asnMax) }

// IsZero reports whether either half is unspecified.
func (ia IsdAsn) IsZero() bool { return ia.ISD().IsZero() || ia.AS().IsZero() }

// Matches reports whether ia is fully unspecified, or equal to other.
func (ia IsdAsn) Matches(other IsdAsn) bool {
	return ia.IsZero() || ia == other
}

// Checksum returns the sum of the identifier's four 16-bit big-endian words,
// for pseudo-header checksum folding.
func (ia IsdAsn) Checksum() uint32 {
	v := uint64(ia)
	var sum uint32
	for i := 0; i < 4; i++ {
		sum += uint32((v >> (16 * i)) & 0xffff)
	}
	return sum
}

func (ia IsdAsn) String() string {
	return fmt.Sprintf("%s-%s", ia.ISD(), ia.AS())
}

// ParseIsdAsn parses the "<isd>-<asn>" textual form.
func ParseIsdAsn(s string) (IsdAsn, error) {
	dash := strings.IndexByte(s, '-')
	if dash < 0 {
		return 0, serrors.Wrap("missing '-' in ISD-AS", scerr.ErrSyntaxError, "value", s)
	}
	isdVal, err := strconv.ParseUint(s[:dash], 10, 16)
	if err != nil {
		return 0, serrors.Wrap("invalid ISD", scerr.ErrSyntaxError, "value", s, "cause", err)
	}
	as, err := ParseAsn(s[dash+1:])
	if err != nil {
		return 0, serrors.Wrap("invalid AS in ISD-AS", err, "value", s)
	}
	return MakeIsdAsn(Isd(isdVal), as), nil
}
