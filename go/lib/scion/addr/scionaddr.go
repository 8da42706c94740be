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

package addr

import (
	"strconv"
	"strings"

	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// SCIONAddress pairs an ISD-AS with a host address.
type SCIONAddress struct {
	IA   IsdAsn
	Host IPAddress
}

func (a SCIONAddress) String() string {
	return a.IA.String() + "," + a.Host.String()
}

// Matches reports whether a is componentwise-matches other: the ISD-AS
// matches (equal, or this one is unspecified) and the host matches
// (equal, or this one is unspecified).
func (a SCIONAddress) Matches(other SCIONAddress) bool {
	if !a.IA.Matches(other.IA) {
		return false
	}
	return a.Host.IsUnspecified() || a.Host.Equal(other.Host)
}

// Checksum returns the address's pseudo-header checksum contribution: the
// sum of the ISD-AS and host checksums.
func (a SCIONAddress) Checksum() uint32 {
	return a.IA.Checksum() + a.Host.Checksum()
}

// Size returns the wire size in bytes: 8 (ISD-AS) plus the host size.
func (a SCIONAddress) Size() int {
	return 8 + a.Host.Size()
}

// ParseSCIONAddress parses the "<isd-asn>,<host>" textual form.
func ParseSCIONAddress(s string) (SCIONAddress, error) {
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return SCIONAddress{}, serrors.Wrap("missing ',' in SCION address", scerr.ErrSyntaxError, "value", s)
	}
	ia, err := ParseIsdAsn(s[:comma])
	if err != nil {
		return SCIONAddress{}, serrors.Wrap("invalid ISD-AS in SCION address", err, "value", s)
	}
	host, err := ParseIPAddress(s[comma+1:], false)
	if err != nil {
		return SCIONAddress{}, serrors.Wrap("invalid host in SCION address", err, "value", s)
	}
	return SCIONAddress{IA: ia, Host: host}, nil
}

// Endpoint is a fully addressable SCION communication endpoint: ISD-AS,
// host address and port.
type Endpoint struct {
	IA   IsdAsn
	Host IPAddress
	Port uint16
}

// IsFullySpecified reports whether none of the three parts is unspecified.
func (e Endpoint) IsFullySpecified() bool {
	return !e.IA.IsZero() && !e.Host.IsUnspecified() && e.Port != 0
}

// SCIONAddress returns the (IsdAsn, host) pair, dropping the port.
func (e Endpoint) SCIONAddress() SCIONAddress {
	return SCIONAddress{IA: e.IA, Host: e.Host}
}

func (e Endpoint) String() string {
	if e.Host.Is6() {
		return "[" + e.IA.String() + "," + e.Host.String() + "]:" + strconv.FormatUint(uint64(e.Port), 10)
	}
	return e.IA.String() + "," + e.Host.String() + ":" + strconv.FormatUint(uint64(e.Port), 10)
}

// ParseEndpoint parses "<isd-asn>,<host>:<port>" for IPv4 hosts or
// "[<isd-asn>,<host>]:<port>" for IPv6 hosts.
func ParseEndpoint(s string) (Endpoint, error) {
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 || !strings.HasPrefix(s[end+1:], ":") {
			return Endpoint{}, serrors.Wrap("malformed bracketed endpoint", scerr.ErrSyntaxError, "value", s)
		}
		addr, err := ParseSCIONAddress(s[1:end])
		if err != nil {
			return Endpoint{}, serrors.Wrap("invalid endpoint address", err, "value", s)
		}
		port, err := strconv.ParseUint(s[end+2:], 10, 16)
		if err != nil {
			return Endpoint{}, serrors.Wrap("invalid endpoint port", scerr.ErrSyntaxError, "value", s, "cause", err)
		}
		return Endpoint{IA: addr.IA, Host: addr.Host, Port: uint16(port)}, nil
	}
	colon := strings.LastIndexByte(s, ':')
	if colon < 0 {
		return Endpoint{}, serrors.Wrap("missing port in endpoint", scerr.ErrSyntaxError, "value", s)
	}
	addr, err := ParseSCIONAddress(s[:colon])
	if err != nil {
		return Endpoint{}, serrors.Wrap("invalid endpoint address", err, "value", s)
	}
	port, err := strconv.ParseUint(s[colon+1:], 10, 16)
	if err != nil {
		return Endpoint{}, serrors.Wrap("invalid endpoint port", scerr.ErrSyntaxError, "value", s, "cause", err)
	}
	return Endpoint{IA: addr.IA, Host: addr.Host, Port: uint16(port)}, nil
}
