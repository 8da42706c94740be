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
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// IPAddress is a semantic variant of IPv4/IPv6 host address. IPv4-mapped
// IPv6 addresses are distinct from the corresponding plain IPv4 address;
// use Map4In6/Unmap4In6 to convert explicitly. Formatting follows RFC 5952.
//
// This wraps net/netip.Addr, which already distinguishes 4-in-6 from plain
// v4 (Is4/Is4In6) and carries IPv6 zone identifiers the way the data model
// requires.
type IPAddress struct {
	addr netip.Addr
}

// UnspecifiedIPv4 returns "0.0.0.0".
func UnspecifiedIPv4() IPAddress { return IPAddress{netip.IPv4Unspecified()} }

// UnspecifiedIPv6 returns "::".
func UnspecifiedIPv6() IPAddress { return IPAddress{netip.IPv6Unspecified()} }

// IPv4 builds an address from four bytes in network order.
func IPv4(b [4]byte) IPAddress { return IPAddress{netip.AddrFrom4(b)} }

// IPv6 builds an address from sixteen bytes in network order.
func IPv6(b [16]byte) IPAddress { return IPAddress{netip.AddrFrom16(b)} }

// IPv6Zone builds an address from sixteen bytes in network order plus a
// zone identifier.
func IPv6Zone(b [16]byte, zone string) IPAddress {
	return IPAddress{netip.AddrFrom16(b).WithZone(zone)}
}

// ParseIPAddress parses any of the forms described in RFC 4291, including
// IPv4-in-IPv6 and a trailing "%zone". If noZone is set, an address
// specifying a zone is rejected with ErrRequiresZone.
func ParseIPAddress(s string, noZone bool) (IPAddress, error) {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return IPAddress{}, serrors.Wrap("invalid IP address", scerr.ErrSyntaxError, "value", s, "cause", err)
	}
	if a.Zone() != "" && noZone {
		return IPAddress{}, serrors.Wrap("address has a zone", scerr.ErrRequiresZone, "value", s)
	}
	return IPAddress{a}, nil
}

func (ip IPAddress) String() string { return ip.addr.String() }

// FormatFlags requests formatting modifiers beyond plain RFC 5952 output.
type FormatFlags int

const (
	// AlwaysLong disables zero-run compression ("::") for IPv6, emitting
	// all eight groups; leading zeros within a group are still omitted.
	AlwaysLong FormatFlags = 1 << iota
	// UpperHex renders IPv6 hex digits in upper case.
	UpperHex
)

// Format renders the address per RFC 5952, with optional AlwaysLong and
// UpperHex modifiers for IPv6. IPv4 addresses are unaffected by either
// flag and always render through String.
func (ip IPAddress) Format(flags FormatFlags) string {
	if ip.addr.Is4() || flags == 0 {
		return ip.String()
	}
	b := ip.addr.As16()
	groups := make([]string, 8)
	verb := "%x"
	if flags&UpperHex != 0 {
		verb = "%X"
	}
	for i := 0; i < 8; i++ {
		groups[i] = fmt.Sprintf(verb, uint16(b[2*i])<<8|uint16(b[2*i+1]))
	}
	s := strings.Join(groups, ":")
	if flags&AlwaysLong == 0 {
		s = compressZeroRun(groups)
	}
	if zone := ip.addr.Zone(); zone != "" {
		s += "%" + zone
	}
	return s
}

// compressZeroRun replaces the longest run of all-zero groups (ties broken
// in favor of the first run, per RFC 5952 §4.2.3) with "::".
func compressZeroRun(groups []string) string {
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i, g := range groups {
		if g == "0" {
			if curStart < 0 {
				curStart = i
			}
			curLen++
		} else {
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
			curStart, curLen = -1, 0
		}
	}
	if curLen > bestLen {
		bestStart, bestLen = curStart, curLen
	}
	if bestLen < 2 {
		return strings.Join(groups, ":")
	}
	head := strings.Join(groups[:bestStart], ":")
	tail := strings.Join(groups[bestStart+bestLen:], ":")
	return head + "::" + tail
}

// Is4 reports whether this is a plain IPv4 address (not 4-in-6 mapped).
func (ip IPAddress) Is4() bool { return ip.addr.Is4() }

// Is4In6 reports whether this is an IPv4-mapped IPv6 address.
func (ip IPAddress) Is4In6() bool { return ip.addr.Is4In6() }

// Is6 reports whether this is an IPv6 address, including 4-in-6.
func (ip IPAddress) Is6() bool { return ip.addr.Is6() }

// IsUnspecified reports whether this is the wildcard address for its family.
func (ip IPAddress) IsUnspecified() bool { return ip.addr.IsUnspecified() }

// Zone returns the IPv6 zone identifier, or "" if there is none.
func (ip IPAddress) Zone() string { return ip.addr.Zone() }

// Map4In6 encodes an IPv4 address as IPv4-mapped IPv6; returns a copy for
// any other address.
func (ip IPAddress) Map4In6() IPAddress {
	if !ip.addr.Is4() {
		return ip
	}
	b4 := ip.addr.As4()
	var b16 [16]byte
	b16[10], b16[11] = 0xff, 0xff
	copy(b16[12:], b4[:])
	return IPAddress{netip.AddrFrom16(b16)}
}

// Unmap4In6 unmaps an IPv4-mapped IPv6 address to plain IPv4; returns a
// copy for any other address.
func (ip IPAddress) Unmap4In6() IPAddress {
	if !ip.addr.Is4In6() {
		return ip
	}
	return IPAddress{ip.addr.Unmap()}
}

// Equal reports value equality, including zone.
func (ip IPAddress) Equal(other IPAddress) bool { return ip.addr == other.addr }

// Size returns the wire size in bytes: 4 for IPv4, 16 for IPv6 (including
// 4-in-6).
func (ip IPAddress) Size() int {
	if ip.addr.Is4() {
		return 4
	}
	return 16
}

// Checksum returns the sum of the address's 16-bit big-endian words.
func (ip IPAddress) Checksum() uint32 {
	var sum uint32
	if ip.addr.Is4() {
		b := ip.addr.As4()
		sum += uint32(b[0])<<8 | uint32(b[1])
		sum += uint32(b[2])<<8 | uint32(b[3])
		return sum
	}
	b := ip.addr.As16()
	for i := 0; i < 16; i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	return sum
}

// Bytes returns the address in network byte order: 4 bytes for IPv4, 16 for
// IPv6 (including 4-in-6).
func (ip IPAddress) Bytes() []byte {
	if ip.addr.Is4() {
		b := ip.addr.As4()
		return b[:]
	}
	b := ip.addr.As16()
	return b[:]
}

// IPAddressFromBytes builds an IPAddress from 4 or 16 raw bytes.
func IPAddressFromBytes(b []byte) (IPAddress, error) {
	switch len(b) {
	case 4:
		return IPAddress{netip.AddrFrom4([4]byte(b))}, nil
	case 16:
		return IPAddress{netip.AddrFrom16([16]byte(b))}, nil
	default:
		return IPAddress{}, serrors.Wrap("invalid host address length", scerr.ErrInvalidArgument, "len", len(b))
	}
}

// IPEndpoint is a generic (IsdAsn-less) host address plus port.
type IPEndpoint struct {
	Host IPAddress
	Port uint16
}

func (ep IPEndpoint) String() string {
	if ep.Host.Is4() {
		return ep.Host.String() + ":" + strconv.FormatUint(uint64(ep.Port), 10)
	}
	return "[" + ep.Host.String() + "]:" + strconv.FormatUint(uint64(ep.Port), 10)
}

// ParseIPEndpoint parses "<addr>:<port>" or "[<addr>]:<port>"; the colon
// and port may be omitted (then the port is 0), and brackets are optional
// for IPv4.
func ParseIPEndpoint(s string, noZone bool) (IPEndpoint, error) {
	hostPart, portPart, hasPort := splitHostPort(s)
	host, err := ParseIPAddress(hostPart, noZone)
	if err != nil {
		return IPEndpoint{}, serrors.Wrap("invalid endpoint host", err, "value", s)
	}
	var port uint64
	if hasPort {
		port, err = strconv.ParseUint(portPart, 10, 16)
		if err != nil {
			return IPEndpoint{}, serrors.Wrap("invalid endpoint port", scerr.ErrSyntaxError, "value", s, "cause", err)
		}
	}
	return IPEndpoint{Host: host, Port: uint16(port)}, nil
}

func splitHostPort(s string) (host, port string, hasPort bool) {
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return s, "", false
		}
		host = s[1:end]
		rest := s[end+1:]
		if strings.HasPrefix(rest, ":") {
			return host, rest[1:], true
		}
		return host, "", false
	}
	if idx := strings.LastIndexByte(s, ':'); idx >= 0 && strings.Count(s, ":") == 1 {
		return s[:idx], s[idx+1:], true
	}
	return s, "", false
}
