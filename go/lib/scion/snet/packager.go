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

package snet

import (
	"net/netip"

	"go.uber.org/zap"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/extn"
	"github.com/netsec-ethz/scion-host/go/lib/scion/metrics"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scmp"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// Packager orchestrates outbound packing and inbound unpacking for one
// local endpoint: it resolves source/destination addresses, enforces the
// address invariants, and delegates the wire-level work to a HeaderCache.
type Packager struct {
	trafficClass uint8
	local        addr.Endpoint
	remote       addr.Endpoint

	verifyChecksum bool
	metrics        metrics.PacketMetrics
	log            *zap.Logger
}

// PackagerOption configures a Packager at construction.
type PackagerOption func(*Packager)

// WithTrafficClass sets the traffic class stamped on every packed packet.
func WithTrafficClass(tc uint8) PackagerOption {
	return func(p *Packager) { p.trafficClass = tc }
}

// WithChecksumVerification toggles inbound L4 checksum verification
// (enabled by default).
func WithChecksumVerification(enabled bool) PackagerOption {
	return func(p *Packager) { p.verifyChecksum = enabled }
}

// WithPacketMetrics attaches a metrics sink; nil (the default) disables
// metrics.
func WithPacketMetrics(m metrics.PacketMetrics) PackagerOption {
	return func(p *Packager) { p.metrics = m }
}

// WithPackagerLogger attaches a zap logger; nil (the default) disables
// logging.
func WithPackagerLogger(l *zap.Logger) PackagerOption {
	return func(p *Packager) { p.log = l }
}

// NewPackager returns a Packager with checksum verification enabled and no
// local/remote endpoint set; call SetLocalEp before the first Pack/Unpack.
func NewPackager(opts ...PackagerOption) *Packager {
	p := &Packager{verifyChecksum: true, log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p
}

// SetLocalEp sets the local endpoint packed packets are sent from and
// unpacked packets are verified against. The host and port must be
// specified; the ISD-AS may be left unspecified for the multi-homing case
// where it is resolved per-packet from the chosen path.
func (pk *Packager) SetLocalEp(local addr.Endpoint) error {
	if local.Host.IsUnspecified() || local.Port == 0 {
		return serrors.Wrap("local endpoint host and port must be specified", scerr.ErrInvalidArgument,
			"local", local)
	}
	pk.local = local
	return nil
}

// SetRemoteEp pins the remote endpoint used when Pack's maybeTo parameter
// is the zero value.
func (pk *Packager) SetRemoteEp(remote addr.Endpoint) {
	pk.remote = remote
}

// Pack resolves the source and destination addresses for one outbound
// packet and delegates header assembly to a HeaderCache.
func (pk *Packager) Pack(
	hc *HeaderCache,
	maybeTo addr.Endpoint,
	path spath.RawPath,
	hbhExts, e2eExts []extn.Extension,
	l4Proto slayers.L4ProtocolType,
	l4 L4Header,
	payload []byte,
) error {
	if pk.local.Host.IsUnspecified() || pk.local.Port == 0 {
		return serrors.Wrap("local endpoint not set", scerr.ErrNoLocalHostAddr)
	}

	local := pk.local
	if local.IA.IsZero() {
		local.IA = path.FirstAS()
	} else if !path.IsEmpty() && path.FirstAS() != local.IA {
		return serrors.Wrap("path does not originate at the local AS", scerr.ErrInvalidArgument,
			"local", local.IA, "pathSrc", path.FirstAS())
	}

	remote := maybeTo
	if remote == (addr.Endpoint{}) {
		remote = pk.remote
	}
	if !remote.IsFullySpecified() {
		return serrors.Wrap("destination endpoint is not fully specified", scerr.ErrInvalidArgument,
			"remote", remote)
	}

	if err := hc.Build(pk.trafficClass, local, remote, path, l4Proto, l4, hbhExts, e2eExts, payload); err != nil {
		return err
	}
	if pk.metrics != nil {
		pk.metrics.PacketsPacked()
	}
	pk.log.Debug("packed packet", zap.Stringer("src", local.SCIONAddress()), zap.Stringer("dst", remote.SCIONAddress()))
	return nil
}

// UnpackResult is the parsed view of one inbound packet: the peer it
// arrived from, the (reversible) path it arrived on, the decoded L4
// header, and a view of the payload bytes.
type UnpackResult struct {
	From addr.Endpoint
	Path spath.RawPath
	UDP  *slayers.UDP
	SCMP *slayers.SCMP

	Payload []byte
}

// Unpack validates and parses one inbound packet addressed to the local
// endpoint. If the packet carries SCMP, scmpCb is invoked and the method
// returns a nil result wrapped in ErrScmpReceived (a signal, not a fault);
// callers should treat that return value as "handled", not "dropped".
func (pk *Packager) Unpack(
	data []byte,
	underlaySource netip.Addr,
	hbhExts, e2eExts []extn.Extension,
	scmpCb scmp.HandlerFunc,
) (*UnpackResult, error) {
	cmn := &slayers.CommonHeader{}
	if err := cmn.DecodeFromBytes(data, nullDecodeFeedback{}); err != nil {
		return nil, serrors.Wrap("failed to decode SCION header", scerr.ErrInvalidPacket, "cause", err)
	}

	dstSCION := addr.SCIONAddress{IA: cmn.DstIA, Host: cmn.DstHost}
	srcSCION := addr.SCIONAddress{IA: cmn.SrcIA, Host: cmn.SrcHost}
	localSCION := addr.SCIONAddress{IA: pk.local.IA, Host: pk.local.Host}
	if !localSCION.Matches(dstSCION) {
		pk.log.Debug("dropping packet: destination mismatch", zap.Stringer("dst", dstSCION), zap.Stringer("local", localSCION))
		return nil, serrors.Wrap("inbound destination does not match local endpoint", scerr.ErrDstAddrMismatch,
			"dst", dstSCION, "local", localSCION)
	}
	if pk.remote != (addr.Endpoint{}) && !pk.remote.SCIONAddress().Matches(srcSCION) {
		pk.log.Debug("dropping packet: source mismatch", zap.Stringer("src", srcSCION))
		return nil, serrors.Wrap("inbound source does not match remote endpoint", scerr.ErrSrcAddrMismatch,
			"src", srcSCION, "remote", pk.remote.SCIONAddress())
	}

	hdrLen := int(cmn.HdrLen) * slayers.LineLen
	pathLen := hdrLen - cmn.Size()
	if pathLen < 0 || hdrLen+int(cmn.PayloadLen) > len(data) {
		return nil, serrors.Wrap("packet length inconsistent with declared header/payload lengths",
			scerr.ErrInvalidPacket, "hdrLen", hdrLen, "plen", cmn.PayloadLen, "have", len(data))
	}
	rawPath := spath.RawPath{SrcIA: cmn.SrcIA, DstIA: cmn.DstIA, Type: cmn.PathType}
	if pathLen > 0 {
		rawPath.Raw = append([]byte(nil), data[cmn.Size():hdrLen]...)
	}
	if rawPath.IsEmpty() && underlaySource.IsValid() {
		expected, ok := netip.AddrFromSlice(cmn.SrcHost.Bytes())
		if !ok || underlaySource.Unmap() != expected.Unmap() {
			return nil, serrors.Wrap("AS-local packet did not arrive from the claimed underlay source",
				scerr.ErrInvalidPacket, "claimed", cmn.SrcHost, "underlay", underlaySource)
		}
	}

	rest := data[hdrLen : hdrLen+int(cmn.PayloadLen)]
	nextHdr := cmn.NextHdr
	if nextHdr == slayers.L4HopByHop {
		area, remainder, err := parseExtnArea(rest, hbhExts)
		if err != nil {
			return nil, err
		}
		nextHdr = area.NextHdr
		rest = remainder
	}
	if nextHdr == slayers.L4End2End {
		area, remainder, err := parseExtnArea(rest, e2eExts)
		if err != nil {
			return nil, err
		}
		nextHdr = area.NextHdr
		rest = remainder
	}

	result := &UnpackResult{Path: rawPath}

	switch nextHdr {
	case slayers.L4UDP:
		u := &slayers.UDP{}
		if err := u.DecodeFromBytes(rest, nullDecodeFeedback{}); err != nil {
			return nil, serrors.Wrap("failed to decode UDP header", scerr.ErrInvalidPacket, "cause", err)
		}
		if pk.verifyChecksum {
			pseudo := slayers.PseudoHeaderSum(srcSCION, dstSCION, u.Len, slayers.L4UDP)
			if !slayers.VerifyChecksum(pseudo, u.Contents, u.Payload) {
				if pk.metrics != nil {
					pk.metrics.ChecksumFailures()
				}
				pk.log.Debug("dropping packet: checksum mismatch", zap.Stringer("src", srcSCION))
				return nil, serrors.Wrap("UDP checksum mismatch", scerr.ErrChecksumError)
			}
		}
		result.UDP = u
		result.Payload = u.Payload
		result.From = addr.Endpoint{IA: cmn.SrcIA, Host: cmn.SrcHost, Port: u.SrcPort}

	case slayers.L4SCMP:
		s := &slayers.SCMP{}
		if err := s.DecodeFromBytes(rest, nullDecodeFeedback{}); err != nil {
			return nil, serrors.Wrap("failed to decode SCMP header", scerr.ErrInvalidPacket, "cause", err)
		}
		if pk.verifyChecksum {
			pseudo := slayers.PseudoHeaderSum(srcSCION, dstSCION, uint16(len(rest)), slayers.L4SCMP)
			if !slayers.VerifyChecksum(pseudo, s.Contents, s.Payload) {
				if pk.metrics != nil {
					pk.metrics.ChecksumFailures()
				}
				pk.log.Debug("dropping packet: checksum mismatch", zap.Stringer("src", srcSCION))
				return nil, serrors.Wrap("SCMP checksum mismatch", scerr.ErrChecksumError)
			}
		}
		result.SCMP = s
		result.Payload = s.Payload
		result.From = addr.Endpoint{IA: cmn.SrcIA, Host: cmn.SrcHost}

		if pk.metrics != nil {
			pk.metrics.ScmpReceived(uint8(s.Type))
		}
		if scmpCb != nil {
			msg := scmp.Message{Type: s.Type, Code: s.Code, Body: s.Body}
			scmpCb(srcSCION, rawPath, msg, s.Payload)
		}
		return nil, serrors.Wrap("packet carried an SCMP message", scerr.ErrScmpReceived, "type", s.Type, "code", s.Code)

	default:
		return nil, serrors.Wrap("unrecognized L4 protocol", scerr.ErrInvalidPacket, "proto", nextHdr)
	}

	if pk.metrics != nil {
		pk.metrics.PacketsUnpacked()
	}
	return result, nil
}

// parseExtnArea decodes one HBH or E2E options area from the front of
// rest, dispatching recognized option TLVs into exts, and returns the
// decoded ExtnHeader plus the remaining bytes after the area.
func parseExtnArea(rest []byte, exts []extn.Extension) (*slayers.ExtnHeader, []byte, error) {
	if len(rest) < slayers.ExtnHdrLen {
		return nil, nil, serrors.Wrap("extension area truncated", scerr.ErrInvalidPacket, "have", len(rest))
	}
	hdr := &slayers.ExtnHeader{}
	r := bitstream.NewReadStream(rest[:slayers.ExtnHdrLen])
	ec := bitstream.NewTraceError()
	if !hdr.Serialize(r, ec) {
		return nil, nil, serrors.Wrap("failed to decode extension header", scerr.ErrInvalidPacket, "cause", ec.Err())
	}
	areaLen := hdr.AreaLen()
	if areaLen > len(rest) {
		return nil, nil, serrors.Wrap("extension area exceeds packet length", scerr.ErrInvalidPacket,
			"areaLen", areaLen, "have", len(rest))
	}
	optReader := bitstream.NewReadStream(rest[slayers.ExtnHdrLen:areaLen])
	if !extn.Parse(optReader, exts, ec) {
		return nil, nil, serrors.Wrap("failed to parse extension options", scerr.ErrInvalidPacket, "cause", ec.Err())
	}
	return hdr, rest[areaLen:], nil
}

// nullDecodeFeedback discards gopacket truncation feedback; this package
// decodes length-checked sub-slices directly rather than through a full
// gopacket.Packet, so there is nothing useful to record it into.
type nullDecodeFeedback struct{}

func (nullDecodeFeedback) SetTruncated() {}
