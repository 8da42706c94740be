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

package slayers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
)

func makeHeader() *slayers.CommonHeader {
	return &slayers.CommonHeader{
		Version:      0,
		TrafficClass: 7,
		FlowID:       0xabcde,
		NextHdr:      slayers.L4UDP,
		HdrLen:       9,
		PayloadLen:   40,
		PathType:     slayers.PathTypeSCION,
		DstType:      slayers.AddrTypeIPv4,
		SrcType:      slayers.AddrTypeIPv4,
		DstIA:        addr.MakeIsdAsn(1, 0xff0000000001),
		SrcIA:        addr.MakeIsdAsn(2, 0xff0000000002),
		DstHost:      addr.IPv4([4]byte{10, 0, 0, 1}),
		SrcHost:      addr.IPv4([4]byte{10, 0, 0, 2}),
	}
}

func TestCommonHeaderRoundTrip(t *testing.T) {
	h := makeHeader()
	buf := make([]byte, h.Size())
	w := bitstream.NewWriteStream(buf)
	require.True(t, h.Serialize(w, bitstream.NullError))

	got := &slayers.CommonHeader{}
	r := bitstream.NewReadStream(buf)
	require.True(t, got.Serialize(r, bitstream.NullError))

	require.Equal(t, h.Version, got.Version)
	require.Equal(t, h.TrafficClass, got.TrafficClass)
	require.Equal(t, h.FlowID, got.FlowID)
	require.Equal(t, h.NextHdr, got.NextHdr)
	require.Equal(t, h.DstIA, got.DstIA)
	require.Equal(t, h.SrcIA, got.SrcIA)
	require.True(t, h.DstHost.Equal(got.DstHost))
	require.True(t, h.SrcHost.Equal(got.SrcHost))
}

func TestCommonHeaderIPv6Host(t *testing.T) {
	h := makeHeader()
	h.DstType = slayers.AddrTypeIPv6
	h.DstHost = addr.IPv6([16]byte{0xfd, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})

	buf := make([]byte, h.Size())
	w := bitstream.NewWriteStream(buf)
	require.True(t, h.Serialize(w, bitstream.NullError))

	got := &slayers.CommonHeader{}
	r := bitstream.NewReadStream(buf)
	require.True(t, got.Serialize(r, bitstream.NullError))
	require.True(t, h.DstHost.Equal(got.DstHost))
}

func TestCommonHeaderRejectsShortBuffer(t *testing.T) {
	got := &slayers.CommonHeader{}
	buf := make([]byte, 4)
	r := bitstream.NewReadStream(buf)
	require.False(t, got.Serialize(r, bitstream.NullError))
}

func TestCommonHeaderRejectsUnknownVersion(t *testing.T) {
	h := makeHeader()
	buf := make([]byte, h.Size())
	w := bitstream.NewWriteStream(buf)
	require.True(t, h.Serialize(w, bitstream.NullError))
	buf[0] = (1 << 4) | (buf[0] & 0x0f) // corrupt the version nibble to 1

	got := &slayers.CommonHeader{}
	r := bitstream.NewReadStream(buf)
	require.False(t, got.Serialize(r, bitstream.NullError))
}

func TestCommonHeaderAddrTypeNibblesPackedHighLow(t *testing.T) {
	h := makeHeader()
	h.DstType = slayers.AddrTypeIPv6
	h.SrcType = slayers.AddrTypeIPv6
	h.DstHost = addr.IPv6([16]byte{0xfd, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
	h.SrcHost = addr.IPv6([16]byte{0xfd, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2})

	buf := make([]byte, h.Size())
	w := bitstream.NewWriteStream(buf)
	require.True(t, h.Serialize(w, bitstream.NullError))
	// Word 3 is bytes 8-11: path-type(8) | dst-host-type(4) | src-host-type(4) | reserved(16).
	require.Equal(t, byte(0x33), buf[9])

	got := &slayers.CommonHeader{}
	r := bitstream.NewReadStream(buf)
	require.True(t, got.Serialize(r, bitstream.NullError))
	require.Equal(t, slayers.AddrTypeIPv6, got.DstType)
	require.Equal(t, slayers.AddrTypeIPv6, got.SrcType)
	require.True(t, h.DstHost.Equal(got.DstHost))
	require.True(t, h.SrcHost.Equal(got.SrcHost))
}

func TestCommonHeaderRejectsHdrLenBelowMinimum(t *testing.T) {
	h := makeHeader()
	h.HdrLen = 1
	buf := make([]byte, h.Size())
	w := bitstream.NewWriteStream(buf)
	require.False(t, h.Serialize(w, bitstream.NullError))
}
