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

package snet_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/extn"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/scion/snet"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
)

func localRemote() (addr.Endpoint, addr.Endpoint) {
	local := addr.Endpoint{
		IA:   addr.MakeIsdAsn(1, 0xff0000000001),
		Host: addr.IPv4([4]byte{10, 0, 0, 1}),
		Port: 40000,
	}
	remote := addr.Endpoint{
		IA:   addr.MakeIsdAsn(1, 0xff0000000002),
		Host: addr.IPv4([4]byte{10, 0, 0, 2}),
		Port: 50000,
	}
	return local, remote
}

func TestHeaderCacheBuildSizesAndChecksum(t *testing.T) {
	local, remote := localRemote()
	payload := []byte("ping")

	hc := &snet.HeaderCache{}
	l4 := &slayers.UDP{}
	path := spath.RawPath{Type: slayers.PathTypeEmpty}

	err := hc.Build(0, local, remote, path, slayers.L4UDP, l4, nil, nil, payload)
	require.NoError(t, err)

	buf := hc.Bytes()

	cmn := &slayers.CommonHeader{}
	require.NoError(t, cmn.DecodeFromBytes(buf, nullFeedback{}))
	require.EqualValues(t, slayers.L4UDP, cmn.NextHdr)
	require.EqualValues(t, local.IA, cmn.SrcIA)
	require.EqualValues(t, remote.IA, cmn.DstIA)
	require.True(t, local.Host.Equal(cmn.SrcHost))
	require.True(t, remote.Host.Equal(cmn.DstHost))

	hdrLen := int(cmn.HdrLen) * slayers.LineLen
	require.Equal(t, cmn.Size(), hdrLen, "empty path contributes no header bytes")
	require.Equal(t, hdrLen+int(cmn.PayloadLen)-len(payload), len(buf))
	require.EqualValues(t, l4.Size()+len(payload), cmn.PayloadLen)
	require.EqualValues(t, 40000, l4.SrcPort)
	require.EqualValues(t, 50000, l4.DstPort)

	l4Bytes := buf[hdrLen : hdrLen+l4.Size()]
	pseudo := slayers.PseudoHeaderSum(
		addr.SCIONAddress{IA: local.IA, Host: local.Host},
		addr.SCIONAddress{IA: remote.IA, Host: remote.Host},
		l4.Len, slayers.L4UDP)
	require.True(t, slayers.VerifyChecksum(pseudo, l4Bytes, payload))
}

func TestHeaderCacheBuildRejectsOverlongPayload(t *testing.T) {
	local, remote := localRemote()
	hc := &snet.HeaderCache{}
	l4 := &slayers.UDP{}
	path := spath.RawPath{Type: slayers.PathTypeEmpty}

	err := hc.Build(0, local, remote, path, slayers.L4UDP, l4, nil, nil, make([]byte, 0x10000))
	require.Error(t, err)
}

func TestHeaderCacheUpdatePayloadPatchesLengthAndChecksum(t *testing.T) {
	local, remote := localRemote()
	hc := &snet.HeaderCache{}
	l4 := &slayers.UDP{}
	path := spath.RawPath{Type: slayers.PathTypeEmpty}

	require.NoError(t, hc.Build(0, local, remote, path, slayers.L4UDP, l4, nil, nil, []byte("ping")))

	newPayload := []byte("a longer payload than before")
	require.NoError(t, hc.UpdatePayload(slayers.L4UDP, l4, newPayload))

	buf := hc.Bytes()
	cmn := &slayers.CommonHeader{}
	require.NoError(t, cmn.DecodeFromBytes(buf, nullFeedback{}))
	hdrLen := int(cmn.HdrLen) * slayers.LineLen
	require.Equal(t, hdrLen+int(cmn.PayloadLen)-len(newPayload), len(buf))
	require.EqualValues(t, l4.Size()+len(newPayload), cmn.PayloadLen)

	l4Bytes := buf[hdrLen : hdrLen+l4.Size()]
	pseudo := slayers.PseudoHeaderSum(
		addr.SCIONAddress{IA: local.IA, Host: local.Host},
		addr.SCIONAddress{IA: remote.IA, Host: remote.Host},
		l4.Len, slayers.L4UDP)
	require.True(t, slayers.VerifyChecksum(pseudo, l4Bytes, newPayload))
}

func TestHeaderCacheUpdatePayloadRejectsWithExtensions(t *testing.T) {
	local, remote := localRemote()
	hc := &snet.HeaderCache{}
	l4 := &slayers.UDP{}
	path := spath.RawPath{Type: slayers.PathTypeEmpty}

	send := &extn.SPAOExtension{SPAO: slayers.SPAO{SPI: 1, Algorithm: 2, Authenticator: make([]byte, 16)}}
	send.SetValid(true)
	require.NoError(t, hc.Build(0, local, remote, path, slayers.L4UDP, l4,
		nil, []extn.Extension{send}, []byte("ping")))

	err := hc.UpdatePayload(slayers.L4UDP, l4, []byte("x"))
	require.Error(t, err)
}

type nullFeedback struct{}

func (nullFeedback) SetTruncated() {}
