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

package addr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
)

func TestSCIONAddressRoundTrip(t *testing.T) {
	a, err := addr.ParseSCIONAddress("1-ff00:0:1,10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "1-ff00:0:1,10.0.0.1", a.String())
}

func TestSCIONAddressMatchesWildcard(t *testing.T) {
	wildcard := addr.SCIONAddress{IA: 0, Host: addr.UnspecifiedIPv4()}
	specific := addr.SCIONAddress{IA: addr.MakeIsdAsn(1, 42), Host: addr.IPv4([4]byte{10, 0, 0, 1})}
	require.True(t, wildcard.Matches(specific))
	require.False(t, specific.Matches(wildcard))
}

func TestEndpointFullySpecified(t *testing.T) {
	ep := addr.Endpoint{IA: addr.MakeIsdAsn(1, 42), Host: addr.IPv4([4]byte{10, 0, 0, 1}), Port: 80}
	require.True(t, ep.IsFullySpecified())

	unspecified := addr.Endpoint{IA: addr.MakeIsdAsn(1, 42), Host: addr.UnspecifiedIPv4(), Port: 80}
	require.False(t, unspecified.IsFullySpecified())
}

func TestEndpointFormatParse(t *testing.T) {
	ep := addr.Endpoint{IA: addr.MakeIsdAsn(1, 42), Host: addr.IPv4([4]byte{10, 0, 0, 1}), Port: 80}
	parsed, err := addr.ParseEndpoint(ep.String())
	require.NoError(t, err)
	require.Equal(t, ep, parsed)
}

func TestEndpointFormatParseIPv6(t *testing.T) {
	ep := addr.Endpoint{IA: addr.MakeIsdAsn(1, 42), Host: addr.IPv6([16]byte{0xfd}), Port: 443}
	parsed, err := addr.ParseEndpoint(ep.String())
	require.NoError(t, err)
	require.True(t, parsed.Host.Equal(ep.Host))
	require.Equal(t, ep.IA, parsed.IA)
	require.Equal(t, ep.Port, parsed.Port)
}
