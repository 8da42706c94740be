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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
)

func TestParseIsdAsn(t *testing.T) {
	ia, err := addr.ParseIsdAsn("1-ff00:0:1")
	require.NoError(t, err)
	require.Equal(t, addr.Isd(1), ia.ISD())
	require.Equal(t, addr.Asn(0xFF00_0000_0001), ia.AS())
	require.Equal(t, "1-ff00:0:1", ia.String())
}

func TestParseIsdAsnBgpForm(t *testing.T) {
	ia, err := addr.ParseIsdAsn("1-42")
	require.NoError(t, err)
	require.Equal(t, addr.Asn(42), ia.AS())
	require.Equal(t, "1-42", ia.String())
}

func TestParseIsdAsnSyntaxError(t *testing.T) {
	_, err := addr.ParseIsdAsn("1024")
	require.Error(t, err)
	require.True(t, errors.Is(err, scerr.ErrSyntaxError))
}

func TestIsdAsnMatches(t *testing.T) {
	wildcard := addr.MakeIsdAsn(0, 0)
	specific := addr.MakeIsdAsn(1, 42)
	require.True(t, wildcard.Matches(specific))
	require.True(t, specific.Matches(specific))
	other := addr.MakeIsdAsn(1, 43)
	require.False(t, specific.Matches(other))
}

func TestIsdAsnRoundTrip(t *testing.T) {
	ia := addr.MakeIsdAsn(64, 0xFF00_0000_0001)
	parsed, err := addr.ParseIsdAsn(ia.String())
	require.NoError(t, err)
	require.Equal(t, ia, parsed)
}
