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

package path_test

import (
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/path"
)

func mustIA(t *testing.T, s string) addr.IsdAsn {
	t.Helper()
	ia, err := addr.ParseIsdAsn(s)
	require.NoError(t, err)
	return ia
}

func TestPathBrokenFlagConcurrentVisibility(t *testing.T) {
	p := &path.Path{Expiry: time.Now().Add(time.Hour)}
	require.False(t, p.Broken())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.MarkBroken()
	}()
	wg.Wait()

	require.True(t, p.Broken())
}

func TestPathExpired(t *testing.T) {
	now := time.Now()
	p := &path.Path{Expiry: now.Add(-time.Second)}
	require.True(t, p.Expired(now))

	p2 := &path.Path{Expiry: now.Add(time.Second)}
	require.False(t, p2.Expired(now))
}

func TestPathHasInterfaceMatchesEitherDirection(t *testing.T) {
	as1 := mustIA(t, "1-ff00:0:1")
	as2 := mustIA(t, "1-ff00:0:2")

	p := &path.Path{
		Attrs: path.Attributes{
			Interfaces: &path.Interfaces{
				Hops: []path.Interface{
					{IA: as1, Ingress: 0, Egress: 3},
					{IA: as2, Ingress: 1, Egress: 0},
				},
			},
		},
	}

	require.True(t, p.HasInterface(as1, 3))
	require.True(t, p.HasInterface(as2, 1))
	require.False(t, p.HasInterface(as2, 9))
	require.False(t, p.HasInterface(mustIA(t, "1-ff00:0:3"), 3))
}

func TestPathHasLinkRequiresExactHop(t *testing.T) {
	as1 := mustIA(t, "1-ff00:0:1")

	p := &path.Path{
		Attrs: path.Attributes{
			Interfaces: &path.Interfaces{
				Hops: []path.Interface{{IA: as1, Ingress: 3, Egress: 1}},
			},
		},
	}

	require.True(t, p.HasLink(as1, 3, 1))
	require.False(t, p.HasLink(as1, 1, 3))
}

func TestPathHasInterfaceWithoutAttributes(t *testing.T) {
	p := &path.Path{}
	require.False(t, p.HasInterface(mustIA(t, "1-ff00:0:1"), 1))
	require.False(t, p.HasLink(mustIA(t, "1-ff00:0:1"), 1, 2))
}

func TestPathNextHopSurvivesRoundTripThroughAttributes(t *testing.T) {
	as1 := mustIA(t, "1-ff00:0:1")
	next := netip.MustParseAddrPort("10.0.0.1:30041")

	want := &path.Path{
		Expiry:  time.Now().Add(time.Hour),
		MTU:     1472,
		NextHop: next,
		Attrs: path.Attributes{
			Interfaces: &path.Interfaces{Hops: []path.Interface{{IA: as1, Egress: 3}}},
		},
	}
	got := &path.Path{
		Expiry:  want.Expiry,
		MTU:     want.MTU,
		NextHop: want.NextHop,
		Attrs:   want.Attrs,
	}

	// netip.AddrPort has unexported fields but is comparable; EquateComparable
	// tells cmp to use == instead of reflecting into them. brokenFlag is an
	// atomic.Bool, irrelevant to this comparison and itself unexported.
	if diff := cmp.Diff(want, got, cmpopts.EquateComparable(netip.AddrPort{}),
		cmpopts.IgnoreFields(path.Path{}, "brokenFlag")); diff != "" {
		t.Fatalf("Path mismatch (-want +got):\n%s", diff)
	}
}
