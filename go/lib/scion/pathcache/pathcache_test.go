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

package pathcache_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/pathcache"
	"github.com/netsec-ethz/scion-host/go/lib/scion/path"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scmp"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
)

var (
	srcIA = addr.IsdAsn(0x1_ff0000000110)
	dstIA = addr.IsdAsn(0x1_ff0000000111)
)

func freshPaths(lifetime time.Duration, n int) []*path.Path {
	paths := make([]*path.Path, n)
	for i := range paths {
		paths[i] = &path.Path{Expiry: time.Now().Add(lifetime)}
	}
	return paths
}

func TestLookupTriggersRefreshOnFirstCall(t *testing.T) {
	c := pathcache.New(pathcache.DefaultParams())
	var calls int
	query := func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		calls++
		cache.Store(src, dst, freshPaths(time.Hour, 2))
		return nil
	}
	paths, err := c.Lookup(srcIA, dstIA, query)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	require.Equal(t, 1, calls)
}

func TestLookupReusesCacheWithoutRefreshUntilDue(t *testing.T) {
	params := pathcache.DefaultParams()
	c := pathcache.New(params)
	var calls int
	query := func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		calls++
		cache.Store(src, dst, freshPaths(time.Hour, 1))
		return nil
	}
	_, err := c.Lookup(srcIA, dstIA, query)
	require.NoError(t, err)
	_, err = c.Lookup(srcIA, dstIA, query)
	require.NoError(t, err)
	require.Equal(t, 1, calls, "second lookup should not re-trigger refresh before nextRefresh")
}

// TestRefreshIntervalZeroCollapsesConcurrentLookups exercises scenario S6:
// with RefreshInterval=0 every lookup is due for refresh, but concurrent
// lookups against the same key must still collapse onto a single in-flight
// query rather than each issuing their own.
func TestRefreshIntervalZeroCollapsesConcurrentLookups(t *testing.T) {
	defer goleak.VerifyNone(t)

	params := pathcache.Params{
		MinAcceptedLifetime: time.Second,
		RefreshAtRemaining:  time.Minute,
		RefreshInterval:     0,
	}
	c := pathcache.NewThreadSafe(params)

	var mu sync.Mutex
	var calls int
	release := make(chan struct{})
	query := func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			<-release
			cache.Store(src, dst, freshPaths(time.Hour, 1))
			return nil
		}
		return scerr.ErrPending
	}

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = c.Lookup(srcIA, dstIA, query)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, calls, "only one lookup should have issued the control-plane query")
}

func TestLookupPropagatesRealErrorAndClearsPending(t *testing.T) {
	c := pathcache.New(pathcache.DefaultParams())
	boom := errors.New("control plane unreachable")
	query := func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		return boom
	}
	paths, err := c.Lookup(srcIA, dstIA, query)
	require.ErrorIs(t, err, boom)
	require.Nil(t, paths)

	// refreshPending must have been cleared: a second lookup retries rather
	// than treating the first failed attempt as still in flight.
	var secondCalls int
	query2 := func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		secondCalls++
		cache.Store(src, dst, freshPaths(time.Hour, 1))
		return nil
	}
	_, err = c.Lookup(srcIA, dstIA, query2)
	require.NoError(t, err)
	require.Equal(t, 1, secondCalls)
}

func TestLookupPendingWithNoCachedPathsReturnsErrPending(t *testing.T) {
	c := pathcache.New(pathcache.DefaultParams())
	query := func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		return scerr.ErrPending
	}
	paths, err := c.Lookup(srcIA, dstIA, query)
	require.ErrorIs(t, err, scerr.ErrPending)
	require.Nil(t, paths)
}

func TestLookupPendingWithCachedPathsReturnsStalePathsNoError(t *testing.T) {
	c := pathcache.New(pathcache.DefaultParams())
	// warm the cache.
	_, err := c.Lookup(srcIA, dstIA, func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		cache.Store(src, dst, freshPaths(time.Hour, 1))
		return nil
	})
	require.NoError(t, err)

	// force another refresh decision that reports Pending.
	c2 := pathcache.New(pathcache.Params{
		MinAcceptedLifetime: time.Second,
		RefreshAtRemaining:  time.Minute,
		RefreshInterval:     0,
	})
	_, err = c2.Lookup(srcIA, dstIA, func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		cache.Store(src, dst, freshPaths(time.Hour, 1))
		return nil
	})
	require.NoError(t, err)
	paths, err := c2.Lookup(srcIA, dstIA, func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		return scerr.ErrPending
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestStoreDropsPathsBelowMinAcceptedLifetime(t *testing.T) {
	c := pathcache.New(pathcache.DefaultParams())
	paths := append(freshPaths(time.Hour, 1), freshPaths(time.Second, 1)...)
	c.Store(srcIA, dstIA, paths)

	live, err := c.Lookup(srcIA, dstIA, func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		t.Fatal("should not refresh immediately after Store")
		return nil
	})
	require.NoError(t, err)
	require.Len(t, live, 1)
}

// TestSCMPInvalidationMarksOnlyMatchingPaths exercises scenario S5: an
// ExtIfDown notification must mark broken only the paths that traverse the
// failed interface, leaving unrelated paths untouched.
func TestSCMPInvalidationMarksOnlyMatchingPaths(t *testing.T) {
	c := pathcache.NewThreadSafe(pathcache.DefaultParams())

	hit := &path.Path{
		Expiry: time.Now().Add(time.Hour),
		Attrs: path.Attributes{
			Interfaces: &path.Interfaces{
				Hops: []path.Interface{{IA: srcIA, Egress: 42}},
			},
		},
	}
	miss := &path.Path{
		Expiry: time.Now().Add(time.Hour),
		Attrs: path.Attributes{
			Interfaces: &path.Interfaces{
				Hops: []path.Interface{{IA: srcIA, Egress: 7}},
			},
		},
	}
	c.Store(srcIA, dstIA, []*path.Path{hit, miss})

	msg := scmp.Message{
		Type: slayers.ScmpTypeExtIfDown,
		Body: &slayers.ScmpExtIfDown{Sender: srcIA, Iface: 42},
	}
	cont := c.HandleSCMP(addr.SCIONAddress{}, spath.RawPath{}, msg, nil)
	require.True(t, cont)

	require.True(t, hit.Broken())
	require.False(t, miss.Broken())
}

func TestClearEntryRemovesOnlyThatKey(t *testing.T) {
	c := pathcache.New(pathcache.DefaultParams())
	other := addr.IsdAsn(0x1_ff0000000112)

	c.Store(srcIA, dstIA, freshPaths(time.Hour, 1))
	c.Store(srcIA, other, freshPaths(time.Hour, 1))

	c.ClearEntry(srcIA, dstIA)

	var refreshed bool
	paths, err := c.Lookup(srcIA, dstIA, func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		refreshed = true
		cache.Store(src, dst, freshPaths(time.Hour, 1))
		return nil
	})
	require.NoError(t, err)
	require.True(t, refreshed)
	require.Len(t, paths, 1)

	var untouchedRefreshed bool
	_, err = c.Lookup(srcIA, other, func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		untouchedRefreshed = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, untouchedRefreshed, "unrelated entry must survive ClearEntry")
}
