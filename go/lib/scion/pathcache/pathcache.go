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

// Package pathcache implements the expiration-aware path cache: a keyed
// store of paths per (src,dst) AS pair with refresh scheduling and
// SCMP-driven break-marking. The Cache type doubles as both variants spec
// §4.H calls for (plain and thread-safe): NewThreadSafe installs a real
// sync.RWMutex where New installs a no-op, rather than two duplicated types.
package pathcache

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/metrics"
	"github.com/netsec-ethz/scion-host/go/lib/scion/path"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scmp"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
)

// Params bundles the cache's refresh-scheduling knobs.
type Params struct {
	// MinAcceptedLifetime is the shortest remaining lifetime a stored path
	// must have; shorter-lived paths are dropped by Store.
	MinAcceptedLifetime time.Duration
	// RefreshAtRemaining is how far ahead of the soonest path expiry a
	// refresh is scheduled.
	RefreshAtRemaining time.Duration
	// RefreshInterval caps how long an entry goes between refreshes even
	// when its paths have a long remaining lifetime.
	RefreshInterval time.Duration
}

// DefaultParams returns reasonable default refresh-scheduling parameters.
func DefaultParams() Params {
	return Params{
		MinAcceptedLifetime: 5 * time.Minute,
		RefreshAtRemaining:  10 * time.Minute,
		RefreshInterval:     30 * time.Minute,
	}
}

// Key identifies one cache entry: a (source AS, destination AS) pair.
type Key struct {
	Src addr.IsdAsn
	Dst addr.IsdAsn
}

// QueryFunc performs a control-plane path lookup for (src,dst). It must
// either populate the entry via cache.Store and return nil, or return
// scerr.ErrPending to indicate the refresh is running asynchronously and
// will call Store later.
type QueryFunc func(cache *Cache, src, dst addr.IsdAsn) error

type entry struct {
	paths          []*path.Path
	nextRefresh    time.Time
	refreshPending bool
}

// rwlock is satisfied by both *sync.RWMutex and noopLock, letting Cache
// share one implementation between the thread-safe and plain variants.
type rwlock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type noopLock struct{}

func (noopLock) Lock()    {}
func (noopLock) Unlock()  {}
func (noopLock) RLock()   {}
func (noopLock) RUnlock() {}

// Cache is the expiration-aware path store. Use New for the plain variant
// (single goroutine / cooperative scheduler) or NewThreadSafe for the
// variant safe to share across OS threads (spec §5).
type Cache struct {
	mu      rwlock
	params  Params
	entries map[Key]*entry
	metrics metrics.PathCacheMetrics
	log     *zap.Logger
}

// Option configures a Cache at construction.
type Option func(*Cache)

// WithMetrics attaches a metrics sink; nil (the default) disables metrics.
func WithMetrics(m metrics.PathCacheMetrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithLogger attaches a zap logger; nil (the default) disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func newCache(lock rwlock, params Params, opts ...Option) *Cache {
	c := &Cache{
		mu:      lock,
		params:  params,
		entries: make(map[Key]*entry),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// New returns a path cache for single-threaded/cooperative use: it performs
// no locking at all, matching the reference's non-thread-safe Cache.
func New(params Params, opts ...Option) *Cache {
	return newCache(noopLock{}, params, opts...)
}

// NewThreadSafe returns a path cache safe to share across OS threads: reads
// take a shared lock, and decide-refresh/store/clear/break-marking take an
// exclusive one, per spec §5.
func NewThreadSafe(params Params, opts ...Option) *Cache {
	return newCache(&sync.RWMutex{}, params, opts...)
}

func (c *Cache) getOrCreateLocked(src, dst addr.IsdAsn) *entry {
	k := Key{Src: src, Dst: dst}
	e, ok := c.entries[k]
	if !ok {
		e = &entry{}
		c.entries[k] = e
	}
	return e
}

// Lookup returns the live (non-expired) paths cached for (src,dst),
// triggering a control-plane refresh via query when none is already
// in-flight and the entry is due. See spec §4.H for the exact decision and
// error semantics implemented here.
func (c *Cache) Lookup(src, dst addr.IsdAsn, query QueryFunc) ([]*path.Path, error) {
	now := time.Now()

	c.mu.Lock()
	e := c.getOrCreateLocked(src, dst)
	needRefresh := !e.refreshPending && !now.Before(e.nextRefresh)
	if needRefresh {
		e.refreshPending = true
	}
	c.mu.Unlock()

	var queryErr error
	if needRefresh {
		c.log.Debug("path cache triggering refresh", zap.Stringer("src", src), zap.Stringer("dst", dst))
		queryErr = query(c, src, dst)
		if queryErr != nil && !errors.Is(queryErr, scerr.ErrPending) {
			c.mu.Lock()
			e.refreshPending = false
			c.mu.Unlock()
			c.log.Warn("path cache refresh failed", zap.Error(queryErr),
				zap.Stringer("src", src), zap.Stringer("dst", dst))
		}
	}

	c.mu.RLock()
	live := livePaths(e, now)
	c.mu.RUnlock()

	if c.metrics != nil {
		if needRefresh {
			c.metrics.CacheMiss()
		} else {
			c.metrics.CacheHit()
		}
	}

	if queryErr != nil {
		if errors.Is(queryErr, scerr.ErrPending) {
			if len(live) == 0 {
				return nil, scerr.ErrPending
			}
			return live, nil
		}
		return nil, queryErr
	}
	return live, nil
}

func livePaths(e *entry, now time.Time) []*path.Path {
	out := make([]*path.Path, 0, len(e.paths))
	for _, p := range e.paths {
		if p.Expiry.After(now) {
			out = append(out, p)
		}
	}
	return out
}

// Store replaces the cached paths for (src,dst) wholesale, dropping any
// whose remaining lifetime is at or below MinAcceptedLifetime and
// scheduling the entry's next refresh.
func (c *Cache) Store(src, dst addr.IsdAsn, paths []*path.Path) {
	now := time.Now()
	minLifetime := now.Add(c.params.MinAcceptedLifetime)

	kept := make([]*path.Path, 0, len(paths))
	var minExpiry time.Time
	for _, p := range paths {
		if !p.Expiry.After(minLifetime) {
			continue
		}
		kept = append(kept, p)
		if minExpiry.IsZero() || p.Expiry.Before(minExpiry) {
			minExpiry = p.Expiry
		}
	}

	capped := now.Add(c.params.RefreshInterval)
	nextRefresh := capped
	if !minExpiry.IsZero() {
		byExpiry := minExpiry.Add(-c.params.RefreshAtRemaining)
		if byExpiry.Before(capped) {
			nextRefresh = byExpiry
		}
	}

	c.mu.Lock()
	e := c.getOrCreateLocked(src, dst)
	e.paths = kept
	e.nextRefresh = nextRefresh
	e.refreshPending = false
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Refresh()
	}
	c.log.Debug("path cache entry stored", zap.Stringer("src", src), zap.Stringer("dst", dst),
		zap.Int("stored", len(kept)), zap.Int("dropped", len(paths)-len(kept)))
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]*entry)
	c.mu.Unlock()
}

// ClearEntry drops the cached entry for (src,dst), if any.
func (c *Cache) ClearEntry(src, dst addr.IsdAsn) {
	c.mu.Lock()
	delete(c.entries, Key{Src: src, Dst: dst})
	c.mu.Unlock()
}

// HandleSCMP implements scmp.Handler: it marks broken every cached path
// whose interface list contains the failed link reported by an
// ExtIfDown/IntConnDown message, without removing the path from the cache.
// It always returns true so application-registered handlers further down
// the chain still see the message.
func (c *Cache) HandleSCMP(from addr.SCIONAddress, _ spath.RawPath, msg scmp.Message, _ []byte) bool {
	switch msg.Type {
	case slayers.ScmpTypeExtIfDown:
		b, ok := msg.Body.(*slayers.ScmpExtIfDown)
		if !ok {
			return true
		}
		c.markBroken(func(p *path.Path) bool {
			return p.HasInterface(b.Sender, uint16(b.Iface))
		})
	case slayers.ScmpTypeIntConnDown:
		b, ok := msg.Body.(*slayers.ScmpIntConnDown)
		if !ok {
			return true
		}
		c.markBroken(func(p *path.Path) bool {
			return p.HasLink(b.Sender, uint16(b.Ingress), uint16(b.Egress))
		})
	}
	return true
}

// markBroken takes the write lock, like the other mutations, while it sets
// the atomic Broken flag on every cached path that matches.
func (c *Cache) markBroken(matches func(*path.Path) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		for _, p := range e.paths {
			if p.Broken() || !matches(p) {
				continue
			}
			p.MarkBroken()
			if c.metrics != nil {
				c.metrics.PathBroken()
			}
			c.log.Info("path marked broken by SCMP notification")
		}
	}
}
