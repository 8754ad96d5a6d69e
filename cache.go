// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "time"

// cacheEntry is one reserved-cache slot: a value plus an optional absolute
// expiry. A zero expiry means the entry never expires on its own (§6).
type cacheEntry struct {
	value       any
	expiry      time.Time
	hasTTL      bool
	lifecycle   CacheLifecycle
	storageHint CacheStorageHint
}

// CacheLifecycle classifies how long an entry is expected to live, beyond
// whatever TTL it carries (§6 "policies: TTL, lifecycle"). This core only
// ships one backing store (in-memory, §4 SUPPLEMENTAL), so the lifecycle is
// recorded on the entry but does not change where it is stored.
type CacheLifecycle string

const (
	CacheLifecycleSession    CacheLifecycle = "session"
	CacheLifecyclePersistent CacheLifecycle = "persistent"
	CacheLifecycleTemporary  CacheLifecycle = "temporary"
)

// CacheStorageHint advises where an entry would ideally live; concrete
// disk/distributed backends are out-of-scope effect-bearing adapters (§1),
// so every hint is accepted and recorded but routed to the same in-memory
// store slot.
type CacheStorageHint string

const (
	CacheStorageMemory      CacheStorageHint = "memory"
	CacheStorageDisk        CacheStorageHint = "disk"
	CacheStorageDistributed CacheStorageHint = "distributed"
)

func cacheOf(t *taskState) map[string]cacheEntry {
	v, ok := t.store.Get(reservedKeyCache)
	if !ok {
		m := make(map[string]cacheEntry)
		t.store.Put(reservedKeyCache, m)
		return m
	}
	return v.(map[string]cacheEntry)
}

// CachePolicy configures a CachePut entry's lifecycle (§6).
type CachePolicy struct {
	// TTL, if positive, expires the entry TTL after it is written.
	TTL time.Duration
	// Lifecycle classifies the entry's expected lifetime beyond TTL.
	Lifecycle CacheLifecycle
	// StorageHint advises where the entry would ideally live; every hint is
	// accepted but routed to the same in-memory backing in this core.
	StorageHint CacheStorageHint
}

// CacheGetEffect reads Key from the run's cache, raising *CacheMissError if
// absent or expired.
type CacheGetEffect struct{ Key string }

// CachePutEffect writes Key unconditionally, applying Policy.
type CachePutEffect struct {
	Key    string
	Value  any
	Policy CachePolicy
}

// CacheGet performs CacheGetEffect for key.
func CacheGet(key string) Program { return performEffect(CacheGetEffect{Key: key}) }

// CachePut performs CachePutEffect for key.
func CachePut(key string, v any, policy CachePolicy) Program {
	return performEffect(CachePutEffect{Key: key, Value: v, Policy: policy})
}

func dispatchCacheGet(t *taskState, key string) Program {
	entries := cacheOf(t)
	e, ok := entries[key]
	if !ok {
		return Raise(&CacheMissError{Key: key})
	}
	if e.hasTTL {
		now := dispatchGetTime(t)
		v, _ := Step(now)
		if v.(time.Time).After(e.expiry) {
			delete(entries, key)
			return Raise(&CacheMissError{Key: key})
		}
	}
	return PureProgram(e.value)
}

func dispatchCachePut(t *taskState, e CachePutEffect) Program {
	entries := cacheOf(t)
	entry := cacheEntry{value: e.Value, lifecycle: e.Policy.Lifecycle, storageHint: e.Policy.StorageHint}
	if e.Policy.TTL > 0 {
		now := dispatchGetTime(t)
		v, _ := Step(now)
		entry.hasTTL = true
		entry.expiry = v.(time.Time).Add(e.Policy.TTL)
	}
	entries[e.Key] = entry
	return PureProgram(struct{}{})
}
