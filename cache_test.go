// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hayabusacloud/kont"
)

func TestCacheGetMissingKeyRaisesCacheMissError(t *testing.T) {
	_, err := kont.Run(kont.CacheGet("absent"))
	var cerr *kont.CacheMissError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CacheMissError, got %v", err)
	}
}

func TestCachePutThenGetRoundTrips(t *testing.T) {
	body := kont.AndThen(kont.CachePut("k", 42, kont.CachePolicy{}), kont.CacheGet("k"))
	got, err := kont.Run(body)
	if err != nil || got != 42 {
		t.Fatalf("got (%v,%v), want (42,nil)", got, err)
	}
}

func TestCacheEntryExpiresAfterTTL(t *testing.T) {
	store := kont.NewStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kont.UseSimulatedClock(store, start)

	body := kont.AndThen(
		kont.CachePut("k", "v", kont.CachePolicy{TTL: time.Minute}),
		kont.AndThen(kont.AfterDelay(2*time.Minute), kont.CacheGet("k")),
	)
	_, err := kont.Run(body, kont.WithStore(store))
	var cerr *kont.CacheMissError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected the entry to have expired, got %v", err)
	}
}

func TestCachePutAcceptsLifecycleAndStorageHint(t *testing.T) {
	body := kont.AndThen(kont.CachePut("k", "v", kont.CachePolicy{
		Lifecycle:   kont.CacheLifecyclePersistent,
		StorageHint: kont.CacheStorageDistributed,
	}), kont.CacheGet("k"))
	got, err := kont.Run(body)
	if err != nil || got != "v" {
		t.Fatalf("got (%v,%v), want (v,nil): a distributed/persistent hint must still round-trip through the in-memory store", got, err)
	}
}

func TestCacheEntryWithoutTTLNeverExpires(t *testing.T) {
	store := kont.NewStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kont.UseSimulatedClock(store, start)

	body := kont.AndThen(
		kont.CachePut("k", "v", kont.CachePolicy{}),
		kont.AndThen(kont.AfterDelay(24*time.Hour), kont.CacheGet("k")),
	)
	got, err := kont.Run(body, kont.WithStore(store))
	if err != nil || got != "v" {
		t.Fatalf("got (%v,%v), want (v,nil)", got, err)
	}
}
