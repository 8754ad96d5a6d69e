// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "fmt"

// reservedPrefix delimits Store keys reserved for standard-effect handlers
// (writer log, cache backing, graph snapshot buffer, clock override, lazy
// reader memo). User code must not read or write keys under this prefix.
const reservedPrefix = "kont:"

const (
	reservedKeyWriterLog = reservedPrefix + "writer-log"
	reservedKeyCache     = reservedPrefix + "cache"
	reservedKeyGraph     = reservedPrefix + "graph"
	reservedKeyClock     = reservedPrefix + "clock"
	reservedKeyLazyMemo  = reservedPrefix + "lazy-memo"
)

// MissingStateKeyError is raised by a bare Get when key is absent (§7).
type MissingStateKeyError struct{ Key string }

func (e *MissingStateKeyError) Error() string {
	return fmt.Sprintf("kont: missing state key %q", e.Key)
}

// Store is the single mutable keyed slot table shared by every task of one
// top-level run (§4.2). Only the currently running task may write; reads
// are visible to all tasks immediately since there is no parallelism.
type Store struct {
	slots map[string]any
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{slots: make(map[string]any)}
}

// Get returns (value, true) if key is present, or (nil, false) otherwise.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.slots[key]
	return v, ok
}

// MustGet returns a *MissingStateKeyError if key is absent.
func (s *Store) MustGet(key string) (any, error) {
	v, ok := s.Get(key)
	if !ok {
		return nil, &MissingStateKeyError{Key: key}
	}
	return v, nil
}

// Put sets key unconditionally.
func (s *Store) Put(key string, v any) {
	s.slots[key] = v
}

// Modify applies f to the current value of key (zero value if absent) and
// stores the result. Modify is atomic on failure: if f returns an error the
// slot is left unchanged (§4.2).
func (s *Store) Modify(key string, f func(any) (any, error)) (any, error) {
	cur := s.slots[key]
	next, err := f(cur)
	if err != nil {
		return nil, err
	}
	s.slots[key] = next
	return next, nil
}

// GetAndUpdate atomically reads the current value and replaces it. The
// semaphore and scheduler keep their own counters and do not call it.
// It never fails, unlike Modify.
func (s *Store) GetAndUpdate(key string, f func(any) any) (old, new any) {
	old = s.slots[key]
	new = f(old)
	s.slots[key] = new
	return old, new
}

// reserved returns true if key falls under the reserved-key prefix.
func reserved(key string) bool {
	return len(key) >= len(reservedPrefix) && key[:len(reservedPrefix)] == reservedPrefix
}

// sliceOf returns the []T stored at key, creating and storing an empty one
// on first use. Used by the writer-log, lazy-memo and graph-snapshot
// reserved slots; the writer log grows without a size bound.
func sliceOf[T any](s *Store, key string) *[]T {
	v, ok := s.slots[key]
	if !ok {
		sl := make([]T, 0)
		s.slots[key] = &sl
		return &sl
	}
	return v.(*[]T)
}
