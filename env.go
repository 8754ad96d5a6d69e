// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "fmt"

// Env is an immutable reader context: a mapping from opaque keys to values,
// with copy-on-write override (§4.2). A value may itself be a lazy Program,
// evaluated once per top-level run and then memoised in the Store.
//
// Env is a persistent data structure: Overlay never mutates the receiver,
// it returns a new Env sharing the parent's backing map.
type Env struct {
	parent *Env
	local  map[any]any
}

// NewEnv returns an empty Env.
func NewEnv() *Env { return &Env{} }

// lazyEnvValue marks a value to be evaluated once, on first Ask, and then
// memoised in the Store under the key passed to Lazy.
type lazyEnvValue struct {
	key     any
	program Program
}

// Lazy wraps p so that Ask evaluates it at most once per run, memoising the
// result in the Store's reserved lazy-reader slot.
func Lazy(key any, p Program) any {
	return lazyEnvValue{key: key, program: p}
}

// MissingEnvKeyError is raised by a bare Ask when key is absent (§7).
type MissingEnvKeyError struct{ Key any }

func (e *MissingEnvKeyError) Error() string {
	return fmt.Sprintf("kont: missing environment key %v", e.Key)
}

// CycleDetectedError is raised when evaluating a lazy Env value re-enters
// its own evaluation (§7).
type CycleDetectedError struct{ Key any }

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("kont: cycle detected evaluating lazy key %v", e.Key)
}

// Read looks up key, returning (value, true) if present anywhere in the
// overlay chain, or (nil, false) if absent. It does not force lazy values —
// use Store-backed Ask resolution (reader.go) for that.
func (e *Env) Read(key any) (any, bool) {
	for env := e; env != nil; env = env.parent {
		if env.local == nil {
			continue
		}
		if v, ok := env.local[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// MustRead looks up key, returning a *MissingEnvKeyError if absent.
func (e *Env) MustRead(key any) (any, error) {
	v, ok := e.Read(key)
	if !ok {
		return nil, &MissingEnvKeyError{Key: key}
	}
	return v, nil
}

// Overlay returns a new Env composing override on top of e. Keys in
// override shadow the same keys in e; e itself is untouched.
func (e *Env) Overlay(override map[any]any) *Env {
	local := make(map[any]any, len(override))
	for k, v := range override {
		local[k] = v
	}
	return &Env{parent: e, local: local}
}

// Keys returns the set of keys visible through the overlay chain, used by
// the Local-restoration law (§8) to compare two environments pointwise.
func (e *Env) Keys() map[any]struct{} {
	seen := make(map[any]struct{})
	for env := e; env != nil; env = env.parent {
		for k := range env.local {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
			}
		}
	}
	return seen
}
