// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import (
	"sync"
	"sync/atomic"
)

// rawSuspension is the single suspension shape every Program yield produces
// (§4.4 step 1): yielded holds either a Node or an Effect payload, k is the
// rest of the computation. This adapts the teacher's genericMarker — same
// pooling idiom, same "one shape covers every yield" intent — simplified
// because the new VM drives a single dynamically-typed Program rather than
// fusing per-shape (effect/bind/then/map) resume strategies: here there is
// only ever one shape to resume.
//
// used enforces the one-shot continuation invariant (§3 "a one-shot
// continuation is consumed by its first Resume or Transfer; further uses
// fail with a well-defined error") at the point every captured Continuation
// eventually bottoms out: a second Resume/Transfer of the same capture
// raises ContinuationAlreadyUsedError instead of re-invoking k.
type rawSuspension struct {
	used    atomic.Uintptr
	yielded any
	k       func(any) any
}

func (s *rawSuspension) Op() Operation { return s.yielded }

func (s *rawSuspension) Resume(v Resumed) Resumed {
	if s.used.Add(1) != 1 {
		return raised{err: &ContinuationAlreadyUsedError{}}
	}
	return s.k(v)
}

var rawSuspensionPool = sync.Pool{New: func() any { return new(rawSuspension) }}

// acquireSuspension returns a pooled, zeroed *rawSuspension.
func acquireSuspension() *rawSuspension {
	s := rawSuspensionPool.Get().(*rawSuspension)
	s.used.Store(0)
	return s
}

// releaseSuspension zeroes and returns s to the pool. Only safe once s's
// Resume has actually been invoked or the suspension discarded, matching
// the affine (at-most-once) discipline the teacher's pooled frames required.
func releaseSuspension(s *rawSuspension) {
	s.yielded = nil
	s.k = nil
	rawSuspensionPool.Put(s)
}
