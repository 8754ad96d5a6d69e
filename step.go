// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "sync/atomic"

// Suspension is the external stepping boundary for a Program driven outside
// the VM's own handler-stack dispatch — used by CallNode argument lowering
// (vm.go) and the cache's clock reads (cache.go); the VM's step loop and
// the runners work on rawSuspension and Promise instead. It generalizes the teacher's Suspension[A] from a fixed answer type
// A to the VM's single dynamically-typed Program, dropping the Expr-path
// variant the old type also carried: there is no separate defunctionalized
// representation to step here, Program already is that representation.
//
// Suspension enforces affine semantics: Resume may be called at most once.
// Calling Resume twice panics; TryResume returns ok=false instead.
type Suspension struct {
	used atomic.Uintptr
	op   Operation
	cont effectSuspension
}

// Op returns the Node or Effect payload that caused the suspension.
func (s *Suspension) Op() Operation { return s.op }

// Resume advances the computation with v. Returns either a completed value
// (with nil suspension) or the next Suspension. Panics if already resumed
// or discarded.
func (s *Suspension) Resume(v Resumed) (any, *Suspension) {
	if s.used.Add(1) != 1 {
		panic("kont: suspension resumed twice")
	}
	raw, pooled := s.cont.(*rawSuspension)
	next := s.cont.Resume(v)
	if pooled {
		releaseSuspension(raw)
	}
	return classifyResumed(next)
}

// TryResume attempts to advance the computation. Returns (value, next,
// true) on success, or (nil, nil, false) if already used.
func (s *Suspension) TryResume(v Resumed) (any, *Suspension, bool) {
	if s.used.Add(1) != 1 {
		return nil, nil, false
	}
	raw, pooled := s.cont.(*rawSuspension)
	next := s.cont.Resume(v)
	if pooled {
		releaseSuspension(raw)
	}
	a, susp := classifyResumed(next)
	return a, susp, true
}

// Discard marks the suspension as consumed without resuming.
func (s *Suspension) Discard() {
	s.used.Store(1)
}

// Step drives Program m until it either completes or suspends.
// Returns (value, nil) on completion, or (nil, suspension) when pending.
func Step(m Program) (any, *Suspension) {
	result := m(toResumed[any])
	return classifyResumed(result)
}

// classifyResumed examines a Resumed value and classifies it as either a
// completed value or a Suspension carrying the pending yield.
func classifyResumed(result Resumed) (any, *Suspension) {
	if s, ok := result.(effectSuspension); ok {
		return nil, &Suspension{op: s.Op(), cont: s}
	}
	return result, nil
}
