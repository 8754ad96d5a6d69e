// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// unhandledEffect panics with a descriptive message for unmatched operations
// reaching the VM's own top-level, never a normal exit path — callers always
// get an UnhandledEffectError first (§7).
//
//go:noinline
func unhandledEffect(detail string) {
	panic("kont: unhandled effect " + detail)
}

// Operation is the runtime type of a yielded Node or Effect payload, kept as
// a named alias of any rather than reintroduced as the F-bounded Op
// constraint: effect payloads here are arbitrary user types classified by
// dynamic type (or Family), not types known at each Perform call site
// (§9's "dynamic typing / runtime effect inspection").
type Operation = any

// Resumed is the runtime type of values flowing through suspension and
// resumption. Program is Cont[Resumed, any]: Resumed and the value type
// coincide since every Program's answer type is itself any.
type Resumed = any

// effectSuspension is implemented by rawSuspension; a single interface
// dispatch covers every Program suspension regardless of whether it
// yielded a control Node or an Effect payload — the VM classifies Op()
// after the fact (§4.4 step 1).
type effectSuspension interface {
	Op() Operation
	Resume(Resumed) Resumed
}

// toResumed is the identity continuation for CPS entry points (Step, Run).
// A named generic function produces a static function value per type
// instantiation, avoiding the heap allocation an anonymous closure would
// incur — kept from the teacher's toResumed.
func toResumed[A any](a A) Resumed { return a }
