// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "sync/atomic"

// Await is the one effect shape allowed to leave the VM and reach an
// external runner (§4.7): everything else (Spawn/Wait/Gather/Race,
// Acquire/Release, Delay against a simulated clock) is resolved entirely
// inside the scheduler. Delay and WaitUntil against the wall clock are
// performed as a Call, and so escape as an Await like any other Call.
// Awaitable is opaque to the VM — only the runner driving the escape knows
// what to do with it (an I/O call, a Promise, a channel read).
type Await struct{ Awaitable any }

// promiseState backs a Promise: a single-fire, externally-resolvable value
// slot (§4.7), written at most once via Resolve/Reject — mirroring the
// teacher's own affine Once-resolution discipline (affine.go) rather than
// reinventing a second one-shot guard.
type promiseState struct {
	used   atomic.Uintptr
	waiter *taskState
	sch    *scheduler
}

// NewPromise creates a pending Promise. Perform Await with it (via
// AwaitPromise) to park the calling task until Resolve or Reject settles it.
func NewPromise() Promise {
	p := &promiseState{}
	return Promise{id: newID(), p: p}
}

// AwaitPromise parks the calling task until p settles, yielding the
// resolved value or raising the rejection error.
func AwaitPromise(p Promise) Program {
	return performEffect(Await{Awaitable: p})
}

// Resolve settles p with a successful value. Calling Resolve or Reject a
// second time on the same Promise is a no-op — a Promise settles once.
func (p Promise) Resolve(v any) {
	p.p.settle(func(s *scheduler, w *taskState) { s.settleAwait(w, v, nil) })
}

// Reject settles p with an error.
func (p Promise) Reject(err error) {
	p.p.settle(func(s *scheduler, w *taskState) { s.settleAwait(w, nil, err) })
}

func (p *promiseState) settle(apply func(*scheduler, *taskState)) {
	if p.used.Add(1) != 1 {
		return
	}
	if p.waiter != nil && p.sch != nil {
		apply(p.sch, p.waiter)
	}
}

// park records the task awaiting p; called by the async runner when it
// finds a task parked on an Await whose payload is a Promise.
func (p *promiseState) park(sch *scheduler, t *taskState) {
	p.sch = sch
	p.waiter = t
}

// settleAwait resumes a task parked on an Await, feeding v/err back into the
// continuation captured at the escape point (§4.7).
func (s *scheduler) settleAwait(t *taskState, v any, err error) {
	s.removePendingEscape(t)
	k := t.awaitK
	t.awaitK = nil
	t.k = k
	if err != nil {
		outcome := unwindErrorResume(t, err)
		s.continueAfterEscape(t, outcome)
		return
	}
	t.prog = PureProgram(v)
	s.continueAfterEscape(t, runStep(t))
}

// unwindErrorResume is unwindError's entry point reused for settling a
// rejected Await — it needs t.k already positioned at the captured
// continuation, exactly as unwindError expects. When a frame catches the
// error and drives a new Program, the step loop continues from there.
func unwindErrorResume(t *taskState, err error) stepOutcome {
	outcome, done := unwindError(t, err)
	if !done {
		return runStep(t)
	}
	return outcome
}

// continueAfterEscape folds a just-resumed task's outcome back into the
// scheduler: Done/Failed wake its waiters/racers, Escape re-registers it for
// the next Await, Parked needs nothing since the task is already registered
// with whatever it parked on. Continue never arrives here: settleAwait
// only passes outcomes at which the task has stopped.
func (s *scheduler) continueAfterEscape(t *taskState, outcome stepOutcome) {
	switch outcome {
	case outcomeDone, outcomeFailed:
		s.finish(t)
	case outcomeEscape:
		s.pendingEscapes = append(s.pendingEscapes, t)
	}
}
