// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// taskState is the VM's per-task record: its own Program/K, the Env/Store
// it shares with the rest of the run, and the scheduler bookkeeping needed
// for Spawn/Wait/Gather/Race and cooperative cancellation (§4.6).
type taskState struct {
	id    Task
	env   *Env
	store *Store
	vm    *scheduler

	prog Program
	k    *Continuation

	dispatch *dispatchContext

	awaitK       *Continuation
	awaitPayload any

	parkK   *Continuation
	racers  []*taskState

	done      bool
	value     any
	err       error
	cancelled bool

	waiters []*taskState
}

// scheduler is the single-threaded cooperative runtime shared by every task
// of one top-level run: a FIFO ready queue plus the Store all tasks read
// and write (§4.2, §4.6). There is never more than one taskState actually
// executing at a time — "concurrency" here means interleaving, not OS
// parallelism, matching spec.md's explicit Non-goal.
type scheduler struct {
	store *Store
	ready []*taskState
	all   map[Task]*taskState
	logger ambientLogger

	// pendingEscapes holds tasks currently parked on an Await that the
	// runner has not yet resolved — drained by the async runner's event
	// loop (escape.go, runner.go).
	pendingEscapes []*taskState
}

func newScheduler(store *Store) *scheduler {
	return &scheduler{store: store, all: make(map[Task]*taskState)}
}

// enqueue appends t to the back of the FIFO ready queue.
func (s *scheduler) enqueue(t *taskState) { s.ready = append(s.ready, t) }

// spawnTask creates and enqueues a new task running prog, with a snapshot of
// parentEnv (Spawn's "snapshot semantics", §4.6: the child sees the parent's
// Env as it stood at Spawn time, and independent mutations to the child's
// own Env afterward are invisible to the parent).
func (s *scheduler) spawnTask(parentEnv *Env, prog Program) *taskState {
	t := &taskState{
		id:    Task{id: newID()},
		env:   parentEnv,
		store: s.store,
		vm:    s,
		prog:  prog,
		k:     push(returnFrame{}, nil),
	}
	t.id.task = t
	s.all[t.id] = t
	s.enqueue(t)
	return t
}

// drain runs every ready task to its next stopping point (Done, Failed, or
// Escape) in FIFO order, repeating until the queue is empty. This is the
// outermost loop a synchronous Run drives directly; the async runner drives
// one task (or one drain pass) at a time instead, see escape.go.
func (s *scheduler) drain() {
	for len(s.ready) > 0 {
		t := s.ready[0]
		s.ready = s.ready[1:]
		s.runOne(t)
	}
}

// runOne advances t until it stops; Escape outcomes are left to the caller
// (a synchronous Run blocks on them via the background pool, runner.go).
func (s *scheduler) runOne(t *taskState) stepOutcome {
	if t.cancelled && !t.done {
		t.done, t.err = true, &TaskCancelledError{TaskID: t.id}
		s.finish(t)
		return outcomeFailed
	}
	outcome := runStep(t)
	switch outcome {
	case outcomeDone, outcomeFailed:
		s.finish(t)
	case outcomeEscape:
		s.pendingEscapes = append(s.pendingEscapes, t)
	}
	return outcome
}

// finish wakes every task waiting on t (Wait/Gather, §4.6) and every task
// racing against t (Race): the first racer to have a target finish wins,
// later finishes of its other targets are no-ops because resumeParked
// clears parkK on first use.
func (s *scheduler) finish(t *taskState) {
	waiters := t.waiters
	t.waiters = nil
	for _, w := range waiters {
		s.resumeParked(w, resultOf(t))
	}

	racers := t.racers
	t.racers = nil
	for _, r := range racers {
		s.resumeParked(r, raceResult{Winner: t.id, Result: resultOf(t)})
	}
}

// resumeParked splices a parked task's captured continuation back in with
// v and re-enqueues it; a nil parkK means it already resumed (raced twice).
func (s *scheduler) resumeParked(w *taskState, v any) {
	if w.parkK == nil {
		return
	}
	k := w.parkK
	w.parkK = nil
	w.k = k
	w.prog = PureProgram(v)
	s.enqueue(w)
}

// removePendingEscape drops t from the escape-parked set, called once
// something (the synchronous pool or an external Promise) is about to
// settle it.
func (s *scheduler) removePendingEscape(t *taskState) {
	for i, p := range s.pendingEscapes {
		if p == t {
			s.pendingEscapes = append(s.pendingEscapes[:i], s.pendingEscapes[i+1:]...)
			return
		}
	}
}

// raceResult is RaceEffect's resolved value: which target won and its
// (value, error) outcome.
type raceResult struct {
	Winner Task
	Result taskResult
}

// --- standard effects: Spawn / Wait / Gather / Race / cancellation -------

// SpawnEffect requests a new concurrently-scheduled task running Body,
// returning its Task handle without suspending the caller (§4.6 "Spawn does
// not suspend").
type SpawnEffect struct{ Body Program }

// WaitEffect blocks the caller until target completes, yielding its value
// or raising the error it failed with.
type WaitEffect struct{ Target Task }

// GatherOption configures Gather's error policy.
type GatherOption func(*gatherOptions)

type gatherOptions struct{ cancelOnFirstError bool }

// CancelOnFirstError switches Gather from the default "await all branches,
// surface the first error" policy to stopping at the first failed branch:
// targets are still awaited in argument order, and the first one found to
// have failed marks every target after it cancelled and its error is raised
// at once (§5 Open Question, decided in SPEC_FULL.md). A failure of a later
// target is noticed only after every earlier target has finished.
func CancelOnFirstError() GatherOption {
	return func(o *gatherOptions) { o.cancelOnFirstError = true }
}

// GatherEffect runs every Target concurrently and collects results in the
// same order the targets were given, regardless of completion order.
type GatherEffect struct {
	Targets []Task
	Options []GatherOption
}

// RaceEffect resolves as soon as the first of Targets completes. By
// default the remaining tasks are left running to completion — Race
// "cancels nothing by default" (§8 concrete scenario).
type RaceEffect struct{ Targets []Task }

// CancelEffect cooperatively requests target's cancellation: the target
// only observes it the next time the scheduler is about to run it (§4.6).
type CancelEffect struct{ Target Task }

// taskResult is Wait/Gather/Race's per-task outcome shape.
type taskResult struct {
	Value any
	Err   error
}

func dispatchSpawn(sch *scheduler, env *Env, eff SpawnEffect) Task {
	t := sch.spawnTask(env, eff.Body)
	return t.id
}

func dispatchWait(sch *scheduler, target Task) Program {
	park := FromClosure(func(k func(any) any) any {
		tt := target.task
		if tt.done || tt.err != nil {
			return k(resultOf(tt))
		}
		// The caller's own task will be re-enqueued once tt finishes; the
		// actual blocking is expressed by parking on tt.waiters and letting
		// finish resume this k later via resumeParked,
		// mirroring the Await escape handshake but entirely internal to the
		// scheduler (only Await itself ever leaves the VM, §4.7).
		return &rawSuspension{
			yielded: waitParkNode{target: tt},
			k:       k,
		}
	})
	return FlatMapProgram(park, func(v any) Program {
		r := v.(taskResult)
		if r.Err != nil {
			return Raise(r.Err)
		}
		return PureProgram(r.Value)
	})
}

// waitParkNode is an internal (unexported) Node: the VM recognizes it in
// evalNode and parks the current task on tt.waiters instead of routing it
// through handler dispatch — Wait/Gather/Race never escape the VM.
type waitParkNode struct{ target *taskState }

func (waitParkNode) node() {}

func resultOf(t *taskState) taskResult {
	return taskResult{Value: t.value, Err: t.err}
}

// dispatchGather awaits every target in argument order and, by default,
// surfaces the first recorded error only after every branch has finished —
// the same "run the whole group, report the first failure" contract as
// errgroup.Group.Wait's default mode. CancelOnFirstError instead, at the
// first failed result it reaches in argument order, marks the later targets
// cancelled and surfaces that error without awaiting them. Targets that have
// already finished are read without parking. The result is a []any of the
// targets' values in argument order.
func dispatchGather(sch *scheduler, targets []Task, opts []GatherOption) Program {
	var o gatherOptions
	for _, apply := range opts {
		apply(&o)
	}
	collect := FromGenerator(func(yield func(any) any) any {
		results := make([]taskResult, len(targets))
		for i, tgt := range targets {
			if !tgt.task.done {
				yield(waitParkNode{target: tgt.task})
			}
			results[i] = resultOf(tgt.task)
			if o.cancelOnFirstError && results[i].Err != nil {
				for _, rest := range targets[i+1:] {
					rest.task.cancelled = true
				}
				return results
			}
		}
		return results
	})
	return FlatMapProgram(collect, func(v any) Program {
		results := v.([]taskResult)
		values := make([]any, len(results))
		for i, r := range results {
			if r.Err != nil {
				return Raise(r.Err)
			}
			values[i] = r.Value
		}
		return PureProgram(values)
	})
}

func dispatchRace(sch *scheduler, targets []Task) Program {
	return FromClosure(func(k func(any) any) any {
		for _, tgt := range targets {
			if tgt.task.done {
				return k(raceResult{Winner: tgt, Result: resultOf(tgt.task)})
			}
		}
		return &rawSuspension{
			yielded: raceParkNode{targets: targets},
			k:       k,
		}
	})
}

type raceParkNode struct{ targets []Task }

func (raceParkNode) node() {}

// --- public API ------------------------------------------------------

// Spawn starts body running as a new concurrently-scheduled task and
// returns its Task handle; the caller is not suspended (§4.6).
func Spawn(body Program) Program {
	return performEffect(SpawnEffect{Body: body})
}

// Wait blocks until target completes and yields its value, or raises the
// error it failed with (a *TaskCancelledError for a cancelled target) —
// Gather and Race are built from the same park mechanism.
func Wait(target Task) Program {
	return performEffect(WaitEffect{Target: target})
}

// Gather runs every target concurrently and returns their values, as a
// []any, in argument order, regardless of completion order. By default it
// awaits every branch and surfaces the first error in argument order; pass
// CancelOnFirstError to stop at the first failed branch found in argument
// order and cancel the branches after it.
func Gather(targets []Task, opts ...GatherOption) Program {
	return performEffect(GatherEffect{Targets: targets, Options: opts})
}

// Race resolves as soon as the first of targets completes. The remaining
// targets are left running to completion — Race cancels nothing by
// default (§8).
func Race(targets []Task) Program {
	return performEffect(RaceEffect{Targets: targets})
}

// Cancel cooperatively requests target's cancellation: target only
// observes it the next time the scheduler is about to run it (§4.6).
func Cancel(target Task) Program {
	return performEffect(CancelEffect{Target: target})
}
