// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// raised is the sentinel a Program resolves to when it has raised an error
// instead of returning a value (§4.4 "on raised error"). It never calls its
// continuation — the same "bypass k, let the wrapper pass it through
// unchanged" discipline Bind/Map/Then already have, so raised propagates
// through arbitrary composition without either of them needing to know
// about it.
type raised struct{ err error }

// Raise returns a Program that aborts with err: every frame it passes
// through sees on_error, not on_value, until something (Safe, or the
// top-level run) catches it.
func Raise(err error) Program {
	return FromClosure(func(func(any) any) any {
		return raised{err: err}
	})
}

// stepOutcome classifies one VM step (§4.4).
type stepOutcome int

const (
	outcomeContinue stepOutcome = iota
	outcomeDone
	outcomeFailed
	outcomeEscape
	outcomeParked
)

// escapeRequest carries an Await-shaped yield out of the VM to the runner
// (§4.7): only Await-shaped operations ever reach here, everything else
// (semaphore, gather, race, simulated-clock timers) is handled internally
// by the scheduler; a wall-clock Delay/WaitUntil is itself a Call and so
// escapes as an Await.
type escapeRequest struct {
	payload any
	resume  func(any) stepOutcome
}

// dispatchContext remembers where in the handler stack the currently
// running handler clause was found, so a later Delegate/Pass yield can
// resume the search one level further out without re-deriving it.
type dispatchContext struct {
	effect    Effect
	searchK   *Continuation
	hf        *handlerFrame
	capturedK *Continuation
}

// resumeSuspensionFrame bridges a Node evaluation back into the Program
// that yielded it: feeding a value into it resumes the suspended rawSuspension
// and re-enters the main drive loop with whatever that produces (another
// suspension, a plain value, or raised). On error it is simply skipped —
// the suspended program only ever expects a value, the same way Map/FlatMap
// frames let an error pass through untouched.
type resumeSuspensionFrame struct {
	s *rawSuspension
}

func (r *resumeSuspensionFrame) onValue(t *taskState, v any) propagation {
	return driveNext(FromClosure(func(func(any) any) any {
		return r.s.Resume(v)
	}), nil)
}

func (r *resumeSuspensionFrame) onError(t *taskState, err error) propagation {
	return propagateError(err)
}

// runStep drives t.prog/t.k forward until the task completes, fails, needs
// to escape (Await), or (in cooperative scheduling) voluntarily yields back
// to the scheduler. It is the step loop of §4.4: classify the yielded
// object, evaluate it per the control-node table, or walk the handler stack
// for an effect payload.
func runStep(t *taskState) stepOutcome {
	for {
		result := t.prog(toResumed[any])

		if r, ok := result.(raised); ok {
			if outcome, done := unwindError(t, r.err); done {
				return outcome
			}
			continue
		}

		if s, ok := result.(effectSuspension); ok {
			raw, _ := s.(*rawSuspension)
			op := s.Op()
			node, isNode := op.(Node)
			if !isNode {
				node = PerformNode{Effect: op}
			}
			outcome, done := evalNode(t, node, raw)
			if done {
				return outcome
			}
			continue
		}

		if outcome, done := unwindValue(t, result); done {
			return outcome
		}
	}
}

// unwindValue feeds v through t.k until a frame drives a new Program (set
// as t.prog, continuing the loop) or the stack bottoms out at returnFrame
// (task complete).
func unwindValue(t *taskState, v any) (stepOutcome, bool) {
	k := t.k
	for {
		f, rest, ok := pop(k)
		if !ok {
			t.done, t.value = true, v
			return outcomeDone, true
		}
		p := f.onValue(t, v)
		switch p.Kind {
		case propValue:
			v = p.Value
			k = rest
		case propError:
			t.k = rest
			return unwindError(t, p.Err)
		case propRun:
			t.prog = p.Next
			if p.Rest != nil {
				t.k = p.Rest
			} else {
				t.k = rest
			}
			return outcomeContinue, false
		}
	}
}

// unwindError feeds err through t.k the same way unwindValue feeds a value.
func unwindError(t *taskState, err error) (stepOutcome, bool) {
	k := t.k
	for {
		f, rest, ok := pop(k)
		if !ok {
			t.done, t.err = true, err
			return outcomeFailed, true
		}
		p := f.onError(t, err)
		switch p.Kind {
		case propValue:
			t.k = rest
			return unwindValue(t, p.Value)
		case propError:
			err = p.Err
			k = rest
		case propRun:
			t.prog = p.Next
			if p.Rest != nil {
				t.k = p.Rest
			} else {
				t.k = rest
			}
			return outcomeContinue, false
		}
	}
}

// evalNode evaluates one yielded control node (§4.4.1), or dispatches an
// effect through the handler stack. raw is the rawSuspension the node was
// yielded from — nil when evalNode was invoked synthetically (never true
// for the top-level call, kept only as a field to read the resume closure
// from).
func evalNode(t *taskState, n Node, raw *rawSuspension) (stepOutcome, bool) {
	switch node := n.(type) {

	case PureNode:
		return unwindValue(t, node.Value)

	case PerformNode:
		return dispatchEffect(t, node.Effect, raw)

	case CallNode:
		t.prog = node.Fn(lowerArgs(t, node.Args), lowerKwargs(t, node.Kwargs))
		t.k = push(&resumeSuspensionFrame{s: raw}, t.k)
		return outcomeContinue, false

	case EvalNode:
		body := node.Expr
		k := push(&resumeSuspensionFrame{s: raw}, t.k)
		for i := len(node.Handlers) - 1; i >= 0; i-- {
			k = push(&handlerFrame{install: node.Handlers[i]}, k)
		}
		t.prog = body
		t.k = k
		return outcomeContinue, false

	case MapNode:
		t.prog = node.Src
		t.k = push(&mapFrame{f: node.F}, push(&resumeSuspensionFrame{s: raw}, t.k))
		return outcomeContinue, false

	case FlatMapNode:
		t.prog = node.Src
		t.k = push(&flatMapFrame{f: node.F}, push(&resumeSuspensionFrame{s: raw}, t.k))
		return outcomeContinue, false

	case WithHandlerNode:
		hf := &handlerFrame{install: node.Handler, returnClause: node.ReturnClause}
		t.prog = node.Body
		t.k = push(hf, push(&resumeSuspensionFrame{s: raw}, t.k))
		return outcomeContinue, false

	case WithInterceptNode:
		ic := &interceptFrame{install: node.Intercept}
		t.prog = node.Body
		t.k = push(ic, push(&resumeSuspensionFrame{s: raw}, t.k))
		return outcomeContinue, false

	case ResumeNode:
		return driveCaptured(t, node.K, node.Value, false)

	case TransferNode:
		return driveCaptured(t, node.K, node.Value, true)

	case DelegateNode, PassNode:
		return delegate(t)

	case waitParkNode:
		t.parkK = push(&resumeSuspensionFrame{s: raw}, t.k)
		node.target.waiters = append(node.target.waiters, t)
		return outcomeParked, true

	case raceParkNode:
		t.parkK = push(&resumeSuspensionFrame{s: raw}, t.k)
		for _, tgt := range node.targets {
			tgt.task.racers = append(tgt.task.racers, t)
		}
		return outcomeParked, true

	case acquireParkNode:
		t.parkK = push(&resumeSuspensionFrame{s: raw}, t.k)
		node.sem.waiters = append(node.sem.waiters, t)
		return outcomeParked, true

	default:
		panic("kont: unknown control node")
	}
}

// driveCaptured implements Resume (replace=false) and Transfer
// (replace=true). Both drop the yielding context's own K, including
// whatever the handler clause would have run next, and continue from
// captured: Resume feeds value straight into captured's top frame, Transfer
// unwinds value through captured from its top.
func driveCaptured(t *taskState, captured *Continuation, value any, replace bool) (stepOutcome, bool) {
	if t.dispatch != nil {
		t.dispatch.hf.dispatching = false
		t.dispatch = nil
	}
	if replace {
		t.k = captured
		return unwindValue(t, value)
	}
	f, rest, ok := pop(captured)
	if !ok {
		t.done, t.value = true, value
		return outcomeDone, true
	}
	t.k = rest
	p := f.onValue(t, value)
	switch p.Kind {
	case propValue:
		return unwindValue(t, p.Value)
	case propError:
		return unwindError(t, p.Err)
	default:
		t.prog = p.Next
		if p.Rest != nil {
			t.k = p.Rest
		}
		return outcomeContinue, false
	}
}

// delegate re-runs the handler search for the in-flight dispatch starting
// one level further out than the handler that is delegating — Delegate and
// Pass both forward to the next outer matching handler; Pass additionally
// advertises to the handler author that it never intended to claim the
// effect at all (§4.4.1 "fast definitely-not-mine shortcut"), a
// documentation-only distinction at this layer since both take the same
// action here.
func delegate(t *taskState) (stepOutcome, bool) {
	ctx := t.dispatch
	if ctx == nil {
		panic("kont: Delegate/Pass outside effect dispatch")
	}
	ctx.hf.dispatching = false
	return dispatchFrom(t, ctx.effect, ctx.searchK, ctx.capturedK)
}

// dispatchEffect starts a fresh handler search for eff from the top of t.k.
// Every interceptFrame anywhere in t.k whose Filter claims eff is notified
// first (§4.4.2 — intercepts observe without consuming), whichever handler
// or native case then answers it.
// Scheduler-native effects (Spawn/Wait/Gather/Race/Cancel) are handled
// directly by the VM rather than going through user handler dispatch —
// they describe the scheduler itself, not something application code would
// plausibly want to intercept and answer differently (§4.6).
func dispatchEffect(t *taskState, eff Effect, raw *rawSuspension) (stepOutcome, bool) {
	for cur := t.k; cur != nil; cur = cur.rest {
		if ic, ok := cur.frame.(*interceptFrame); ok && !ic.active && ic.install.Filter(eff) {
			ic.active = true
			ic.install.Observe(eff)
			ic.active = false
		}
	}
	captured := push(&resumeSuspensionFrame{s: raw}, t.k)
	switch e := eff.(type) {
	case SpawnEffect:
		handle := dispatchSpawn(t.vm, t.env, e)
		t.k = captured
		return unwindValue(t, handle)
	case WaitEffect:
		t.prog = dispatchWait(t.vm, e.Target)
		t.k = captured
		return outcomeContinue, false
	case GatherEffect:
		t.prog = dispatchGather(t.vm, e.Targets, e.Options)
		t.k = captured
		return outcomeContinue, false
	case RaceEffect:
		t.prog = dispatchRace(t.vm, e.Targets)
		t.k = captured
		return outcomeContinue, false
	case CancelEffect:
		e.Target.task.cancelled = true
		t.k = captured
		return unwindValue(t, struct{}{})
	case AcquireEffect:
		t.prog = dispatchAcquire(e.Target.sema)
		t.k = captured
		return outcomeContinue, false
	case ReleaseEffect:
		dispatchRelease(t.vm, e.Target.sema)
		t.k = captured
		return unwindValue(t, struct{}{})
	case Get:
		t.prog = dispatchGet(t, e.Key)
		t.k = captured
		return outcomeContinue, false
	case Put:
		t.prog = dispatchPut(t, e.Key, e.Value)
		t.k = captured
		return outcomeContinue, false
	case Modify:
		t.prog = dispatchModify(t, e.Key, e.F)
		t.k = captured
		return outcomeContinue, false
	case Ask:
		t.prog = dispatchAsk(t, e.Key)
		t.k = captured
		return outcomeContinue, false
	case Local:
		t.k = push(&localRestoreFrame{prior: t.env}, captured)
		t.env = t.env.Overlay(e.Overlay)
		t.prog = e.Body
		return outcomeContinue, false
	case Tell:
		t.prog = dispatchTell(t, e.Value)
		t.k = captured
		return outcomeContinue, false
	case StructuredLog:
		t.prog = dispatchStructuredLog(t, e.Fields)
		t.k = captured
		return outcomeContinue, false
	case Listen:
		from := len(*sliceOf[any](t.store, reservedKeyWriterLog))
		t.k = push(&listenFrame{from: from}, captured)
		t.prog = e.Body
		return outcomeContinue, false
	case Safe:
		t.k = push(safeFrame{}, captured)
		t.prog = e.Body
		return outcomeContinue, false
	case Delay:
		t.prog = dispatchDelay(t, e.Duration)
		t.k = captured
		return outcomeContinue, false
	case WaitUntilEffect:
		t.prog = dispatchWaitUntil(t, e.Target)
		t.k = captured
		return outcomeContinue, false
	case GetTimeEffect:
		t.prog = dispatchGetTime(t)
		t.k = captured
		return outcomeContinue, false
	case CacheGetEffect:
		t.prog = dispatchCacheGet(t, e.Key)
		t.k = captured
		return outcomeContinue, false
	case CachePutEffect:
		t.prog = dispatchCachePut(t, e)
		t.k = captured
		return outcomeContinue, false
	case TraceStepEffect:
		t.prog = dispatchTraceStep(t, e)
		t.k = captured
		return outcomeContinue, false
	case TraceAnnotateEffect:
		t.prog = dispatchTraceAnnotate(t, e)
		t.k = captured
		return outcomeContinue, false
	case TraceSnapshotEffect:
		t.prog = dispatchTraceSnapshot(t)
		t.k = captured
		return outcomeContinue, false
	}
	return dispatchFrom(t, eff, t.k, captured)
}

// dispatchFrom walks k outward from its top looking for a handlerFrame that
// both isn't already dispatching (no self-re-entrancy, §4.5) and whose
// Filter claims eff; interceptFrames were already notified by dispatchEffect.
func dispatchFrom(t *taskState, eff Effect, k *Continuation, captured *Continuation) (stepOutcome, bool) {
	for cur := k; cur != nil; cur = cur.rest {
		switch f := cur.frame.(type) {
		case *handlerFrame:
			if !f.dispatching && f.install.Filter(eff) {
				f.dispatching = true
				t.dispatch = &dispatchContext{effect: eff, searchK: cur.rest, hf: f, capturedK: captured}
				t.prog = f.install.Func(eff, captured)
				t.k = cur // keep the handler (and everything below it) in place;
				// the handler clause's own Program runs against the full
				// original stack, so a fall-through (no Resume/Transfer)
				// reaches this handlerFrame's onValue and applies its
				// return clause, exactly as if Body had produced that
				// value directly.
				return outcomeContinue, false
			}
		}
	}
	if aw, ok := eff.(Await); ok {
		t.awaitK = captured
		t.awaitPayload = aw.Awaitable
		return outcomeEscape, true
	}
	return unwindError(t, &UnhandledEffectError{Effect: eff})
}

// resumeTask feeds v into a task parked on an Await escape, splicing the
// captured continuation back in and continuing the step loop (§4.7).
func resumeTask(t *taskState, v any) stepOutcome {
	k := t.awaitK
	t.awaitK = nil
	t.k = k
	t.prog = PureProgram(v)
	return runStep(t)
}

// lowerArgs/lowerKwargs replace each Program found in a CallNode's
// arguments with the value it produces when driven with Step, before Fn
// runs (§4.4.1); any effect or node such a Program yields is resumed with
// nil rather than dispatched, and other values pass through. A raised error during lowering aborts the call the same way any
// other raised error would.
func lowerArgs(t *taskState, args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = lowerOne(t, a)
	}
	return out
}

func lowerKwargs(t *taskState, kwargs map[string]any) map[string]any {
	if len(kwargs) == 0 {
		return kwargs
	}
	out := make(map[string]any, len(kwargs))
	for key, a := range kwargs {
		out[key] = lowerOne(t, a)
	}
	return out
}

func lowerOne(t *taskState, a any) any {
	p, ok := a.(Program)
	if !ok {
		return a
	}
	v, susp := Step(p)
	for susp != nil {
		v, susp = susp.Resume(nil)
	}
	if r, ok := v.(raised); ok {
		panic(r.err)
	}
	return v
}
