// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import (
	"context"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ambientLogger is the scheduler's optional diagnostic logger (§1.3): a
// thin wrapper so scheduler.go never imports logiface directly and a run
// with no WithLogger option pays nothing for a nil check.
type ambientLogger struct {
	log *logiface.Logger[*stumpy.Event]
}

// NewAmbientLogger wraps an already-configured logiface logger for use
// with WithLogger. A typical setup is stumpy.L.New(stumpy.WithStumpy()).
func NewAmbientLogger(log *logiface.Logger[*stumpy.Event]) ambientLogger {
	return ambientLogger{log: log}
}

func (l ambientLogger) enabled() bool { return l.log != nil }

func (l ambientLogger) effect(stage string, eff Effect) {
	if !l.enabled() {
		return
	}
	l.log.Debug().Str("stage", stage).Any("effect", eff).Log("kont: effect")
}

func (l ambientLogger) taskDone(id Task, err error) {
	if !l.enabled() {
		return
	}
	b := l.log.Debug().Str("task", id.ID().String())
	if err != nil {
		b.Err(err).Log("kont: task failed")
		return
	}
	b.Log("kont: task done")
}

// Call wraps a blocking Go function as an Await effect (§4.7), resolved by
// Run's bounded background pool. Programs meant for AsyncRunner should use
// AwaitPromise instead — a Call thunk has no meaning outside Run's pool.
func Call(fn func() (any, error)) Program {
	return performEffect(Await{Awaitable: fn})
}

// RunOptions configures Run and NewAsyncRunner.
type RunOptions struct {
	Env                 *Env
	Store               *Store
	MaxConcurrentAwaits int64
	Logger              ambientLogger
}

// RunOption sets one RunOptions field.
type RunOption func(*RunOptions)

// WithEnv seeds the run's root task with env instead of an empty one.
func WithEnv(env *Env) RunOption { return func(o *RunOptions) { o.Env = env } }

// WithStore seeds the run with an existing Store instead of a fresh one.
func WithStore(store *Store) RunOption { return func(o *RunOptions) { o.Store = store } }

// WithMaxConcurrentAwaits bounds how many Call thunks Run's background pool
// runs at once (default 16).
func WithMaxConcurrentAwaits(n int64) RunOption {
	return func(o *RunOptions) { o.MaxConcurrentAwaits = n }
}

// WithLogger attaches an ambient diagnostic logger to the run.
func WithLogger(l ambientLogger) RunOption { return func(o *RunOptions) { o.Logger = l } }

// awaitJob pairs a parked task with the Call thunk it is waiting on.
type awaitJob struct {
	t  *taskState
	fn func() (any, error)
}

// Run drives prog to completion synchronously: cooperative effects
// (Spawn/Wait/Gather/Race/Acquire/Release) are resolved in-process by the
// scheduler (§4.6), and Call-based Await escapes run concurrently on a
// semaphore-bounded background pool (§4.7) before the scheduler resumes.
// Returns prog's final value, or the error it raised.
//
// Run panics if a task is parked on an Await whose payload is not a Call
// thunk (func() (any, error)) — that shape only makes sense with
// NewAsyncRunner, which resolves Promises from outside the run loop.
func Run(prog Program, opts ...RunOption) (any, error) {
	var o RunOptions
	for _, apply := range opts {
		apply(&o)
	}
	if o.Env == nil {
		o.Env = NewEnv()
	}
	if o.Store == nil {
		o.Store = NewStore()
	}
	if o.MaxConcurrentAwaits <= 0 {
		o.MaxConcurrentAwaits = 16
	}

	sch := newScheduler(o.Store)
	sch.logger = o.Logger
	root := sch.spawnTask(o.Env, prog)

	sem := semaphore.NewWeighted(o.MaxConcurrentAwaits)
	ctx := context.Background()

	for {
		sch.drain()
		sch.logger.taskDone(root.id, root.err)
		if root.done {
			return root.value, root.err
		}

		pending := sch.pendingEscapes
		sch.pendingEscapes = nil

		var jobs []awaitJob
		for _, t := range pending {
			fn, ok := t.awaitPayload.(func() (any, error))
			if !ok {
				panic("kont: Run cannot resolve a non-Call Await; use NewAsyncRunner")
			}
			jobs = append(jobs, awaitJob{t: t, fn: fn})
		}
		if len(jobs) == 0 {
			panic("kont: run stalled: no ready tasks and no pending Await")
		}

		results := make([]taskResult, len(jobs))
		g, gctx := errgroup.WithContext(ctx)
		for i, j := range jobs {
			i, j := i, j
			if err := sem.Acquire(gctx, 1); err != nil {
				return root.value, err
			}
			g.Go(func() error {
				defer sem.Release(1)
				v, err := j.fn()
				results[i] = taskResult{Value: v, Err: err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return root.value, err
		}
		for i, j := range jobs {
			sch.settleAwait(j.t, results[i].Value, results[i].Err)
		}
	}
}

// AsyncRunner drives a Program incrementally instead of blocking for its
// whole lifetime: every Pump call advances the scheduler until every ready
// task is either finished or parked on an Await, which AsyncRunner only
// ever resolves through an externally-held Promise (§4.7) — there is no
// background pool here, unlike Run.
type AsyncRunner struct {
	sch  *scheduler
	root *taskState
}

// NewAsyncRunner starts prog and pumps it to its first stopping point.
func NewAsyncRunner(prog Program, opts ...RunOption) *AsyncRunner {
	var o RunOptions
	for _, apply := range opts {
		apply(&o)
	}
	if o.Env == nil {
		o.Env = NewEnv()
	}
	if o.Store == nil {
		o.Store = NewStore()
	}
	sch := newScheduler(o.Store)
	sch.logger = o.Logger
	root := sch.spawnTask(o.Env, prog)
	r := &AsyncRunner{sch: sch, root: root}
	r.Pump()
	return r
}

// Done reports whether the root task has finished, and its outcome.
func (r *AsyncRunner) Done() (done bool, value any, err error) {
	return r.root.done, r.root.value, r.root.err
}

// Pending returns the Awaitable payload of every task currently parked on
// an Await — ordinarily Promise values the embedding caller resolves out
// of band before calling Pump again.
func (r *AsyncRunner) Pending() []any {
	out := make([]any, 0, len(r.sch.pendingEscapes))
	for _, t := range r.sch.pendingEscapes {
		out = append(out, t.awaitPayload)
	}
	return out
}

// Pump drains the ready queue and registers any newly-parked task's Promise
// so a later Resolve/Reject call can find its way back in.
func (r *AsyncRunner) Pump() {
	r.sch.drain()
	for _, t := range r.sch.pendingEscapes {
		if p, ok := t.awaitPayload.(Promise); ok {
			p.p.park(r.sch, t)
		}
	}
}
