// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package kont implements a CESK-style virtual machine for programs built
// from algebraic effects: dynamically-typed Effect payloads, answered by
// handlers installed as ordinary frames on the continuation stack, with
// first-class, explicitly-passed continuations for resuming, delegating,
// or transferring control.
//
// # Core representation
//
// [Program] is the VM's unit of work — a continuation-passing computation
// ([Cont] specialized to this package's dynamic answer type). A Program
// either returns a plain value or suspends by yielding a [Node] (one of the
// VM's control instructions) or an [Effect] (an arbitrary user-defined
// payload). [Step] drives a Program to its first suspension; [Suspension]
// is the one-shot handle for resuming past it.
//
//   - [Pure], [FromClosure], [FromGenerator]: build a Program
//   - [MapProgram], [FlatMapProgram], [AndThen]: sequence Programs
//   - [Raise]: abort with an error that propagates through Map/FlatMap
//     untouched until something catches it
//
// # Effects and handlers
//
// An effect is just a value; a [HandlerInstall] pairs a [TypeFilter]
// (computed once at install time from the effect's dynamic type, an
// interface it implements, or a shared [EffectFamily]) with a
// [HandlerFunc] that answers it. [WithHandlerNode] installs one handler
// over a Program; dispatch walks the continuation stack outward from the
// performing site, skipping a handler already answering its own effect
// (no self-reentrancy). Before that, every enclosing [WithInterceptNode]
// whose filter matches is notified, without consuming the effect.
//
//   - [WithHandler], [WithIntercept]: build installs
//   - [MatchExact], [MatchInterface], [MatchFamily], [MatchAny]: build filters
//   - [ResumeNode]/[TransferNode]: continue the captured continuation with a
//     value
//   - [DelegateNode]/[PassNode]: forward to the next outer matching handler
//
// # Concurrency
//
// Tasks are cooperatively scheduled, one step at a time, in a single
// goroutine — "concurrency" here means interleaving, never OS parallelism.
// [Spawn] starts a task without suspending the caller; [Wait], [Gather]
// and [Race] block on one or more tasks without ever leaving the VM. Only
// an [Await] effect is allowed to escape to an external runner.
//
//   - [Spawn], [Wait], [Gather], [Race], [Cancel]: task lifecycle
//   - [NewSemaphore], [Acquire], [Release]: FIFO-fair counting semaphore
//   - [Run]: drive a Program to completion synchronously, resolving
//     [Call]-based Await escapes on a bounded background pool
//   - [NewAsyncRunner]: drive a Program incrementally, resolving Await
//     escapes through externally-held [Promise] values instead
//
// # Ambient effects
//
// State ([Get]/[Put]/[Modify]), environment ([Ask]/[Local]), and logging
// ([Tell]/[StructuredLog]/[Listen]) are answered directly against the
// run's shared [Store] and [Env] rather than through handler dispatch —
// they describe the run's own substrate, not something application code
// would plausibly want to answer differently.
//
//   - [Safe]: capture a raised error into [Either] instead of propagating it
//   - [Bracket], [OnError]: exception-safe resource cleanup, built on Safe
//   - [CacheGet], [CachePut]: a TTL-aware cache over the shared Store
//   - [TraceStep], [TraceAnnotate], [CaptureGraph]: execution-graph tracing
//   - [AfterDelay], [WaitUntil], [GetTime]: wall-clock or simulated timing
//
// # Delimited control
//
// [Shift] and [Reset] (Danvy & Filinski 1990) remain available as a
// lower-level, statically-typed alternative to the effect VM, for code
// that wants continuation capture without Program's dynamic typing.
package kont
