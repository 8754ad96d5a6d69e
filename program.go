// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Program is the VM's unit of work: a continuation-passing computation that
// either returns a plain value or yields a Node/Effect (§6 External
// Interfaces). It is Cont[Resumed, any] specialized to this package's
// dynamically-typed effect model — the teacher's one concrete funcval type
// preferred over an interface-per-kind hierarchy, generalized from
// compile-time-typed A to a single any, since effect payloads here are
// classified at runtime rather than known at each call site.
type Program = Cont[Resumed, any]

// PureProgram returns a Program that produces v without yielding anything.
func PureProgram(v any) Program {
	return Return[Resumed, any](v)
}

// Pure is sugar for PureProgram, matching the spec's External Interface name.
func Pure(v any) Program { return PureProgram(v) }

// FromClosure builds a Program directly from CPS function f, the primitive
// constructor for Programs that need raw access to the continuation (mirrors
// Suspend for the generic Cont type).
func FromClosure(f func(k func(any) any) any) Program {
	return Program(f)
}

// FromGenerator adapts a Go generator-style function — one that calls yield
// for each Node/Effect it wants the VM to process and returns a final value
// — into a Program, by running it on its own goroutine and exchanging
// values over an unbuffered channel. This is the "dynamic typing / runtime
// effect inspection" entry point (§9): the generator body does not need to
// know the VM's frame representation, only that yield(x) returns whatever
// the VM resumes it with.
func FromGenerator(body func(yield func(any) any) any) Program {
	return FromClosure(func(k func(any) any) any {
		type req struct {
			val    any
			replyC chan any
		}
		reqC := make(chan req)
		doneC := make(chan any, 1)

		go func() {
			result := body(func(x any) any {
				reply := make(chan any, 1)
				reqC <- req{val: x, replyC: reply}
				return <-reply
			})
			doneC <- result
		}()

		var step func() any
		step = func() any {
			select {
			case r := <-reqC:
				return &rawSuspension{
					yielded: r.val,
					k: func(resume any) any {
						r.replyC <- resume
						return step()
					},
				}
			case v := <-doneC:
				return k(v)
			}
		}
		return step()
	})
}

// MapProgram applies f to p's produced value; it builds a new Program
// lazily, matching Cont's CPS laziness — nothing runs until the result is
// driven.
func MapProgram(p Program, f func(any) any) Program {
	return Map[Resumed, any, any](p, f)
}

// FlatMapProgram sequences p into f, which produces the continuation
// Program from p's value.
func FlatMapProgram(p Program, f func(any) Program) Program {
	return Bind[Resumed, any, any](p, f)
}

// AndThen sequences p before n, discarding p's value.
func AndThen(p, n Program) Program {
	return Then[Resumed, any, any](p, n)
}

// suspend yields x to whatever is driving the Program (the VM step loop,
// §4.4) and resumes with the value the driver supplies. Both control nodes
// and effect payloads pass through this single primitive — the VM
// classifies the yielded value after the fact, not before.
func suspend(x any) Program {
	return FromClosure(func(k func(any) any) any {
		s := acquireSuspension()
		s.yielded = x
		s.k = k
		return s
	})
}

// performNode suspends the Program on a control Node.
func performNode(n Node) Program { return suspend(n) }

// performEffect suspends the Program on an Effect payload.
func performEffect(e Effect) Program { return suspend(PerformNode{Effect: e}) }

// Perform dispatches e through the handler stack (the spec's External
// Interface entry of the same name): the primitive every user-defined
// effect is built from, the same way Get/Ask/Tell build theirs.
func Perform(e Effect) Program { return performEffect(e) }
