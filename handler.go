// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "reflect"

// TypeFilter decides whether a handler or intercept installation claims a
// given Effect. It is computed once, at WithHandler/WithIntercept install
// time, and cached on the HandlerInstall/InterceptInstall value — not
// re-derived per dispatch (§4.5 "pre-filtering"). This is the runtime
// analogue of the teacher's compile-time F-bounded Op constraint: since
// effect payloads here are arbitrary user types unknown when the VM is
// built, the predicate is computed from reflect.Type at install time
// instead of from a generic type parameter at compile time (§9).
type TypeFilter func(Effect) bool

// MatchExact claims only effects whose concrete type equals sample's.
func MatchExact(sample Effect) TypeFilter {
	t := reflect.TypeOf(sample)
	return func(e Effect) bool {
		if e == nil {
			return t == nil
		}
		return reflect.TypeOf(e) == t
	}
}

// MatchInterface claims any effect whose concrete type implements T. T must
// be an interface type; passing a non-interface panics at install time,
// not at first dispatch.
func MatchInterface[T any]() TypeFilter {
	ifaceType := reflect.TypeOf((*T)(nil)).Elem()
	if ifaceType.Kind() != reflect.Interface {
		panic("kont: MatchInterface requires an interface type parameter")
	}
	return func(e Effect) bool {
		if e == nil {
			return false
		}
		return reflect.TypeOf(e).Implements(ifaceType)
	}
}

// MatchFamily claims any effect implementing Families whose Family() equals
// fam — the subtyping rule for effects sharing a declared family tag (§4.5).
func MatchFamily(fam EffectFamily) TypeFilter {
	return func(e Effect) bool {
		f, ok := e.(Families)
		return ok && f.Family() == fam
	}
}

// MatchAny is the universal "match-all" base filter.
func MatchAny() TypeFilter {
	return func(Effect) bool { return true }
}

// HandlerFunc answers an effect claimed by a HandlerInstall. k is the
// continuation captured at the point of Perform; it is not delimited at
// this handler: it holds everything left to run from there, including this
// handler's own frame and every frame beneath it — the handler resumes it explicitly
// via performNode(ResumeNode{K: k, Value: v}), or forwards control with
// Delegate/Transfer/Pass, giving first-class, explicitly-passed
// continuations rather than an implicit "return to continue" convention.
type HandlerFunc func(eff Effect, k *Continuation) Program

// HandlerInstall is the result of WithHandler: a filter plus the clause it
// guards, installed as one handlerFrame on K by WithHandlerNode (§4.5).
type HandlerInstall struct {
	Filter TypeFilter
	Func   HandlerFunc
}

// WithHandler builds a HandlerInstall. Pass the result as the Handler field
// of a WithHandlerNode.
func WithHandler(filter TypeFilter, fn HandlerFunc) *HandlerInstall {
	return &HandlerInstall{Filter: filter, Func: fn}
}

// InterceptFunc observes a claimed effect without consuming it; dispatch
// always continues outward after Observe returns (§4.4.2).
type InterceptFunc func(eff Effect)

// InterceptInstall is the result of WithIntercept.
type InterceptInstall struct {
	Filter  TypeFilter
	Observe InterceptFunc
}

// WithIntercept builds an InterceptInstall. Pass the result as the
// Intercept field of a WithInterceptNode.
func WithIntercept(filter TypeFilter, fn InterceptFunc) *InterceptInstall {
	return &InterceptInstall{Filter: filter, Observe: fn}
}

// Handle installs handler over body (§4.4.1 WithHandler): every effect
// handler claims is answered by it, everything else passes through to
// whatever handler is installed further out.
func Handle(body Program, handler *HandlerInstall) Program {
	return performNode(WithHandlerNode{Handler: handler, Body: body})
}

// HandleReturn is Handle with a return clause: once body completes (by
// value, not by effect), returnClause transforms its result before it
// continues propagating outward.
func HandleReturn(body Program, handler *HandlerInstall, returnClause func(any) Program) Program {
	return performNode(WithHandlerNode{Handler: handler, Body: body, ReturnClause: returnClause})
}

// InterceptWith installs a non-consuming observer over body (§4.4.2): every
// yield inside body matching intercept's filter — including yields from
// handlers installed inside body — is observed without being claimed.
func InterceptWith(body Program, intercept *InterceptInstall) Program {
	return performNode(WithInterceptNode{Intercept: intercept, Body: body})
}

// Eval evaluates body with handlers installed, innermost first — sugar for
// a chain of Handle calls (§4.1 Eval(expr, handlers)).
func Eval(body Program, handlers ...*HandlerInstall) Program {
	return performNode(EvalNode{Expr: body, Handlers: handlers})
}

// CallProgram invokes fn with already-evaluated args/kwargs (§4.1 Call):
// values that are themselves Programs are driven with Step and lowered to
// their produced value before fn runs (an effect such a Program yields is
// resumed with nil, not dispatched); other values, including bare Effects,
// pass through unchanged.
func CallProgram(fn func(args []any, kwargs map[string]any) Program, args []any, kwargs map[string]any) Program {
	return performNode(CallNode{Fn: fn, Args: args, Kwargs: kwargs})
}

// Resume resumes the one-shot continuation k, captured at a Perform site,
// with value v (§4.1 Resume(k, v)). The current K is replaced by k, which
// already runs through the handler's own frame to the bottom of the task;
// whatever the handler clause would have run after Resume is not run.
func Resume(k *Continuation, v any) Program {
	return performNode(ResumeNode{K: k, Value: v})
}

// Transfer replaces the current K outright with k and continues with
// value v (§4.1 Transfer(k, v)). For a k handed to a HandlerFunc this lands
// in the same place as Resume, since k already runs to the bottom of the task.
func Transfer(k *Continuation, v any) Program {
	return performNode(TransferNode{K: k, Value: v})
}

// Delegate forwards the effect currently being handled to the next outer
// matching handler, unchanged (§4.1 Delegate()).
func Delegate() Program { return performNode(DelegateNode{}) }

// Pass is the fast "definitely not mine" shortcut, equivalent to Delegate
// but documenting that the handler never intended to claim the effect at
// all (§4.1 Pass()).
func Pass() Program { return performNode(PassNode{}) }
