// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "github.com/google/uuid"

// Node is the VM's instruction set: the exhaustive set of control nodes a
// Program may yield. Node is a closed marker interface, dispatched by the
// step loop via a type switch — the same defunctionalization technique the
// package already used for Frame, generalized from a fixed set of monadic
// shapes to the full CESK control language.
type Node interface {
	node() // unexported marker; closes the set to this package
}

// Effect is an opaque, user-defined payload describing a requested
// operation. The VM never interprets its fields — only the handler that
// claims it does. Classification is by the payload's dynamic type (or, for
// families sharing a base, by an optional Family method).
type Effect any

// EffectFamily groups related effect types for handler type-filter
// subtyping (§4.5 "Subtyping rule"). Two effects share a family when their
// concrete types both report the same EffectFamily from a Family() method.
type EffectFamily string

// Families carries an effect's family tag. Effects that do not implement
// it are only matched by their own concrete type.
type Families interface {
	Family() EffectFamily
}

// EffectBase is embeddable in user effect structs to opt into a shared
// family without hand-writing Family(); embed and set the Fam field, or
// simply rely on the concrete type filter if family-matching isn't needed.
type EffectBase struct {
	Fam EffectFamily
}

// Family implements Families.
func (b EffectBase) Family() EffectFamily { return b.Fam }

// --- control nodes -----------------------------------------------------

// PureNode yields Value with no effect.
type PureNode struct{ Value any }

func (PureNode) node() {}

// PerformNode dispatches Effect through the handler stack.
type PerformNode struct{ Effect Effect }

func (PerformNode) node() {}

// CallNode invokes a program-producing closure with already-evaluated
// arguments. Args/Kwargs that are themselves Programs are driven with Step
// and replaced by their produced value before Fn is invoked (§4.4.1); any
// effect or node such a Program yields is resumed with nil instead of being
// dispatched, so an argument wrapped with Perform lowers to nil. A bare
// Effect value has no way to be told apart from an ordinary data argument
// (Effect is just any) and passes through unchanged.
type CallNode struct {
	Fn     func(args []any, kwargs map[string]any) Program
	Args   []any
	Kwargs map[string]any
	Meta   any
}

func (CallNode) node() {}

// EvalNode evaluates Expr with Handlers installed, innermost first. Sugar
// for a chain of WithHandlerNode.
type EvalNode struct {
	Expr     Program
	Handlers []*HandlerInstall
}

func (EvalNode) node() {}

// MapNode applies F to the value produced by Src.
type MapNode struct {
	Src Program
	F   func(any) any
}

func (MapNode) node() {}

// FlatMapNode sequences Src into F, which produces the continuation
// Program from Src's value.
type FlatMapNode struct {
	Src Program
	F   func(any) Program
}

func (FlatMapNode) node() {}

// WithHandlerNode installs Handler over Body. Handler.Filter pre-filters
// which effects reach Handler.Func (§4.5); ReturnClause, if non-nil, transforms
// Body's return value.
type WithHandlerNode struct {
	Handler      *HandlerInstall
	Body         Program
	ReturnClause func(any) Program
}

func (WithHandlerNode) node() {}

// WithInterceptNode installs an Intercept observer over Body. It sees every
// matching yield inside Body — including yields from inner handlers — but
// never consumes them (§4.4.2).
type WithInterceptNode struct {
	Intercept *InterceptInstall
	Body      Program
}

func (WithInterceptNode) node() {}

// ResumeNode resumes a captured one-shot continuation K with Value.
type ResumeNode struct {
	K     *Continuation
	Value any
}

func (ResumeNode) node() {}

// DelegateNode passes the current effect to the next outer matching handler.
type DelegateNode struct{}

func (DelegateNode) node() {}

// TransferNode replaces the current K outright with K and continues with
// Value.
type TransferNode struct {
	K     *Continuation
	Value any
}

func (TransferNode) node() {}

// PassNode is the fast "definitely not mine" shortcut: equivalent to
// DelegateNode but skips the runtime check a handler might otherwise make.
type PassNode struct{}

func (PassNode) node() {}

// --- opaque handles ------------------------------------------------------

// Task is an opaque handle to a scheduled unit of work (§4.6).
type Task struct {
	id   uuid.UUID
	task *taskState
}

// ID returns the task's unique identifier.
func (t Task) ID() uuid.UUID { return t.id }

// Future is a handle type for a single-fire value slot (§4.1). This package
// provides no way to create or write one, and Wait accepts only a Task.
type Future struct {
	id   uuid.UUID
	task *taskState
}

// ID returns the future's unique identifier.
func (f Future) ID() uuid.UUID { return f.id }

// Semaphore is an opaque handle to a FIFO-fair counting semaphore (§4.6).
type Semaphore struct {
	id   uuid.UUID
	sema *semaphoreState
}

// ID returns the semaphore's unique identifier.
func (s Semaphore) ID() uuid.UUID { return s.id }

// Promise is an opaque, externally-resolvable value slot used at the async
// boundary (§4.7) to hand a result back into a parked task.
type Promise struct {
	id uuid.UUID
	p  *promiseState
}

// ID returns the promise's unique identifier.
func (p Promise) ID() uuid.UUID { return p.id }

func newID() uuid.UUID { return uuid.New() }
