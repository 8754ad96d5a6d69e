// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "fmt"

// The taxonomy below covers every VM-raised error not already defined next
// to the type it belongs to (MissingEnvKeyError and CycleDetectedError live
// in env.go, MissingStateKeyError in store.go). Each satisfies error and is
// safe to use with errors.Is/errors.As — the teacher ships no error-wrapping
// dependency of its own, and no pack repo supplies a lighter-weight errors
// helper shaped for a library whose callers errors.Is against sentinel
// types, so this module sticks to stdlib errors here (recorded in
// DESIGN.md).

// UnhandledEffectError is raised when no installed handler's type filter
// claims a performed effect (§7).
type UnhandledEffectError struct{ Effect Effect }

func (e *UnhandledEffectError) Error() string {
	return fmt.Sprintf("kont: unhandled effect %T", e.Effect)
}

// ContinuationAlreadyUsedError is raised when a one-shot captured
// Continuation is resumed, delegated, or transferred a second time (§7).
type ContinuationAlreadyUsedError struct{}

func (e *ContinuationAlreadyUsedError) Error() string {
	return "kont: continuation already used"
}

// TaskCancelledError is recorded as the outcome of a task that was
// cooperatively cancelled before the scheduler ran it again, and raised by
// Wait or Gather on that task (§4.6, §7).
type TaskCancelledError struct{ TaskID any }

func (e *TaskCancelledError) Error() string {
	return fmt.Sprintf("kont: task %v cancelled", e.TaskID)
}

// CacheMissError is raised by a bare CacheGet when the key is absent or its
// entry has expired (§6, §7).
type CacheMissError struct{ Key string }

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("kont: cache miss for key %q", e.Key)
}
