// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"errors"
	"testing"

	"github.com/hayabusacloud/kont"
)

func TestSpawnDoesNotSuspendCaller(t *testing.T) {
	var order []string
	body := kont.FlatMapProgram(
		kont.Spawn(kont.FromClosure(func(k func(any) any) any {
			order = append(order, "child")
			return k(nil)
		})),
		func(any) kont.Program {
			order = append(order, "parent")
			return kont.Pure(nil)
		},
	)
	_, err := kont.Run(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "parent" || order[1] != "child" {
		t.Fatalf("Spawn must not suspend the caller, got order %v", order)
	}
}

func TestWaitBlocksUntilTargetCompletes(t *testing.T) {
	body := kont.FlatMapProgram(kont.Spawn(kont.Pure(7)), func(v any) kont.Program {
		task := v.(kont.Task)
		return kont.Wait(task)
	})
	got, err := kont.Run(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(int) != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestWaitPropagatesTargetError(t *testing.T) {
	boom := errors.New("boom")
	body := kont.FlatMapProgram(kont.Spawn(kont.Raise(boom)), func(v any) kont.Program {
		return kont.Wait(v.(kont.Task))
	})
	_, err := kont.Run(body)
	if !errors.Is(err, boom) {
		t.Fatalf("Wait must raise the target's error, got %v", err)
	}
}

func TestGatherCollectsResultsInArgumentOrder(t *testing.T) {
	body := kont.FlatMapProgram(kont.Spawn(kont.Pure(1)), func(v1 any) kont.Program {
		t1 := v1.(kont.Task)
		return kont.FlatMapProgram(kont.Spawn(kont.Pure(2)), func(v2 any) kont.Program {
			t2 := v2.(kont.Task)
			return kont.Gather([]kont.Task{t1, t2})
		})
	})
	got, err := kont.Run(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values, ok := got.([]any)
	if !ok || len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Fatalf("got %v, want [1 2] in argument order", got)
	}
}

func TestGatherSurfacesFirstErrorAfterAwaitingAllBranches(t *testing.T) {
	boom := errors.New("boom")
	var secondRan bool
	body := kont.FlatMapProgram(kont.Spawn(kont.Raise(boom)), func(v1 any) kont.Program {
		t1 := v1.(kont.Task)
		return kont.FlatMapProgram(kont.Spawn(kont.FromClosure(func(k func(any) any) any {
			secondRan = true
			return k(nil)
		})), func(v2 any) kont.Program {
			t2 := v2.(kont.Task)
			return kont.Gather([]kont.Task{t1, t2})
		})
	})
	_, err := kont.Run(body)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the first branch's error to surface, got %v", err)
	}
	if !secondRan {
		t.Fatalf("default Gather policy must still run the second branch to completion")
	}
}

func TestGatherCancelOnFirstErrorSurfacesTheError(t *testing.T) {
	boom := errors.New("boom")
	body := kont.FlatMapProgram(kont.Spawn(kont.Raise(boom)), func(v1 any) kont.Program {
		t1 := v1.(kont.Task)
		return kont.FlatMapProgram(kont.Spawn(kont.Pure("slow")), func(v2 any) kont.Program {
			t2 := v2.(kont.Task)
			return kont.Gather([]kont.Task{t1, t2}, kont.CancelOnFirstError())
		})
	})
	_, err := kont.Run(body)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the first branch's error to surface, got %v", err)
	}
}

func TestRaceResolvesOnFirstCompletion(t *testing.T) {
	body := kont.FlatMapProgram(kont.Spawn(kont.Pure("fast")), func(v1 any) kont.Program {
		fast := v1.(kont.Task)
		return kont.FlatMapProgram(kont.Spawn(kont.Pure("slow")), func(v2 any) kont.Program {
			slow := v2.(kont.Task)
			return kont.Race([]kont.Task{fast, slow})
		})
	})
	_, err := kont.Run(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCancelIsObservedCooperatively(t *testing.T) {
	body := kont.FlatMapProgram(kont.Spawn(kont.Pure("child")), func(v any) kont.Program {
		task := v.(kont.Task)
		return kont.FlatMapProgram(kont.Cancel(task), func(any) kont.Program {
			return kont.Wait(task)
		})
	})
	_, err := kont.Run(body)
	var cerr *kont.TaskCancelledError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected Wait on the cancelled task to raise *TaskCancelledError, got %v", err)
	}
}
