// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/hayabusacloud/kont"
)

func TestRunResolvesCallAwait(t *testing.T) {
	body := kont.Call(func() (any, error) { return 99, nil })
	got, err := kont.Run(body)
	if err != nil || got != 99 {
		t.Fatalf("got (%v,%v), want (99,nil)", got, err)
	}
}

func TestRunPropagatesCallError(t *testing.T) {
	boom := errors.New("boom")
	body := kont.Call(func() (any, error) { return nil, boom })
	_, err := kont.Run(body)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom to propagate, got %v", err)
	}
}

func TestRunWithSeededEnvAndStore(t *testing.T) {
	env := kont.NewEnv().Overlay(map[any]any{"greeting": "hi"})
	store := kont.NewStore()
	store.Put("seed", 1)
	body := kont.FlatMapProgram(kont.AskKey("greeting"), func(v any) kont.Program {
		return kont.FlatMapProgram(kont.GetKey("seed"), func(s any) kont.Program {
			return kont.Pure(v.(string) + ":" + strconv.Itoa(s.(int)))
		})
	})
	got, err := kont.Run(body, kont.WithEnv(env), kont.WithStore(store))
	if err != nil || got != "hi:1" {
		t.Fatalf("got (%v,%v), want (hi:1,nil)", got, err)
	}
}

func TestRunMultipleConcurrentAwaitsAllResolve(t *testing.T) {
	body := kont.FlatMapProgram(kont.Spawn(kont.Call(func() (any, error) { return 1, nil })), func(v1 any) kont.Program {
		t1 := v1.(kont.Task)
		return kont.FlatMapProgram(kont.Spawn(kont.Call(func() (any, error) { return 2, nil })), func(v2 any) kont.Program {
			t2 := v2.(kont.Task)
			return kont.Gather([]kont.Task{t1, t2})
		})
	})
	got, err := kont.Run(body, kont.WithMaxConcurrentAwaits(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected non-nil Gather result")
	}
}
