// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"testing"

	"github.com/hayabusacloud/kont"
)

type namedEffect interface{ EffectName() string }

type pingEffect struct{}

func (pingEffect) EffectName() string { return "ping" }

type pongEffect struct{}

func (pongEffect) EffectName() string { return "pong" }

func TestMatchExactClaimsOnlyExactType(t *testing.T) {
	filter := kont.MatchExact(greetEffect{})
	if !filter(greetEffect{Name: "a"}) {
		t.Fatalf("MatchExact should claim its own sample type")
	}
	if filter(pingEffect{}) {
		t.Fatalf("MatchExact must not claim an unrelated type")
	}
}

func TestMatchInterfaceClaimsImplementers(t *testing.T) {
	filter := kont.MatchInterface[namedEffect]()
	if !filter(pingEffect{}) || !filter(pongEffect{}) {
		t.Fatalf("MatchInterface should claim any implementer of the interface")
	}
	if filter(greetEffect{Name: "x"}) {
		t.Fatalf("MatchInterface must not claim a type that does not implement the interface")
	}
}

func TestMatchInterfacePanicsOnNonInterface(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MatchInterface with a non-interface type parameter must panic")
		}
	}()
	kont.MatchInterface[greetEffect]()
}

func TestWithHandlerDispatchesByInterfaceFilter(t *testing.T) {
	install := kont.WithHandler(kont.MatchInterface[namedEffect](), func(eff kont.Effect, k *kont.Continuation) kont.Program {
		return kont.Resume(k, eff.(namedEffect).EffectName())
	})
	body := kont.FlatMapProgram(kont.Perform(pongEffect{}), func(v any) kont.Program {
		return kont.Pure("got:" + v.(string))
	})
	got, err := kont.Run(kont.Handle(body, install))
	if err != nil || got != "got:pong" {
		t.Fatalf("got (%v,%v), want (got:pong,nil)", got, err)
	}
}

func TestWithInterceptFilterNarrowsObservation(t *testing.T) {
	var seen []string
	intercept := kont.WithIntercept(kont.MatchExact(pingEffect{}), func(eff kont.Effect) {
		seen = append(seen, eff.(namedEffect).EffectName())
	})
	handler := kont.WithHandler(kont.MatchInterface[namedEffect](), func(eff kont.Effect, k *kont.Continuation) kont.Program {
		return kont.Resume(k, nil)
	})
	body := kont.AndThen(kont.Perform(pingEffect{}), kont.Perform(pongEffect{}))
	_, err := kont.Run(kont.InterceptWith(kont.Handle(body, handler), intercept))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != "ping" {
		t.Fatalf("intercept filtered to pingEffect only, got %v", seen)
	}
}
