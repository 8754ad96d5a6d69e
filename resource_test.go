// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"errors"
	"testing"

	"github.com/hayabusacloud/kont"
)

func TestBracketReleasesOnNormalCompletion(t *testing.T) {
	var released bool
	acquire := kont.Pure("resource")
	use := func(r any) kont.Program { return kont.Pure("used:" + r.(string)) }
	release := func(r any) kont.Program {
		released = true
		return kont.Pure(nil)
	}
	got, err := kont.Run(kont.Bracket(acquire, release, use))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !released {
		t.Fatalf("release must run after a normal use")
	}
	outcome := got.(kont.Either[error, any])
	v, ok := outcome.GetRight()
	if !ok || v != "used:resource" {
		t.Fatalf("got %v, want Right(used:resource)", got)
	}
}

func TestBracketReleasesEvenWhenUseRaises(t *testing.T) {
	var released bool
	boom := errors.New("boom")
	acquire := kont.Pure("resource")
	use := func(any) kont.Program { return kont.Raise(boom) }
	release := func(any) kont.Program {
		released = true
		return kont.Pure(nil)
	}
	got, err := kont.Run(kont.Bracket(acquire, release, use))
	if err != nil {
		t.Fatalf("Bracket captures use's error via Safe, it should not also raise: %v", err)
	}
	if !released {
		t.Fatalf("release must run even when use raises")
	}
	outcome := got.(kont.Either[error, any])
	leftErr, ok := outcome.GetLeft()
	if !ok || !errors.Is(leftErr, boom) {
		t.Fatalf("got %v, want Left(boom)", got)
	}
}

func TestOnErrorRunsCleanupOnlyOnFailure(t *testing.T) {
	var ranCleanup bool
	cleanup := func(error) kont.Program {
		ranCleanup = true
		return kont.Pure(nil)
	}
	_, err := kont.Run(kont.OnError(kont.Pure(1), cleanup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranCleanup {
		t.Fatalf("OnError must not run cleanup when body succeeds")
	}
}

func TestOnErrorRunsCleanupAndRereaisesOnFailure(t *testing.T) {
	var ranCleanup bool
	boom := errors.New("boom")
	cleanup := func(err error) kont.Program {
		ranCleanup = true
		return kont.Pure(nil)
	}
	_, err := kont.Run(kont.OnError(kont.Raise(boom), cleanup))
	if !ranCleanup {
		t.Fatalf("OnError must run cleanup on failure")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("OnError must re-raise the original error, got %v", err)
	}
}
