// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"errors"
	"testing"

	"github.com/hayabusacloud/kont"
)

func TestAsyncRunnerResolvesPromise(t *testing.T) {
	p := kont.NewPromise()
	r := kont.NewAsyncRunner(kont.AwaitPromise(p))
	if done, _, _ := r.Done(); done {
		t.Fatalf("runner should still be pending before Resolve")
	}
	pending := r.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending Await, got %d", len(pending))
	}
	if _, ok := pending[0].(kont.Promise); !ok {
		t.Fatalf("pending payload should be the Promise, got %T", pending[0])
	}

	p.Resolve("answer")
	r.Pump()
	done, value, err := r.Done()
	if !done || err != nil || value != "answer" {
		t.Fatalf("got (%v,%v,%v), want (true,answer,nil)", done, value, err)
	}
}

func TestAsyncRunnerPromiseRejectRaises(t *testing.T) {
	p := kont.NewPromise()
	r := kont.NewAsyncRunner(kont.AwaitPromise(p))
	boom := errors.New("boom")
	p.Reject(boom)
	r.Pump()
	done, _, err := r.Done()
	if !done || !errors.Is(err, boom) {
		t.Fatalf("got (%v,%v), want (true,boom)", done, err)
	}
}

func TestPromiseSettlesOnlyOnce(t *testing.T) {
	p := kont.NewPromise()
	r := kont.NewAsyncRunner(kont.AwaitPromise(p))
	p.Resolve("first")
	p.Resolve("second")
	r.Pump()
	_, value, _ := r.Done()
	if value != "first" {
		t.Fatalf("a second Resolve must be a no-op, got %v", value)
	}
}
