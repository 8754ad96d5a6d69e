// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"testing"

	"github.com/hayabusacloud/kont"
)

func TestBindSimple(t *testing.T) {
	m := kont.Return[int](10)
	n := kont.Bind(m, func(x int) kont.Cont[int, int] {
		return kont.Return[int](x * 2)
	})
	if got := kont.RunWith(n, func(x int) int { return x }); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}

func TestBindLeftIdentity(t *testing.T) {
	// Bind(Return(a), f) ≡ f(a)
	a := 7
	f := func(x int) kont.Cont[int, int] { return kont.Return[int](x * 3) }
	id := func(x int) int { return x }

	left := kont.RunWith(kont.Bind(kont.Return[int](a), f), id)
	right := kont.RunWith(f(a), id)
	if left != right {
		t.Fatalf("left identity failed: %d != %d", left, right)
	}
}

func TestBindRightIdentity(t *testing.T) {
	// Bind(m, Return) ≡ m
	m := kont.Return[int](42)
	id := func(x int) int { return x }

	left := kont.RunWith(kont.Bind(m, func(x int) kont.Cont[int, int] {
		return kont.Return[int](x)
	}), id)
	right := kont.RunWith(m, id)
	if left != right {
		t.Fatalf("right identity failed: %d != %d", left, right)
	}
}

func TestBindAssociativity(t *testing.T) {
	// Bind(Bind(m, f), g) ≡ Bind(m, func(x) Bind(f(x), g))
	m := kont.Return[int](2)
	f := func(x int) kont.Cont[int, int] { return kont.Return[int](x + 3) }
	g := func(x int) kont.Cont[int, int] { return kont.Return[int](x * 2) }
	id := func(x int) int { return x }

	left := kont.RunWith(kont.Bind(kont.Bind(m, f), g), id)
	right := kont.RunWith(kont.Bind(m, func(x int) kont.Cont[int, int] {
		return kont.Bind(f(x), g)
	}), id)
	if left != right {
		t.Fatalf("associativity failed: %d != %d", left, right)
	}
}

func TestMap(t *testing.T) {
	m := kont.Return[int](10)
	n := kont.Map(m, func(x int) int { return x * 3 })
	if got := kont.RunWith(n, func(x int) int { return x }); got != 30 {
		t.Fatalf("got %d, want 30", got)
	}
}

func TestThen(t *testing.T) {
	m := kont.Return[int](1)
	n := kont.Then(m, kont.Return[int](2))
	if got := kont.RunWith(n, func(x int) int { return x }); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestSuspend(t *testing.T) {
	m := kont.Suspend[int, int](func(k func(int) int) int {
		return k(42) + 1
	})
	if got := kont.RunWith(m, func(x int) int { return x }); got != 43 {
		t.Fatalf("got %d, want 43", got)
	}
}
