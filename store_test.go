// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"errors"
	"testing"

	"github.com/hayabusacloud/kont"
)

func TestStoreGetPut(t *testing.T) {
	s := kont.NewStore()
	if _, ok := s.Get("k"); ok {
		t.Fatalf("fresh Store should not have key k")
	}
	s.Put("k", 42)
	v, ok := s.Get("k")
	if !ok || v != 42 {
		t.Fatalf("got (%v,%v), want (42,true)", v, ok)
	}
}

func TestStoreMustGet(t *testing.T) {
	s := kont.NewStore()
	if _, err := s.MustGet("missing"); err == nil {
		t.Fatalf("MustGet should error on an absent key")
	}
	s.Put("present", "x")
	v, err := s.MustGet("present")
	if err != nil || v != "x" {
		t.Fatalf("got (%v,%v), want (x,nil)", v, err)
	}
}

func TestStoreModifyAtomicOnFailure(t *testing.T) {
	s := kont.NewStore()
	s.Put("counter", 1)
	failure := errors.New("boom")
	_, err := s.Modify("counter", func(cur any) (any, error) {
		return cur.(int) + 1, failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected the updater's error to propagate")
	}
	v, _ := s.Get("counter")
	if v != 1 {
		t.Fatalf("Modify must leave the slot unchanged on error, got %v", v)
	}

	next, err := s.Modify("counter", func(cur any) (any, error) {
		return cur.(int) + 1, nil
	})
	if err != nil || next != 2 {
		t.Fatalf("got (%v,%v), want (2,nil)", next, err)
	}
}

func TestStoreGetAndUpdate(t *testing.T) {
	s := kont.NewStore()
	s.Put("n", 5)
	old, next := s.GetAndUpdate("n", func(cur any) any { return cur.(int) * 2 })
	if old != 5 || next != 10 {
		t.Fatalf("got (%v,%v), want (5,10)", old, next)
	}
	v, _ := s.Get("n")
	if v != 10 {
		t.Fatalf("GetAndUpdate must store the new value, got %v", v)
	}
}
