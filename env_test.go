// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont_test

import (
	"testing"

	"github.com/hayabusacloud/kont"
)

func TestEnvReadMissing(t *testing.T) {
	e := kont.NewEnv()
	if _, ok := e.Read("missing"); ok {
		t.Fatalf("empty Env should not find any key")
	}
	if _, err := e.MustRead("missing"); err == nil {
		t.Fatalf("MustRead should error on a missing key")
	}
}

func TestEnvOverlayShadowsParent(t *testing.T) {
	base := kont.NewEnv().Overlay(map[any]any{"x": 1, "y": 2})
	child := base.Overlay(map[any]any{"x": 10})

	if v, _ := child.Read("x"); v != 10 {
		t.Fatalf("child overlay should shadow parent's x, got %v", v)
	}
	if v, _ := child.Read("y"); v != 2 {
		t.Fatalf("child overlay should see parent's y, got %v", v)
	}
	if v, _ := base.Read("x"); v != 1 {
		t.Fatalf("Overlay must not mutate the receiver, got %v", v)
	}
}

func TestEnvKeys(t *testing.T) {
	base := kont.NewEnv().Overlay(map[any]any{"a": 1})
	child := base.Overlay(map[any]any{"b": 2})
	keys := child.Keys()
	if _, ok := keys["a"]; !ok {
		t.Fatalf("Keys should include parent keys")
	}
	if _, ok := keys["b"]; !ok {
		t.Fatalf("Keys should include local keys")
	}
}
