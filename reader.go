// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Ask and Local are the reader effects (§4.2): answered directly against
// the task's own *Env rather than through user handler dispatch, the same
// VM-native treatment Get/Put/Modify get for the Store. A lazy value
// (wrapped with Lazy) is forced at most once per run and memoised under the
// reserved lazy-reader slot, keyed by the key passed to Lazy, so two lazy
// bindings built with the same Lazy key share one memo entry.

// Ask reads Key from the task's current Env, forcing and memoising it if it
// was bound with Lazy. Raises *MissingEnvKeyError if absent, or
// *CycleDetectedError if forcing it re-enters its own evaluation.
type Ask struct{ Key any }

// Local overlays Overlay on top of the task's current Env for the duration
// of Body, then restores the prior Env once Body completes — even if Body
// raises (§4.2 "Local restoration law", §8).
type Local struct {
	Overlay map[any]any
	Body    Program
}

// AskKey performs Ask for key.
func AskKey(key any) Program { return performEffect(Ask{Key: key}) }

// WithLocal performs Local, overlaying overlay for the duration of body.
func WithLocal(overlay map[any]any, body Program) Program {
	return performEffect(Local{Overlay: overlay, Body: body})
}

// lazyInProgress marks a lazy key as currently being forced, detecting
// self-referential Ask cycles.
type lazyInProgress struct{}

func dispatchAsk(t *taskState, key any) Program {
	v, ok := t.env.Read(key)
	if !ok {
		return Raise(&MissingEnvKeyError{Key: key})
	}
	lazy, ok := v.(lazyEnvValue)
	if !ok {
		return PureProgram(v)
	}
	memo := sliceOf[lazyMemoEntry](t.store, reservedKeyLazyMemo)
	for i := range *memo {
		if (*memo)[i].key == lazy.key {
			if _, inProgress := (*memo)[i].value.(lazyInProgress); inProgress {
				return Raise(&CycleDetectedError{Key: lazy.key})
			}
			return PureProgram((*memo)[i].value)
		}
	}
	*memo = append(*memo, lazyMemoEntry{key: lazy.key, value: lazyInProgress{}})
	return FlatMapProgram(lazy.program, func(resolved any) Program {
		memo := sliceOf[lazyMemoEntry](t.store, reservedKeyLazyMemo)
		for i := range *memo {
			if (*memo)[i].key == lazy.key {
				(*memo)[i].value = resolved
				break
			}
		}
		return PureProgram(resolved)
	})
}

// lazyMemoEntry records one forced lazy Env value in the Store's reserved
// memo slot.
type lazyMemoEntry struct {
	key   any
	value any
}
