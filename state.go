// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Get, Put and Modify are the state effects (§4.2), answered directly by
// the run's shared Store rather than through user handler dispatch: the
// Store is the one mutable substrate every task of a run sees, not
// something application code would plausibly want to answer differently.
// Keys under the reserved prefix are off-limits to user code; dispatching
// one panics rather than raising, the same class of programmer error as
// indexing past a slice.

// Get reads key from the run's Store, raising *MissingStateKeyError if
// absent.
type Get struct{ Key string }

// Put writes key unconditionally and yields struct{}{}.
type Put struct {
	Key   string
	Value any
}

// Modify atomically replaces key's current value (the zero value, nil, if
// absent) with the result of F and yields the new value. If F returns an
// error the slot is left unchanged and the error propagates as a raised
// error instead (§4.2 "Modify is atomic on failure").
type Modify struct {
	Key string
	F   func(any) (any, error)
}

// GetKey performs Get for key.
func GetKey(key string) Program { return performEffect(Get{Key: key}) }

// PutKey performs Put for key.
func PutKey(key string, v any) Program { return performEffect(Put{Key: key, Value: v}) }

// ModifyKey performs Modify for key.
func ModifyKey(key string, f func(any) (any, error)) Program {
	return performEffect(Modify{Key: key, F: f})
}

func mustNotReserved(key string) {
	if reserved(key) {
		panic("kont: " + key + " is a reserved store key")
	}
}

func dispatchGet(t *taskState, key string) Program {
	mustNotReserved(key)
	v, err := t.store.MustGet(key)
	if err != nil {
		return Raise(err)
	}
	return PureProgram(v)
}

func dispatchPut(t *taskState, key string, v any) Program {
	mustNotReserved(key)
	t.store.Put(key, v)
	return PureProgram(struct{}{})
}

func dispatchModify(t *taskState, key string, f func(any) (any, error)) Program {
	mustNotReserved(key)
	v, err := t.store.Modify(key, f)
	if err != nil {
		return Raise(err)
	}
	return PureProgram(v)
}
