// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "time"

// clockState backs the reserved clock slot: either a real wall clock, or a
// simulated one a test can advance deterministically without sleeping
// (§4.2, §8 "deterministic replay").
type clockState struct {
	simulated bool
	now       time.Time
}

func clockOf(t *taskState) *clockState {
	v, ok := t.store.Get(reservedKeyClock)
	if !ok {
		cs := &clockState{now: time.Now()}
		t.store.Put(reservedKeyClock, cs)
		return cs
	}
	return v.(*clockState)
}

// UseSimulatedClock installs a simulated clock on store, starting at start.
// Delay and WaitUntil against a simulated clock advance it instantly instead
// of sleeping — tests get deterministic, replayable timing (§8).
func UseSimulatedClock(store *Store, start time.Time) {
	store.Put(reservedKeyClock, &clockState{simulated: true, now: start})
}

// Delay effect: pause the calling task for d.
type Delay struct{ Duration time.Duration }

// WaitUntilEffect effect: pause the calling task until a fixed time.
type WaitUntilEffect struct{ Target time.Time }

// GetTimeEffect reads the current clock time.
type GetTimeEffect struct{}

// AfterDelay performs Delay for d.
func AfterDelay(d time.Duration) Program { return performEffect(Delay{Duration: d}) }

// WaitUntil performs WaitUntilEffect for target.
func WaitUntil(target time.Time) Program { return performEffect(WaitUntilEffect{Target: target}) }

// GetTime performs GetTimeEffect.
func GetTime() Program { return performEffect(GetTimeEffect{}) }

func dispatchDelay(t *taskState, d time.Duration) Program {
	cs := clockOf(t)
	if cs.simulated {
		cs.now = cs.now.Add(d)
		return PureProgram(cs.now)
	}
	return Call(func() (any, error) {
		time.Sleep(d)
		return time.Now(), nil
	})
}

func dispatchWaitUntil(t *taskState, target time.Time) Program {
	cs := clockOf(t)
	if cs.simulated {
		if target.After(cs.now) {
			cs.now = target
		}
		return PureProgram(cs.now)
	}
	d := time.Until(target)
	if d <= 0 {
		return PureProgram(time.Now())
	}
	return Call(func() (any, error) {
		time.Sleep(d)
		return time.Now(), nil
	})
}

func dispatchGetTime(t *taskState) Program {
	cs := clockOf(t)
	if cs.simulated {
		return PureProgram(cs.now)
	}
	return PureProgram(time.Now())
}
