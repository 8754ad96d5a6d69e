// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// semaphoreState is a FIFO-fair counting semaphore (§4.6): Acquire either
// takes a permit immediately or parks the task at the back of a wait queue;
// Release hands the freed permit directly to the longest-waiting parked
// task instead of letting a later Acquire race ahead of it, so contention
// is resolved in arrival order rather than by scheduling luck.
type semaphoreState struct {
	id       Semaphore
	capacity int
	held     int
	waiters  []*taskState
}

// NewSemaphore creates a Semaphore with the given number of permits.
// Acquiring with capacity <= 0 always parks until a Release hands it a
// permit directly.
func NewSemaphore(capacity int) Semaphore {
	s := &semaphoreState{capacity: capacity}
	s.id = Semaphore{id: newID(), sema: s}
	return s.id
}

// AcquireEffect requests one permit from Target.
type AcquireEffect struct{ Target Semaphore }

// ReleaseEffect returns one permit to Target, handing it directly to the
// longest-waiting parked task if there is one.
type ReleaseEffect struct{ Target Semaphore }

// acquireParkNode is an internal Node: the VM parks the current task on
// sem.waiters rather than routing this through handler dispatch, the same
// way waitParkNode keeps Wait inside the scheduler (§4.6, §4.7 boundary).
type acquireParkNode struct{ sem *semaphoreState }

func (acquireParkNode) node() {}

// Acquire takes one permit from sem, parking the calling task in FIFO order
// behind any earlier, still-unsatisfied Acquire if none is free.
func Acquire(sem Semaphore) Program {
	return performEffect(AcquireEffect{Target: sem})
}

// Release returns one permit to sem.
func Release(sem Semaphore) Program {
	return performEffect(ReleaseEffect{Target: sem})
}

func dispatchAcquire(sem *semaphoreState) Program {
	return FromClosure(func(k func(any) any) any {
		if sem.held < sem.capacity {
			sem.held++
			return k(struct{}{})
		}
		return &rawSuspension{yielded: acquireParkNode{sem: sem}, k: k}
	})
}

func dispatchRelease(sch *scheduler, sem *semaphoreState) {
	if len(sem.waiters) > 0 {
		next := sem.waiters[0]
		sem.waiters = sem.waiters[1:]
		sch.resumeParked(next, struct{}{})
		return
	}
	if sem.held > 0 {
		sem.held--
	}
}
