// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// RunWith executes a continuation with a custom final handler — the
// generic low-level driver for a bare Cont (Reset uses its own identity
// driver, control.go). The VM's own
// top-level entry points, Run and NewAsyncRunner, live in runner.go; this
// is the building block for driving a bare Cont[R, A] outside the VM
// entirely, the same role it played for the teacher.
func RunWith[R, A any](m Cont[R, A], k func(A) R) R {
	return m(k)
}
