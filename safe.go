// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Safe is the error-capturing effect (§6): a raised error inside Body is
// caught and rewritten into Left(err) instead of continuing to propagate;
// a Body that completes normally yields Right(value). Safe is answered
// directly by pushing a safeFrame (frame.go) rather than through user
// handler dispatch — it is a structural boundary, not a claimable effect.
type Safe struct{ Body Program }

// WithSafe performs Safe over body, yielding an Either[error, any].
func WithSafe(body Program) Program {
	return performEffect(Safe{Body: body})
}
