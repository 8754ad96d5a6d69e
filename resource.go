// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Bracket provides exception-safe resource acquisition and release: the
// bracket pattern acquire -> use -> release, where release is guaranteed to
// run even if use raises (§6, built on Safe rather than a bespoke
// Error-effect handler).
func Bracket(acquire Program, release func(resource any) Program, use func(resource any) Program) Program {
	return FlatMapProgram(acquire, func(resource any) Program {
		return FlatMapProgram(WithSafe(use(resource)), func(outcome any) Program {
			result := outcome.(Either[error, any])
			return FlatMapProgram(release(resource), func(any) Program {
				return PureProgram(result)
			})
		})
	})
}

// OnError runs cleanup only if body raises, then re-raises the same error.
func OnError(body Program, cleanup func(err error) Program) Program {
	return FlatMapProgram(WithSafe(body), func(outcome any) Program {
		result := outcome.(Either[error, any])
		if err, isErr := result.GetLeft(); isErr {
			return FlatMapProgram(cleanup(err), func(any) Program {
				return Raise(err)
			})
		}
		v, _ := result.GetRight()
		return PureProgram(v)
	})
}
