// Package assert holds internal invariant checks: conditions that must
// always be true if the surrounding algorithm is implemented correctly.
// Unlike src/errs, a failed assertion is not a caller-triggerable error —
// it panics, because continuing past it would silently corrupt state.
package assert

import "fmt"

// Assert panics with a formatted message if cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
