package base

import "fmt"

// DebugEnabled gates expensive invariant checks behind a single runtime
// switch instead of a build tag at every call site.
var DebugEnabled = false

// Assert panics if the predicate is false. Reserved for invariants that, if
// violated, mean forge's own bookkeeping is corrupt (e.g. a node appearing
// twice in an interned map) -- never used for recoverable, caller-triggered
// conditions such as a missing file or a bad command line.
func Assert(pred func() bool) {
	if DebugEnabled && !pred() {
		panic("forge: assertion failed")
	}
}

// AssertErr is like Assert but the predicate returns a descriptive error
// instead of a bool.
func AssertErr(pred func() error) {
	if DebugEnabled {
		if err := pred(); err != nil {
			panic(fmt.Errorf("forge: assertion failed: %w", err))
		}
	}
}

// Panic wraps a plain error as a panic, used at the few spots where the
// error is truly unrecoverable (internal cycle-detector bug, corrupt
// in-memory index).
func Panic(err error) {
	panic(err)
}

// UnexpectedValuePanic reports an impossible enum value.
func UnexpectedValuePanic(dst, value interface{}) {
	panic(fmt.Errorf("forge: unexpected <%T> value: %#v", dst, value))
}
