package utils

// Must panics if err is non-nil, otherwise returns v. Used for
// initialization paths where a failure means the process cannot
// meaningfully continue.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}

// WithUnlock pairs a resource with the function that releases whatever
// was acquired to obtain it.
type WithUnlock[T any] struct {
	Resource T
	UnlockFn func() error
}

func (w *WithUnlock[T]) Unlock() error {
	if w.UnlockFn != nil {
		return w.UnlockFn()
	}

	return nil
}
