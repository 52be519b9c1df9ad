package extract

import "github.com/matheus3301/waharvest/internal/page"

// Field is the outcome of reading one value from the page: the value, or the
// reason it could not be read.
type Field[T any] struct {
	Value T
	Err   error
}

// Read runs fn and captures its result as a Field.
func Read[T any](fn func() (T, error)) Field[T] {
	v, err := fn()
	return Field[T]{Value: v, Err: err}
}

// Or returns the value, or def if the read failed.
func (f Field[T]) Or(def T) T {
	if f.Err != nil {
		return def
	}
	return f.Value
}

// OK reports whether the read succeeded.
func (f Field[T]) OK() bool {
	return f.Err == nil
}

// fatal returns the first error that should stop the harvest.
func fatal(errs ...error) error {
	for _, err := range errs {
		if page.IsFatal(err) {
			return err
		}
	}
	return nil
}
