// Package options implements the functional options pattern shared by every
// constructor in the module.
package options

// Option modifies some options type T.
type Option[T any] interface {
	ApplyOption(*T) error
}

// OptionFunc adapts a plain function to the Option interface.
// A nil OptionFunc is a no-op.
type OptionFunc[T any] func(*T) error

func (f OptionFunc[T]) ApplyOption(o *T) error {
	if f == nil {
		return nil
	}
	return f(o)
}

// Apply applies opts to target in order and stops at the first error.
// Nil entries are skipped.
func Apply[T any](target *T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(target); err != nil {
			return err
		}
	}
	return nil
}

// New returns a copy of defaults with opts applied. On error the untouched
// defaults are returned alongside it.
func New[T any](defaults T, opts ...Option[T]) (T, error) {
	target := defaults
	if err := Apply(&target, opts...); err != nil {
		return defaults, err
	}
	return target, nil
}
