// Package fallback implements the ordered "try primary, then secondary, then a
// safe default" chain used by the markdown adapter and the locale loader.
package fallback

import "errors"

// Step produces a value or an error.
type Step[T any] func() (T, error)

// First runs steps in order and returns the first successful value.
// When every step fails the errors are joined in step order.
func First[T any](steps ...Step[T]) (T, error) {
	var errs []error
	for _, step := range steps {
		v, err := step()
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	var zero T
	if len(errs) == 0 {
		return zero, errors.New("fallback: no steps")
	}
	return zero, errors.Join(errs...)
}

// OrDefault is First with def substituted when every step fails.
// The joined error is still returned so callers can log it.
func OrDefault[T any](def T, steps ...Step[T]) (T, error) {
	v, err := First(steps...)
	if err != nil {
		return def, err
	}
	return v, nil
}
