package generic

import "fmt"

// Void is the unit type, for Result values that only carry an error.
type Void struct{}

func NewVoid() Void {
	return Void{}
}

// Result[T] pairs a value with the error from producing it, so that a
// (T, error) return can travel over a channel or be stored as one item.
type Result[T any] struct {
	Value T
	Error error
}

// NewResult wraps a (T, error) return value as a Result[T].
func NewResult[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Error: err}
}

// NewResult_ is like NewResult, but for plain error returns.
func NewResult_(err error) Result[Void] {
	return NewResult(NewVoid(), err)
}

// Ok wraps a value as a successful Result[T].
func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Err wraps an error as a failed Result[T].
func Err[T any](err error) Result[T] {
	return Result[T]{Error: err}
}

// IsOk returns true if the Result[T] contains a value.
func (r *Result[T]) IsOk() bool {
	return r.Error == nil
}

// IsErr returns true if the Result[T] contains an error.
func (r *Result[T]) IsErr() bool {
	return r.Error != nil
}

// Expect returns the contained value, or panics with msg wrapping the
// contained error.
func (r Result[T]) Expect(msg string) T {
	if r.IsErr() {
		panic(fmt.Errorf("%s: %w", msg, r.Error))
	}
	return r.Value
}

// Unwrap returns the contained value, or panics if IsErr.
func (r Result[T]) Unwrap() T {
	return r.Expect("tried to Unwrap() an Err")
}

// UnwrapOr returns the contained value, or other if IsErr.
func (r Result[T]) UnwrapOr(other T) T {
	if r.IsOk() {
		return r.Value
	}
	return other
}

// Unwrap is a shortcut for NewResult(...).Unwrap().
func Unwrap[T any](value T, err error) T {
	return NewResult(value, err).Unwrap()
}

// Unwrap_ is like Unwrap, but for plain error returns.
func Unwrap_(err error) {
	NewResult_(err).Unwrap()
}
