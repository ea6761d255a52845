package generic

// Option[T] is a value that may be absent. Absence is a normal state, not an
// error; use Result[T] when a cause needs to travel with the failure.
type Option[T any] struct {
	Value    T
	hasValue bool
}

// Some constructs an Option[T] holding value.
func Some[T any](value T) Option[T] {
	return Option[T]{Value: value, hasValue: true}
}

// None constructs an empty Option[T].
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome returns true if the Option[T] holds a value.
func (o *Option[T]) IsSome() bool {
	return o.hasValue
}

// IsNone returns true if the Option[T] is empty.
func (o *Option[T]) IsNone() bool {
	return !o.hasValue
}

// Expect returns the contained value, or panics with msg if empty.
func (o Option[T]) Expect(msg string) T {
	if !o.hasValue {
		panic(msg)
	}
	return o.Value
}

// Unwrap returns the contained value, or panics if empty.
func (o Option[T]) Unwrap() T {
	return o.Expect("tried to Unwrap() a None")
}

// UnwrapOr returns the contained value, or other if empty.
func (o Option[T]) UnwrapOr(other T) T {
	if o.hasValue {
		return o.Value
	}
	return other
}

// OkOr transforms the Option[T] into a Result[T], using err for the empty
// case.
func (o Option[T]) OkOr(err error) Result[T] {
	if o.hasValue {
		return Ok(o.Value)
	}
	return Err[T](err)
}
