package shapec

// Option is the Nullable shape: either empty or holding exactly one T.
// Fields are exported so the reflective engine can read and rebuild them;
// treat the type as opaque and go through Some, None and Get.
type Option[T any] struct {
	Valid bool
	Value T
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{Valid: true, Value: v}
}

// None returns the empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether one is present.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Pair is the arity-2 Product shape.
type Pair[A, B any] struct {
	First  A
	Second B
}

// MakePair returns a Pair of a and b.
func MakePair[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

// Triple is the arity-3 Product shape.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}
