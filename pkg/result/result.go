// Package result defines the selective-emission tuples returned by
// multi-output processing functions. Each field of a Result2 or Result3 is
// independently present or absent; present fields are emitted on their
// corresponding output queue and absent fields are skipped for that round.
package result

// Option is a value that is either present or absent. The zero value is
// absent, so "emit nothing" never relies on nil.
type Option[T any] struct {
	value   T
	present bool
}

// Some returns a present option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, present: true}
}

// None returns an absent option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// Present reports whether the option holds a value.
func (o Option[T]) Present() bool {
	return o.present
}

// Result2 is one round's output for a two-output processor.
// Constructing it with both fields absent is legal and means the round emits
// nothing.
type Result2[U, V any] struct {
	A Option[U]
	B Option[V]
}

// Both2 returns a result emitting on both outputs.
func Both2[U, V any](a U, b V) Result2[U, V] {
	return Result2[U, V]{A: Some(a), B: Some(b)}
}

// First2 returns a result emitting only on the first output.
func First2[U, V any](a U) Result2[U, V] {
	return Result2[U, V]{A: Some[U](a)}
}

// Second2 returns a result emitting only on the second output.
func Second2[U, V any](b V) Result2[U, V] {
	return Result2[U, V]{B: Some[V](b)}
}

// None2 returns a result emitting nothing this round.
func None2[U, V any]() Result2[U, V] {
	return Result2[U, V]{}
}

// Result3 is one round's output for a three-output processor.
type Result3[U, V, W any] struct {
	A Option[U]
	B Option[V]
	C Option[W]
}

// All3 returns a result emitting on all three outputs.
func All3[U, V, W any](a U, b V, c W) Result3[U, V, W] {
	return Result3[U, V, W]{A: Some(a), B: Some(b), C: Some(c)}
}

// First3 returns a result emitting only on the first output.
func First3[U, V, W any](a U) Result3[U, V, W] {
	return Result3[U, V, W]{A: Some[U](a)}
}

// Second3 returns a result emitting only on the second output.
func Second3[U, V, W any](b V) Result3[U, V, W] {
	return Result3[U, V, W]{B: Some[V](b)}
}

// Third3 returns a result emitting only on the third output.
func Third3[U, V, W any](c W) Result3[U, V, W] {
	return Result3[U, V, W]{C: Some[W](c)}
}

// None3 returns a result emitting nothing this round.
func None3[U, V, W any]() Result3[U, V, W] {
	return Result3[U, V, W]{}
}
