// Package roundtrip lets a program skip an encode-then-decode pass when the
// result is known in advance.
//
// A Relation[S, T] states that encoding a value of type S and decoding the
// bytes at type T yields exactly RoundTrip(v). Relations compose: the
// constructors in this package cover the built-in shapes (scalars, pointers,
// slices, arrays, maps, tuples, optional and either values, ordered
// collections, markers) and take the relations of their element types as
// arguments, the way generated code for user types does.
//
//	rel := roundtrip.Slice[string, string](roundtrip.Copy[string]())
//	out := rel.RoundTrip([]string{"hello", "world"})
//
// A Lift[U, T] states that decoding at T is the same as decoding at U and then
// calling From. Every concrete type lifts from itself via Identity. Generated
// relations are parameterized over the caller's desired result type and
// finish with Lifted, so a Msg[string] can be produced wherever a type
// decoding like Msg[string] is wanted.
//
// Code for user-defined records, tuple-like structs and sums is produced by
// roundtrip-gen. Each derived type Name gets:
//
//	func RoundTripName[S0, ..., T0, ..., T any](r0 Relation[S0, T0], ..., lift Lift[Name[T0, ...], T]) Relation[Name[S0, ...], T]
//	func SameName[T0, ...]() Lift[Name[T0, ...], Name[T0, ...]]
//
// A field whose type has no relation makes the generated code fail to
// compile; nothing is checked at run time.
//
// The Registry maps (source, target) type pairs to relations for callers that
// only hold an interface value. Default comes preloaded with the scalar
// leaves and To looks a relation up there.
package roundtrip
