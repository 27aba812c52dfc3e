package roundtrip

// Relation carries a value of type S to the value that decoding its encoding
// at type T would produce. Implementations are pure and total.
type Relation[S, T any] interface {
	RoundTrip(S) T
}

// Func adapts an ordinary function to a Relation.
type Func[S, T any] func(S) T

// RoundTrip calls f(s).
func (f Func[S, T]) RoundTrip(s S) T {
	return f(s)
}

// Lift states that decoding at T equals decoding at U followed by From.
// U is the "same as" partner of T.
type Lift[U, T any] interface {
	From(U) T
}

// LiftFunc adapts an ordinary function to a Lift.
type LiftFunc[U, T any] func(U) T

// From calls f(u).
func (f LiftFunc[U, T]) From(u U) T {
	return f(u)
}

// Decodable names the capability a target type parameter needs. Go decoders
// accept any type, so it places no restriction.
type Decodable = any

type identity[T any] struct{}

func (identity[T]) From(v T) T {
	return v
}

// Identity is the lift of a type that decodes exactly like itself.
func Identity[T any]() Lift[T, T] {
	return identity[T]{}
}

// Lifted finishes rel with lift, producing the caller's chosen result type.
func Lifted[S, U, T any](rel Relation[S, U], lift Lift[U, T]) Relation[S, T] {
	return Func[S, T](func(s S) T {
		return lift.From(rel.RoundTrip(s))
	})
}

// Compose chains two relations: the result of first is fed to second.
func Compose[A, B, C any](first Relation[A, B], second Relation[B, C]) Relation[A, C] {
	return Func[A, C](func(a A) C {
		return second.RoundTrip(first.RoundTrip(a))
	})
}
