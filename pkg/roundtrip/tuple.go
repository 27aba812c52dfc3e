package roundtrip

import (
	"errors"
	"fmt"
	"reflect"
)

// MaxTupleArity is the widest tuple Tuple accepts.
const MaxTupleArity = 16

// ErrTupleArity is returned when a tuple has no components, more than
// MaxTupleArity, or a component count that differs from the relations given.
var ErrTupleArity = errors.New("roundtrip: tuple arity outside 1..16")

// ErrComponentType is returned when a tuple component does not have the type
// its relation expects.
var ErrComponentType = errors.New("roundtrip: tuple component type mismatch")

// AnyRelation is a relation with its type arguments erased. It remembers
// them so callers can check what they are plugging it into.
type AnyRelation interface {
	Relation[any, any]
	Types() (source, target reflect.Type)
}

type erased[S, T any] struct {
	rel Relation[S, T]
}

func (e erased[S, T]) RoundTrip(v any) any {
	var s S
	if v != nil {
		s = v.(S)
	}
	return e.rel.RoundTrip(s)
}

func (e erased[S, T]) Types() (reflect.Type, reflect.Type) {
	return reflect.TypeFor[S](), reflect.TypeFor[T]()
}

// Erase hides the type arguments of rel.
func Erase[S, T any](rel Relation[S, T]) AnyRelation {
	return erased[S, T]{rel: rel}
}

// Tuple relates two positional structs component by component in declared
// order. A positional struct is one a codec writes as an array, such as a
// struct carrying the msgpack as_array marker; its components are its
// exported fields. elems[i] transforms component i. Arity is checked once
// here, so a single routine covers every width from 1 to MaxTupleArity.
func Tuple[S, T any](elems ...AnyRelation) (Relation[S, T], error) {
	st := reflect.TypeFor[S]()
	tt := reflect.TypeFor[T]()
	src, err := positions(st)
	if err != nil {
		return nil, err
	}
	dst, err := positions(tt)
	if err != nil {
		return nil, err
	}
	if len(src) == 0 || len(src) > MaxTupleArity || len(src) != len(dst) || len(src) != len(elems) {
		return nil, fmt.Errorf("%w: %s (%d) -> %s (%d) with %d relations",
			ErrTupleArity, st, len(src), tt, len(dst), len(elems))
	}
	for i, rel := range elems {
		from, to := rel.Types()
		if st.Field(src[i]).Type != from || tt.Field(dst[i]).Type != to {
			return nil, fmt.Errorf("%w: component %d of %s -> %s", ErrComponentType, i, st, tt)
		}
	}

	return Func[S, T](func(s S) T {
		var out T
		sv := reflect.ValueOf(&s).Elem()
		tv := reflect.ValueOf(&out).Elem()
		for i, rel := range elems {
			setAny(tv.Field(dst[i]), rel.RoundTrip(sv.Field(src[i]).Interface()))
		}
		return out
	}), nil
}

// positions returns the indices of t's exported fields in declaration order.
func positions(t reflect.Type) ([]int, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrTupleArity, t)
	}
	var idx []int
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

// setAny stores v into dst, treating a nil interface as dst's zero value.
func setAny(dst reflect.Value, v any) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return
	}
	dst.Set(rv)
}
