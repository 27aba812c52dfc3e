package roundtrip

import (
	"errors"
	"fmt"
	"reflect"
)

// MaxArrayLen is the longest fixed-length array Array accepts.
const MaxArrayLen = 32

var (
	// ErrArrayLength is returned for arrays longer than MaxArrayLen or of
	// differing lengths.
	ErrArrayLength = errors.New("roundtrip: array length outside 0..32")
	// ErrArrayType is returned when a type argument is not an array of the
	// relation's element type.
	ErrArrayType = errors.New("roundtrip: not an array of the element type")
)

// Slice relates []S to []T element by element, preserving order. A nil
// slice stays nil.
func Slice[S, T any](elem Relation[S, T]) Relation[[]S, []T] {
	return Func[[]S, []T](func(s []S) []T {
		if s == nil {
			return nil
		}
		out := make([]T, len(s))
		for i := range s {
			out[i] = elem.RoundTrip(s[i])
		}
		return out
	})
}

// Array relates the fixed-length arrays AS = [N]S and AT = [N]T position by
// position. Go generics cannot range over array lengths, so the lengths are
// checked here once, by reflection, and the returned relation indexes both
// arrays directly.
func Array[AS, AT, S, T any](elem Relation[S, T]) (Relation[AS, AT], error) {
	st := reflect.TypeFor[AS]()
	tt := reflect.TypeFor[AT]()
	if st.Kind() != reflect.Array || st.Elem() != reflect.TypeFor[S]() {
		return nil, fmt.Errorf("%w: %s", ErrArrayType, st)
	}
	if tt.Kind() != reflect.Array || tt.Elem() != reflect.TypeFor[T]() {
		return nil, fmt.Errorf("%w: %s", ErrArrayType, tt)
	}
	if st.Len() != tt.Len() || st.Len() > MaxArrayLen {
		return nil, fmt.Errorf("%w: %s -> %s", ErrArrayLength, st, tt)
	}

	n := st.Len()
	return Func[AS, AT](func(a AS) AT {
		var out AT
		src := reflect.ValueOf(&a).Elem()
		dst := reflect.ValueOf(&out).Elem()
		for i := 0; i < n; i++ {
			t := elem.RoundTrip(valueAs[S](src.Index(i)))
			dst.Index(i).Set(reflect.ValueOf(&t).Elem())
		}
		return out
	}), nil
}

// MustArray is like Array but panics if the types do not fit. Generated code
// uses it with literal lengths that were checked at generation time: a field
// array longer than MaxArrayLen is reported as GEN606 by roundtrip-gen and
// never reaches this call. Hand-written relations get the panic when the
// relation is built, not when it first runs.
func MustArray[AS, AT, S, T any](elem Relation[S, T]) Relation[AS, AT] {
	rel, err := Array[AS, AT](elem)
	if err != nil {
		panic(err)
	}
	return rel
}

// valueAs reads v as an S, including nil interface values.
func valueAs[S any](v reflect.Value) S {
	var s S
	reflect.ValueOf(&s).Elem().Set(v)
	return s
}
