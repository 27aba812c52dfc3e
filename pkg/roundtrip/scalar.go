package roundtrip

// Number is the set of numeric kinds whose encoding is their value.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Copy relates a value type to itself. It is meant for leaves that hold no
// references: numbers, booleans, runes, strings, time.Duration, netip.Addr
// and the like.
func Copy[T any]() Relation[T, T] {
	return Func[T, T](func(v T) T {
		return v
	})
}

// Scalar relates two numeric types that share an encoding, such as an int
// sent and received as an int64.
func Scalar[S, T Number]() Relation[S, T] {
	return Func[S, T](func(v S) T {
		return T(v)
	})
}

// String relates string types. Go strings are immutable, so the conversion
// is the owned form.
func String[S, T ~string]() Relation[S, T] {
	return Func[S, T](func(v S) T {
		return T(v)
	})
}

// Bytes relates opaque byte slices by copying into a fresh slice. A nil
// slice stays nil.
func Bytes[S, T ~[]byte]() Relation[S, T] {
	return Func[S, T](func(v S) T {
		if v == nil {
			return nil
		}
		out := make(T, len(v))
		copy(out, v)
		return out
	})
}

// Marker relates zero-sized types. The transform is the zero constant.
func Marker[S, T ~struct{}]() Relation[S, T] {
	return Func[S, T](func(S) T {
		var t T
		return t
	})
}
