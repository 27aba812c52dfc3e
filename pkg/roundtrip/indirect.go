package roundtrip

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Pointer relates *S to *T by transforming the pointee and re-wrapping it.
// Go's garbage-collected pointers stand in for owned boxes and shared
// reference-counted cells alike. A nil pointer encodes as nil and decodes
// as nil.
func Pointer[S, T any](elem Relation[S, T]) Relation[*S, *T] {
	return Func[*S, *T](func(p *S) *T {
		if p == nil {
			return nil
		}
		t := elem.RoundTrip(*p)
		return &t
	})
}

// PointerLift is the lift of *T: it decodes like the pointee's partner U and
// re-wraps the result.
func PointerLift[U, T any](inner Lift[U, T]) Lift[U, *T] {
	return LiftFunc[U, *T](func(u U) *T {
		t := inner.From(u)
		return &t
	})
}

// Deref relates a borrowed view *S to T by dereferencing first. A nil view
// decodes to T's zero value.
func Deref[S, T any](elem Relation[S, T]) Relation[*S, T] {
	return Func[*S, T](func(p *S) T {
		if p == nil {
			var zero T
			return zero
		}
		return elem.RoundTrip(*p)
	})
}

// Cow holds either a borrowed *T or an owned T. Both encode as the T they
// refer to; decoding always yields the owned form.
type Cow[T any] struct {
	borrowed *T
	owned    T
}

// Borrowed returns a Cow viewing v.
func Borrowed[T any](v *T) Cow[T] {
	return Cow[T]{borrowed: v}
}

// Owned returns a Cow holding v.
func Owned[T any](v T) Cow[T] {
	return Cow[T]{owned: v}
}

// Get returns the referenced value.
func (c Cow[T]) Get() T {
	if c.borrowed != nil {
		return *c.borrowed
	}
	return c.owned
}

// IsBorrowed reports whether c views a value it does not own.
func (c Cow[T]) IsBorrowed() bool {
	return c.borrowed != nil
}

// MarshalJSON encodes the referenced value.
func (c Cow[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Get())
}

// UnmarshalJSON decodes into the owned form.
func (c *Cow[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Owned(v)
	return nil
}

// EncodeMsgpack encodes the referenced value.
func (c Cow[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(c.Get())
}

// DecodeMsgpack decodes into the owned form.
func (c *Cow[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	var v T
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*c = Owned(v)
	return nil
}

// FromCow relates Cow[S] to T: the value is taken in its owned form and then
// transformed by elem.
func FromCow[S, T any](elem Relation[S, T]) Relation[Cow[S], T] {
	return Func[Cow[S], T](func(c Cow[S]) T {
		return elem.RoundTrip(c.Get())
	})
}

// CowLift is the lift of Cow[T]: it decodes like T's partner U and owns the
// result.
func CowLift[U, T any](inner Lift[U, T]) Lift[U, Cow[T]] {
	return LiftFunc[U, Cow[T]](func(u U) Cow[T] {
		return Owned(inner.From(u))
	})
}

// CowOf relates Cow[S] to Cow[T]. It is FromCow finished by CowLift.
func CowOf[S, T any](elem Relation[S, T]) Relation[Cow[S], Cow[T]] {
	return Lifted[Cow[S], T, Cow[T]](FromCow(elem), CowLift(Identity[T]()))
}
