package roundtrip

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Option is a value that may be absent. None encodes as nil.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present Option.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether the value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func (o Option[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !o.ok {
		return enc.EncodeNil()
	}
	return enc.Encode(o.value)
}

func (o *Option[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		*o = None[T]()
		return dec.DecodeNil()
	}
	var v T
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// OptionOf maps the contained value if present; absence passes through.
func OptionOf[S, T any](elem Relation[S, T]) Relation[Option[S], Option[T]] {
	return Func[Option[S], Option[T]](func(o Option[S]) Option[T] {
		v, ok := o.Get()
		if !ok {
			return None[T]()
		}
		return Some(elem.RoundTrip(v))
	})
}

const (
	leftTag  = "Left"
	rightTag = "Right"
)

// Either holds exactly one of an L or an R. It encodes as a single-entry map
// keyed by the arm name.
type Either[L, R any] struct {
	left    L
	right   R
	isRight bool
}

// Left returns an Either holding v in its left arm.
func Left[L, R any](v L) Either[L, R] {
	return Either[L, R]{left: v}
}

// Right returns an Either holding v in its right arm.
func Right[L, R any](v R) Either[L, R] {
	return Either[L, R]{right: v, isRight: true}
}

// Left returns the left value and whether e holds it.
func (e Either[L, R]) Left() (L, bool) {
	return e.left, !e.isRight
}

// Right returns the right value and whether e holds it.
func (e Either[L, R]) Right() (R, bool) {
	return e.right, e.isRight
}

func (e Either[L, R]) MarshalJSON() ([]byte, error) {
	if e.isRight {
		return json.Marshal(map[string]R{rightTag: e.right})
	}
	return json.Marshal(map[string]L{leftTag: e.left})
}

func (e *Either[L, R]) UnmarshalJSON(data []byte) error {
	var arms map[string]json.RawMessage
	if err := json.Unmarshal(data, &arms); err != nil {
		return err
	}
	if len(arms) != 1 {
		return fmt.Errorf("roundtrip: either expects exactly one arm, got %d", len(arms))
	}
	if raw, ok := arms[leftTag]; ok {
		var v L
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*e = Left[L, R](v)
		return nil
	}
	if raw, ok := arms[rightTag]; ok {
		var v R
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*e = Right[L](v)
		return nil
	}
	return fmt.Errorf("roundtrip: either arm must be %q or %q", leftTag, rightTag)
}

func (e Either[L, R]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}
	if e.isRight {
		if err := enc.EncodeString(rightTag); err != nil {
			return err
		}
		return enc.Encode(e.right)
	}
	if err := enc.EncodeString(leftTag); err != nil {
		return err
	}
	return enc.Encode(e.left)
}

func (e *Either[L, R]) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("roundtrip: either expects exactly one arm, got %d", n)
	}
	tag, err := dec.DecodeString()
	if err != nil {
		return err
	}
	switch tag {
	case leftTag:
		var v L
		if err := dec.Decode(&v); err != nil {
			return err
		}
		*e = Left[L, R](v)
	case rightTag:
		var v R
		if err := dec.Decode(&v); err != nil {
			return err
		}
		*e = Right[L](v)
	default:
		return fmt.Errorf("roundtrip: either arm must be %q or %q, got %q", leftTag, rightTag, tag)
	}
	return nil
}

// EitherOf maps whichever arm is present with that arm's own relation.
func EitherOf[SL, TL, SR, TR any](left Relation[SL, TL], right Relation[SR, TR]) Relation[Either[SL, SR], Either[TL, TR]] {
	return Func[Either[SL, SR], Either[TL, TR]](func(e Either[SL, SR]) Either[TL, TR] {
		if r, ok := e.Right(); ok {
			return Right[TL](right.RoundTrip(r))
		}
		l, _ := e.Left()
		return Left[TL, TR](left.RoundTrip(l))
	})
}
