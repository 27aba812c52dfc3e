// Package codec adapts wire formats to the shape the roundtrip relations are
// checked against: encode at one type, decode at another.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes and decodes values.
type Codec interface {
	// Name identifies the wire format (e.g., "json").
	Name() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

// JSON returns the encoding/json codec.
func JSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type msgpackCodec struct{}

// MessagePack returns the msgpack codec. Structs carrying the as_array
// marker are written positionally, which is how tuple-like records travel.
func MessagePack() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) Name() string { return "msgpack" }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// All returns every codec in this package.
func All() []Codec {
	return []Codec{JSON(), MessagePack()}
}

// Through encodes v with c and decodes the bytes at type T.
func Through[T any](c Codec, v any) (T, error) {
	var out T
	data, err := c.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("%s: encode %T: %w", c.Name(), v, err)
	}
	if err := c.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%s: decode %T: %w", c.Name(), out, err)
	}
	return out, nil
}
