// Package roundtriptest checks relations against real codecs.
//
// A relation is trusted without checks in production; tests use Equivalent
// to confirm that decode(encode(v)) and RoundTrip(v) agree for sample values.
package roundtriptest

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/roundtrip/pkg/roundtrip"
	"github.com/conduit-lang/roundtrip/pkg/roundtrip/codec"
)

// exportAll lets cmp look inside the library's container types. Types with
// an Equal method are still compared by it.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// Equivalent fails t unless encoding v with c and decoding at T gives the
// same value as rel.RoundTrip(v).
func Equivalent[S, T any](t testing.TB, c codec.Codec, rel roundtrip.Relation[S, T], v S, opts ...cmp.Option) {
	t.Helper()

	want, err := codec.Through[T](c, v)
	require.NoError(t, err, "codec %s", c.Name())

	got := rel.RoundTrip(v)
	if diff := cmp.Diff(want, got, append(opts, exportAll)...); diff != "" {
		t.Errorf("%s: decode(encode(v)) != RoundTrip(v) (-decoded +transformed):\n%s", c.Name(), diff)
	}
}

// EquivalentAll runs Equivalent for every codec in codec.All.
func EquivalentAll[S, T any](t testing.TB, rel roundtrip.Relation[S, T], v S, opts ...cmp.Option) {
	t.Helper()
	for _, c := range codec.All() {
		Equivalent(t, c, rel, v, opts...)
	}
}

// EquivalentAny is Equivalent for an erased relation, as held by a Registry.
func EquivalentAny(t testing.TB, c codec.Codec, rel roundtrip.AnyRelation, v any, opts ...cmp.Option) {
	t.Helper()

	_, target := rel.Types()
	data, err := c.Marshal(v)
	require.NoError(t, err, "codec %s: encode %T", c.Name(), v)

	decoded := reflect.New(target)
	require.NoError(t, c.Unmarshal(data, decoded.Interface()), "codec %s: decode %s", c.Name(), target)

	got := rel.RoundTrip(v)
	if diff := cmp.Diff(decoded.Elem().Interface(), got, append(opts, exportAll)...); diff != "" {
		t.Errorf("%s: %T -> %s (-decoded +transformed):\n%s", c.Name(), v, target, diff)
	}
}
