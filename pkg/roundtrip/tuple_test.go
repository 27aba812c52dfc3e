package roundtrip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/roundtrip/pkg/roundtrip"
	"github.com/conduit-lang/roundtrip/pkg/roundtrip/codec"
	"github.com/conduit-lang/roundtrip/pkg/roundtrip/roundtriptest"
)

type pairSrc struct {
	_msgpack struct{} `msgpack:",as_array"`
	A        int32
	B        string
	C        *bool
}

type pairDst struct {
	_msgpack struct{} `msgpack:",as_array"`
	X        int64
	Y        string
	Z        *bool
}

func TestTupleTransformsInOrder(t *testing.T) {
	rel, err := roundtrip.Tuple[pairSrc, pairDst](
		roundtrip.Erase(roundtrip.Scalar[int32, int64]()),
		roundtrip.Erase(roundtrip.String[string, string]()),
		roundtrip.Erase(roundtrip.Pointer(roundtrip.Copy[bool]())),
	)
	require.NoError(t, err)

	yes := true
	out := rel.RoundTrip(pairSrc{A: 7, B: "seven", C: &yes})
	assert.Equal(t, int64(7), out.X)
	assert.Equal(t, "seven", out.Y)
	require.NotNil(t, out.Z)
	assert.True(t, *out.Z)

	assert.Nil(t, rel.RoundTrip(pairSrc{}).Z)

	// Field names differ, so only the positional codec agrees.
	roundtriptest.Equivalent(t, codec.MessagePack(), rel, pairSrc{A: -1, B: "b", C: &yes})
}

type wide struct {
	_msgpack struct{} `msgpack:",as_array"`
	A, B, C, D, E, F, G, H int
	I, J, K, L, M, N, O, P int
}

type tooWide struct {
	A, B, C, D, E, F, G, H int
	I, J, K, L, M, N, O, P int
	Q                      int
}

func ints(n int) []roundtrip.AnyRelation {
	rels := make([]roundtrip.AnyRelation, n)
	for i := range rels {
		rels[i] = roundtrip.Erase(roundtrip.Copy[int]())
	}
	return rels
}

func TestTupleArity(t *testing.T) {
	t.Run("sixteen", func(t *testing.T) {
		rel, err := roundtrip.Tuple[wide, wide](ints(16)...)
		require.NoError(t, err)

		in := wide{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6, G: 7, H: 8, I: 9, J: 10, K: 11, L: 12, M: 13, N: 14, O: 15, P: 16}
		assert.Equal(t, in, rel.RoundTrip(in))
		roundtriptest.EquivalentAll(t, rel, in)
	})

	t.Run("seventeen", func(t *testing.T) {
		_, err := roundtrip.Tuple[tooWide, tooWide](ints(17)...)
		assert.ErrorIs(t, err, roundtrip.ErrTupleArity)
	})

	t.Run("relation count", func(t *testing.T) {
		_, err := roundtrip.Tuple[wide, wide](ints(15)...)
		assert.ErrorIs(t, err, roundtrip.ErrTupleArity)
	})

	t.Run("no components", func(t *testing.T) {
		_, err := roundtrip.Tuple[struct{}, struct{}]()
		assert.ErrorIs(t, err, roundtrip.ErrTupleArity)
	})

	t.Run("not a struct", func(t *testing.T) {
		_, err := roundtrip.Tuple[int, int](ints(1)...)
		assert.ErrorIs(t, err, roundtrip.ErrTupleArity)
	})
}

func TestTupleComponentType(t *testing.T) {
	_, err := roundtrip.Tuple[pairSrc, pairDst](
		roundtrip.Erase(roundtrip.Copy[int32]()),
		roundtrip.Erase(roundtrip.String[string, string]()),
		roundtrip.Erase(roundtrip.Pointer(roundtrip.Copy[bool]())),
	)
	assert.ErrorIs(t, err, roundtrip.ErrComponentType)
}

func TestEraseTypes(t *testing.T) {
	rel := roundtrip.Erase(roundtrip.Scalar[int8, int16]())
	source, target := rel.Types()
	assert.Equal(t, "int8", source.String())
	assert.Equal(t, "int16", target.String())
	assert.Equal(t, int16(3), rel.RoundTrip(int8(3)))
	assert.Equal(t, int16(0), rel.RoundTrip(nil))
}
