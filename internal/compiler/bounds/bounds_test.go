package bounds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/roundtrip/internal/compiler/rename"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

func synthesize(t *testing.T, s *shape.TypeShape) Clause {
	t.Helper()
	src, err := rename.Source(s.Generics)
	require.NoError(t, err)
	tgt, err := rename.Target(s.Generics)
	require.NoError(t, err)
	return Synthesize(s, src, tgt, "T")
}

func TestZeroParamsOnlyLift(t *testing.T) {
	c := synthesize(t, &shape.TypeShape{Name: "Point"})

	assert.True(t, c.LiftOnly())
	assert.Empty(t, c.Source)
	assert.Empty(t, c.Target)
	assert.Equal(t, "[T any]", c.TypeParams("roundtrip"))
	assert.Equal(t, "", c.TargetTypeParams("roundtrip"))
	assert.Equal(t, "lift roundtrip.Lift[Point, T]", c.Params("roundtrip"))
}

func TestOneBoundPerParam(t *testing.T) {
	s := &shape.TypeShape{
		Name: "Pair",
		Generics: shape.Generics{
			Params: []*shape.TypeParam{{Name: "A"}, {Name: "B"}},
		},
	}
	c := synthesize(t, s)

	require.False(t, c.LiftOnly())
	assert.Equal(t, []RelationBound{
		{Arg: "r0", Source: "S0", Target: "T0"},
		{Arg: "r1", Source: "S1", Target: "T1"},
	}, c.Relations)
	assert.Equal(t, "[S0 any, S1 any, T0 roundtrip.Decodable, T1 roundtrip.Decodable, T any]", c.TypeParams("roundtrip"))
	assert.Equal(t, "[T0 roundtrip.Decodable, T1 roundtrip.Decodable]", c.TargetTypeParams("roundtrip"))
	assert.Equal(t,
		"r0 roundtrip.Relation[S0, T0], r1 roundtrip.Relation[S1, T1], lift roundtrip.Lift[Pair[T0, T1], T]",
		c.Params("roundtrip"))

	r, ok := c.Relation("S1")
	require.True(t, ok)
	assert.Equal(t, "r1", r.Arg)
	_, ok = c.Relation("S9")
	assert.False(t, ok)
}

func TestDeclaredConstraintsAreRenamedPerNamespace(t *testing.T) {
	s := &shape.TypeShape{
		Name: "Index",
		Generics: shape.Generics{
			Lifetimes: []string{"a"},
			Params: []*shape.TypeParam{
				{Name: "K", Constraint: shape.Qualified("cmp", "Ordered")},
				{Name: "V", Constraint: shape.Named("Keyed", shape.Named("K"))},
			},
		},
	}
	c := synthesize(t, s)

	assert.Equal(t,
		"[S0 cmp.Ordered, S1 Keyed[S0], T0 cmp.Ordered, T1 Keyed[T0], T any]",
		c.TypeParams("rt"))
	// lifetimes are erased from the Go rendering
	assert.Equal(t, "Index[T0, T1]", c.Lift.Self.Render())
	assert.Equal(t, "Index['b0, T0, T1]", c.Lift.Self.String())
}

func TestExtraVariable(t *testing.T) {
	s := &shape.TypeShape{Name: "T"}
	src, err := rename.Source(s.Generics)
	require.NoError(t, err)
	tgt, err := rename.Target(s.Generics)
	require.NoError(t, err)

	c := Synthesize(s, src, tgt, "T_")
	assert.Equal(t, "lift roundtrip.Lift[T, T_]", c.Params("roundtrip"))
}
