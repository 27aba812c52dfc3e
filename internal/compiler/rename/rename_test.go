package rename

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

func generics(lifetimes []string, params ...string) shape.Generics {
	g := shape.Generics{Lifetimes: lifetimes}
	for _, p := range params {
		g.Params = append(g.Params, &shape.TypeParam{Name: p})
	}
	return g
}

func TestNamespacesAreIndexedSeparately(t *testing.T) {
	g := generics([]string{"x", "y"}, "K", "V")

	src, err := Source(g)
	require.NoError(t, err)
	tgt, err := Target(g)
	require.NoError(t, err)

	assert.Equal(t, []string{"a0", "a1"}, src.Lifetimes())
	assert.Equal(t, []string{"S0", "S1"}, src.Params())
	assert.Equal(t, []string{"b0", "b1"}, tgt.Lifetimes())
	assert.Equal(t, []string{"T0", "T1"}, tgt.Params())
}

func TestRenamingIsBijective(t *testing.T) {
	g := generics(nil, "A", "B", "C", "D")
	src, err := Source(g)
	require.NoError(t, err)

	seen := make(map[string]string)
	for _, p := range g.Params {
		r, ok := src.Param(p.Name)
		require.True(t, ok)
		if prev, dup := seen[r]; dup {
			t.Fatalf("%s and %s both renamed to %s", prev, p.Name, r)
		}
		seen[r] = p.Name
	}
	assert.Len(t, seen, 4)
}

func TestApplyRenamesUnqualifiedOnly(t *testing.T) {
	g := generics([]string{"a"}, "T", "Option")
	tgt, err := Target(g)
	require.NoError(t, err)

	in := shape.MapOf(
		shape.Named("T"),
		shape.Qualified("roundtrip", "Option", shape.Named("Option"), shape.Named("Wrapper", shape.Lifetime("a"), shape.Named("T"))),
	)
	out := tgt.Apply(in)

	assert.Equal(t, "map[T0]roundtrip.Option[T1, Wrapper['b0, T0]]", out.String())
	// the input is left untouched
	assert.Equal(t, "map[T]roundtrip.Option[Option, Wrapper['a, T]]", in.String())
}

func TestApplyLeavesForeignNames(t *testing.T) {
	src, err := Source(generics(nil, "T"))
	require.NoError(t, err)

	out := src.Apply(shape.SliceOf(shape.Named("Other")))
	assert.Equal(t, "[]Other", out.Render())
}

func TestApplyConstraint(t *testing.T) {
	src, err := Source(generics(nil, "K", "V"))
	require.NoError(t, err)

	c := shape.Union(shape.Approx(shape.Named("int")), shape.Named("Key", shape.Named("V")))
	assert.Equal(t, "~int | Key[S1]", src.Apply(c).Render())
}

func TestDuplicateParams(t *testing.T) {
	_, err := Source(generics(nil, "T", "T"))
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "T", dup.Name)

	_, err = Target(generics([]string{"a", "a"}))
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "'a", dup.Name)
}

func TestZeroParams(t *testing.T) {
	src, err := Source(shape.Generics{})
	require.NoError(t, err)
	assert.Empty(t, src.Params())
	assert.Equal(t, "Point", src.Instantiate("Point").Render())

	e := shape.PointerTo(shape.Named("int"))
	assert.True(t, e.Equal(src.Apply(e)))
}

func TestInstantiate(t *testing.T) {
	tgt, err := Target(generics([]string{"a"}, "K", "V"))
	require.NoError(t, err)
	e := tgt.Instantiate("Pair")
	assert.Equal(t, "Pair['b0, T0, T1]", e.String())
	assert.Equal(t, "Pair[T0, T1]", e.Render())
}

func TestFresh(t *testing.T) {
	assert.Equal(t, "T", Fresh(nil))
	assert.Equal(t, "T", Fresh(map[string]bool{"Other": true}))
	assert.Equal(t, "T_", Fresh(map[string]bool{"T": true}))
	assert.Equal(t, "T__", Fresh(map[string]bool{"T": true, "T_": true}))
}

func TestReferencedAndConflicts(t *testing.T) {
	s := &shape.TypeShape{
		Name:     "Box",
		Generics: generics(nil, "T"),
	}
	used := Referenced(s,
		shape.Named("T"),
		shape.SliceOf(shape.Named("S0")),
		shape.Qualified("time", "Duration"),
	)
	assert.Equal(t, map[string]bool{"S0": true}, used)

	src, err := Source(s.Generics)
	require.NoError(t, err)
	assert.Equal(t, []string{"S0"}, src.Conflicts(used))
}
