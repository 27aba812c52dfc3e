package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

const shapesYAML = `package: geo
imports:
  geo2: example.com/geo2
shapes:
  - name: Pair
    kind: tuple
    doc: Two values read by position.
    params: [A, {name: B, constraint: cmp.Ordered}]
    fields:
      - "struct{}"
      - A
      - "[]B"
  - name: View
    kind: record
    lifetimes: ["'a"]
    params: [T]
    fields:
      - name: Items
        type: "map[string]*Slice['a, T]"
      - name: Origin
        type: geo2.Point
  - name: Shape
    kind: sum
    params: [N]
    variants:
      - name: Circle
        fields:
          - {name: Radius, type: N}
      - name: Rect
        kind: tuple
        pointer: true
        fields: [N, N]
      - name: Empty
`

func TestParseShapesYAML(t *testing.T) {
	f, err := ParseShapes("shapes.yml", []byte(shapesYAML))
	require.NoError(t, err)

	assert.Equal(t, "geo", f.Package)
	assert.Equal(t, map[string]string{"geo2": "example.com/geo2"}, f.Imports)
	require.Len(t, f.Shapes, 3)

	pair := f.Shapes[0]
	assert.Equal(t, shape.TupleLike, pair.Kind)
	assert.Equal(t, "Two values read by position.", pair.Doc)
	require.Len(t, pair.Generics.Params, 2)
	assert.Nil(t, pair.Generics.Params[0].Constraint)
	assert.Equal(t, "cmp.Ordered", pair.Generics.Params[1].Constraint.String())
	require.Len(t, pair.Fields, 3)
	assert.Equal(t, shape.ExprMarker, pair.Fields[0].Type.Kind)
	assert.Equal(t, "F2", pair.Fields[2].Accessor(2))
	assert.Equal(t, shape.SourceLocation{File: "shapes.yml", Line: 5, Column: 5}, pair.Loc)

	view := f.Shapes[1]
	assert.Equal(t, []string{"a"}, view.Generics.Lifetimes)
	assert.Equal(t, "map[string]*Slice['a, T]", view.Fields[0].Type.String())
	assert.Equal(t, "geo2.Point", view.Fields[1].Type.String())
	assert.Equal(t, 18, view.Fields[0].Loc.Line)

	sum := f.Shapes[2]
	assert.Equal(t, shape.Sum, sum.Kind)
	require.Len(t, sum.Variants, 3)
	assert.Equal(t, shape.Record, sum.Variants[0].Kind)
	assert.Equal(t, shape.TupleLike, sum.Variants[1].Kind)
	assert.True(t, sum.Variants[1].Pointer)
	assert.Len(t, sum.Variants[1].Fields, 2)
	assert.Equal(t, shape.Unit, sum.Variants[2].Kind)
}

func TestParseShapesJSON(t *testing.T) {
	src := `{
  "package": "wire",
  "shapes": [
    {"name": "Msg", "kind": "record", "params": ["T"],
     "fields": [{"name": "Seq", "type": "uint64"}, {"name": "Body", "type": "T"}]}
  ]
}`
	f, err := ParseShapes("shapes.json", []byte(src))
	require.NoError(t, err)
	require.Len(t, f.Shapes, 1)
	assert.Equal(t, "wire", f.Package)
	assert.Equal(t, "Msg", f.Shapes[0].Name)
	assert.Equal(t, "T", f.Shapes[0].Fields[1].Type.String())
}

func TestParseShapesMultiDocument(t *testing.T) {
	src := `package: a
shapes:
  - {name: One, kind: unit}
---
package: b
shapes:
  - {name: Two, kind: unit}
`
	f, err := ParseShapes("multi.yaml", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "a", f.Package)
	require.Len(t, f.Shapes, 2)
	assert.Equal(t, "Two", f.Shapes[1].Name)
}

func TestParseShapesDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want errors.ErrorCode
		line int
	}{
		{
			name: "malformed document",
			src:  "shapes: [",
			want: errors.ErrParseFailed,
		},
		{
			name: "unknown kind",
			src:  "shapes:\n  - {name: X, kind: blob}\n",
			want: errors.ErrInvalidShape,
			line: 2,
		},
		{
			name: "missing name",
			src:  "shapes:\n  - {kind: unit}\n",
			want: errors.ErrInvalidShape,
			line: 2,
		},
		{
			name: "bad type",
			src:  "shapes:\n  - name: X\n    kind: record\n    fields:\n      - {name: A, type: \"map[int\"}\n",
			want: errors.ErrInvalidTypeSpec,
			line: 5,
		},
		{
			name: "unnamed record field",
			src:  "shapes:\n  - name: X\n    kind: record\n    fields: [int]\n",
			want: errors.ErrInvalidShape,
			line: 4,
		},
		{
			name: "fields on a unit",
			src:  "shapes:\n  - name: X\n    kind: unit\n    fields: [int]\n",
			want: errors.ErrInvalidShape,
		},
		{
			name: "nested sum",
			src:  "shapes:\n  - name: X\n    kind: sum\n    variants:\n      - {name: Y, kind: sum}\n",
			want: errors.ErrInvalidShape,
			line: 5,
		},
		{
			name: "unnamed omitted field",
			src:  "shapes:\n  - name: X\n    kind: tuple\n    fields:\n      - {omit: true}\n",
			want: errors.ErrInvalidShape,
			line: 5,
		},
		{
			name: "bad constraint",
			src:  "shapes:\n  - name: X\n    kind: unit\n    params: [{name: T, constraint: \"~\"}]\n",
			want: errors.ErrInvalidTypeSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseShapes("bad.yml", []byte(tt.src))
			list := diagnostics(t, err)
			require.NotEmpty(t, list)
			assert.Equal(t, tt.want, list[0].Code)
			if tt.line > 0 {
				assert.Equal(t, tt.line, list[0].Location.Line)
			}
		})
	}
}

func TestParseShapesOmittedField(t *testing.T) {
	src := `shapes:
  - name: Session
    kind: record
    fields:
      - {name: User, type: string}
      - {name: token, omit: true}
`
	f, err := ParseShapes("session.yml", []byte(src))
	require.NoError(t, err)
	require.Len(t, f.Shapes, 1)

	fields := f.Shapes[0].Fields
	require.Len(t, fields, 2)
	assert.False(t, fields[0].Omitted)
	assert.True(t, fields[1].Omitted)
	assert.Nil(t, fields[1].Type)
	assert.Len(t, f.Shapes[0].FieldExprs(), 1)
}
