package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// shapeFile is the document layout of a shape file:
//
//	package: geo
//	imports:
//	  netip: net/netip
//	shapes:
//	  - name: Pair
//	    kind: record
//	    params: [A, {name: B, constraint: cmp.Ordered}]
//	    fields:
//	      - {name: First, type: A}
//	      - {name: Rest, type: "[]B"}
type shapeFile struct {
	Package string            `yaml:"package"`
	Imports map[string]string `yaml:"imports"`
	Shapes  []shapeEntry      `yaml:"shapes"`
}

type position struct {
	line, column int
}

func (p position) at(file string) shape.SourceLocation {
	return shape.SourceLocation{File: file, Line: p.line, Column: p.column}
}

type shapeEntry struct {
	Name      string         `yaml:"name"`
	Kind      string         `yaml:"kind"`
	Doc       string         `yaml:"doc"`
	Lifetimes []string       `yaml:"lifetimes"`
	Params    []paramEntry   `yaml:"params"`
	Fields    []fieldEntry   `yaml:"fields"`
	Variants  []variantEntry `yaml:"variants"`
	pos       position
}

func (e *shapeEntry) UnmarshalYAML(node *yaml.Node) error {
	type alias shapeEntry
	if err := node.Decode((*alias)(e)); err != nil {
		return err
	}
	e.pos = position{node.Line, node.Column}
	return nil
}

// paramEntry accepts a bare name or a mapping with a constraint.
type paramEntry struct {
	Name       string `yaml:"name"`
	Constraint string `yaml:"constraint"`
	pos        position
}

func (e *paramEntry) UnmarshalYAML(node *yaml.Node) error {
	e.pos = position{node.Line, node.Column}
	if node.Kind == yaml.ScalarNode {
		e.Name = node.Value
		return nil
	}
	type alias paramEntry
	return node.Decode((*alias)(e))
}

// fieldEntry accepts a bare type, for tuple-like fields, or a mapping.
type fieldEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Omit bool   `yaml:"omit"`
	pos  position
}

func (e *fieldEntry) UnmarshalYAML(node *yaml.Node) error {
	e.pos = position{node.Line, node.Column}
	if node.Kind == yaml.ScalarNode {
		e.Type = node.Value
		return nil
	}
	type alias fieldEntry
	return node.Decode((*alias)(e))
}

type variantEntry struct {
	Name    string       `yaml:"name"`
	Kind    string       `yaml:"kind"`
	Pointer bool         `yaml:"pointer"`
	Fields  []fieldEntry `yaml:"fields"`
	pos     position
}

func (e *variantEntry) UnmarshalYAML(node *yaml.Node) error {
	type alias variantEntry
	if err := node.Decode((*alias)(e)); err != nil {
		return err
	}
	e.pos = position{node.Line, node.Column}
	return nil
}

// ParseShapes decodes a YAML or JSON shape file. Every document in a
// multi-document stream contributes shapes; the first package and the union
// of all imports apply to the file.
func ParseShapes(filename string, data []byte) (*File, error) {
	out := &File{Path: filename, Imports: make(map[string]string)}
	var diags errors.ErrorList

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc shapeFile
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ErrorList{errors.NewParseFailed(shape.SourceLocation{File: filename}, err.Error())}
		}
		if out.Package == "" {
			out.Package = doc.Package
		}
		for k, v := range doc.Imports {
			out.Imports[k] = v
		}
		for i := range doc.Shapes {
			s, d := convertShape(filename, &doc.Shapes[i])
			diags = append(diags, d...)
			if s != nil {
				out.Shapes = append(out.Shapes, s)
			}
		}
	}

	return out, diags.Err()
}

func convertShape(file string, e *shapeEntry) (*shape.TypeShape, errors.ErrorList) {
	loc := e.pos.at(file)
	if e.Name == "" {
		return nil, errors.ErrorList{errors.NewInvalidShape(loc, "<unnamed>", "missing name")}
	}
	kind, err := shape.ParseKind(e.Kind)
	if err != nil {
		return nil, errors.ErrorList{errors.NewInvalidShape(loc, e.Name, err.Error())}
	}

	var diags errors.ErrorList
	s := &shape.TypeShape{
		Name: e.Name,
		Kind: kind,
		Doc:  e.Doc,
		Loc:  loc,
	}
	for _, lt := range e.Lifetimes {
		s.Generics.Lifetimes = append(s.Generics.Lifetimes, strings.TrimPrefix(lt, "'"))
	}
	for _, p := range e.Params {
		tp := &shape.TypeParam{Name: p.Name, Loc: p.pos.at(file)}
		if p.Name == "" {
			diags = append(diags, errors.NewInvalidShape(tp.Loc, e.Name, "type parameter without a name"))
			continue
		}
		if p.Constraint != "" && p.Constraint != "any" {
			c, err := shape.ParseTypeExpr(p.Constraint)
			if err != nil {
				diags = append(diags, errors.NewInvalidTypeSpec(tp.Loc, p.Constraint, err.Error()))
				continue
			}
			tp.Constraint = c
		}
		s.Generics.Params = append(s.Generics.Params, tp)
	}

	switch kind {
	case shape.Sum:
		if len(e.Fields) > 0 {
			diags = append(diags, errors.NewInvalidShape(loc, e.Name, "a sum declares variants, not fields"))
		}
		for i := range e.Variants {
			v, d := convertVariant(file, e.Name, &e.Variants[i])
			diags = append(diags, d...)
			if v != nil {
				s.Variants = append(s.Variants, v)
			}
		}
	default:
		if len(e.Variants) > 0 {
			diags = append(diags, errors.NewInvalidShape(loc, e.Name, fmt.Sprintf("a %s has no variants", kind)))
		}
		fields, d := convertFields(file, e.Name, kind, e.Fields)
		diags = append(diags, d...)
		s.Fields = fields
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return s, nil
}

func convertVariant(file, owner string, e *variantEntry) (*shape.Variant, errors.ErrorList) {
	loc := e.pos.at(file)
	if e.Name == "" {
		return nil, errors.ErrorList{errors.NewInvalidShape(loc, owner, "variant without a name")}
	}
	kind := shape.Record
	if e.Kind != "" {
		k, err := shape.ParseKind(e.Kind)
		if err != nil {
			return nil, errors.ErrorList{errors.NewInvalidShape(loc, owner+e.Name, err.Error())}
		}
		kind = k
	} else if len(e.Fields) == 0 {
		kind = shape.Unit
	}
	if kind == shape.Sum {
		return nil, errors.ErrorList{errors.NewInvalidShape(loc, owner+e.Name, "variants cannot nest sums")}
	}

	fields, diags := convertFields(file, owner+e.Name, kind, e.Fields)
	if len(diags) > 0 {
		return nil, diags
	}
	return &shape.Variant{Name: e.Name, Kind: kind, Fields: fields, Pointer: e.Pointer, Loc: loc}, nil
}

func convertFields(file, owner string, kind shape.Kind, entries []fieldEntry) ([]*shape.Field, errors.ErrorList) {
	var diags errors.ErrorList
	if kind == shape.Unit && len(entries) > 0 {
		return nil, errors.ErrorList{errors.NewInvalidShape(entries[0].pos.at(file), owner, "a unit has no fields")}
	}

	fields := make([]*shape.Field, 0, len(entries))
	for _, fe := range entries {
		loc := fe.pos.at(file)
		if kind == shape.Record && fe.Name == "" {
			diags = append(diags, errors.NewInvalidShape(loc, owner, "record field without a name"))
			continue
		}
		if fe.Omit {
			if fe.Name == "" {
				diags = append(diags, errors.NewInvalidShape(loc, owner, "an omitted field needs a name"))
				continue
			}
			fields = append(fields, &shape.Field{Name: fe.Name, Omitted: true, Loc: loc})
			continue
		}
		typ, err := shape.ParseTypeExpr(fe.Type)
		if err != nil {
			diags = append(diags, errors.NewInvalidTypeSpec(loc, fe.Type, err.Error()))
			continue
		}
		fields = append(fields, &shape.Field{Name: fe.Name, Type: typ, Loc: loc})
	}
	return fields, diags
}
