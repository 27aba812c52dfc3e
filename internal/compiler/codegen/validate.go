package codegen

import (
	stderrors "errors"
	"go/token"
	"regexp"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/rename"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
	"github.com/conduit-lang/roundtrip/pkg/roundtrip"
)

// locals are identifiers declared inside generated functions. A field type
// spelled the same way would be shadowed.
var locals = regexp.MustCompile(`^(self|lift|v|x|[rf][0-9]+)$`)

// Validate reports everything about s that would make generation fail or
// produce code that cannot compile for reasons unrelated to missing
// relations.
func Validate(s *shape.TypeShape) errors.ErrorList {
	var diags errors.ErrorList

	diags = append(diags, checkIdent(s.Loc, s.Name)...)
	if len(diags) > 0 {
		return diags
	}

	if _, err := rename.Source(s.Generics); err != nil {
		var dup *rename.DuplicateError
		if stderrors.As(err, &dup) {
			loc := dup.Loc
			if loc.Line == 0 {
				loc = s.Loc
			}
			diags = append(diags, errors.NewDuplicateParam(loc, s.Name, dup.Name))
		}
		return diags
	}
	for _, p := range s.Generics.Params {
		diags = append(diags, checkIdent(p.Loc, p.Name)...)
	}

	switch s.Kind {
	case shape.Record, shape.TupleLike, shape.Unit:
		diags = append(diags, checkFields(s, s.Name, s.Kind, s.Fields)...)
	case shape.Sum:
		if len(s.Variants) == 0 {
			diags = append(diags, errors.NewEmptySum(s.Loc, s.Name))
		}
		seen := make(map[string]bool)
		for _, v := range s.Variants {
			diags = append(diags, checkIdent(v.Loc, v.Name)...)
			if seen[v.Name] {
				diags = append(diags, errors.NewDuplicateField(v.Loc, s.Name, v.Name))
			}
			seen[v.Name] = true
			if v.Kind == shape.Sum {
				diags = append(diags, errors.NewUnsupportedFeature(v.Loc, "nested sum variant "+v.Name))
				continue
			}
			diags = append(diags, checkFields(s, s.VariantType(v), v.Kind, v.Fields)...)
		}
	default:
		diags = append(diags, errors.NewCodeGenFailed(s.Loc, "unknown kind "+s.Kind.String()))
	}

	diags = append(diags, checkConflicts(s)...)
	return diags
}

func checkIdent(loc shape.SourceLocation, name string) errors.ErrorList {
	switch {
	case name == "":
		return errors.ErrorList{errors.NewInvalidGoIdentifier(loc, name, "name is empty")}
	case token.IsKeyword(name):
		return errors.ErrorList{errors.NewGoReservedWord(loc, name)}
	case !token.IsIdentifier(name):
		return errors.ErrorList{errors.NewInvalidGoIdentifier(loc, name, "not an identifier")}
	case name == "_":
		return errors.ErrorList{errors.NewInvalidGoIdentifier(loc, name, "blank identifier cannot be read")}
	}
	return nil
}

func checkFields(s *shape.TypeShape, owner string, kind shape.Kind, fields []*shape.Field) errors.ErrorList {
	var diags errors.ErrorList
	seen := make(map[string]bool)
	for i, f := range fields {
		name := f.Accessor(i)
		if kind == shape.Record || f.Name != "" {
			diags = append(diags, checkIdent(f.Loc, f.Name)...)
		}
		if seen[name] {
			diags = append(diags, errors.NewDuplicateField(f.Loc, owner, name))
		}
		seen[name] = true

		if f.Omitted {
			continue
		}
		if f.Type == nil {
			diags = append(diags, errors.NewCodeGenFailed(f.Loc, "field "+name+" has no type"))
			continue
		}
		diags = append(diags, checkFieldType(f)...)
	}
	return diags
}

func checkFieldType(f *shape.Field) errors.ErrorList {
	var diags errors.ErrorList
	f.Type.Walk(func(x *shape.TypeExpr) bool {
		switch {
		case x.Kind == shape.ExprUnion:
			diags = append(diags, errors.NewUnsupportedFeature(f.Loc, x.String()))
			return false
		case x.Tilde:
			diags = append(diags, errors.NewUnsupportedFeature(f.Loc, x.String()))
		case x.Kind == shape.ExprArray && (x.Len < 0 || x.Len > roundtrip.MaxArrayLen):
			diags = append(diags, errors.NewArrayLength(f.Loc, x.Len, roundtrip.MaxArrayLen))
		case x.Kind == shape.ExprNamed && x.Name == "":
			diags = append(diags, errors.NewUnsupportedFeature(f.Loc, "unnamed type"))
		}
		return true
	})
	// Lifetimes may appear as arguments but never as a field's own type.
	if f.Type.Kind == shape.ExprLifetime {
		diags = append(diags, errors.NewUnsupportedFeature(f.Loc, f.Type.String()))
	}
	f.Type.Walk(func(x *shape.TypeExpr) bool {
		if x.Elem != nil && x.Elem.Kind == shape.ExprLifetime {
			diags = append(diags, errors.NewUnsupportedFeature(f.Loc, x.String()))
		}
		if x.Key != nil && x.Key.Kind == shape.ExprLifetime {
			diags = append(diags, errors.NewUnsupportedFeature(f.Loc, x.String()))
		}
		return true
	})
	return diags
}

// checkConflicts rejects referenced type names that generated identifiers
// would shadow.
func checkConflicts(s *shape.TypeShape) errors.ErrorList {
	var exprs []*shape.TypeExpr
	exprs = append(exprs, s.FieldExprs()...)
	for _, p := range s.Generics.Params {
		if p.Constraint != nil {
			exprs = append(exprs, p.Constraint)
		}
	}
	used := rename.Referenced(s, exprs...)

	src, err := rename.Source(s.Generics)
	if err != nil {
		return nil
	}
	tgt, err := rename.Target(s.Generics)
	if err != nil {
		return nil
	}

	var diags errors.ErrorList
	conflicts := append(src.Conflicts(used), tgt.Conflicts(used)...)
	for name := range used {
		if locals.MatchString(name) {
			conflicts = append(conflicts, name)
		}
	}
	for _, name := range sortStrings(conflicts) {
		diags = append(diags, errors.NewNameConflict(s.Loc, s.Name, name))
	}
	return diags
}
