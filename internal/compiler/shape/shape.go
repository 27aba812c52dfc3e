// Package shape defines the structural model the roundtrip generator works on.
// A TypeShape describes one declared type: its kind (record, tuple-like, unit
// or sum), its fields or variants, and its generic parameters. Front ends
// build shapes; the generator only reads them.
package shape

import "fmt"

// SourceLocation tracks where a shape element was declared
type SourceLocation struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`   // Line number (1-indexed)
	Column int    `json:"column"` // Column number (1-indexed)
}

func (l SourceLocation) String() string {
	file := l.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Kind is the structural classification of a type or variant
type Kind int

const (
	// Record has named fields
	Record Kind = iota
	// TupleLike has positional fields
	TupleLike
	// Unit has no fields
	Unit
	// Sum is a closed set of variants. Only valid for a TypeShape.
	Sum
)

func (k Kind) String() string {
	switch k {
	case Record:
		return "record"
	case TupleLike:
		return "tuple"
	case Unit:
		return "unit"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts the textual kind used in shape files
func ParseKind(s string) (Kind, error) {
	switch s {
	case "record", "struct":
		return Record, nil
	case "tuple":
		return TupleLike, nil
	case "unit":
		return Unit, nil
	case "sum", "enum":
		return Sum, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

// TypeParam is a declared type parameter with its optional constraint
type TypeParam struct {
	Name       string
	Constraint *TypeExpr // nil when unconstrained
	Loc        SourceLocation
}

// Generics lists a type's lifetime placeholders and type parameters in
// declaration order. Go declarations never carry lifetimes; shape files may.
type Generics struct {
	Lifetimes []string
	Params    []*TypeParam
}

// Empty reports whether there are no lifetimes and no type parameters.
func (g Generics) Empty() bool {
	return len(g.Lifetimes) == 0 && len(g.Params) == 0
}

// Field is one field of a record, tuple-like type or variant
type Field struct {
	Name string // empty for tuple-like fields read positionally
	Type *TypeExpr
	// Omitted fields never reach the wire, so decoding leaves them zero.
	// Type may be nil.
	Omitted bool
	Loc     SourceLocation
}

// Accessor returns the Go selector used to read the field at index i.
func (f *Field) Accessor(i int) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("F%d", i)
}

// Variant is one alternative of a sum type
type Variant struct {
	Name    string
	Kind    Kind // Record, TupleLike or Unit
	Fields  []*Field
	Pointer bool // the variant implements the sum through a pointer receiver
	Loc     SourceLocation
}

// TypeShape is the full description of a declared type
type TypeShape struct {
	Name     string
	Kind     Kind
	Fields   []*Field   // Record and TupleLike
	Variants []*Variant // Sum
	Generics Generics
	Doc      string
	Loc      SourceLocation
}

// VariantType returns the Go type name of a sum variant.
func (s *TypeShape) VariantType(v *Variant) string {
	return s.Name + v.Name
}

// Marker returns the unexported method that seals a sum type.
func (s *TypeShape) Marker() string {
	return "is" + s.Name
}

// IsParam reports whether name is one of the shape's type parameters.
func (s *TypeShape) IsParam(name string) bool {
	for _, p := range s.Generics.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// FieldExprs returns the type expression of every encoded field in
// declaration order, including those of sum variants.
func (s *TypeShape) FieldExprs() []*TypeExpr {
	var out []*TypeExpr
	for _, f := range s.Fields {
		if !f.Omitted {
			out = append(out, f.Type)
		}
	}
	for _, v := range s.Variants {
		for _, f := range v.Fields {
			if !f.Omitted {
				out = append(out, f.Type)
			}
		}
	}
	return out
}

// HasOmitted reports whether any of fields is omitted.
func HasOmitted(fields []*Field) bool {
	for _, f := range fields {
		if f.Omitted {
			return true
		}
	}
	return false
}

// SelfRef reports whether e is the shape itself instantiated with its own
// parameters, in order.
func (s *TypeShape) SelfRef(e *TypeExpr) bool {
	if e == nil || e.Kind != ExprNamed || e.Package != "" || e.Name != s.Name {
		return false
	}
	args := e.TypeArgs()
	if len(args) != len(s.Generics.Params) {
		return false
	}
	for i, a := range args {
		if a.Kind != ExprNamed || a.Package != "" || len(a.Args) != 0 || a.Name != s.Generics.Params[i].Name {
			return false
		}
	}
	return true
}
