// Package bounds synthesizes the constraints a generated relation needs.
//
// For every declared type parameter P with source name S<i> and target name
// T<i> there are three requirements: S<i> relates to T<i> (passed as a
// relation argument r<i>), S<i> satisfies P's own constraint, and T<i>
// satisfies P's own constraint or, when it has none, can be decoded. One more
// requirement links the free result variable to the declared type
// instantiated at the target parameters (the lift argument). A type without
// parameters needs only that last one.
package bounds

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/roundtrip/internal/compiler/rename"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// Bound constrains one renamed type parameter.
type Bound struct {
	Param      string
	Constraint *shape.TypeExpr // nil when the namespace default applies
}

// RelationBound states that Source relates to Target through argument Arg.
type RelationBound struct {
	Arg    string
	Source string
	Target string
}

// LiftBound states that Var decodes like Self, through argument Arg.
type LiftBound struct {
	Arg  string
	Self *shape.TypeExpr
	Var  string
}

// Clause is the full constraint set for one generated relation.
type Clause struct {
	Source    []Bound
	Target    []Bound
	Relations []RelationBound
	Lift      LiftBound
}

// Synthesize builds the clause for s. src and tgt must be namespaces built
// from s.Generics; extra is the free result variable.
func Synthesize(s *shape.TypeShape, src, tgt *rename.Namespace, extra string) Clause {
	c := Clause{
		Lift: LiftBound{
			Arg:  "lift",
			Self: tgt.Instantiate(s.Name),
			Var:  extra,
		},
	}
	for i, p := range s.Generics.Params {
		sp, _ := src.Param(p.Name)
		tp, _ := tgt.Param(p.Name)

		var sc, tc *shape.TypeExpr
		if p.Constraint != nil {
			sc = src.Apply(p.Constraint)
			tc = tgt.Apply(p.Constraint)
		}
		c.Source = append(c.Source, Bound{Param: sp, Constraint: sc})
		c.Target = append(c.Target, Bound{Param: tp, Constraint: tc})
		c.Relations = append(c.Relations, RelationBound{
			Arg:    fmt.Sprintf("r%d", i),
			Source: sp,
			Target: tp,
		})
	}
	return c
}

// LiftOnly reports whether the clause has nothing but the lift bound.
func (c Clause) LiftOnly() bool {
	return len(c.Relations) == 0
}

// TypeParams renders the Go type parameter list, source parameters first,
// then target parameters, then the free variable. lib is the package name the
// relation library is imported under.
func (c Clause) TypeParams(lib string) string {
	parts := make([]string, 0, len(c.Source)+len(c.Target)+1)
	for _, b := range c.Source {
		parts = append(parts, b.Param+" "+constraint(b.Constraint, "any"))
	}
	for _, b := range c.Target {
		parts = append(parts, b.Param+" "+constraint(b.Constraint, lib+".Decodable"))
	}
	parts = append(parts, c.Lift.Var+" any")
	return "[" + strings.Join(parts, ", ") + "]"
}

// TargetTypeParams renders the type parameter list of the identity lift,
// which only mentions the target namespace.
func (c Clause) TargetTypeParams(lib string) string {
	if len(c.Target) == 0 {
		return ""
	}
	parts := make([]string, len(c.Target))
	for i, b := range c.Target {
		parts[i] = b.Param + " " + constraint(b.Constraint, lib+".Decodable")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Params renders the function parameter list: one relation per type
// parameter, then the lift.
func (c Clause) Params(lib string) string {
	parts := make([]string, 0, len(c.Relations)+1)
	for _, r := range c.Relations {
		parts = append(parts, fmt.Sprintf("%s %s.Relation[%s, %s]", r.Arg, lib, r.Source, r.Target))
	}
	parts = append(parts, fmt.Sprintf("%s %s.Lift[%s, %s]", c.Lift.Arg, lib, c.Lift.Self.Render(), c.Lift.Var))
	return strings.Join(parts, ", ")
}

// Relation returns the relation argument for a renamed source parameter.
func (c Clause) Relation(source string) (RelationBound, bool) {
	for _, r := range c.Relations {
		if r.Source == source {
			return r, true
		}
	}
	return RelationBound{}, false
}

func constraint(e *shape.TypeExpr, fallback string) string {
	if e == nil {
		return fallback
	}
	return e.Render()
}
