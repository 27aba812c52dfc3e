// Package rename maps a type's generic parameters into the disjoint source
// and target namespaces used by generated relations.
//
// Lifetimes and type parameters are indexed separately and in declaration
// order: with prefixes "a" and "S", lifetimes become a0, a1, ... and type
// parameters S0, S1, .... Only unqualified references are renamed; a
// package-qualified name is never a parameter, though its arguments are
// still visited.
package rename

import (
	"fmt"

	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// Prefixes used for the two namespaces.
const (
	SourceLifetime = "a"
	SourceParam    = "S"
	TargetLifetime = "b"
	TargetParam    = "T"
)

// DuplicateError reports a generic parameter declared twice.
type DuplicateError struct {
	Name string
	Loc  shape.SourceLocation
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate generic parameter %q", e.Name)
}

// Namespace is a bijective renaming of one type's generic parameters.
type Namespace struct {
	lifetimes map[string]string
	params    map[string]string
	// renamed names in declaration order
	lifetimeNames []string
	paramNames    []string
}

// New builds a namespace for g using the given prefixes.
func New(g shape.Generics, lifetimePrefix, paramPrefix string) (*Namespace, error) {
	n := &Namespace{
		lifetimes: make(map[string]string, len(g.Lifetimes)),
		params:    make(map[string]string, len(g.Params)),
	}
	for i, lt := range g.Lifetimes {
		if _, dup := n.lifetimes[lt]; dup {
			return nil, &DuplicateError{Name: "'" + lt}
		}
		renamed := fmt.Sprintf("%s%d", lifetimePrefix, i)
		n.lifetimes[lt] = renamed
		n.lifetimeNames = append(n.lifetimeNames, renamed)
	}
	for i, p := range g.Params {
		if _, dup := n.params[p.Name]; dup {
			return nil, &DuplicateError{Name: p.Name, Loc: p.Loc}
		}
		renamed := fmt.Sprintf("%s%d", paramPrefix, i)
		n.params[p.Name] = renamed
		n.paramNames = append(n.paramNames, renamed)
	}
	return n, nil
}

// Source returns the source namespace (a<i>, S<i>) for g.
func Source(g shape.Generics) (*Namespace, error) {
	return New(g, SourceLifetime, SourceParam)
}

// Target returns the target namespace (b<i>, T<i>) for g.
func Target(g shape.Generics) (*Namespace, error) {
	return New(g, TargetLifetime, TargetParam)
}

// Param returns the renamed type parameter.
func (n *Namespace) Param(name string) (string, bool) {
	r, ok := n.params[name]
	return r, ok
}

// Lifetime returns the renamed lifetime.
func (n *Namespace) Lifetime(name string) (string, bool) {
	r, ok := n.lifetimes[name]
	return r, ok
}

// Params returns the renamed type parameters in declaration order.
func (n *Namespace) Params() []string {
	return append([]string(nil), n.paramNames...)
}

// Lifetimes returns the renamed lifetimes in declaration order.
func (n *Namespace) Lifetimes() []string {
	return append([]string(nil), n.lifetimeNames...)
}

// Args returns the namespace's parameters as type arguments, lifetimes
// first, suitable for instantiating the declared type.
func (n *Namespace) Args() []*shape.TypeExpr {
	args := make([]*shape.TypeExpr, 0, len(n.lifetimeNames)+len(n.paramNames))
	for _, lt := range n.lifetimeNames {
		args = append(args, shape.Lifetime(lt))
	}
	for _, p := range n.paramNames {
		args = append(args, shape.Named(p))
	}
	return args
}

// Instantiate returns name applied to this namespace's parameters.
func (n *Namespace) Instantiate(name string) *shape.TypeExpr {
	return shape.Named(name, n.Args()...)
}

// Apply returns a renamed copy of e. The input is left untouched.
func (n *Namespace) Apply(e *shape.TypeExpr) *shape.TypeExpr {
	out := e.Clone()
	out.Walk(func(x *shape.TypeExpr) bool {
		switch x.Kind {
		case shape.ExprLifetime:
			if r, ok := n.lifetimes[x.Name]; ok {
				x.Name = r
			}
		case shape.ExprNamed:
			if x.Package == "" && len(x.Args) == 0 {
				if r, ok := n.params[x.Name]; ok {
					x.Name = r
				}
			}
		}
		return true
	})
	return out
}

// Fresh returns the extra free type variable for a generated relation.
// It is "T" unless that collides with a name in used, in which case
// underscores are appended until it is free.
func Fresh(used map[string]bool) string {
	name := TargetParam
	for used[name] {
		name += "_"
	}
	return name
}

// Referenced collects every unqualified type name in exprs that is not one of
// the shape's own parameters.
func Referenced(s *shape.TypeShape, exprs ...*shape.TypeExpr) map[string]bool {
	used := make(map[string]bool)
	for _, e := range exprs {
		e.Walk(func(x *shape.TypeExpr) bool {
			if x.Kind == shape.ExprNamed && x.Package == "" && !s.IsParam(x.Name) {
				used[x.Name] = true
			}
			return true
		})
	}
	return used
}

// Conflicts returns the renamed parameters that would shadow a name in used.
func (n *Namespace) Conflicts(used map[string]bool) []string {
	var out []string
	for _, p := range n.paramNames {
		if used[p] {
			out = append(out, p)
		}
	}
	return out
}
