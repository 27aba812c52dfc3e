package shape

import (
	"fmt"
	"strings"
)

// ExprKind identifies the form of a field type expression
type ExprKind int

const (
	// ExprNamed is a type name with optional package qualifier and arguments
	ExprNamed ExprKind = iota
	// ExprPointer is *Elem
	ExprPointer
	// ExprSlice is []Elem
	ExprSlice
	// ExprArray is [Len]Elem
	ExprArray
	// ExprMap is map[Key]Elem
	ExprMap
	// ExprLifetime is a lifetime placeholder such as 'a
	ExprLifetime
	// ExprMarker is the zero-sized struct{}
	ExprMarker
	// ExprUnion is a constraint union A | B, only valid in constraint position
	ExprUnion
)

// TypeExpr is a type expression as written in a field or constraint.
// Unqualified names (empty Package) may refer to type parameters; the
// renaming pass decides.
type TypeExpr struct {
	Kind    ExprKind
	Package string      // ExprNamed: package qualifier, empty if unqualified
	Name    string      // ExprNamed: type name; ExprLifetime: lifetime name without quote
	Args    []*TypeExpr // ExprNamed: type arguments (lifetimes first); ExprUnion: terms
	Len     int         // ExprArray
	Key     *TypeExpr   // ExprMap
	Elem    *TypeExpr   // ExprPointer, ExprSlice, ExprArray, ExprMap
	Tilde   bool        // approximation ~T in constraint position
}

// Named returns an unqualified named type.
func Named(name string, args ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprNamed, Name: name, Args: args}
}

// Qualified returns a package-qualified named type.
func Qualified(pkg, name string, args ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprNamed, Package: pkg, Name: name, Args: args}
}

// PointerTo returns *elem.
func PointerTo(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprPointer, Elem: elem}
}

// SliceOf returns []elem.
func SliceOf(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprSlice, Elem: elem}
}

// ArrayOf returns [n]elem.
func ArrayOf(n int, elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprArray, Len: n, Elem: elem}
}

// MapOf returns map[key]elem.
func MapOf(key, elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprMap, Key: key, Elem: elem}
}

// Lifetime returns the lifetime placeholder 'name.
func Lifetime(name string) *TypeExpr {
	return &TypeExpr{Kind: ExprLifetime, Name: name}
}

// Marker returns struct{}.
func Marker() *TypeExpr {
	return &TypeExpr{Kind: ExprMarker}
}

// Union returns the constraint union of terms.
func Union(terms ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprUnion, Args: terms}
}

// Approx returns ~e.
func Approx(e *TypeExpr) *TypeExpr {
	c := e.Clone()
	c.Tilde = true
	return c
}

// IsQualified reports whether e names a type from another package.
func (e *TypeExpr) IsQualified() bool {
	return e.Kind == ExprNamed && e.Package != ""
}

// TypeArgs returns the arguments of a named type with lifetimes removed.
func (e *TypeExpr) TypeArgs() []*TypeExpr {
	var out []*TypeExpr
	for _, a := range e.Args {
		if a.Kind != ExprLifetime {
			out = append(out, a)
		}
	}
	return out
}

// Clone returns a deep copy of e.
func (e *TypeExpr) Clone() *TypeExpr {
	if e == nil {
		return nil
	}
	c := *e
	if e.Args != nil {
		c.Args = make([]*TypeExpr, len(e.Args))
		for i, a := range e.Args {
			c.Args[i] = a.Clone()
		}
	}
	c.Key = e.Key.Clone()
	c.Elem = e.Elem.Clone()
	return &c
}

// Walk calls fn for e and then each nested expression, depth first. If fn
// returns false the children of that node are skipped.
func (e *TypeExpr) Walk(fn func(*TypeExpr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, a := range e.Args {
		a.Walk(fn)
	}
	e.Key.Walk(fn)
	e.Elem.Walk(fn)
}

// Equal reports whether two expressions are structurally identical.
func (e *TypeExpr) Equal(o *TypeExpr) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Kind != o.Kind || e.Package != o.Package || e.Name != o.Name ||
		e.Len != o.Len || e.Tilde != o.Tilde || len(e.Args) != len(o.Args) {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return e.Key.Equal(o.Key) && e.Elem.Equal(o.Elem)
}

// String renders e including lifetimes, in the notation shape files use.
func (e *TypeExpr) String() string {
	return e.render(true)
}

// Render renders e as Go source. Lifetimes are erased.
func (e *TypeExpr) Render() string {
	return e.render(false)
}

func (e *TypeExpr) render(lifetimes bool) string {
	if e == nil {
		return "<nil>"
	}
	prefix := ""
	if e.Tilde {
		prefix = "~"
	}
	switch e.Kind {
	case ExprNamed:
		name := e.Name
		if e.Package != "" {
			name = e.Package + "." + e.Name
		}
		args := e.Args
		if !lifetimes {
			args = e.TypeArgs()
		}
		if len(args) == 0 {
			return prefix + name
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.render(lifetimes)
		}
		return prefix + name + "[" + strings.Join(parts, ", ") + "]"
	case ExprPointer:
		return "*" + e.Elem.render(lifetimes)
	case ExprSlice:
		return "[]" + e.Elem.render(lifetimes)
	case ExprArray:
		return fmt.Sprintf("[%d]%s", e.Len, e.Elem.render(lifetimes))
	case ExprMap:
		return "map[" + e.Key.render(lifetimes) + "]" + e.Elem.render(lifetimes)
	case ExprLifetime:
		if !lifetimes {
			return ""
		}
		return "'" + e.Name
	case ExprMarker:
		return prefix + "struct{}"
	case ExprUnion:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.render(lifetimes)
		}
		return strings.Join(parts, " | ")
	default:
		return fmt.Sprintf("<expr %d>", int(e.Kind))
	}
}
