package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
	"github.com/conduit-lang/roundtrip/pkg/roundtrip"
)

// basic are the predeclared types relating to themselves by copy.
var basic = map[string]bool{
	"bool": true, "byte": true, "rune": true, "uintptr": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// leafRelation names the library constructor for a qualified leaf type.
type leafRelation int

const (
	leafCopy leafRelation = iota
	leafBytes
)

// leaves are well-known qualified types with a fixed relation.
var leaves = map[string]leafRelation{
	"time.Duration":   leafCopy,
	"time.Time":       leafCopy,
	"netip.Addr":      leafCopy,
	"netip.AddrPort":  leafCopy,
	"netip.Prefix":    leafCopy,
	"net.IP":          leafBytes,
	"json.RawMessage": leafBytes,
}

// containers maps library container types to their combinator and arity.
var containers = map[string]struct {
	combinator string
	arity      int
}{
	"Option":    {"OptionOf", 1},
	"Either":    {"EitherOf", 2},
	"Cow":       {"CowOf", 1},
	"SortedSet": {"SortedSetOf", 1},
	"SortedMap": {"SortedMapOf", 2},
	"Heap":      {"HeapOf", 1},
}

// relationExpr renders the Go expression of the relation for e, which is
// written in the shape's original parameter names. loc is used for
// diagnostics.
func (p *pass) relationExpr(e *shape.TypeExpr, loc shape.SourceLocation) (string, error) {
	lib := p.lib

	switch e.Kind {
	case shape.ExprMarker:
		return fmt.Sprintf("%s.Marker[struct{}, struct{}]()", lib), nil

	case shape.ExprPointer:
		elem, err := p.relationExpr(e.Elem, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.Pointer[%s, %s](%s)", lib, p.source(e.Elem), p.target(e.Elem), elem), nil

	case shape.ExprSlice:
		if p.isByte(e.Elem) {
			return fmt.Sprintf("%s.Bytes[%s, %s]()", lib, p.source(e), p.target(e)), nil
		}
		elem, err := p.relationExpr(e.Elem, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.Slice[%s, %s](%s)", lib, p.source(e.Elem), p.target(e.Elem), elem), nil

	case shape.ExprArray:
		if e.Len > roundtrip.MaxArrayLen {
			return "", errors.ErrorList{errors.NewArrayLength(loc, e.Len, roundtrip.MaxArrayLen)}
		}
		elem, err := p.relationExpr(e.Elem, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.MustArray[%s, %s, %s, %s](%s)", lib,
			p.source(e), p.target(e), p.source(e.Elem), p.target(e.Elem), elem), nil

	case shape.ExprMap:
		key, err := p.relationExpr(e.Key, loc)
		if err != nil {
			return "", err
		}
		val, err := p.relationExpr(e.Elem, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.Map[%s, %s, %s, %s](%s, %s)", lib,
			p.source(e.Key), p.target(e.Key), p.source(e.Elem), p.target(e.Elem), key, val), nil

	case shape.ExprNamed:
		return p.namedRelation(e, loc)
	}

	return "", errors.ErrorList{errors.NewUnsupportedFeature(loc, e.String())}
}

func (p *pass) namedRelation(e *shape.TypeExpr, loc shape.SourceLocation) (string, error) {
	lib := p.lib
	args := e.TypeArgs()

	if e.Package == "" {
		if arg, ok := p.relationArg(e); ok {
			return arg, nil
		}
		if p.shape.SelfRef(e) {
			return "&self", nil
		}
		if basic[e.Name] && len(args) == 0 {
			return fmt.Sprintf("%s.Copy[%s]()", lib, e.Name), nil
		}
		if e.Name == "string" && len(args) == 0 {
			return fmt.Sprintf("%s.String[string, string]()", lib), nil
		}
	}

	if e.Package == lib {
		if c, ok := containers[e.Name]; ok {
			if len(args) != c.arity {
				return "", errors.ErrorList{errors.NewUnsupportedFeature(loc,
					fmt.Sprintf("%s with %d type arguments", e.String(), len(args)))}
			}
			return p.call(lib+"."+c.combinator, args, loc)
		}
	}

	if leaf, ok := leaves[e.Package+"."+e.Name]; ok && len(args) == 0 {
		t := e.Render()
		switch leaf {
		case leafBytes:
			return fmt.Sprintf("%s.Bytes[%s, %s]()", lib, t, t), nil
		default:
			return fmt.Sprintf("%s.Copy[%s]()", lib, t), nil
		}
	}

	// Any other named type relates through its own generated function.
	fn := "RoundTrip" + e.Name
	if e.Package != "" {
		fn = e.Package + "." + fn
	}
	target := p.target(e)

	typeArgs := make([]string, 0, 2*len(args)+1)
	for _, a := range args {
		typeArgs = append(typeArgs, p.source(a))
	}
	for _, a := range args {
		typeArgs = append(typeArgs, p.target(a))
	}
	typeArgs = append(typeArgs, target)

	rels := make([]string, 0, len(args)+1)
	for _, a := range args {
		r, err := p.relationExpr(a, loc)
		if err != nil {
			return "", err
		}
		rels = append(rels, r)
	}
	rels = append(rels, fmt.Sprintf("%s.Identity[%s]()", lib, target))

	return fmt.Sprintf("%s[%s](%s)", fn, strings.Join(typeArgs, ", "), strings.Join(rels, ", ")), nil
}

// call renders a library combinator whose type arguments are the source and
// target of each argument, interleaved, and whose value arguments are their
// relations.
func (p *pass) call(fn string, args []*shape.TypeExpr, loc shape.SourceLocation) (string, error) {
	typeArgs := make([]string, 0, 2*len(args))
	rels := make([]string, 0, len(args))
	for _, a := range args {
		r, err := p.relationExpr(a, loc)
		if err != nil {
			return "", err
		}
		typeArgs = append(typeArgs, p.source(a), p.target(a))
		rels = append(rels, r)
	}
	return fmt.Sprintf("%s[%s](%s)", fn, strings.Join(typeArgs, ", "), strings.Join(rels, ", ")), nil
}

// relationArg returns the relation argument for a bare type parameter.
func (p *pass) relationArg(e *shape.TypeExpr) (string, bool) {
	if e.Kind != shape.ExprNamed || e.Package != "" || len(e.Args) != 0 {
		return "", false
	}
	sp, ok := p.src.Param(e.Name)
	if !ok {
		return "", false
	}
	r, ok := p.clause.Relation(sp)
	return r.Arg, ok
}

func (p *pass) isByte(e *shape.TypeExpr) bool {
	return e.Kind == shape.ExprNamed && e.Package == "" && len(e.Args) == 0 &&
		(e.Name == "byte" || e.Name == "uint8") && !p.shape.IsParam(e.Name)
}

// source renders e in the source namespace.
func (p *pass) source(e *shape.TypeExpr) string {
	return p.src.Apply(e).Render()
}

// target renders e in the target namespace.
func (p *pass) target(e *shape.TypeExpr) string {
	return p.tgt.Apply(e).Render()
}
