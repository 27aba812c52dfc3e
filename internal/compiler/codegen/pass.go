package codegen

import (
	"bytes"
	"fmt"

	"github.com/conduit-lang/roundtrip/internal/compiler/bounds"
	"github.com/conduit-lang/roundtrip/internal/compiler/rename"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// pass is one generation pass over one shape. It owns its identifier
// counter and the relations hoisted so far.
type pass struct {
	shape  *shape.TypeShape
	lib    string
	src    *rename.Namespace
	tgt    *rename.Namespace
	extra  string
	clause bounds.Clause

	names   *namer
	hoisted map[string]string // relation expression -> local name
	decls   []decl
}

type decl struct {
	name string
	expr string
}

// namer hands out f0, f1, ... within one pass.
type namer struct {
	prefix string
	next   int
}

func (n *namer) fresh() string {
	name := fmt.Sprintf("%s%d", n.prefix, n.next)
	n.next++
	return name
}

func newPass(s *shape.TypeShape, lib string) (*pass, error) {
	src, err := rename.Source(s.Generics)
	if err != nil {
		return nil, err
	}
	tgt, err := rename.Target(s.Generics)
	if err != nil {
		return nil, err
	}

	exprs := s.FieldExprs()
	for _, p := range s.Generics.Params {
		if p.Constraint != nil {
			exprs = append(exprs, p.Constraint)
		}
	}
	used := rename.Referenced(s, exprs...)
	used[s.Name] = true
	extra := rename.Fresh(used)

	return &pass{
		shape:   s,
		lib:     lib,
		src:     src,
		tgt:     tgt,
		extra:   extra,
		clause:  bounds.Synthesize(s, src, tgt, extra),
		names:   &namer{prefix: "f"},
		hoisted: make(map[string]string),
	}, nil
}

// hoist binds expr to a local and returns its name. Identical relations
// share one local.
func (p *pass) hoist(expr string) string {
	if name, ok := p.hoisted[expr]; ok {
		return name
	}
	name := p.names.fresh()
	p.hoisted[expr] = name
	p.decls = append(p.decls, decl{name: name, expr: expr})
	return name
}

// apply renders the call transforming access, a field of type e.
func (p *pass) apply(e *shape.TypeExpr, access string, loc shape.SourceLocation) (string, error) {
	if arg, ok := p.relationArg(e); ok {
		return fmt.Sprintf("%s.RoundTrip(%s)", arg, access), nil
	}
	if p.shape.SelfRef(e) {
		return fmt.Sprintf("self.RoundTrip(%s)", access), nil
	}
	expr, err := p.relationExpr(e, loc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.RoundTrip(%s)", p.hoist(expr), access), nil
}

// emit writes both generated functions for the shape into g.
func (p *pass) emit(g *Generator) error {
	s := p.shape
	lib := p.lib
	srcSelf := p.src.Instantiate(s.Name).Render()
	tgtSelf := p.tgt.Instantiate(s.Name).Render()

	body := &Generator{buf: &bytes.Buffer{}, indent: 1, opts: g.opts}
	var err error
	switch s.Kind {
	case shape.Sum:
		err = p.emitSum(body, srcSelf, tgtSelf)
	case shape.Unit:
		body.writeLine("self = func(%s) %s {", srcSelf, tgtSelf)
		body.writeLine("\treturn %s{}", tgtSelf)
		body.writeLine("}")
	default:
		err = p.emitStruct(body, srcSelf, tgtSelf)
	}
	if err != nil {
		return err
	}

	g.writeLine("// RoundTrip%s relates %s to any %s that decodes like %s.", s.Name, srcSelf, p.extra, tgtSelf)
	g.writeLine("func RoundTrip%s%s(%s) %s.Relation[%s, %s] {",
		s.Name, p.clause.TypeParams(lib), p.clause.Params(lib), lib, srcSelf, p.extra)
	g.indent++
	g.writeLine("var self %s.Func[%s, %s]", lib, srcSelf, tgtSelf)
	for _, d := range p.decls {
		g.writeLine("%s := %s", d.name, d.expr)
	}
	g.buf.Write(body.buf.Bytes())
	g.writeLine("return %s.Lifted[%s, %s, %s](self, %s)", lib, srcSelf, tgtSelf, p.extra, p.clause.Lift.Arg)
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	g.writeLine("// Same%s reports that %s decodes like itself.", s.Name, tgtSelf)
	g.writeLine("func Same%s%s() %s.Lift[%s, %s] {", s.Name, p.clause.TargetTypeParams(lib), lib, tgtSelf, tgtSelf)
	g.indent++
	g.writeLine("return %s.Identity[%s]()", lib, tgtSelf)
	g.indent--
	g.writeLine("}")

	if g.opts.Register && len(s.Generics.Params) == 0 && s.Kind != shape.Sum {
		g.writeLine("")
		g.writeLine("func init() {")
		g.indent++
		g.writeLine("%s.Register[%s, %s](%s.Default, RoundTrip%s[%s](Same%s()))",
			lib, tgtSelf, tgtSelf, lib, s.Name, tgtSelf, s.Name)
		g.indent--
		g.writeLine("}")
	}
	return nil
}

// emitStruct writes the closure of a record or tuple-like shape.
func (p *pass) emitStruct(body *Generator, srcSelf, tgtSelf string) error {
	lit, err := p.literal(tgtSelf, p.shape.Kind, p.shape.Fields, "v")
	if err != nil {
		return err
	}
	body.writeLine("self = func(v %s) %s {", srcSelf, tgtSelf)
	body.indent++
	writeReturn(body, "", lit)
	body.indent--
	body.writeLine("}")
	return nil
}

// emitSum writes the closure of a sum shape: a type switch with one case per
// variant in declaration order. A variant implementing the sum through a
// value receiver is also matched through a pointer, which keeps its form.
func (p *pass) emitSum(body *Generator, srcSelf, tgtSelf string) error {
	s := p.shape
	body.writeLine("self = func(v %s) %s {", srcSelf, tgtSelf)
	body.indent++
	body.writeLine("switch x := v.(type) {")
	for _, v := range s.Variants {
		name := s.VariantType(v)
		srcVariant := p.src.Instantiate(name).Render()
		tgtVariant := p.tgt.Instantiate(name).Render()

		lit, err := p.literal(tgtVariant, v.Kind, v.Fields, "x")
		if err != nil {
			return err
		}
		if !v.Pointer {
			body.writeLine("case %s:", srcVariant)
			body.indent++
			writeReturn(body, "", lit)
			body.indent--
		}
		body.writeLine("case *%s:", srcVariant)
		body.indent++
		body.writeLine("if x == nil {")
		body.writeLine("\treturn nil")
		body.writeLine("}")
		writeReturn(body, "&", lit)
		body.indent--
	}
	body.writeLine("}")
	body.writeLine("return nil")
	body.indent--
	body.writeLine("}")
	return nil
}

// literal renders the composite literal rebuilding fields from recv. Records
// use keyed elements; tuple-like types use positional elements in
// declaration order unless a field is omitted, which is left out of a keyed
// literal so it stays zero.
func (p *pass) literal(typ string, kind shape.Kind, fields []*shape.Field, recv string) ([]string, error) {
	if kind == shape.Unit || len(encoded(fields)) == 0 {
		return []string{typ + "{}"}, nil
	}
	keyed := kind != shape.TupleLike || shape.HasOmitted(fields)
	lines := []string{typ + "{"}
	for i, f := range fields {
		if f.Omitted {
			continue
		}
		access := recv + "." + f.Accessor(i)
		call, err := p.apply(f.Type, access, f.Loc)
		if err != nil {
			return nil, err
		}
		if keyed {
			lines = append(lines, "\t"+f.Accessor(i)+": "+call+",")
		} else {
			lines = append(lines, "\t"+call+",")
		}
	}
	lines = append(lines, "}")
	return lines, nil
}

func encoded(fields []*shape.Field) []*shape.Field {
	var out []*shape.Field
	for _, f := range fields {
		if !f.Omitted {
			out = append(out, f)
		}
	}
	return out
}

func writeReturn(g *Generator, prefix string, lit []string) {
	g.writeLine("return %s%s", prefix, lit[0])
	for _, l := range lit[1:] {
		g.writeLine("%s", l)
	}
}
