package parser

import (
	stderrors "errors"
	goast "go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"path"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// tupleMarker is the field msgpack reads as the struct-level option holder.
const tupleMarker = "_msgpack"

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// goFile carries the state of one Go front-end run.
type goFile struct {
	fset      *token.FileSet
	file      *goast.File
	directive string
	diags     errors.ErrorList

	specs   []*goast.TypeSpec
	markers map[string]bool // "Type.method" -> pointer receiver
	methods map[string]bool // "Type.method" declared at all
}

// ParseGo parses Go source and returns the shapes of every type declaration
// carrying the derive directive.
func ParseGo(filename string, src []byte, opts Options) (*File, error) {
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, filename, src, goparser.ParseComments|goparser.SkipObjectResolution)
	if err != nil {
		loc := shape.SourceLocation{File: filename}
		var list scanner.ErrorList
		if stderrors.As(err, &list) && len(list) > 0 {
			loc = shape.SourceLocation{File: filename, Line: list[0].Pos.Line, Column: list[0].Pos.Column}
			err = list[0]
		}
		return nil, errors.ErrorList{errors.NewParseFailed(loc, err.Error())}
	}

	g := &goFile{
		fset:      fset,
		file:      f,
		directive: opts.directive(),
		markers:   make(map[string]bool),
		methods:   make(map[string]bool),
	}
	g.index()

	out := &File{
		Path:    filename,
		Package: f.Name.Name,
		Imports: imports(f),
	}

	attached := make(map[*goast.CommentGroup]bool)
	for _, decl := range f.Decls {
		gen, ok := decl.(*goast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*goast.TypeSpec)
			doc := ts.Doc
			if doc == nil && !gen.Lparen.IsValid() {
				doc = gen.Doc
			}
			if !g.hasDirective(doc) {
				continue
			}
			attached[doc] = true
			if s := g.shape(ts, doc); s != nil {
				out.Shapes = append(out.Shapes, s)
			}
		}
	}

	for _, cg := range f.Comments {
		if attached[cg] || !g.hasDirective(cg) {
			continue
		}
		g.diags = append(g.diags, errors.NewInvalidDirective(g.loc(cg.Pos()), "//"+g.directive,
			"is not attached to a type declaration"))
	}

	return out, g.diags.Err()
}

// index records every type spec and method in the file.
func (g *goFile) index() {
	for _, decl := range g.file.Decls {
		switch d := decl.(type) {
		case *goast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*goast.TypeSpec)
				g.specs = append(g.specs, ts)
			}
		case *goast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			recv, pointer := receiver(d.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			key := recv + "." + d.Name.Name
			g.methods[key] = true
			g.markers[key] = pointer
		}
	}
}

func receiver(e goast.Expr) (name string, pointer bool) {
	if star, ok := e.(*goast.StarExpr); ok {
		pointer = true
		e = star.X
	}
	switch x := e.(type) {
	case *goast.IndexExpr:
		e = x.X
	case *goast.IndexListExpr:
		e = x.X
	}
	if id, ok := e.(*goast.Ident); ok {
		return id.Name, pointer
	}
	return "", false
}

func (g *goFile) hasDirective(cg *goast.CommentGroup) bool {
	if cg == nil {
		return false
	}
	for _, c := range cg.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if text == g.directive || strings.HasPrefix(text, g.directive+" ") {
			return true
		}
	}
	return false
}

func (g *goFile) loc(pos token.Pos) shape.SourceLocation {
	p := g.fset.Position(pos)
	return shape.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

func (g *goFile) unsupported(e goast.Expr, context string) {
	g.diags = append(g.diags, errors.NewUnsupportedType(g.loc(e.Pos()), types.ExprString(e), context))
}

// shape converts one annotated type spec. It returns nil after recording a
// diagnostic when the declaration cannot be described.
func (g *goFile) shape(ts *goast.TypeSpec, doc *goast.CommentGroup) *shape.TypeShape {
	name := ts.Name.Name
	if ts.Assign.IsValid() {
		g.diags = append(g.diags, errors.NewInvalidDirective(g.loc(ts.Pos()), "//"+g.directive,
			"cannot be applied to alias "+name))
		return nil
	}

	before := len(g.diags)
	s := &shape.TypeShape{
		Name:     name,
		Generics: g.generics(ts.TypeParams),
		Doc:      strings.TrimSpace(doc.Text()),
		Loc:      g.loc(ts.Name.Pos()),
	}

	switch t := ts.Type.(type) {
	case *goast.StructType:
		s.Kind, s.Fields = g.structShape(t, name)
	case *goast.InterfaceType:
		s.Kind = shape.Sum
		s.Variants = g.variants(s)
	default:
		g.unsupported(ts.Type, "declaration of "+name+"; only struct and interface types are derived")
	}

	if len(g.diags) > before {
		return nil
	}
	return s
}

func (g *goFile) generics(list *goast.FieldList) shape.Generics {
	var out shape.Generics
	if list == nil {
		return out
	}
	for _, field := range list.List {
		constraint := g.constraint(field.Type)
		for _, n := range field.Names {
			tp := &shape.TypeParam{Name: n.Name, Loc: g.loc(n.Pos())}
			if constraint != nil {
				tp.Constraint = constraint.Clone()
			}
			out.Params = append(out.Params, tp)
		}
	}
	return out
}

// constraint converts a type parameter constraint. Unconstrained parameters
// (any, interface{}) yield nil.
func (g *goFile) constraint(e goast.Expr) *shape.TypeExpr {
	switch x := e.(type) {
	case *goast.Ident:
		if x.Name == "any" {
			return nil
		}
	case *goast.InterfaceType:
		if len(x.Methods.List) == 0 {
			return nil
		}
		if len(x.Methods.List) == 1 && len(x.Methods.List[0].Names) == 0 {
			return g.constraint(x.Methods.List[0].Type)
		}
		g.unsupported(e, "constraint")
		return nil
	case *goast.BinaryExpr:
		if x.Op == token.OR {
			left, right := g.constraint(x.X), g.constraint(x.Y)
			if left == nil || right == nil {
				return nil
			}
			var terms []*shape.TypeExpr
			for _, side := range []*shape.TypeExpr{left, right} {
				if side.Kind == shape.ExprUnion {
					terms = append(terms, side.Args...)
				} else {
					terms = append(terms, side)
				}
			}
			return shape.Union(terms...)
		}
	case *goast.UnaryExpr:
		if x.Op == token.TILDE {
			inner := g.typeExpr(x.X, "constraint")
			if inner == nil {
				return nil
			}
			return shape.Approx(inner)
		}
	}
	return g.typeExpr(e, "constraint")
}

// structShape classifies a struct: no fields is Unit, a msgpack as_array
// marker makes it TupleLike, anything else is a Record. Fields neither codec
// encodes are recorded as omitted and their types are not read.
func (g *goFile) structShape(st *goast.StructType, owner string) (shape.Kind, []*shape.Field) {
	if st.Fields == nil || len(st.Fields.List) == 0 {
		return shape.Unit, nil
	}

	kind := shape.Record
	var fields []*shape.Field
	for _, f := range st.Fields.List {
		tag := structTag(f.Tag)
		skipped := g.skippedByTag(tag, f, owner)

		var typ *shape.TypeExpr
		read := false
		typeOf := func() *shape.TypeExpr {
			if !read {
				read = true
				typ = g.typeExpr(f.Type, "field of "+owner)
				return typ
			}
			if typ == nil {
				return nil
			}
			return typ.Clone()
		}

		if len(f.Names) == 0 {
			field := &shape.Field{Name: embeddedName(f.Type), Omitted: skipped, Loc: g.loc(f.Pos())}
			if !skipped {
				field.Type = typeOf()
			}
			fields = append(fields, field)
			continue
		}
		for _, n := range f.Names {
			if n.Name == tupleMarker {
				if hasOption(tag.Get("msgpack"), "as_array") {
					kind = shape.TupleLike
				}
				fields = append(fields, &shape.Field{Name: n.Name, Type: typeOf(), Loc: g.loc(n.Pos())})
				continue
			}
			if skipped || !goast.IsExported(n.Name) {
				fields = append(fields, &shape.Field{Name: n.Name, Omitted: true, Loc: g.loc(n.Pos())})
				continue
			}
			fields = append(fields, &shape.Field{Name: n.Name, Type: typeOf(), Loc: g.loc(n.Pos())})
		}
	}
	return kind, fields
}

// skippedByTag reports whether both codecs skip the field. A field only one
// of them skips cannot decode the same way through both and is reported.
func (g *goFile) skippedByTag(tag reflect.StructTag, f *goast.Field, owner string) bool {
	jsonSkip := tag.Get("json") == "-"
	msgpackSkip := strings.Split(tag.Get("msgpack"), ",")[0] == "-"
	encoded := len(f.Names) == 0
	for _, n := range f.Names {
		if goast.IsExported(n.Name) {
			encoded = true
		}
	}
	if jsonSkip != msgpackSkip && encoded {
		name := embeddedName(f.Type)
		if len(f.Names) > 0 {
			name = f.Names[0].Name
		}
		codec, other := "json", "msgpack"
		if msgpackSkip {
			codec, other = "msgpack", "json"
		}
		g.diags = append(g.diags, errors.NewPartialOmit(g.loc(f.Pos()), owner, name, codec, other))
	}
	return jsonSkip && msgpackSkip
}

func structTag(lit *goast.BasicLit) reflect.StructTag {
	if lit == nil {
		return ""
	}
	raw, err := strconv.Unquote(lit.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(raw)
}

func hasOption(tag, option string) bool {
	for _, opt := range strings.Split(tag, ",")[1:] {
		if opt == option {
			return true
		}
	}
	return false
}

func embeddedName(e goast.Expr) string {
	for {
		switch x := e.(type) {
		case *goast.StarExpr:
			e = x.X
		case *goast.IndexExpr:
			e = x.X
		case *goast.IndexListExpr:
			e = x.X
		case *goast.SelectorExpr:
			return x.Sel.Name
		case *goast.Ident:
			return x.Name
		default:
			return ""
		}
	}
}

// variants finds the types named <Sum><Variant> that declare the sum's
// marker method, in declaration order.
func (g *goFile) variants(s *shape.TypeShape) []*shape.Variant {
	var out []*shape.Variant
	marker := s.Marker()
	for _, ts := range g.specs {
		name := ts.Name.Name
		if len(name) <= len(s.Name) || !strings.HasPrefix(name, s.Name) {
			continue
		}
		key := name + "." + marker
		if !g.methods[key] {
			continue
		}

		st, ok := ts.Type.(*goast.StructType)
		if !ok {
			g.unsupported(ts.Type, "variant "+name+" of "+s.Name)
			continue
		}
		v := &shape.Variant{
			Name:    strings.TrimPrefix(name, s.Name),
			Pointer: g.markers[key],
			Loc:     g.loc(ts.Name.Pos()),
		}
		v.Kind, v.Fields = g.structShape(st, name)

		vg := g.generics(ts.TypeParams)
		if len(vg.Params) != len(s.Generics.Params) {
			g.diags = append(g.diags, errors.NewInvalidShape(v.Loc, name,
				"a variant must declare the same type parameters as "+s.Name))
			continue
		}
		rename := make(map[string]string, len(vg.Params))
		for i, p := range vg.Params {
			rename[p.Name] = s.Generics.Params[i].Name
		}
		for _, f := range v.Fields {
			f.Type = substitute(f.Type, rename)
		}
		out = append(out, v)
	}
	return out
}

// substitute renames unqualified references to variant parameters into the
// sum's parameter names.
func substitute(e *shape.TypeExpr, names map[string]string) *shape.TypeExpr {
	if e == nil {
		return nil
	}
	out := e.Clone()
	out.Walk(func(x *shape.TypeExpr) bool {
		if x.Kind == shape.ExprNamed && x.Package == "" && len(x.Args) == 0 {
			if to, ok := names[x.Name]; ok {
				x.Name = to
			}
		}
		return true
	})
	return out
}

// typeExpr converts a Go type expression. Unsupported forms are recorded as
// diagnostics and yield nil.
func (g *goFile) typeExpr(e goast.Expr, context string) *shape.TypeExpr {
	switch x := e.(type) {
	case *goast.Ident:
		if x.Name == "any" || x.Name == "error" {
			g.unsupported(e, context)
			return nil
		}
		return shape.Named(x.Name)

	case *goast.SelectorExpr:
		pkg, ok := x.X.(*goast.Ident)
		if !ok {
			g.unsupported(e, context)
			return nil
		}
		return shape.Qualified(pkg.Name, x.Sel.Name)

	case *goast.ParenExpr:
		return g.typeExpr(x.X, context)

	case *goast.StarExpr:
		elem := g.typeExpr(x.X, context)
		if elem == nil {
			return nil
		}
		return shape.PointerTo(elem)

	case *goast.ArrayType:
		elem := g.typeExpr(x.Elt, context)
		if elem == nil {
			return nil
		}
		if x.Len == nil {
			return shape.SliceOf(elem)
		}
		lit, ok := x.Len.(*goast.BasicLit)
		if !ok || lit.Kind != token.INT {
			g.unsupported(e, context+"; array length must be an integer literal")
			return nil
		}
		n, err := strconv.ParseInt(lit.Value, 0, 64)
		if err != nil {
			g.unsupported(e, context)
			return nil
		}
		return shape.ArrayOf(int(n), elem)

	case *goast.MapType:
		key := g.typeExpr(x.Key, context)
		val := g.typeExpr(x.Value, context)
		if key == nil || val == nil {
			return nil
		}
		return shape.MapOf(key, val)

	case *goast.IndexExpr:
		return g.instance(x.X, []goast.Expr{x.Index}, context)

	case *goast.IndexListExpr:
		return g.instance(x.X, x.Indices, context)

	case *goast.StructType:
		if x.Fields == nil || len(x.Fields.List) == 0 {
			return shape.Marker()
		}
	}

	g.unsupported(e, context)
	return nil
}

func (g *goFile) instance(base goast.Expr, indices []goast.Expr, context string) *shape.TypeExpr {
	named := g.typeExpr(base, context)
	if named == nil {
		return nil
	}
	if named.Kind != shape.ExprNamed || len(named.Args) > 0 {
		g.unsupported(base, context)
		return nil
	}
	for _, idx := range indices {
		arg := g.typeExpr(idx, context)
		if arg == nil {
			return nil
		}
		named.Args = append(named.Args, arg)
	}
	return named
}

// imports maps each import's qualifier to its path.
func imports(f *goast.File) map[string]string {
	out := make(map[string]string)
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		var name string
		if spec.Name != nil {
			name = spec.Name.Name
		} else {
			name = ImportName(p)
		}
		if name == "_" || name == "." {
			continue
		}
		out[name] = p
	}
	return out
}

// ImportName guesses the package name of an unaliased import: the last path
// element, skipping a major version suffix.
func ImportName(p string) string {
	base := path.Base(p)
	if majorVersion.MatchString(base) {
		if dir := path.Dir(p); dir != "." {
			base = path.Base(dir)
		}
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.ReplaceAll(base, "-", "_")
}
