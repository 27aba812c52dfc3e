// Package codegen generates round-trip relations from type shapes.
// For every shape it emits two functions: RoundTrip<Name>, which relates the
// type at source parameters to any type decoding like it at target
// parameters, and Same<Name>, the type's identity lift.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"strings"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// DefaultLibraryImport is the import path of the relation library.
const DefaultLibraryImport = "github.com/conduit-lang/roundtrip/pkg/roundtrip"

// Header starts every generated file.
const Header = "// Code generated by roundtrip-gen. DO NOT EDIT."

// Options control a generation run
type Options struct {
	// Package is the package clause of the generated file
	Package string
	// LibraryImport is the import path of the relation library
	LibraryImport string
	// LibraryName is the package name generated code refers to the library by
	LibraryName string
	// Register emits an init that adds zero-parameter types to the default registry
	Register bool
	// Imports maps package qualifiers used in field types to import paths
	Imports map[string]string
}

// DefaultOptions returns options for generating into package pkg.
func DefaultOptions(pkg string) Options {
	return Options{
		Package:       pkg,
		LibraryImport: DefaultLibraryImport,
		LibraryName:   "roundtrip",
	}
}

// wellKnown resolves qualifiers of standard packages that need no
// explicit import mapping.
var wellKnown = map[string]string{
	"time":  "time",
	"netip": "net/netip",
	"net":   "net",
	"json":  "encoding/json",
	"cmp":   "cmp",
}

// Generator transforms shapes into Go code
type Generator struct {
	buf     *bytes.Buffer
	indent  int
	imports map[string]string // path -> name
	opts    Options
}

// NewGenerator creates a new code generator
func NewGenerator(opts Options) *Generator {
	if opts.LibraryImport == "" {
		opts.LibraryImport = DefaultLibraryImport
	}
	if opts.LibraryName == "" {
		opts.LibraryName = path.Base(opts.LibraryImport)
	}
	return &Generator{
		buf:     &bytes.Buffer{},
		indent:  0,
		imports: make(map[string]string),
		opts:    opts,
	}
}

// GenerateFile generates a complete, gofmt'd Go file holding the relations of
// every shape, in order. Malformed shapes are reported as an errors.ErrorList.
func (g *Generator) GenerateFile(shapes []*shape.TypeShape) ([]byte, error) {
	g.reset()

	var diags errors.ErrorList
	for _, s := range shapes {
		diags = append(diags, Validate(s)...)
	}
	diags = append(diags, g.collectImports(shapes)...)
	if err := diags.Err(); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	for i, s := range shapes {
		code, err := g.GenerateShape(s)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(code)
	}

	g.buf.Reset()
	g.indent = 0
	g.writeLine(Header)
	g.writeLine("")
	g.writeLine("package %s", g.opts.Package)
	g.writeLine("")
	g.writeImports()
	g.writeLine("")
	g.buf.Write(body.Bytes())

	src, err := format.Source(g.buf.Bytes())
	if err != nil {
		loc := shape.SourceLocation{}
		if len(shapes) > 0 {
			loc = shapes[0].Loc
		}
		return nil, errors.ErrorList{errors.NewCodeGenFailed(loc, err.Error())}
	}
	return src, nil
}

// GenerateShape generates the unformatted relation code of one shape. Each
// call is an independent generation pass with its own identifier counter.
func (g *Generator) GenerateShape(s *shape.TypeShape) (string, error) {
	if diags := Validate(s); len(diags) > 0 {
		return "", diags
	}

	p, err := newPass(s, g.opts.LibraryName)
	if err != nil {
		return "", err
	}

	out := &Generator{buf: &bytes.Buffer{}, opts: g.opts}
	if err := p.emit(out); err != nil {
		return "", err
	}
	return out.buf.String(), nil
}

// reset clears the generator state
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]string)
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}

	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}

	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// collectImports resolves every package qualifier used by the shapes.
func (g *Generator) collectImports(shapes []*shape.TypeShape) errors.ErrorList {
	var diags errors.ErrorList
	g.imports[g.opts.LibraryImport] = g.opts.LibraryName

	for _, s := range shapes {
		for _, q := range qualifiers(s) {
			if q.name == g.opts.LibraryName {
				continue
			}
			p, ok := g.opts.Imports[q.name]
			if !ok {
				p, ok = wellKnown[q.name]
			}
			if !ok {
				diags = append(diags, errors.NewUnknownQualifier(q.loc, q.name))
				continue
			}
			g.imports[p] = q.name
		}
	}
	return diags
}

type qualifier struct {
	name string
	loc  shape.SourceLocation
}

// qualifiers lists the package qualifiers in a shape's field types and
// constraints, in order of first use.
func qualifiers(s *shape.TypeShape) []qualifier {
	var out []qualifier
	seen := make(map[string]bool)
	visit := func(e *shape.TypeExpr, loc shape.SourceLocation) {
		e.Walk(func(x *shape.TypeExpr) bool {
			if x.IsQualified() && !seen[x.Package] {
				seen[x.Package] = true
				out = append(out, qualifier{name: x.Package, loc: loc})
			}
			return true
		})
	}
	for _, p := range s.Generics.Params {
		visit(p.Constraint, p.Loc)
	}
	visitFields := func(fields []*shape.Field) {
		for _, f := range fields {
			if !f.Omitted {
				visit(f.Type, f.Loc)
			}
		}
	}
	visitFields(s.Fields)
	for _, v := range s.Variants {
		visitFields(v.Fields)
	}
	return out
}

// writeImports writes the import block
func (g *Generator) writeImports() {
	g.writeLine("import (")
	g.indent++

	// Sort imports: stdlib first, then external
	var stdlibImports []string
	var externalImports []string

	for imp := range g.imports {
		if strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
			externalImports = append(externalImports, imp)
		} else {
			stdlibImports = append(stdlibImports, imp)
		}
	}

	for _, imp := range sortStrings(stdlibImports) {
		g.writeImport(imp)
	}

	if len(stdlibImports) > 0 && len(externalImports) > 0 {
		g.writeLine("")
	}

	for _, imp := range sortStrings(externalImports) {
		g.writeImport(imp)
	}

	g.indent--
	g.writeLine(")")
}

func (g *Generator) writeImport(imp string) {
	name := g.imports[imp]
	if name != "" && name != path.Base(imp) {
		g.writeLine("%s %q", name, imp)
		return
	}
	g.writeLine("%q", imp)
}

// sortStrings returns a sorted copy of strs
func sortStrings(strs []string) []string {
	result := make([]string, len(strs))
	copy(result, strs)

	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i] > result[j] {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	return result
}
