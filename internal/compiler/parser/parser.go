// Package parser turns declarations into type shapes. Two front ends are
// provided: Go source files, where types opt in with a derive directive in
// their doc comment, and shape files, YAML or JSON documents that describe
// shapes directly.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// DefaultDirective selects the type declarations a Go file derives relations for.
const DefaultDirective = "roundtrip:derive"

// File is everything a front end learned from one input.
type File struct {
	Path    string
	Package string
	// Imports maps package qualifiers to import paths
	Imports map[string]string
	Shapes  []*shape.TypeShape
}

// Options configure the front ends
type Options struct {
	// Directive is the comment text, without the leading //, that marks a
	// type for derivation
	Directive string
}

func (o Options) directive() string {
	if o.Directive == "" {
		return DefaultDirective
	}
	return strings.TrimPrefix(o.Directive, "//")
}

// IsShapeFile reports whether path names a shape file rather than Go source.
func IsShapeFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json":
		return true
	}
	return false
}

// ParseFile dispatches on the file extension. Diagnostics are returned as an
// errors.ErrorList; shapes that parsed cleanly are still returned alongside.
func ParseFile(path string, src []byte, opts Options) (*File, error) {
	switch {
	case strings.HasSuffix(path, ".go"):
		return ParseGo(path, src, opts)
	case IsShapeFile(path):
		return ParseShapes(path, src)
	}
	return nil, errors.ErrorList{errors.NewParseFailed(
		shape.SourceLocation{File: path},
		fmt.Sprintf("unknown input type %q", filepath.Ext(path)),
	)}
}
