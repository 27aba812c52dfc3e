package errors

import (
	"fmt"

	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// Front-end error codes (SYN001-099)
const (
	// ErrParseFailed indicates the input could not be parsed at all
	ErrParseFailed ErrorCode = "SYN001"
	// ErrUnsupportedType indicates a declaration form the front end cannot describe
	ErrUnsupportedType ErrorCode = "SYN002"
	// ErrInvalidDirective indicates a derive directive in the wrong place
	ErrInvalidDirective ErrorCode = "SYN003"
	// ErrInvalidShape indicates a malformed shape file entry
	ErrInvalidShape ErrorCode = "SYN004"
	// ErrInvalidTypeSpec indicates an invalid type expression
	ErrInvalidTypeSpec ErrorCode = "SYN005"
	// ErrPartialOmit indicates a field that one codec skips and the other encodes
	ErrPartialOmit ErrorCode = "SYN006"
)

// NewParseFailed creates a SYN001 error
func NewParseFailed(loc shape.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrParseFailed,
		"parse_failed",
		CategorySyntax,
		fmt.Sprintf("Could not parse input: %s", reason),
		loc,
	)
}

// NewUnsupportedType creates a SYN002 error
func NewUnsupportedType(loc shape.SourceLocation, found, context string) *CompilerError {
	message := fmt.Sprintf("Unsupported type '%s'", found)
	if context != "" {
		message = fmt.Sprintf("Unsupported type '%s' in %s", found, context)
	}

	return newError(
		ErrUnsupportedType,
		"unsupported_type",
		CategorySyntax,
		message,
		loc,
	).WithSuggestion("Function, channel and interface literal types have no encoded form")
}

// NewInvalidDirective creates a SYN003 error
func NewInvalidDirective(loc shape.SourceLocation, directive, reason string) *CompilerError {
	return newError(
		ErrInvalidDirective,
		"invalid_directive",
		CategorySyntax,
		fmt.Sprintf("Directive '%s' %s", directive, reason),
		loc,
	).WithSuggestion("Place the directive in the doc comment of a type declaration").
		WithExamples("//roundtrip:derive\ntype Point struct { X, Y int }")
}

// NewInvalidShape creates a SYN004 error
func NewInvalidShape(loc shape.SourceLocation, name, reason string) *CompilerError {
	return newError(
		ErrInvalidShape,
		"invalid_shape",
		CategorySyntax,
		fmt.Sprintf("Invalid shape '%s': %s", name, reason),
		loc,
	)
}

// NewInvalidTypeSpec creates a SYN005 error
func NewInvalidTypeSpec(loc shape.SourceLocation, spec, reason string) *CompilerError {
	return newError(
		ErrInvalidTypeSpec,
		"invalid_type_spec",
		CategorySyntax,
		fmt.Sprintf("Invalid type expression '%s': %s", spec, reason),
		loc,
	).WithExpected("Go type syntax, e.g. []T, *T, [4]T, map[K]V, pkg.Name[A, B]").
		WithActual(spec)
}

// NewPartialOmit creates a SYN006 error
func NewPartialOmit(loc shape.SourceLocation, owner, field, skips, encodes string) *CompilerError {
	return newError(
		ErrPartialOmit,
		"partial_omit",
		CategorySyntax,
		fmt.Sprintf("Field '%s' of %s is skipped by %s but encoded by %s", field, owner, skips, encodes),
		loc,
	).WithSuggestion(fmt.Sprintf("Tag the field `%s:\"-\"` as well, or drop the %s tag", encodes, skips))
}
