package errors

import (
	"fmt"

	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// Code generation error codes (GEN600-699)
const (
	// ErrCodeGenFailed indicates a general code generation failure
	ErrCodeGenFailed ErrorCode = "GEN600"
	// ErrInvalidGoIdentifier indicates a name that is not a valid Go identifier
	ErrInvalidGoIdentifier ErrorCode = "GEN601"
	// ErrUnsupportedFeature indicates a type expression the generator cannot relate
	ErrUnsupportedFeature ErrorCode = "GEN602"
	// ErrDuplicateParam indicates a generic parameter declared twice
	ErrDuplicateParam ErrorCode = "GEN603"
	// ErrDuplicateField indicates a field or variant declared twice
	ErrDuplicateField ErrorCode = "GEN604"
	// ErrEmptySum indicates a sum type without variants
	ErrEmptySum ErrorCode = "GEN605"
	// ErrArrayLength indicates a fixed-length array longer than the library supports
	ErrArrayLength ErrorCode = "GEN606"
	// ErrUnknownQualifier indicates a package qualifier with no known import path
	ErrUnknownQualifier ErrorCode = "GEN607"
	// ErrGoReservedWord indicates use of Go reserved word
	ErrGoReservedWord ErrorCode = "GEN608"
	// ErrNameConflict indicates a generated name that would shadow a referenced type
	ErrNameConflict ErrorCode = "GEN609"
)

// NewCodeGenFailed creates a GEN600 error
func NewCodeGenFailed(loc shape.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrCodeGenFailed,
		"codegen_failed",
		CategoryCodeGen,
		fmt.Sprintf("Code generation failed: %s", reason),
		loc,
	).WithSuggestion("This is likely a generator bug - please report it")
}

// NewInvalidGoIdentifier creates a GEN601 error
func NewInvalidGoIdentifier(loc shape.SourceLocation, name, reason string) *CompilerError {
	return newError(
		ErrInvalidGoIdentifier,
		"invalid_go_identifier",
		CategoryCodeGen,
		fmt.Sprintf("Name '%s' is not a valid Go identifier: %s", name, reason),
		loc,
	).WithSuggestion("Use letters, digits and underscores only, starting with a letter")
}

// NewUnsupportedFeature creates a GEN602 error
func NewUnsupportedFeature(loc shape.SourceLocation, feature string) *CompilerError {
	return newError(
		ErrUnsupportedFeature,
		"unsupported_feature",
		CategoryCodeGen,
		fmt.Sprintf("'%s' cannot be used as a field type", feature),
		loc,
	).WithSuggestion("Field types must be named types, pointers, slices, arrays, maps or struct{}")
}

// NewDuplicateParam creates a GEN603 error
func NewDuplicateParam(loc shape.SourceLocation, typeName, param string) *CompilerError {
	return newError(
		ErrDuplicateParam,
		"duplicate_param",
		CategoryCodeGen,
		fmt.Sprintf("Generic parameter '%s' is declared more than once on '%s'", param, typeName),
		loc,
	)
}

// NewDuplicateField creates a GEN604 error
func NewDuplicateField(loc shape.SourceLocation, typeName, field string) *CompilerError {
	return newError(
		ErrDuplicateField,
		"duplicate_field",
		CategoryCodeGen,
		fmt.Sprintf("'%s' is declared more than once in '%s'", field, typeName),
		loc,
	)
}

// NewEmptySum creates a GEN605 error
func NewEmptySum(loc shape.SourceLocation, typeName string) *CompilerError {
	return newError(
		ErrEmptySum,
		"empty_sum",
		CategoryCodeGen,
		fmt.Sprintf("Sum type '%s' has no variants", typeName),
		loc,
	).WithSuggestion(fmt.Sprintf("Declare variant types named %s<Variant> with an is%s() method", typeName, typeName))
}

// NewArrayLength creates a GEN606 error
func NewArrayLength(loc shape.SourceLocation, length, max int) *CompilerError {
	return newError(
		ErrArrayLength,
		"array_length",
		CategoryCodeGen,
		fmt.Sprintf("Array length %d exceeds the supported maximum of %d", length, max),
		loc,
	).WithExpected(fmt.Sprintf("[0..%d]T", max)).
		WithActual(fmt.Sprintf("[%d]T", length)).
		WithSuggestion("Use a slice, or split the array into smaller fields")
}

// NewUnknownQualifier creates a GEN607 error
func NewUnknownQualifier(loc shape.SourceLocation, qualifier string) *CompilerError {
	return newError(
		ErrUnknownQualifier,
		"unknown_qualifier",
		CategoryCodeGen,
		fmt.Sprintf("No import path known for package '%s'", qualifier),
		loc,
	).WithSuggestion("Import the package in the source file, or list it under imports in the shape file")
}

// NewGoReservedWord creates a GEN608 error
func NewGoReservedWord(loc shape.SourceLocation, word string) *CompilerError {
	return newError(
		ErrGoReservedWord,
		"go_reserved_word",
		CategoryCodeGen,
		fmt.Sprintf("'%s' is a reserved word in Go", word),
		loc,
	).WithSuggestion("Use a different name that doesn't conflict with Go keywords").
		WithExamples(
			"Common Go keywords: type, func, interface, struct, import, package, return, if, else, for, range",
		)
}

// NewNameConflict creates a GEN609 error
func NewNameConflict(loc shape.SourceLocation, typeName, name string) *CompilerError {
	return newError(
		ErrNameConflict,
		"name_conflict",
		CategoryCodeGen,
		fmt.Sprintf("'%s' references a type named '%s', which clashes with a generated type parameter", typeName, name),
		loc,
	).WithSuggestion("Rename the referenced type or refer to it through its package")
}
