package errors

import (
	"fmt"
	"strings"
)

// FormatError renders e for the terminal: a header with code and location,
// the message, the offending source line with a caret when known, then the
// expected and actual forms, the suggestion and example fixes.
func FormatError(e *CompilerError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "❌ %s [%s] at %s\n", categoryDisplayName(e.Category), e.Code, e.Location)
	fmt.Fprintf(&b, "  %s\n", e.Message)

	if e.Source != "" {
		gutter := fmt.Sprintf("%4d | ", e.Location.Line)
		fmt.Fprintf(&b, "\n%s%s\n", gutter, e.Source)
		if e.Location.Column > 0 {
			fmt.Fprintf(&b, "%s| %s^\n", strings.Repeat(" ", len(gutter)-2), caretPad(e.Source, e.Location.Column))
		}
	}

	if e.Expected != "" || e.Actual != "" {
		b.WriteString("\n")
		if e.Expected != "" {
			fmt.Fprintf(&b, "  Expected: %s\n", e.Expected)
		}
		if e.Actual != "" {
			fmt.Fprintf(&b, "  Actual:   %s\n", e.Actual)
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	if len(e.Examples) > 0 {
		b.WriteString("\nQuick Fixes:\n")
		for i, example := range e.Examples {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, strings.ReplaceAll(example, "\n", "\n     "))
		}
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generation failed with %d diagnostic(s)\n\n", len(errors))
	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}
	return b.String()
}

// caretPad returns the whitespace that puts a caret under the 1-indexed byte
// column of line. Tabs are kept so the caret lines up however they render.
func caretPad(line string, column int) string {
	n := column - 1
	if n > len(line) {
		n = len(line)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategorySyntax:
		return "Syntax Error"
	case CategoryCodeGen:
		return "Code Generation Error"
	default:
		return "Error"
	}
}
