package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/tooling/build"
)

// Status names what a run did to one input's output
func Status(f *build.FileResult) string {
	switch {
	case f.Err != nil:
		return "failed"
	case f.Removed:
		return "removed"
	case f.Shapes == 0:
		return "skipped"
	case f.Written:
		return "written"
	case f.Cached:
		return "cached"
	default:
		return "unchanged"
	}
}

// WriteReport prints one row per input, the diagnostics of failed inputs,
// and a summary line.
func WriteReport(w io.Writer, result *build.Result, noColor bool) {
	rows := make([][]string, 0, len(result.Files))
	for _, f := range result.Files {
		rows = append(rows, []string{f.Input, fmt.Sprint(f.Shapes), Status(f)})
	}
	writeTable(w, []string{"INPUT", "TYPES", "STATUS"}, rows, noColor)

	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, errors.FormatErrorList(result.Diagnostics))
	}

	summary := fmt.Sprintf("%d inputs, %d written, %d cached in %s",
		len(result.Files), result.Written, result.CacheHits, result.Duration.Round(time.Millisecond))
	if result.Success() {
		green := color.New(color.FgGreen, color.Bold)
		if noColor {
			green.DisableColor()
		}
		green.Fprintf(w, "✓ %s\n", summary)
		return
	}
	red := color.New(color.FgRed, color.Bold)
	if noColor {
		red.DisableColor()
	}
	red.Fprintf(w, "❌ %s, %d diagnostics\n", summary, len(result.Diagnostics))
}

// writeTable renders headers and rows with aligned columns
func writeTable(w io.Writer, headers []string, rows [][]string, noColor bool) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if noColor {
		bold.DisableColor()
		gray.DisableColor()
	}

	for i, header := range headers {
		bold.Fprint(w, padRight(header, widths[i], i == len(headers)-1))
		if i < len(headers)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	for i, width := range widths {
		gray.Fprint(w, strings.Repeat("─", width))
		if i < len(widths)-1 {
			gray.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, padRight(cell, widths[i], i == len(row)-1))
			if i < len(row)-1 {
				fmt.Fprint(w, "  ")
			}
		}
		fmt.Fprintln(w)
	}
}

// padRight pads s with spaces to width; the last column is left unpadded
func padRight(s string, width int, last bool) string {
	if last || len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
