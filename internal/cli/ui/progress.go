package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ProgressBar renders how many inputs a generation run has finished. It is
// safe for use from the run's worker goroutines.
type ProgressBar struct {
	writer  io.Writer
	total   int
	current int
	width   int
	message string
	noColor bool
	mu      sync.Mutex
}

// ProgressBarOptions configures progress bar behavior
type ProgressBarOptions struct {
	Width   int // Default: 40
	NoColor bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width == 0 {
		width = 40
	}

	return &ProgressBar{
		writer:  w,
		width:   width,
		noColor: opts.NoColor,
	}
}

// Update has the signature of build.Options.ProgressFunc
func (p *ProgressBar) Update(current, total int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = min(current, total)
	p.message = message
	p.render()
}

// Finish ends the bar's line
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total)
	filledWidth := int(float64(p.width) * percent)

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filledWidth))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filledWidth))
	bar.WriteString("]")

	fmt.Fprintf(p.writer, "\r\033[K%s %d/%d %s", bar.String(), p.current, p.total, p.message)
}
