package format

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/flowtype/internal/solver"
)

// Report renders a human-readable annotation/error listing, with
// severity coloring gated by whether the destination is a terminal.
type Report struct {
	buf      bytes.Buffer
	colorize bool
}

// NewReport builds a Report. forceColor==nil auto-detects via go-isatty against
// the given writer when it is *os.File; otherwise colorize defaults false.
func NewReport(w io.Writer, forceColor *bool) *Report {
	colorize := false
	if forceColor != nil {
		colorize = *forceColor
	} else if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Report{colorize: colorize}
}

func (r *Report) paint(c *color.Color, s string) string {
	if !r.colorize {
		return s
	}
	return c.Sprint(s)
}

// Render builds the report for one source file's Result, headed by
// filename, and returns the full text; it writes no file.
func (r *Report) Render(filename string, res solver.Result, elapsed string, sourceBytes int) string {
	r.buf.Reset()
	typeColor := color.New(color.FgCyan)
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow)

	fmt.Fprintf(&r.buf, "%s\n", filename)
	for _, a := range res.Annotations {
		line := fmt.Sprintf("  %d:%d  %-10s %s: %s", a.Line, a.Column, a.Kind.String(), labelFor(a), a.TypeString)
		r.buf.WriteString(r.paint(typeColor, line))
		r.buf.WriteString("\n")
	}
	for _, e := range res.Errors {
		line := fmt.Sprintf("  %d:%d  error: %s", e.Line, e.Column, e.Message)
		r.buf.WriteString(r.paint(errColor, line))
		r.buf.WriteString("\n")
	}
	for _, w := range res.Warnings {
		line := fmt.Sprintf("  %d:%d  warning: %s", w.Line, w.Column, w.Message)
		r.buf.WriteString(r.paint(warnColor, line))
		r.buf.WriteString("\n")
	}

	summary := fmt.Sprintf(
		"analyzed %s function%s, %s block%s, %s in %s\n",
		humanize.Comma(int64(res.Functions)), plural(res.Functions),
		humanize.Comma(int64(res.Blocks)), plural(res.Blocks),
		humanize.Bytes(uint64(sourceBytes)), elapsed,
	)
	r.buf.WriteString(summary)
	return r.buf.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func labelFor(a solver.TypeAnnotation) string {
	if a.Name != "" {
		return a.Name
	}
	return a.NodeType
}
