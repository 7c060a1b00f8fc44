package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats a ParseError as a Rust-style caret diagnostic against
// the source it came from, grounded on the teacher's ErrorReporter.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter builds a Reporter for one source file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders a ParseError with a line-number gutter, the offending
// source line, and a caret under the reported column.
func (r *Reporter) Format(err *ParseError) string {
	var b strings.Builder

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	b.WriteString(fmt.Sprintf("%s[%s]: %s\n", red("error"), err.Code, err.Message))

	width := lineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)
	b.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column))
	b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Position.Line >= 1 && err.Position.Line <= len(r.lines) {
		line := r.lines[err.Position.Line-1]
		b.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), line))

		col := err.Position.Column
		if col < 1 {
			col = 1
		}
		caret := strings.Repeat(" ", col-1) + red("^")
		b.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), caret))
	}

	return b.String()
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		return 3
	}
	return w
}
