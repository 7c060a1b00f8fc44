// Package repl implements an interactive line-at-a-time compiler dump:
// each line is compiled in debug mode and the emitted C (or a
// caret-formatted parse error) is printed. Grounded on the teacher's repl/repl.go
// read loop, whose own lexer/parser imports (kanso-lang/lexer,
// kanso-lang/parser) point at a module path absent from the rest of the
// repository — a dead file in the teacher itself. This version keeps
// the bufio.Scanner loop and ">> " prompt but drives
// internal/compiler.Compile instead.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"bfopt/internal/compiler"
	"bfopt/internal/diag"
)

const prompt = ">> "

// Start runs the read loop until in is exhausted.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	cfg := compiler.Config{CellWidth: 8, Debug: true}

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		c, err := compiler.Compile(line, cfg)
		if err != nil {
			if pe, ok := err.(*diag.ParseError); ok {
				fmt.Fprint(out, diag.NewReporter("<repl>", line).Format(pe))
			} else {
				fmt.Fprintln(out, "error:", err)
			}
			continue
		}
		fmt.Fprintf(out, "%s\n", c)
	}
}
