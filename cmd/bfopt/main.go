// Command bfopt compiles tape-machine source to C.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"bfopt/internal/compiler"
	"bfopt/internal/diag"
)

const usage = `Usage: bfopt [options] <source-file|->

Options:
  -s, --cellsize {8|16|32}   tape cell width in bits (default 8)
      --debug                annotate emitted C with pass metadata
  -h, --help                 show this message
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := compiler.DefaultConfig()
	var path string

	colorize := term.IsTerminal(int(os.Stdout.Fd()))
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	if !colorize {
		ok = fmt.Sprint
		bad = fmt.Sprint
	}

	for i := 0; i < len(args); i++ {
		switch a := args[i]; a {
		case "-h", "--help":
			fmt.Fprint(stdout, usage)
			return 0
		case "-s", "--cellsize":
			i++
			if i >= len(args) {
				fmt.Fprintln(stderr, bad("missing value for "+a))
				return 1
			}
			switch args[i] {
			case "8":
				cfg.CellWidth = 8
			case "16":
				cfg.CellWidth = 16
			case "32":
				cfg.CellWidth = 32
			default:
				fmt.Fprintln(stderr, bad("invalid cell size: "+args[i]))
				return 1
			}
		case "--debug":
			cfg.Debug = true
		default:
			if path != "" {
				fmt.Fprintln(stderr, bad("unexpected extra argument: "+a))
				return 1
			}
			path = a
		}
	}

	if path == "" {
		fmt.Fprint(stderr, usage)
		return 1
	}

	var source []byte
	var err error
	if path == "-" {
		source, err = io.ReadAll(stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintln(stderr, bad(fmt.Sprintf("failed to read %s: %s", path, err)))
		return 1
	}

	out, err := compiler.Compile(string(source), cfg)
	if err != nil {
		reportError(stderr, path, string(source), err, bad)
		return 1
	}

	fmt.Fprint(stdout, out)
	fmt.Fprintln(stderr, ok("compiled "+displayPath(path)))
	return 0
}

func displayPath(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

func reportError(stderr io.Writer, path, source string, err error, bad func(...interface{}) string) {
	if pe, ok := err.(*diag.ParseError); ok {
		reporter := diag.NewReporter(displayPath(path), source)
		fmt.Fprint(stderr, reporter.Format(pe))
		return
	}
	fmt.Fprintln(stderr, bad(err.Error()))
}
