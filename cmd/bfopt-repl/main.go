// Command bfopt-repl is an interactive, line-at-a-time compiler dump.
package main

import (
	"os"

	"bfopt/internal/repl"
)

func main() {
	repl.Start(os.Stdin, os.Stdout)
}
