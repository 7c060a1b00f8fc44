// Package compiler ties the parser, optimization pipeline, and emitter
// into the one entry point the CLI, REPL, and LSP server all call
// through, the same role kanso/internal/ir's top-level BuildProgram and
// PrintProgram entry points play for the teacher.
package compiler

import (
	"fmt"
	"time"

	"bfopt/internal/bfparser"
	"bfopt/internal/emitter"
	"bfopt/internal/opt"
)

// Config is the whole of the compiler's cross-cutting configuration,
// per spec.md §6.
type Config struct {
	CellWidth      int
	Debug          bool
	EnableMoreLoop bool
	Logger         Logger
}

// DefaultConfig matches spec.md's stated defaults: cellwidth=8, debug=false.
func DefaultConfig() Config {
	return Config{CellWidth: 8, Debug: false}
}

func (c Config) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return noopLogger{}
}

// Compile parses source, runs the fixed optimization pipeline, and
// emits C source. The returned error is a *diag.ParseError, an error
// value recovered here from a panic inside a pass (such as a
// *diag.DivisibilityViolation), or a wrapped emitter error.
func Compile(source string, cfg Config) (out string, err error) {
	log := cfg.logger()

	defer func() {
		if r := recover(); r != nil {
			if dv, ok := r.(error); ok {
				err = dv
				return
			}
			panic(r)
		}
	}()

	start := time.Now()
	prog, err := bfparser.Parse(source)
	if err != nil {
		log.Info("parse failed", "error", err)
		return "", err
	}
	log.Debug("parsed", "statements", len(prog.Body), "elapsed", time.Since(start))

	pipeline := opt.NewPipeline(opt.Config{
		CellWidth:      uint(cfg.CellWidth),
		EnableMoreLoop: cfg.EnableMoreLoop,
	})

	for _, pass := range pipeline.Passes {
		passStart := time.Now()
		pass.Apply(prog, pipeline.Config)
		log.Debug("pass applied", "name", pass.Name(), "elapsed", time.Since(passStart))
	}
	if cfg.EnableMoreLoop {
		opt.MoreLoopPass{}.Apply(prog, pipeline.Config)
		log.Debug("pass applied", "name", "MoreLoop")
	}

	code, err := emitter.Emit(prog, emitter.Options{CellWidth: uint(cfg.CellWidth), Debug: cfg.Debug})
	if err != nil {
		return "", fmt.Errorf("emit: %w", err)
	}
	log.Info("compiled", "elapsed", time.Since(start))
	return code, nil
}
