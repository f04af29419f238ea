// ==============================================================================================
// FILE: internal/driver/driver.go
// ==============================================================================================
// PACKAGE: driver
// PURPOSE: Wires lexer -> parser -> checker -> codegen into the one pipeline
//          both the CLI and the end-to-end tests drive, so neither has to
//          know the stage order or the stop-on-error rule itself.
// ==============================================================================================

package driver

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"ignis/ast"
	"ignis/checker"
	"ignis/codegen/cpp"
	"ignis/codegen/native"
	"ignis/lexer"
	"ignis/parser"
	"ignis/report"
)

// Target selects which code generator Compile runs after checking.
type Target int

const (
	// TargetNone runs only the lexer, parser, and checker (ignisc check).
	TargetNone Target = iota
	TargetNative
	TargetCPP
)

// Result carries everything a caller might want out of a compilation: the
// generated text (empty for TargetNone), the parsed tree (for ignisc ast),
// and the reporter holding every diagnostic raised along the way.
type Result struct {
	Output   string
	Program  *ast.Program
	Reporter *report.Reporter
}

// Options configures one Compile call.
type Options struct {
	Filename string
	Source   string
	Target   Target

	// Log receives Debug-level stage transitions and Error-level aborts. A
	// nil Log runs silently (the default for library callers that only care
	// about the Result).
	Log *logrus.Logger
}

// Compile runs the pipeline described by opts, stopping after the first
// stage that reports an error. It never returns a Go error for a diagnosed
// source problem — callers check Result.Reporter.HasErrors(). The returned
// error is reserved for internal-compiler-error conditions (see spec.md §7)
// that a backend raises after the checker has already accepted the program.
func Compile(opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(bytes.NewBuffer(nil))
	}

	rep := report.New(opts.Filename, opts.Source)
	res := &Result{Reporter: rep}

	log.WithField("stage", "lex+parse").Debug("starting pipeline")
	l := lexer.New(opts.Source, rep)
	p := parser.New(l, rep)
	prog := p.ParseProgram()
	res.Program = prog
	if rep.HasErrors() {
		log.WithField("stage", "parse").Error("aborting after parse errors")
		return res, nil
	}

	log.WithField("stage", "check").Debug("running checker")
	c := checker.New(rep)
	c.Check(prog)
	if rep.HasErrors() {
		log.WithField("stage", "check").Error("aborting after check errors")
		return res, nil
	}

	if opts.Target == TargetNone {
		log.Debug("check-only run complete")
		return res, nil
	}

	switch opts.Target {
	case TargetNative:
		log.WithField("stage", "codegen/native").Debug("generating x86-64 NASM")
		out, err := native.Generate(prog, c.Structs(), rep)
		if err != nil {
			log.WithField("stage", "codegen/native").Error("internal compiler error")
			return res, errors.Wrap(err, "native codegen")
		}
		res.Output = out
	case TargetCPP:
		log.WithField("stage", "codegen/cpp").Debug("generating C++17")
		out, err := cpp.Generate(prog, c.Structs(), rep)
		if err != nil {
			log.WithField("stage", "codegen/cpp").Error("internal compiler error")
			return res, errors.Wrap(err, "cpp codegen")
		}
		res.Output = out
	}

	log.Debug("pipeline complete")
	return res, nil
}
