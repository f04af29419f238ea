// ==============================================================================================
// FILE: report/report.go
// ==============================================================================================
// PACKAGE: report
// PURPOSE: The single sink for every diagnostic the compiler produces. Every
//          stage (lexer, parser, checker) holds a *Reporter and calls Error or
//          Warning instead of returning a Go error directly, so every
//          diagnostic gets the same source-pointed rendering.
// ==============================================================================================

package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"ignis/token"
)

// Severity distinguishes a fatal diagnostic from an accumulating one.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one reported error or warning, kept around after printing so
// callers (tests, the CLI) can inspect what was raised without re-parsing
// colored terminal output.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Token    token.Token
}

// Reporter is the process-wide (per-compilation) diagnostic sink described
// in the error handling design: a single owner, append-only, that prints a
// header, a location line, and a source snippet with a caret under the
// offending column for every call.
type Reporter struct {
	filename string
	lines    []string
	out      io.Writer

	errorColor   *color.Color
	warningColor *color.Color
	locColor     *color.Color

	diagnostics []Diagnostic
	hadError    bool
	hadWarning  bool
}

// New builds a Reporter for one compilation unit. source is the full text of
// the file being compiled, split into lines for snippet rendering.
func New(filename, source string) *Reporter {
	return &Reporter{
		filename:     filename,
		lines:        strings.Split(source, "\n"),
		out:          os.Stderr,
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		locColor:     color.New(color.FgCyan),
	}
}

// SetOutput redirects diagnostic rendering, primarily for tests that want to
// capture the formatted text instead of letting it hit stderr.
func (r *Reporter) SetOutput(w io.Writer) { r.out = w }

// Error records and prints a fatal diagnostic. The caller is responsible for
// checking HasErrors after a pipeline stage completes and refusing to start
// the next stage if it reports true; Error itself does not panic or exit.
func (r *Reporter) Error(code, message string, tok token.Token) {
	r.hadError = true
	d := Diagnostic{Severity: SeverityError, Code: code, Message: message, Token: tok}
	r.diagnostics = append(r.diagnostics, d)
	r.print(d)
}

// Warning records and prints a non-fatal diagnostic.
func (r *Reporter) Warning(code, message string, tok token.Token) {
	r.hadWarning = true
	d := Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Token: tok}
	r.diagnostics = append(r.diagnostics, d)
	r.print(d)
}

// HasErrors reports whether any Error call has occurred during this
// compilation. A stage that finds this true after running must not hand its
// output to the next stage.
func (r *Reporter) HasErrors() bool { return r.hadError }

// HasWarnings reports whether any Warning call has occurred.
func (r *Reporter) HasWarnings() bool { return r.hadWarning }

// Diagnostics returns every diagnostic recorded so far, in report order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diagnostics }

func (r *Reporter) print(d Diagnostic) {
	label := r.errorColor
	kind := "error"
	if d.Severity == SeverityWarning {
		label = r.warningColor
		kind = "warning"
	}

	label.Fprintf(r.out, "%s: %s: %s\n", kind, d.Code, d.Message)
	r.locColor.Fprintf(r.out, "  --> %s:%d:%d\n", r.filename, d.Token.Line, d.Token.Column)
	r.printSnippet(d.Token)
}

// printSnippet reproduces the original compiler's window: three lines before
// the offending line and two after, each prefixed by a four-wide right
// aligned line number and " | ", with a caret line under the exact column.
func (r *Reporter) printSnippet(tok token.Token) {
	lineIdx := tok.Line - 1
	start := lineIdx - 3
	if start < 0 {
		start = 0
	}
	end := lineIdx + 2
	if end >= len(r.lines) {
		end = len(r.lines) - 1
	}

	for i := start; i <= end; i++ {
		if i < 0 || i >= len(r.lines) {
			continue
		}
		gutter := fmt.Sprintf("%4d | ", i+1)
		fmt.Fprintf(r.out, "%s%s\n", gutter, r.lines[i])
		if i == lineIdx {
			col := tok.Column
			if col < 1 {
				col = 1
			}
			pointer := strings.Repeat(" ", len(gutter)+col-1) + "^"
			r.errorColor.Fprintln(r.out, pointer)
		}
	}
}
