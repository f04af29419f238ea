// ==============================================================================================
// FILE: codegen/native/native.go
// ==============================================================================================
// PACKAGE: native
// PURPOSE: Emits x86-64 NASM text for a checked program: a hand-written
//          print_int/putchar/getchar prologue, then a fixed-frame,
//          stack-machine function body for every declared function.
// ==============================================================================================

package native

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"ignis/ast"
	"ignis/report"
	"ignis/types"
)

// frameSize is the fixed local-variable area every function prologue
// reserves. Spec.md's design notes call this out explicitly as a known
// limitation: a function needing more than this must be rejected or the
// frame must be computed ahead of time; Ignis takes the documented
// "fixed frame" option and raises an internal-compiler-error if a function
// would overflow it.
const frameSize = 256

// varSlot is one local's position and footprint within the current
// function's frame.
type varSlot struct {
	offset int // negative, relative to rbp
	typ    types.Type
	size   int // 8 for scalars/pointers/params, 8-byte-rounded struct size otherwise
}

// Generator holds all state needed to emit one compilation unit's worth of
// assembly: the struct layout table handed down by the checker, the
// interned string table, and per-function bookkeeping that is reset by
// each call to genFunc.
type Generator struct {
	rep     *report.Reporter
	structs map[string]types.Layout

	funcReturns map[string]types.Type
	funcParams  map[string][]types.Type

	strings     []string
	stringIndex map[string]int

	labelCounter int
	loopStack    []loopLabels

	// locals is a stack of scopes, innermost last, mirroring the checker's
	// own scope stack exactly: one pushed scope per function (params and
	// body share it, per checkFunc), one per while/loop/if-arm body
	// (checkBlock), and one spanning a for-loop's init clause and body
	// together (checkFor). A name is resolved innermost-first so a nested
	// declaration shadows an outer one instead of colliding with it.
	locals        []map[string]varSlot
	frameUsed     int
	curFuncName   string
	curFuncReturn types.Type
}

type loopLabels struct {
	continueLabel string
	endLabel      string
}

// Generate lowers prog to a complete NASM translation unit. structs is the
// layout table the checker built; prog must already have passed the
// checker with no errors.
func Generate(prog *ast.Program, structs map[string]types.Layout, rep *report.Reporter) (string, error) {
	g := &Generator{
		rep:         rep,
		structs:     structs,
		stringIndex: map[string]int{},
		funcReturns: map[string]types.Type{},
		funcParams:  map[string][]types.Type{},
	}

	g.collectStrings(prog)

	var funcs []*ast.FuncDecl
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			funcs = append(funcs, fn)
			g.funcReturns[fn.Name] = fn.ReturnType
			g.funcParams[fn.Name] = fn.ParamTypes
		}
	}

	var body strings.Builder
	body.WriteString(runtimeIntrinsics)
	for _, fn := range funcs {
		if err := g.genFunc(fn, &body); err != nil {
			return "", err
		}
	}

	var out strings.Builder
	out.WriteString("section .data\n")
	for i, s := range g.strings {
		out.WriteString(fmt.Sprintf("str%d: db %s, 0\n", i, nasmByteList(s)))
	}
	out.WriteString("\nsection .bss\n")
	out.WriteString("print_buf: resb 32\n")
	out.WriteString("read_buf: resb 1\n")
	out.WriteString("arena_ptr: resq 1\n")
	out.WriteString("arena: resb 1048576\n")
	out.WriteString("\nsection .text\n")
	out.WriteString("global _start\n\n")
	out.WriteString(body.String())
	out.WriteString("\n_start:\n")
	out.WriteString("    lea rax, [rel arena]\n")
	out.WriteString("    mov [arena_ptr], rax\n")
	out.WriteString("    call main\n") // main itself performs the exit syscall; control never returns here

	return out.String(), nil
}

// collectStrings walks the whole program once up front so every string
// literal gets a stable, order-of-first-appearance index into .data.
func (g *Generator) collectStrings(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			g.collectStringsInBlock(n.Body)
		case *ast.ConstDecl:
			g.collectStringsInExpr(n.Init)
		}
	}
}

func (g *Generator) collectStringsInBlock(b *ast.BlockExpr) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		g.collectStringsInStmt(s)
	}
	if b.Tail != nil {
		g.collectStringsInExpr(b.Tail)
	}
}

func (g *Generator) collectStringsInStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VarDecl:
		if n.Init != nil {
			g.collectStringsInExpr(n.Init)
		}
	case *ast.ConstDecl:
		g.collectStringsInExpr(n.Init)
	case *ast.AssignStmt:
		g.collectStringsInExpr(n.Target)
		g.collectStringsInExpr(n.Value)
	case *ast.ReturnStmt:
		if n.Value != nil {
			g.collectStringsInExpr(n.Value)
		}
	case *ast.WhileStmt:
		g.collectStringsInExpr(n.Cond)
		g.collectStringsInBlock(n.Body)
	case *ast.LoopStmt:
		g.collectStringsInBlock(n.Body)
	case *ast.ForStmt:
		if n.Init != nil {
			g.collectStringsInStmt(n.Init)
		}
		if n.Cond != nil {
			g.collectStringsInExpr(n.Cond)
		}
		if n.Step != nil {
			g.collectStringsInStmt(n.Step)
		}
		g.collectStringsInBlock(n.Body)
	case *ast.ExpressionStmt:
		g.collectStringsInExpr(n.Expr)
	}
}

func (g *Generator) collectStringsInExpr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.StringLiteral:
		g.internString(n.Value)
	case *ast.BinaryExpr:
		g.collectStringsInExpr(n.Left)
		g.collectStringsInExpr(n.Right)
	case *ast.UnaryExpr:
		g.collectStringsInExpr(n.Operand)
	case *ast.CallExpr:
		for _, a := range n.Args {
			g.collectStringsInExpr(a)
		}
	case *ast.MemberExpr:
		g.collectStringsInExpr(n.Base)
	case *ast.AllocExpr:
		g.collectStringsInExpr(n.Size)
	case *ast.FreeExpr:
		g.collectStringsInExpr(n.Pointer)
	case *ast.BlockExpr:
		g.collectStringsInBlock(n)
	case *ast.IfExpr:
		g.collectStringsInExpr(n.Cond)
		g.collectStringsInBlock(n.Then)
		for _, elif := range n.Elifs {
			g.collectStringsInExpr(elif.Cond)
			g.collectStringsInBlock(elif.Then)
		}
		if n.Else != nil {
			g.collectStringsInBlock(n.Else)
		}
	}
}

func (g *Generator) internString(s string) int {
	if idx, ok := g.stringIndex[s]; ok {
		return idx
	}
	idx := len(g.strings)
	g.strings = append(g.strings, s)
	g.stringIndex[s] = idx
	return idx
}

func nasmByteList(s string) string {
	if s == "" {
		return "0"
	}
	parts := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		parts[i] = fmt.Sprintf("%d", s[i])
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) newLabel() string {
	g.labelCounter++
	return fmt.Sprintf("L%d", g.labelCounter)
}

func (g *Generator) sizeOf(t types.Type) int {
	return types.SizeOf(t, func(name string) (types.Layout, bool) {
		l, ok := g.structs[name]
		return l, ok
	})
}

func roundUp8(n int) int {
	if n <= 0 {
		return 8
	}
	return ((n + 7) / 8) * 8
}

// genFunc emits one function's prologue, spilled parameters, body, and
// epilogue, following the fixed System-V ABI frame described by the
// component design. The body is generated into a scratch buffer first so
// the frame-overflow check (which depends on every local the body
// declares, including ones nested in shadowing inner scopes) runs before
// any of the function's text is committed to out.
func (g *Generator) genFunc(fn *ast.FuncDecl, out *strings.Builder) error {
	g.locals = nil
	g.frameUsed = 0
	g.curFuncName = fn.Name
	g.curFuncReturn = fn.ReturnType
	g.loopStack = nil

	if len(fn.ParamNames) > 6 {
		return errors.Errorf("internal compiler error: function %q has more than six parameters", fn.Name)
	}

	// One scope for the whole function: params and top-level body locals
	// share it, exactly as checkFunc's single pushScope/checkBlockNoPush
	// pair does.
	g.pushScope()
	paramSlots := make([]varSlot, len(fn.ParamNames))
	for i, name := range fn.ParamNames {
		paramSlots[i] = g.declareLocal(name, fn.ParamTypes[i], 8)
	}

	var body strings.Builder
	g.genBlockForValue(fn.Body, &body)
	g.popScope()

	if g.frameUsed > frameSize {
		return errors.Errorf("internal compiler error: function %q needs %d bytes of locals, exceeds the fixed %d-byte frame", fn.Name, g.frameUsed, frameSize)
	}

	fmt.Fprintf(out, "%s:\n", fn.Name)
	out.WriteString("    push rbp\n")
	out.WriteString("    mov rbp, rsp\n")
	fmt.Fprintf(out, "    sub rsp, %d\n", frameSize)

	argRegs := []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
	for i := range fn.ParamNames {
		fmt.Fprintf(out, "    mov [rbp%d], %s\n", paramSlots[i].offset, argRegs[i])
	}

	out.WriteString(body.String())
	out.WriteString("    pop rax\n")

	fmt.Fprintf(out, ".L_ret_%s:\n", fn.Name)
	if fn.Name == "main" {
		out.WriteString("    mov rdi, rax\n")
		out.WriteString("    mov rax, 60\n")
		out.WriteString("    syscall\n")
	} else {
		out.WriteString("    mov rsp, rbp\n")
		out.WriteString("    pop rbp\n")
		out.WriteString("    ret\n")
	}
	out.WriteString("\n")
	return nil
}

// pushScope opens a new innermost scope, mirroring checker.pushScope.
func (g *Generator) pushScope() { g.locals = append(g.locals, map[string]varSlot{}) }

// popScope closes the innermost scope, mirroring checker.popScope. Slots it
// held are never reclaimed — the frame only ever grows — trading a little
// frame space for never having two live scopes alias the same offset.
func (g *Generator) popScope() { g.locals = g.locals[:len(g.locals)-1] }

// declareLocal assigns the next frame slot to name in the innermost scope,
// growing the frame downward from rbp in 8-byte-rounded increments. A
// shadowing inner declaration gets its own fresh slot instead of
// overwriting the outer one, since it lives in a different map.
func (g *Generator) declareLocal(name string, t types.Type, minSize int) varSlot {
	size := roundUp8(g.sizeOf(t))
	if size < minSize {
		size = minSize
	}
	g.frameUsed += size
	slot := varSlot{offset: -g.frameUsed, typ: t, size: size}
	g.locals[len(g.locals)-1][name] = slot
	return slot
}

// lookupLocal resolves name from the innermost scope outward, the same
// order checker.resolve walks its own scope stack.
func (g *Generator) lookupLocal(name string) (varSlot, bool) {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if slot, ok := g.locals[i][name]; ok {
			return slot, true
		}
	}
	return varSlot{}, false
}
