// ==============================================================================================
// FILE: codegen/native/expr.go
// ==============================================================================================
// PACKAGE: native
// PURPOSE: Expression codegen. Every expression leaves exactly one 8-byte
//          value pushed on the stack when genExpr returns; callers pop it
//          back into a register as needed. This is the stack-machine
//          discipline the fixed-frame design relies on instead of a
//          register allocator.
// ==============================================================================================

package native

import (
	"fmt"
	"strings"

	"ignis/ast"
	"ignis/token"
	"ignis/types"
)

func isArithmeticOp(op token.Type) bool {
	switch op {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH:
		return true
	}
	return false
}

func isRelationalOp(op token.Type) bool {
	switch op {
	case token.EQ, token.NOT_EQ, token.LT, token.LT_EQ, token.GT, token.GT_EQ:
		return true
	}
	return false
}

func isLogicalOp(op token.Type) bool {
	switch op {
	case token.OR, token.AND, token.XOR, token.NOR, token.NAND, token.XNOR:
		return true
	}
	return false
}

func isBitwiseOp(op token.Type) bool {
	switch op {
	case token.BOR, token.BAND, token.BXOR, token.NBOR, token.NBAND, token.NBXOR:
		return true
	}
	return false
}

func isDeref(n *ast.UnaryExpr) bool { return n.Op == token.DEREF }
func isAddr(n *ast.UnaryExpr) bool  { return n.Op == token.ADDR }
func isMinus(n *ast.UnaryExpr) bool { return n.Op == token.MINUS }

// genExpr evaluates e and leaves the result pushed on top of the stack.
func (g *Generator) genExpr(e ast.Expression, out *strings.Builder) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		fmt.Fprintf(out, "    mov rax, %d\n", n.Value)
		out.WriteString("    push rax\n")

	case *ast.CharLiteral:
		fmt.Fprintf(out, "    mov rax, %d\n", n.Value)
		out.WriteString("    push rax\n")

	case *ast.StringLiteral:
		idx := g.internString(n.Value)
		fmt.Fprintf(out, "    lea rax, [rel str%d]\n", idx)
		out.WriteString("    push rax\n")

	case *ast.Identifier:
		g.genLoadLocal(n.Name, out)

	case *ast.BinaryExpr:
		g.genBinary(n, out)

	case *ast.UnaryExpr:
		g.genUnary(n, out)

	case *ast.CallExpr:
		g.genCall(n, out)

	case *ast.MemberExpr:
		g.genAddr(n, out)
		out.WriteString("    pop rax\n")
		g.genLoadFromAddr(g.inferType(n), out)
		out.WriteString("    push rax\n")

	case *ast.AllocExpr:
		g.genExpr(n.Size, out)
		out.WriteString("    pop rdi\n")
		out.WriteString("    call ignis_alloc\n")
		out.WriteString("    push rax\n")

	case *ast.NewExpr:
		size := g.sizeOf(n.Type)
		fmt.Fprintf(out, "    mov rdi, %d\n", size)
		out.WriteString("    call ignis_alloc\n")
		out.WriteString("    push rax\n")

	case *ast.FreeExpr:
		g.genExpr(n.Pointer, out)
		out.WriteString("    pop rdi\n")
		out.WriteString("    call ignis_free\n")
		out.WriteString("    push rax\n") // discarded by the caller; keeps the stack-machine invariant uniform

	case *ast.BlockExpr:
		g.pushScope()
		g.genBlockForValue(n, out)
		g.popScope()

	case *ast.IfExpr:
		g.genIfForValue(n, out)
	}
}

// genLoadLocal pushes the value currently held in name's frame slot.
func (g *Generator) genLoadLocal(name string, out *strings.Builder) {
	slot, ok := g.lookupLocal(name)
	if !ok {
		// A bare identifier naming a parameterless function used as a value
		// never reaches codegen (the checker rejects it); this branch only
		// guards against locals the frame walk somehow missed.
		fmt.Fprintf(out, "    ; unresolved identifier %s\n", name)
		out.WriteString("    push 0\n")
		return
	}
	if slot.typ.IsChar() {
		fmt.Fprintf(out, "    movzx rax, byte [rbp%d]\n", slot.offset)
	} else {
		fmt.Fprintf(out, "    mov rax, [rbp%d]\n", slot.offset)
	}
	out.WriteString("    push rax\n")
}

// genLoadFromAddr dereferences the address in rax according to t's size,
// leaving the loaded value in rax.
func (g *Generator) genLoadFromAddr(t types.Type, out *strings.Builder) {
	if t.IsChar() {
		out.WriteString("    movzx rax, byte [rax]\n")
	} else {
		out.WriteString("    mov rax, [rax]\n")
	}
}

// genAddr computes the address of an lvalue and leaves it pushed on the
// stack. Identifier, MemberExpr, and "deref p" are the only lvalue forms.
func (g *Generator) genAddr(e ast.Expression, out *strings.Builder) {
	switch n := e.(type) {
	case *ast.Identifier:
		slot, _ := g.lookupLocal(n.Name)
		fmt.Fprintf(out, "    lea rax, [rbp%d]\n", slot.offset)
		out.WriteString("    push rax\n")

	case *ast.MemberExpr:
		baseType := g.inferType(n.Base)
		if baseType.IsPointer() {
			g.genExpr(n.Base, out) // pointer-to-struct: the pointer value is the base address
		} else {
			g.genAddr(n.Base, out)
		}
		out.WriteString("    pop rax\n")
		layout := g.structs[string(baseType.Base)]
		off, _ := layout.FieldOffset(n.Field)
		fmt.Fprintf(out, "    add rax, %d\n", off)
		out.WriteString("    push rax\n")

	case *ast.UnaryExpr:
		if isDeref(n) {
			g.genExpr(n.Operand, out)
			return
		}
	}
}

func (g *Generator) genBinary(n *ast.BinaryExpr, out *strings.Builder) {
	switch {
	case n.Op == token.TYPE_EQ:
		g.genTypeEq(n, out)
	case isArithmeticOp(n.Op):
		g.genArithmetic(n, out)
	case isRelationalOp(n.Op):
		g.genRelational(n, out)
	case isLogicalOp(n.Op):
		g.genLogical(n, out)
	case isBitwiseOp(n.Op):
		g.genBitwise(n, out)
	}
}

// genTypeEq folds "===" entirely at compile time: the operands are never
// evaluated, only their static types compared.
func (g *Generator) genTypeEq(n *ast.BinaryExpr, out *strings.Builder) {
	left := g.inferType(n.Left)
	right := g.inferType(n.Right)
	if left.Equal(right) {
		out.WriteString("    push 1\n")
	} else {
		out.WriteString("    push 0\n")
	}
}

// genArithmetic scales pointer +/- int by the pointee's size, matching the
// checker's pointer-preserving typing rule.
func (g *Generator) genArithmetic(n *ast.BinaryExpr, out *strings.Builder) {
	leftType := g.inferType(n.Left)
	rightType := g.inferType(n.Right)

	g.genExpr(n.Left, out)
	g.genExpr(n.Right, out)
	out.WriteString("    pop rcx\n") // right
	out.WriteString("    pop rax\n") // left

	switch {
	case (n.Op == token.PLUS || n.Op == token.MINUS) && leftType.IsPointer() && rightType.IsInt():
		scale := g.sizeOf(leftType.Pointee())
		fmt.Fprintf(out, "    imul rcx, rcx, %d\n", scale)
	case n.Op == token.PLUS && leftType.IsInt() && rightType.IsPointer():
		scale := g.sizeOf(rightType.Pointee())
		fmt.Fprintf(out, "    imul rax, rax, %d\n", scale)
	}

	switch n.Op {
	case token.PLUS:
		out.WriteString("    add rax, rcx\n")
	case token.MINUS:
		out.WriteString("    sub rax, rcx\n")
	case token.ASTERISK:
		out.WriteString("    imul rax, rcx\n")
	case token.SLASH:
		out.WriteString("    cqo\n")
		out.WriteString("    idiv rcx\n")
	}
	out.WriteString("    push rax\n")
}

var setcc = map[token.Type]string{
	token.EQ: "sete", token.NOT_EQ: "setne",
	token.LT: "setl", token.LT_EQ: "setle",
	token.GT: "setg", token.GT_EQ: "setge",
}

func (g *Generator) genRelational(n *ast.BinaryExpr, out *strings.Builder) {
	g.genExpr(n.Left, out)
	g.genExpr(n.Right, out)
	out.WriteString("    pop rcx\n")
	out.WriteString("    pop rax\n")
	out.WriteString("    cmp rax, rcx\n")
	fmt.Fprintf(out, "    %s al\n", setcc[n.Op])
	out.WriteString("    movzx rax, al\n")
	out.WriteString("    push rax\n")
}

// genLogical implements the boolean family. or/and/nor/nand short-circuit;
// xor/xnor always evaluate both sides since neither operand alone decides
// the result.
func (g *Generator) genLogical(n *ast.BinaryExpr, out *strings.Builder) {
	switch n.Op {
	case token.OR, token.NOR:
		g.genShortCircuit(n, out, true, n.Op == token.NOR)
	case token.AND, token.NAND:
		g.genShortCircuit(n, out, false, n.Op == token.NAND)
	case token.XOR, token.XNOR:
		g.genExpr(n.Left, out)
		g.genExpr(n.Right, out)
		out.WriteString("    pop rcx\n")
		out.WriteString("    pop rax\n")
		out.WriteString("    cmp rax, 0\n")
		out.WriteString("    setne al\n")
		out.WriteString("    movzx rax, al\n")
		out.WriteString("    cmp rcx, 0\n")
		out.WriteString("    setne cl\n")
		out.WriteString("    movzx rcx, cl\n")
		out.WriteString("    xor rax, rcx\n")
		if n.Op == token.XNOR {
			out.WriteString("    xor rax, 1\n")
		}
		out.WriteString("    push rax\n")
	}
}

// genShortCircuit handles or/nor (stopAtTruthy=true) and and/nand
// (stopAtTruthy=false). invert flips the final boolean for the "n"-prefixed
// complemented form.
func (g *Generator) genShortCircuit(n *ast.BinaryExpr, out *strings.Builder, stopAtTruthy, invert bool) {
	shortLabel := g.newLabel()
	endLabel := g.newLabel()

	g.genExpr(n.Left, out)
	out.WriteString("    pop rax\n")
	out.WriteString("    cmp rax, 0\n")
	if stopAtTruthy {
		fmt.Fprintf(out, "    jne %s\n", shortLabel)
	} else {
		fmt.Fprintf(out, "    je %s\n", shortLabel)
	}

	g.genExpr(n.Right, out)
	out.WriteString("    pop rax\n")
	out.WriteString("    cmp rax, 0\n")
	out.WriteString("    setne al\n")
	out.WriteString("    movzx rax, al\n")
	fmt.Fprintf(out, "    jmp %s\n", endLabel)

	fmt.Fprintf(out, "%s:\n", shortLabel)
	if stopAtTruthy {
		out.WriteString("    mov rax, 1\n")
	} else {
		out.WriteString("    mov rax, 0\n")
	}
	fmt.Fprintf(out, "%s:\n", endLabel)
	if invert {
		out.WriteString("    xor rax, 1\n")
	}
	out.WriteString("    push rax\n")
}

func (g *Generator) genBitwise(n *ast.BinaryExpr, out *strings.Builder) {
	g.genExpr(n.Left, out)
	g.genExpr(n.Right, out)
	out.WriteString("    pop rcx\n")
	out.WriteString("    pop rax\n")
	switch n.Op {
	case token.BOR, token.NBOR:
		out.WriteString("    or rax, rcx\n")
	case token.BAND, token.NBAND:
		out.WriteString("    and rax, rcx\n")
	case token.BXOR, token.NBXOR:
		out.WriteString("    xor rax, rcx\n")
	}
	switch n.Op {
	case token.NBOR, token.NBAND, token.NBXOR:
		out.WriteString("    not rax\n")
	}
	out.WriteString("    push rax\n")
}

func (g *Generator) genUnary(n *ast.UnaryExpr, out *strings.Builder) {
	switch n.Op {
	case token.NOT:
		g.genExpr(n.Operand, out)
		out.WriteString("    pop rax\n")
		out.WriteString("    cmp rax, 0\n")
		out.WriteString("    sete al\n")
		out.WriteString("    movzx rax, al\n")
		out.WriteString("    push rax\n")

	case token.NNOT:
		g.genExpr(n.Operand, out)
		out.WriteString("    pop rax\n")
		out.WriteString("    cmp rax, 0\n")
		out.WriteString("    setne al\n")
		out.WriteString("    movzx rax, al\n")
		out.WriteString("    push rax\n")

	case token.BNOT:
		g.genExpr(n.Operand, out)
		out.WriteString("    pop rax\n")
		out.WriteString("    not rax\n")
		out.WriteString("    push rax\n")

	case token.NBNOT:
		// Complemented bnot: ~~x is x, so the operand's value is pushed unchanged.
		g.genExpr(n.Operand, out)

	case token.MINUS:
		g.genExpr(n.Operand, out)
		out.WriteString("    pop rax\n")
		out.WriteString("    neg rax\n")
		out.WriteString("    push rax\n")

	case token.ADDR:
		g.genAddr(n.Operand, out)

	case token.DEREF:
		g.genExpr(n.Operand, out)
		out.WriteString("    pop rax\n")
		g.genLoadFromAddr(g.inferType(n), out)
		out.WriteString("    push rax\n")
	}
}

var builtinIntrinsic = map[string]string{
	"print":   "ignis_print_int",
	"putchar": "ignis_putchar",
	"getchar": "ignis_getchar",
}

func (g *Generator) genCall(n *ast.CallExpr, out *strings.Builder) {
	if name, ok := builtinIntrinsic[n.Callee]; ok {
		for _, a := range n.Args {
			g.genExpr(a, out)
		}
		argRegs := []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
		for i := len(n.Args) - 1; i >= 0; i-- {
			fmt.Fprintf(out, "    pop %s\n", argRegs[i])
		}
		fmt.Fprintf(out, "    call %s\n", name)
		out.WriteString("    push rax\n")
		return
	}
	if n.Callee == "alloc" {
		g.genExpr(n.Args[0], out)
		out.WriteString("    pop rdi\n")
		out.WriteString("    call ignis_alloc\n")
		out.WriteString("    push rax\n")
		return
	}
	if n.Callee == "free" {
		g.genExpr(n.Args[0], out)
		out.WriteString("    pop rdi\n")
		out.WriteString("    call ignis_free\n")
		out.WriteString("    push rax\n")
		return
	}

	for _, a := range n.Args {
		g.genExpr(a, out)
	}
	argRegs := []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
	for i := len(n.Args) - 1; i >= 0; i-- {
		fmt.Fprintf(out, "    pop %s\n", argRegs[i])
	}
	fmt.Fprintf(out, "    call %s\n", n.Callee)
	out.WriteString("    push rax\n")
}
