// ==============================================================================================
// FILE: codegen/native/stmt.go
// ==============================================================================================
// PACKAGE: native
// PURPOSE: Statement and control-flow codegen: blocks-as-values, if/elif/else,
//          while/loop/for, break/continue resolved against a label stack
//          (this is where E013/E014 are actually raised, per the documented
//          split between checker-time and codegen-time diagnostics),
//          assignment including struct-by-value copies, and locals scoping
//          (pushScope/popScope/declareLocal live in native.go).
// ==============================================================================================

package native

import (
	"fmt"
	"strings"

	"ignis/ast"
)

// genBlockForValue evaluates every statement in b, then pushes the value of
// its tail expression, or 0 if the block has none. Function bodies and
// every value-producing expression form use it.
func (g *Generator) genBlockForValue(b *ast.BlockExpr, out *strings.Builder) {
	for _, s := range b.Stmts {
		g.genStmt(s, out)
	}
	if b.Tail != nil {
		g.genExpr(b.Tail, out)
	} else {
		out.WriteString("    push 0\n")
	}
}

// genBlockDiscard is genBlockForValue for a loop body, whose value is never
// used: the tail value, if any, is computed and dropped so the stack stays
// balanced.
func (g *Generator) genBlockDiscard(b *ast.BlockExpr, out *strings.Builder) {
	g.genBlockForValue(b, out)
	out.WriteString("    add rsp, 8\n")
}

func (g *Generator) genStmt(s ast.Statement, out *strings.Builder) {
	switch n := s.(type) {
	case *ast.VarDecl:
		g.genVarDecl(n, out)
	case *ast.ConstDecl:
		g.genConstDecl(n, out)
	case *ast.AssignStmt:
		g.genAssign(n, out)
	case *ast.ReturnStmt:
		g.genReturn(n, out)
	case *ast.WhileStmt:
		g.genWhile(n, out)
	case *ast.LoopStmt:
		g.genLoop(n, out)
	case *ast.ForStmt:
		g.genFor(n, out)
	case *ast.BreakStmt:
		g.genBreak(n, out)
	case *ast.ContinueStmt:
		g.genContinue(n, out)
	case *ast.ExpressionStmt:
		g.genExpr(n.Expr, out)
		out.WriteString("    add rsp, 8\n") // discard: a statement-position expression's value is never used
	}
}

func (g *Generator) genVarDecl(n *ast.VarDecl, out *strings.Builder) {
	slot := g.declareLocal(n.Name, n.Type, 8)
	if n.Init == nil {
		return
	}
	if slot.typ.IsStruct() && !slot.typ.IsPointer() {
		g.genStructCopyInto(slot.offset, n.Init, out)
		return
	}
	g.genExpr(n.Init, out)
	out.WriteString("    pop rax\n")
	g.storeToSlot(slot, out)
}

func (g *Generator) genConstDecl(n *ast.ConstDecl, out *strings.Builder) {
	slot := g.declareLocal(n.Name, n.Type, 8)
	if slot.typ.IsStruct() && !slot.typ.IsPointer() {
		g.genStructCopyInto(slot.offset, n.Init, out)
		return
	}
	g.genExpr(n.Init, out)
	out.WriteString("    pop rax\n")
	g.storeToSlot(slot, out)
}

func (g *Generator) storeToSlot(slot varSlot, out *strings.Builder) {
	if slot.typ.IsChar() {
		fmt.Fprintf(out, "    mov [rbp%d], al\n", slot.offset)
	} else {
		fmt.Fprintf(out, "    mov [rbp%d], rax\n", slot.offset)
	}
}

// genAssign writes Value into the address named by Target. Struct-valued
// targets copy the whole aggregate with rep movsb instead of a single
// 8-byte store.
func (g *Generator) genAssign(n *ast.AssignStmt, out *strings.Builder) {
	targetType := g.inferType(n.Target)
	if targetType.IsStruct() && !targetType.IsPointer() {
		g.genAddr(n.Target, out)
		out.WriteString("    pop rdi\n")
		g.genStructCopyFromExprToAddr(n.Value, "rdi", out)
		return
	}

	g.genAddr(n.Target, out)
	g.genExpr(n.Value, out)
	out.WriteString("    pop rax\n") // value
	out.WriteString("    pop rcx\n") // address
	if targetType.IsChar() {
		out.WriteString("    mov [rcx], al\n")
	} else {
		out.WriteString("    mov [rcx], rax\n")
	}
}

// genStructCopyInto copies a struct-valued initializer into the local slot
// at dstOffset.
func (g *Generator) genStructCopyInto(dstOffset int, src ast.Expression, out *strings.Builder) {
	fmt.Fprintf(out, "    lea rdi, [rbp%d]\n", dstOffset)
	g.genStructCopyFromExprToAddr(src, "rdi", out)
}

// genStructCopyFromExprToAddr evaluates the address of the struct-valued
// expression src and rep-movsb's its declared size of bytes into the
// destination address currently held in destReg.
func (g *Generator) genStructCopyFromExprToAddr(src ast.Expression, destReg string, out *strings.Builder) {
	g.genAddr(src, out)
	out.WriteString("    pop rsi\n")
	if destReg != "rdi" {
		fmt.Fprintf(out, "    mov rdi, %s\n", destReg)
	}
	size := g.sizeOf(g.inferType(src))
	fmt.Fprintf(out, "    mov rcx, %d\n", size)
	out.WriteString("    rep movsb\n")
}

func (g *Generator) genReturn(n *ast.ReturnStmt, out *strings.Builder) {
	if n.Value != nil {
		g.genExpr(n.Value, out)
		out.WriteString("    pop rax\n")
	}
	fmt.Fprintf(out, "    jmp .L_ret_%s\n", g.curFuncName)
}

func (g *Generator) genWhile(n *ast.WhileStmt, out *strings.Builder) {
	startLabel := g.newLabel()
	endLabel := g.newLabel()
	g.loopStack = append(g.loopStack, loopLabels{continueLabel: startLabel, endLabel: endLabel})

	fmt.Fprintf(out, "%s:\n", startLabel)
	g.genExpr(n.Cond, out)
	out.WriteString("    pop rax\n")
	out.WriteString("    cmp rax, 0\n")
	fmt.Fprintf(out, "    je %s\n", endLabel)
	g.pushScope()
	g.genBlockDiscard(n.Body, out)
	g.popScope()
	fmt.Fprintf(out, "    jmp %s\n", startLabel)
	fmt.Fprintf(out, "%s:\n", endLabel)

	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

func (g *Generator) genLoop(n *ast.LoopStmt, out *strings.Builder) {
	startLabel := g.newLabel()
	endLabel := g.newLabel()
	g.loopStack = append(g.loopStack, loopLabels{continueLabel: startLabel, endLabel: endLabel})

	fmt.Fprintf(out, "%s:\n", startLabel)
	g.pushScope()
	g.genBlockDiscard(n.Body, out)
	g.popScope()
	fmt.Fprintf(out, "    jmp %s\n", startLabel)
	fmt.Fprintf(out, "%s:\n", endLabel)

	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

// genFor shares one scope across Init, Cond, Step, and Body, mirroring
// checkFor's single pushScope/checkBlockNoPush pair: the loop variable
// declared in Init stays visible to Step and Body but nowhere past the
// loop.
func (g *Generator) genFor(n *ast.ForStmt, out *strings.Builder) {
	g.pushScope()
	if n.Init != nil {
		g.genStmt(n.Init, out)
	}
	startLabel := g.newLabel()
	stepLabel := g.newLabel()
	endLabel := g.newLabel()
	g.loopStack = append(g.loopStack, loopLabels{continueLabel: stepLabel, endLabel: endLabel})

	fmt.Fprintf(out, "%s:\n", startLabel)
	if n.Cond != nil {
		g.genExpr(n.Cond, out)
		out.WriteString("    pop rax\n")
		out.WriteString("    cmp rax, 0\n")
		fmt.Fprintf(out, "    je %s\n", endLabel)
	}
	g.genBlockDiscard(n.Body, out)
	fmt.Fprintf(out, "%s:\n", stepLabel)
	if n.Step != nil {
		g.genStmt(n.Step, out)
	}
	fmt.Fprintf(out, "    jmp %s\n", startLabel)
	fmt.Fprintf(out, "%s:\n", endLabel)

	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	g.popScope()
}

// genBreak and genContinue resolve against the label stack built by the
// enclosing while/loop/for. An empty stack means the construct appears
// outside any loop; that is E013/E014, raised here rather than by the
// checker.
func (g *Generator) genBreak(n *ast.BreakStmt, out *strings.Builder) {
	if len(g.loopStack) == 0 {
		g.rep.Error("E013", "'break' outside of a loop", n.Token)
		return
	}
	top := g.loopStack[len(g.loopStack)-1]
	fmt.Fprintf(out, "    jmp %s\n", top.endLabel)
}

func (g *Generator) genContinue(n *ast.ContinueStmt, out *strings.Builder) {
	if len(g.loopStack) == 0 {
		g.rep.Error("E014", "'continue' outside of a loop", n.Token)
		return
	}
	top := g.loopStack[len(g.loopStack)-1]
	fmt.Fprintf(out, "    jmp %s\n", top.continueLabel)
}

// genIfForValue lowers the unified if/elif/else node, which always has an
// Else arm, to a cascade of comparisons with all outcomes converging on a
// single end label. Every arm pushes exactly one value.
func (g *Generator) genIfForValue(n *ast.IfExpr, out *strings.Builder) {
	endLabel := g.newLabel()
	nextLabel := g.newLabel()

	g.genExpr(n.Cond, out)
	out.WriteString("    pop rax\n")
	out.WriteString("    cmp rax, 0\n")
	fmt.Fprintf(out, "    je %s\n", nextLabel)
	g.pushScope()
	g.genBlockForValue(n.Then, out)
	g.popScope()
	fmt.Fprintf(out, "    jmp %s\n", endLabel)
	fmt.Fprintf(out, "%s:\n", nextLabel)

	for _, elif := range n.Elifs {
		thisNext := g.newLabel()
		g.genExpr(elif.Cond, out)
		out.WriteString("    pop rax\n")
		out.WriteString("    cmp rax, 0\n")
		fmt.Fprintf(out, "    je %s\n", thisNext)
		g.pushScope()
		g.genBlockForValue(elif.Then, out)
		g.popScope()
		fmt.Fprintf(out, "    jmp %s\n", endLabel)
		fmt.Fprintf(out, "%s:\n", thisNext)
	}

	g.pushScope()
	g.genBlockForValue(n.Else, out)
	g.popScope()
	fmt.Fprintf(out, "%s:\n", endLabel)
}
