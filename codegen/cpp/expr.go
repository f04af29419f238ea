// ==============================================================================================
// FILE: codegen/cpp/expr.go
// ==============================================================================================
// PACKAGE: cpp
// PURPOSE: Expression lowering. Unlike the native backend's stack machine,
//          this produces one C++ expression string per Ignis expression,
//          letting the host compiler do instruction selection.
// ==============================================================================================

package cpp

import (
	"fmt"
	"strings"

	"ignis/ast"
	"ignis/token"
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

func isDerefOp(n *ast.UnaryExpr) bool { return n.Op == token.DEREF }
func isAddrOp(n *ast.UnaryExpr) bool  { return n.Op == token.ADDR }

var cppRelOp = map[token.Type]string{
	token.EQ: "==", token.NOT_EQ: "!=",
	token.LT: "<", token.LT_EQ: "<=",
	token.GT: ">", token.GT_EQ: ">=",
}

var cppArithOp = map[token.Type]string{
	token.PLUS: "+", token.MINUS: "-", token.ASTERISK: "*", token.SLASH: "/",
}

var builtinCall = map[string]string{
	"print":   "ignis_print_int",
	"putchar": "ignis_putchar",
	"getchar": "ignis_getchar",
}

// lowerExpr renders e as a single C++ expression. IfExpr and multi-statement
// BlockExpr fall back to an immediately-invoked lambda since C++ has no
// block-expression syntax of its own.
func (g *Generator) lowerExpr(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return fmt.Sprintf("%d", n.Value)
	case *ast.CharLiteral:
		return fmt.Sprintf("'%s'", escapeCppChar(n.Value))
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", n.Value)
	case *ast.Identifier:
		return n.Name
	case *ast.BinaryExpr:
		return g.lowerBinary(n)
	case *ast.UnaryExpr:
		return g.lowerUnary(n)
	case *ast.CallExpr:
		return g.lowerCall(n)
	case *ast.MemberExpr:
		return g.lowerMember(n)
	case *ast.AllocExpr:
		return fmt.Sprintf("ignis_alloc(%s)", g.lowerExpr(n.Size))
	case *ast.NewExpr:
		return fmt.Sprintf("reinterpret_cast<%s>(ignis_alloc(sizeof(%s)))", cppType(n.Type.Pointer()), cppType(n.Type))
	case *ast.FreeExpr:
		return fmt.Sprintf("ignis_free(%s)", g.lowerExpr(n.Pointer))
	case *ast.BlockExpr:
		return g.lowerBlockAsLambda(n)
	case *ast.IfExpr:
		return g.lowerIfAsLambda(n)
	}
	return "0"
}

func escapeCppChar(b byte) string {
	switch b {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	case '\'':
		return `\'`
	default:
		return string(b)
	}
}

func (g *Generator) lowerMember(n *ast.MemberExpr) string {
	baseType := g.inferType(n.Base)
	op := "."
	if baseType.IsPointer() {
		op = "->"
	}
	return fmt.Sprintf("(%s)%s%s", g.lowerExpr(n.Base), op, n.Field)
}

func (g *Generator) lowerCall(n *ast.CallExpr) string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = g.lowerExpr(a)
	}
	name := n.Callee
	if mapped, ok := builtinCall[n.Callee]; ok {
		name = mapped
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

func (g *Generator) lowerBinary(n *ast.BinaryExpr) string {
	switch {
	case n.Op == token.TYPE_EQ:
		// Folded entirely at codegen time: operands are never rendered, only
		// their static types compared, matching the native backend.
		if g.inferType(n.Left).Equal(g.inferType(n.Right)) {
			return "1"
		}
		return "0"

	case isArithmeticOp(n.Op):
		return fmt.Sprintf("((%s) %s (%s))", g.lowerExpr(n.Left), cppArithOp[n.Op], g.lowerExpr(n.Right))

	case isRelationalOp(n.Op):
		return fmt.Sprintf("static_cast<int64_t>((%s) %s (%s))", g.lowerExpr(n.Left), cppRelOp[n.Op], g.lowerExpr(n.Right))

	case isLogicalOp(n.Op):
		return g.lowerLogical(n)

	case isBitwiseOp(n.Op):
		return g.lowerBitwise(n)
	}
	return "0"
}

func (g *Generator) lowerLogical(n *ast.BinaryExpr) string {
	l, r := g.lowerExpr(n.Left), g.lowerExpr(n.Right)
	switch n.Op {
	case token.OR:
		return fmt.Sprintf("static_cast<int64_t>((%s) || (%s))", l, r)
	case token.NOR:
		return fmt.Sprintf("static_cast<int64_t>(!((%s) || (%s)))", l, r)
	case token.AND:
		return fmt.Sprintf("static_cast<int64_t>((%s) && (%s))", l, r)
	case token.NAND:
		return fmt.Sprintf("static_cast<int64_t>(!((%s) && (%s)))", l, r)
	case token.XOR:
		return fmt.Sprintf("static_cast<int64_t>(!!(%s) != !!(%s))", l, r)
	case token.XNOR:
		return fmt.Sprintf("static_cast<int64_t>(!!(%s) == !!(%s))", l, r)
	}
	return "0"
}

func (g *Generator) lowerBitwise(n *ast.BinaryExpr) string {
	l, r := g.lowerExpr(n.Left), g.lowerExpr(n.Right)
	switch n.Op {
	case token.BOR:
		return fmt.Sprintf("((%s) | (%s))", l, r)
	case token.NBOR:
		return fmt.Sprintf("(~((%s) | (%s)))", l, r)
	case token.BAND:
		return fmt.Sprintf("((%s) & (%s))", l, r)
	case token.NBAND:
		return fmt.Sprintf("(~((%s) & (%s)))", l, r)
	case token.BXOR:
		return fmt.Sprintf("((%s) ^ (%s))", l, r)
	case token.NBXOR:
		return fmt.Sprintf("(~((%s) ^ (%s)))", l, r)
	}
	return "0"
}

func (g *Generator) lowerUnary(n *ast.UnaryExpr) string {
	x := g.lowerExpr(n.Operand)
	switch n.Op {
	case token.NOT:
		return fmt.Sprintf("static_cast<int64_t>(!(%s))", x)
	case token.NNOT:
		return fmt.Sprintf("static_cast<int64_t>(!!(%s))", x)
	case token.BNOT:
		return fmt.Sprintf("(~(%s))", x)
	case token.NBNOT:
		return fmt.Sprintf("(~(~(%s)))", x)
	case token.MINUS:
		return fmt.Sprintf("(-(%s))", x)
	case token.ADDR:
		return fmt.Sprintf("(&(%s))", x)
	case token.DEREF:
		return fmt.Sprintf("(*(%s))", x)
	}
	return x
}

// lowerBlockAsLambda renders a block used for its value as an
// immediately-invoked lambda: "[&]() -> T { stmts; return tail; }()".
func (g *Generator) lowerBlockAsLambda(b *ast.BlockExpr) string {
	retType := cppType(g.inferType(b))
	g.pushScope()
	var body strings.Builder
	g.genBlockStmts(b, &body, 0)
	if b.Tail != nil {
		fmt.Fprintf(&body, "return %s; ", g.lowerExpr(b.Tail))
	}
	g.popScope()
	return fmt.Sprintf("[&]() -> %s { %s}()", retType, body.String())
}

// lowerIfAsLambda renders an if/elif/else used for its value the same way,
// with each arm returning its block's tail.
func (g *Generator) lowerIfAsLambda(n *ast.IfExpr) string {
	retType := cppType(g.inferType(n))
	var body strings.Builder
	fmt.Fprintf(&body, "if (%s) { %s} ", g.lowerExpr(n.Cond), g.ifArmBody(n.Then))
	for _, elif := range n.Elifs {
		fmt.Fprintf(&body, "else if (%s) { %s} ", g.lowerExpr(elif.Cond), g.ifArmBody(elif.Then))
	}
	fmt.Fprintf(&body, "else { %s}", g.ifArmBody(n.Else))
	return fmt.Sprintf("[&]() -> %s { %s }()", retType, body.String())
}

// ifArmBody renders one if/elif/else arm's statements with its own scope,
// matching checkIfExpr's independent checkBlock call per arm.
func (g *Generator) ifArmBody(b *ast.BlockExpr) string {
	g.pushScope()
	var body strings.Builder
	g.genBlockStmts(b, &body, 0)
	if b.Tail != nil {
		fmt.Fprintf(&body, "return %s; ", g.lowerExpr(b.Tail))
	}
	g.popScope()
	return body.String()
}
