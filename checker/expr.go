// ==============================================================================================
// FILE: checker/expr.go
// ==============================================================================================
// PACKAGE: checker
// PURPOSE: Type inference and operator typing rules, split out of
//          checker.go for readability. One method per expression kind,
//          dispatched by a type switch from checkExpr.
// ==============================================================================================

package checker

import (
	"ignis/ast"
	"ignis/token"
	"ignis/types"
)

var builtinSignatures = map[string]struct {
	Params []types.Type
	Return types.Type
}{
	"print":   {Params: []types.Type{types.Scalar(types.Int)}, Return: types.Scalar(types.Int)},
	"putchar": {Params: []types.Type{types.Scalar(types.Char)}, Return: types.Scalar(types.Int)},
	"getchar": {Params: nil, Return: types.Scalar(types.Int)},
}

func (c *Checker) checkExpr(e ast.Expression) types.Type {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return types.Scalar(types.Int)
	case *ast.CharLiteral:
		return types.Scalar(types.Char)
	case *ast.StringLiteral:
		return types.Scalar(types.Char).Pointer()
	case *ast.Identifier:
		return c.checkIdentifier(n)
	case *ast.BinaryExpr:
		return c.checkBinary(n)
	case *ast.UnaryExpr:
		return c.checkUnary(n)
	case *ast.CallExpr:
		return c.checkCall(n)
	case *ast.MemberExpr:
		return c.checkMember(n)
	case *ast.AllocExpr:
		c.checkExpr(n.Size)
		return types.Scalar(types.Char).Pointer()
	case *ast.NewExpr:
		return n.Type.Pointer()
	case *ast.FreeExpr:
		c.checkExpr(n.Pointer)
		return types.Scalar(types.Void)
	case *ast.BlockExpr:
		return c.checkBlock(n)
	case *ast.IfExpr:
		return c.checkIfExpr(n)
	}
	return types.Scalar(types.Void)
}

func (c *Checker) checkIdentifier(n *ast.Identifier) types.Type {
	sym, ok := c.resolve(n.Name)
	if !ok {
		c.rep.Error("SE003", "undefined variable '"+n.Name+"'", n.Token)
		return types.Scalar(types.Void)
	}
	return sym.Type
}

func (c *Checker) checkMember(n *ast.MemberExpr) types.Type {
	baseType := c.checkExpr(n.Base)
	structName := string(baseType.Base)
	layout, ok := c.structs[structName]
	if !ok {
		c.rep.Error("SE005", "undefined struct '"+structName+"'", n.Token)
		return types.Scalar(types.Void)
	}
	ft, ok := layout.FieldType(n.Field)
	if !ok {
		c.rep.Error("SE006", "struct '"+structName+"' has no field '"+n.Field+"'", n.Token)
		return types.Scalar(types.Void)
	}
	return ft
}

func (c *Checker) checkCall(n *ast.CallExpr) types.Type {
	if sig, ok := builtinSignatures[n.Callee]; ok {
		if len(n.Args) != len(sig.Params) {
			c.rep.Error("E012", "'"+n.Callee+"' expects "+itoa(len(sig.Params))+" argument(s)", n.Token)
		}
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return sig.Return
	}
	if n.Callee == "alloc" || n.Callee == "free" {
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		if n.Callee == "alloc" {
			return types.Scalar(types.Char).Pointer()
		}
		return types.Scalar(types.Void)
	}

	sig, ok := c.funcs[n.Callee]
	if !ok {
		c.rep.Error("SE003", "undefined function '"+n.Callee+"'", n.Token)
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return types.Scalar(types.Void)
	}
	if len(n.Args) > 6 {
		c.rep.Error("E012", "too many arguments to '"+n.Callee+"' (max 6)", n.Token)
	}
	if len(n.Args) != len(sig.ParamTypes) {
		c.rep.Error("E012", "'"+n.Callee+"' expects "+itoa(len(sig.ParamTypes))+" argument(s)", n.Token)
	}
	for i, a := range n.Args {
		at := c.checkExpr(a)
		if i < len(sig.ParamTypes) && !at.Equal(sig.ParamTypes[i]) {
			c.rep.Error("SE007", "argument type mismatch in call to '"+n.Callee+"'", n.Token)
		}
	}
	return sig.ReturnType
}

func (c *Checker) checkIfExpr(n *ast.IfExpr) types.Type {
	c.checkExpr(n.Cond)
	t := c.checkBlock(n.Then)
	for _, e := range n.Elifs {
		c.checkExpr(e.Cond)
		c.checkBlock(e.Then)
	}
	if n.Else != nil {
		c.checkBlock(n.Else)
	}
	return t
}

var arithmeticOps = map[token.Type]bool{
	token.PLUS: true, token.MINUS: true, token.ASTERISK: true, token.SLASH: true,
}

var relationalOps = map[token.Type]bool{
	token.EQ: true, token.NOT_EQ: true, token.LT: true, token.LT_EQ: true,
	token.GT: true, token.GT_EQ: true,
}

var logicalFamily = map[token.Type]bool{
	token.OR: true, token.AND: true, token.XOR: true,
	token.NOR: true, token.NAND: true, token.XNOR: true,
}

var bitwiseFamily = map[token.Type]bool{
	token.BOR: true, token.BAND: true, token.BXOR: true,
	token.NBOR: true, token.NBAND: true, token.NBXOR: true,
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) types.Type {
	left := c.checkExpr(n.Left)
	right := c.checkExpr(n.Right)

	switch {
	case n.Op == token.TYPE_EQ:
		return types.Scalar(types.Int)

	case arithmeticOps[n.Op]:
		return c.checkArithmetic(n, left, right)

	case relationalOps[n.Op]:
		if !left.Equal(right) {
			c.rep.Error("SE011", "comparison operands have mismatched types", n.Token)
		}
		return types.Scalar(types.Int)

	case logicalFamily[n.Op]:
		if !left.IsIntLike() || !right.IsIntLike() {
			c.rep.Error("SE012-1", "logical operator requires integer-like operands", n.Token)
		}
		return types.Scalar(types.Int)

	case bitwiseFamily[n.Op]:
		if !left.IsIntLike() || !right.IsIntLike() {
			c.rep.Error("SE012-2", "bitwise operator requires integer-like operands", n.Token)
		}
		return types.Scalar(types.Int)
	}
	return types.Scalar(types.Void)
}

// checkArithmetic implements the pointer-preserving exception to the plain
// "both operands int or char" rule: pointer ± integer keeps the pointer's
// type; everything else requires both sides int or char.
func (c *Checker) checkArithmetic(n *ast.BinaryExpr, left, right types.Type) types.Type {
	if (n.Op == token.PLUS || n.Op == token.MINUS) && left.IsPointer() && right.IsInt() {
		return left
	}
	if n.Op == token.PLUS && left.IsInt() && right.IsPointer() {
		return right
	}
	if !left.IsIntLike() || !right.IsIntLike() {
		c.rep.Error("SE010", "arithmetic operator requires int or char operands", n.Token)
	}
	return left
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) types.Type {
	switch n.Op {
	case token.NOT:
		t := c.checkExpr(n.Operand)
		if !t.IsIntLike() {
			c.rep.Error("SE013-1", "'not' requires an integer-like operand", n.Token)
		}
		return types.Scalar(types.Int)
	case token.BNOT:
		t := c.checkExpr(n.Operand)
		if !t.IsIntLike() {
			c.rep.Error("SE013-2", "'bnot' requires an integer-like operand", n.Token)
		}
		return types.Scalar(types.Int)
	case token.NNOT:
		t := c.checkExpr(n.Operand)
		if !t.IsIntLike() {
			c.rep.Error("SE013-3", "'nnot' requires an integer-like operand", n.Token)
		}
		return types.Scalar(types.Int)
	case token.NBNOT:
		t := c.checkExpr(n.Operand)
		if !t.IsIntLike() {
			c.rep.Error("SE013-4", "'nbnot' requires an integer-like operand", n.Token)
		}
		return types.Scalar(types.Int)
	case token.MINUS:
		t := c.checkExpr(n.Operand)
		if !t.IsInt() {
			c.rep.Error("SE014", "unary minus requires an int operand", n.Token)
		}
		return types.Scalar(types.Int)
	case token.ADDR:
		return c.checkAddr(n)
	case token.DEREF:
		t := c.checkExpr(n.Operand)
		if !t.IsPointer() {
			c.rep.Error("SE015", "'deref' requires a pointer operand", n.Token)
			return types.Scalar(types.Void)
		}
		return t.Pointee()
	}
	return types.Scalar(types.Void)
}

func (c *Checker) checkAddr(n *ast.UnaryExpr) types.Type {
	switch n.Operand.(type) {
	case *ast.Identifier, *ast.MemberExpr:
		t := c.checkExpr(n.Operand)
		return t.Pointer()
	default:
		c.rep.Error("SE016", "'addr' requires a variable or member access", n.Token)
		c.checkExpr(n.Operand)
		return types.Scalar(types.Void).Pointer()
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
