// ==============================================================================================
// FILE: codegen/native/infer.go
// ==============================================================================================
// PACKAGE: native
// PURPOSE: A second, lighter pass over expression types, needed by codegen
//          for pointer-arithmetic scaling, field sizes, and folding "===".
//          The checker has already rejected anything ill-typed by the time
//          this runs, so this never reports diagnostics; it only recovers
//          the type a already-checked expression has.
// ==============================================================================================

package native

import (
	"ignis/ast"
	"ignis/types"
)

func (g *Generator) inferType(e ast.Expression) types.Type {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return types.Scalar(types.Int)
	case *ast.CharLiteral:
		return types.Scalar(types.Char)
	case *ast.StringLiteral:
		return types.Scalar(types.Char).Pointer()
	case *ast.Identifier:
		if slot, ok := g.lookupLocal(n.Name); ok {
			return slot.typ
		}
		return types.Scalar(types.Int)
	case *ast.MemberExpr:
		baseType := g.inferType(n.Base)
		layout, ok := g.structs[string(baseType.Base)]
		if !ok {
			return types.Scalar(types.Void)
		}
		ft, _ := layout.FieldType(n.Field)
		return ft
	case *ast.BinaryExpr:
		return g.inferBinary(n)
	case *ast.UnaryExpr:
		return g.inferUnary(n)
	case *ast.CallExpr:
		if sig, ok := builtinReturns[n.Callee]; ok {
			return sig
		}
		if n.Callee == "alloc" {
			return types.Scalar(types.Char).Pointer()
		}
		if n.Callee == "free" {
			return types.Scalar(types.Void)
		}
		if rt, ok := g.funcReturns[n.Callee]; ok {
			return rt
		}
		return types.Scalar(types.Int)
	case *ast.AllocExpr:
		return types.Scalar(types.Char).Pointer()
	case *ast.NewExpr:
		return n.Type.Pointer()
	case *ast.FreeExpr:
		return types.Scalar(types.Void)
	case *ast.BlockExpr:
		if n.Tail != nil {
			return g.inferType(n.Tail)
		}
		return types.Scalar(types.Void)
	case *ast.IfExpr:
		return g.inferBlockValue(n.Then)
	}
	return types.Scalar(types.Int)
}

func (g *Generator) inferBlockValue(b *ast.BlockExpr) types.Type {
	if b.Tail != nil {
		return g.inferType(b.Tail)
	}
	return types.Scalar(types.Void)
}

var builtinReturns = map[string]types.Type{
	"print":   types.Scalar(types.Int),
	"putchar": types.Scalar(types.Int),
	"getchar": types.Scalar(types.Int),
}

func (g *Generator) inferBinary(n *ast.BinaryExpr) types.Type {
	left := g.inferType(n.Left)
	right := g.inferType(n.Right)
	switch {
	case isArithmeticOp(n.Op):
		if left.IsPointer() {
			return left
		}
		if right.IsPointer() {
			return right
		}
		return types.Scalar(types.Int)
	default:
		return types.Scalar(types.Int)
	}
}

func (g *Generator) inferUnary(n *ast.UnaryExpr) types.Type {
	switch {
	case isDeref(n):
		return g.inferType(n.Operand).Pointee()
	case isAddr(n):
		return g.inferType(n.Operand).Pointer()
	case isMinus(n):
		return types.Scalar(types.Int)
	default:
		return types.Scalar(types.Int)
	}
}
