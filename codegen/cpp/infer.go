// ==============================================================================================
// FILE: codegen/cpp/infer.go
// ==============================================================================================
// PACKAGE: cpp
// PURPOSE: The same lightweight re-inference the native backend needs,
//          used here to decide "." vs "->" on member access and to fold
//          "===" at compile time. The program has already passed the
//          checker, so this never reports a diagnostic.
// ==============================================================================================

package cpp

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
		if t, ok := g.lookupLocalType(n.Name); ok {
			return t
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
		return g.inferBinaryType(n)
	case *ast.UnaryExpr:
		return g.inferUnaryType(n)
	case *ast.CallExpr:
		if t, ok := builtinReturnTypes[n.Callee]; ok {
			return t
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
		if n.Then.Tail != nil {
			return g.inferType(n.Then.Tail)
		}
		return types.Scalar(types.Void)
	}
	return types.Scalar(types.Int)
}

var builtinReturnTypes = map[string]types.Type{
	"print":   types.Scalar(types.Int),
	"putchar": types.Scalar(types.Int),
	"getchar": types.Scalar(types.Int),
}

func (g *Generator) inferBinaryType(n *ast.BinaryExpr) types.Type {
	left := g.inferType(n.Left)
	right := g.inferType(n.Right)
	if isArithmeticOp(n.Op) {
		if left.IsPointer() {
			return left
		}
		if right.IsPointer() {
			return right
		}
	}
	return types.Scalar(types.Int)
}

func (g *Generator) inferUnaryType(n *ast.UnaryExpr) types.Type {
	switch {
	case isDerefOp(n):
		return g.inferType(n.Operand).Pointee()
	case isAddrOp(n):
		return g.inferType(n.Operand).Pointer()
	default:
		return types.Scalar(types.Int)
	}
}
