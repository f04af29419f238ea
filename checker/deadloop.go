// ==============================================================================================
// FILE: checker/deadloop.go
// ==============================================================================================
// PACKAGE: checker
// PURPOSE: The "has a break" scan backing W001/W002. It is a plain
//          recursive walk, not a visitor: it must NOT descend into the body
//          of a nested loop/while/for, since a break there exits the inner
//          loop, not the one being asked about.
// ==============================================================================================

package checker

import "ignis/ast"

// hasBreak reports whether body contains a break reachable without first
// entering a nested loop, while, or for.
func hasBreak(body *ast.BlockExpr) bool {
	for _, s := range body.Stmts {
		if stmtHasBreak(s) {
			return true
		}
	}
	if body.Tail != nil {
		return exprHasBreak(body.Tail)
	}
	return false
}

func stmtHasBreak(s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.BreakStmt:
		return true
	case *ast.WhileStmt, *ast.LoopStmt, *ast.ForStmt:
		return false // a break here belongs to the nested loop, not the outer one
	case *ast.AssignStmt:
		return exprHasBreak(n.Target) || exprHasBreak(n.Value)
	case *ast.ReturnStmt:
		if n.Value != nil {
			return exprHasBreak(n.Value)
		}
		return false
	case *ast.VarDecl:
		if n.Init != nil {
			return exprHasBreak(n.Init)
		}
		return false
	case *ast.ConstDecl:
		return exprHasBreak(n.Init)
	case *ast.ExpressionStmt:
		return exprHasBreak(n.Expr)
	}
	return false
}

// exprHasBreak descends into if-expressions and blocks-as-expressions
// (which share the current loop) but never into a nested loop construct,
// which cannot appear as an expression anyway.
func exprHasBreak(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.BlockExpr:
		return hasBreak(n)
	case *ast.IfExpr:
		if exprHasBreak(n.Cond) || hasBreak(n.Then) {
			return true
		}
		for _, elif := range n.Elifs {
			if exprHasBreak(elif.Cond) || hasBreak(elif.Then) {
				return true
			}
		}
		if n.Else != nil && hasBreak(n.Else) {
			return true
		}
		return false
	case *ast.BinaryExpr:
		return exprHasBreak(n.Left) || exprHasBreak(n.Right)
	case *ast.UnaryExpr:
		return exprHasBreak(n.Operand)
	case *ast.CallExpr:
		for _, a := range n.Args {
			if exprHasBreak(a) {
				return true
			}
		}
		return false
	case *ast.MemberExpr:
		return exprHasBreak(n.Base)
	case *ast.AllocExpr:
		return exprHasBreak(n.Size)
	case *ast.FreeExpr:
		return exprHasBreak(n.Pointer)
	}
	return false
}
