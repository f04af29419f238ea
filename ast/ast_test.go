package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ignis/token"
	"ignis/types"
)

func TestBinaryExprString(t *testing.T) {
	expr := &BinaryExpr{
		Token: token.Token{Type: token.PLUS, Literal: "+"},
		Op:    token.PLUS,
		Left:  &IntegerLiteral{Value: 2},
		Right: &BinaryExpr{
			Token: token.Token{Type: token.ASTERISK, Literal: "*"},
			Op:    token.ASTERISK,
			Left:  &IntegerLiteral{Value: 3},
			Right: &IntegerLiteral{Value: 4},
		},
	}
	require.Equal(t, "(2 + (3 * 4))", expr.String())
}

func TestFuncDeclString(t *testing.T) {
	fn := &FuncDecl{
		ReturnType: types.Scalar(types.Int),
		Name:       "main",
		Body: &BlockExpr{
			Stmts: []Statement{
				&ExpressionStmt{Expr: &CallExpr{Callee: "print", Args: []Expression{&IntegerLiteral{Value: 7}}}},
			},
			Tail: &IntegerLiteral{Value: 0},
		},
	}
	require.Equal(t, "int main() { print(7); 0 }", fn.String())
}

func TestStructDefString(t *testing.T) {
	def := &StructDef{
		Name:       "Pt",
		FieldNames: []string{"x", "y"},
		FieldTypes: []types.Type{types.Scalar(types.Int), types.Scalar(types.Int)},
	}
	require.Equal(t, "struct Pt { int x; int y; }", def.String())
}

func TestIfExprString(t *testing.T) {
	ifExpr := &IfExpr{
		Cond: &Identifier{Name: "cond"},
		Then: &BlockExpr{Tail: &IntegerLiteral{Value: 1}},
		Else: &BlockExpr{Tail: &IntegerLiteral{Value: 0}},
	}
	require.Equal(t, "if (cond) { 1 } else { 0 }", ifExpr.String())
}

func TestCharAndStringLiteralEscaping(t *testing.T) {
	c := &CharLiteral{Value: '\n'}
	require.Equal(t, `'\n'`, c.String())

	s := &StringLiteral{Value: "a\nb"}
	require.Equal(t, `"a\nb"`, s.String())
}
