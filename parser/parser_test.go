package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ignis/ast"
	"ignis/lexer"
	"ignis/report"
)

func parseProgram(t *testing.T, src string) (*ast.Program, *report.Reporter) {
	t.Helper()
	rep := report.New("t.ig", src)
	l := lexer.New(src, rep)
	p := New(l, rep)
	prog := p.ParseProgram()
	return prog, rep
}

func TestParseSimpleFunction(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { print(2+3*4); return 0; }`)
	require.False(t, rep.HasErrors())
	require.Len(t, prog.Decls, 1)

	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "main", fn.Name)
	require.Len(t, fn.Body.Stmts, 2)

	exprStmt, ok := fn.Body.Stmts[0].(*ast.ExpressionStmt)
	require.True(t, ok)
	call, ok := exprStmt.Expr.(*ast.CallExpr)
	require.True(t, ok)
	require.Equal(t, "print", call.Callee)

	binop, ok := call.Args[0].(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", binop.Token.Literal)
	right, ok := binop.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "*", right.Token.Literal)
}

func TestParseVarDeclAndAssignment(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { mut int x = 1; x = x + x; return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)

	decl, ok := fn.Body.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	require.True(t, decl.Mutable)
	require.Equal(t, "x", decl.Name)

	assign, ok := fn.Body.Stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	target, ok := assign.Target.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "x", target.Name)
}

func TestParsePointerRoundTrip(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { mut int x = 7; ptr int p = addr x; print(deref p); return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)

	pdecl, ok := fn.Body.Stmts[1].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, 1, pdecl.Type.PointerLevel)
	addrExpr, ok := pdecl.Init.(*ast.UnaryExpr)
	require.True(t, ok)
	require.Equal(t, "addr", addrExpr.Token.Literal)
}

func TestParseStructFieldAccess(t *testing.T) {
	prog, rep := parseProgram(t, `struct Pt { int x; int y; } int main() { mut Pt p; p.x = 3; print(p.x + p.y); return 0; }`)
	require.False(t, rep.HasErrors())
	require.Len(t, prog.Decls, 2)

	def, ok := prog.Decls[0].(*ast.StructDef)
	require.True(t, ok)
	require.Equal(t, []string{"x", "y"}, def.FieldNames)

	fn := prog.Decls[1].(*ast.FuncDecl)
	assign, ok := fn.Body.Stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	member, ok := assign.Target.(*ast.MemberExpr)
	require.True(t, ok)
	require.Equal(t, "x", member.Field)
}

func TestParseIfExpressionTernaryForm(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { int v = 1 if 3 > 2 else 0; print(v); return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	decl := fn.Body.Stmts[0].(*ast.VarDecl)
	ifExpr, ok := decl.Init.(*ast.IfExpr)
	require.True(t, ok)
	require.NotNil(t, ifExpr.Else)
}

func TestParseIfStatementSurfaceForm(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { if (1 > 0) { print(1); } elif (1 < 0) { print(2); } else { print(3); } return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	stmt, ok := fn.Body.Stmts[0].(*ast.ExpressionStmt)
	require.True(t, ok)
	ifExpr, ok := stmt.Expr.(*ast.IfExpr)
	require.True(t, ok)
	require.Len(t, ifExpr.Elifs, 1)
}

func TestParseDeadLoop(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { loop { print(1); } }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	_, ok := fn.Body.Stmts[0].(*ast.LoopStmt)
	require.True(t, ok)
}

func TestParseForLoop(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { for (mut int i = 0; i < 10; i = i + 1) { print(i); } return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	f, ok := fn.Body.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, f.Init)
	require.NotNil(t, f.Cond)
	require.NotNil(t, f.Step)
}

func TestParseLogicalAndBitwiseOperatorPrecedence(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { int v = 1 or 0 and 1; return v; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	decl := fn.Body.Stmts[0].(*ast.VarDecl)
	bin, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "or", bin.Token.Literal)
	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "and", right.Token.Literal)
}

func TestParseTypeEqualsOperator(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { int v = 1 === 2; return v; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	decl := fn.Body.Stmts[0].(*ast.VarDecl)
	bin, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "===", bin.Token.Literal)
}

func TestParseConstDecl(t *testing.T) {
	prog, rep := parseProgram(t, `const int LIMIT = 10; int main() { return LIMIT; }`)
	require.False(t, rep.HasErrors())
	c, ok := prog.Decls[0].(*ast.ConstDecl)
	require.True(t, ok)
	require.Equal(t, "LIMIT", c.Name)
}

func TestParseAllocNewFree(t *testing.T) {
	prog, rep := parseProgram(t, `struct Pt { int x; int y; } int main() { ptr char raw = alloc(16); ptr Pt p = new Pt; free(raw); return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[1].(*ast.FuncDecl)

	rawDecl := fn.Body.Stmts[0].(*ast.VarDecl)
	_, ok := rawDecl.Init.(*ast.AllocExpr)
	require.True(t, ok)

	pDecl := fn.Body.Stmts[1].(*ast.VarDecl)
	newExpr, ok := pDecl.Init.(*ast.NewExpr)
	require.True(t, ok)
	require.Equal(t, "Pt", string(newExpr.Type.Base))

	freeStmt := fn.Body.Stmts[2].(*ast.ExpressionStmt)
	_, ok = freeStmt.Expr.(*ast.FreeExpr)
	require.True(t, ok)
}

func TestRoundTripPrettyPrintReparse(t *testing.T) {
	src := `int main() { mut int x = 1; x = x + x; return x; }`
	prog, rep := parseProgram(t, src)
	require.False(t, rep.HasErrors())

	printed := prog.String()
	prog2, rep2 := parseProgram(t, printed)
	require.False(t, rep2.HasErrors())
	require.Equal(t, prog.String(), prog2.String())
}

func TestComparisonIsNonAssociative(t *testing.T) {
	_, rep := parseProgram(t, `int main() { print(1 == 2 == 3); return 0; }`)
	require.True(t, rep.HasErrors(), "chained comparison must not silently parse as (1 == 2) == 3")
}

func TestSingleComparisonStillParses(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { print(1 == 2); return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	exprStmt := fn.Body.Stmts[0].(*ast.ExpressionStmt)
	call := exprStmt.Expr.(*ast.CallExpr)
	binop, ok := call.Args[0].(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "==", binop.Token.Literal)
	_, leftIsBinary := binop.Left.(*ast.BinaryExpr)
	require.False(t, leftIsBinary)
}

func TestComparisonInsideLowerPrecedenceOperandIsNonAssociative(t *testing.T) {
	_, rep := parseProgram(t, `int main() { print((1 == 2 == 3) and 1); return 0; }`)
	require.True(t, rep.HasErrors())
}

func TestArithmeticChainingStillLeftAssociative(t *testing.T) {
	prog, rep := parseProgram(t, `int main() { print(1 + 2 + 3); return 0; }`)
	require.False(t, rep.HasErrors())
	fn := prog.Decls[0].(*ast.FuncDecl)
	exprStmt := fn.Body.Stmts[0].(*ast.ExpressionStmt)
	call := exprStmt.Expr.(*ast.CallExpr)
	binop, ok := call.Args[0].(*ast.BinaryExpr)
	require.True(t, ok)
	left, ok := binop.Left.(*ast.BinaryExpr)
	require.True(t, ok, "1+2+3 must still parse as (1+2)+3")
	require.Equal(t, "+", left.Token.Literal)
}
