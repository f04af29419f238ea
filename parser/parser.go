// ==============================================================================================
// FILE: parser/parser.go
// ==============================================================================================
// PACKAGE: parser
// PURPOSE: A single-pass descent parser with one token of lookahead. Builds
//          the typed AST from the lexer's token stream: precedence-climbing
//          for expressions, recursive descent for statements and top-level
//          declarations.
// ==============================================================================================

package parser

import (
	"fmt"
	"strconv"

	"ignis/ast"
	"ignis/lexer"
	"ignis/report"
	"ignis/token"
	"ignis/types"
)

// Precedence levels, low to high, per the expression grammar: the ternary
// if/else suffix binds loosest, primary expressions bind tightest.
const (
	LOWEST int = iota
	TERNARY
	ORPREC
	ANDPREC
	BORPREC
	BXORPREC
	BANDPREC
	CMPPREC
	ADDPREC
	MULPREC
	UNARYPREC
	CALLPREC
)

var precedences = map[token.Type]int{
	token.IF: TERNARY,

	token.OR: ORPREC, token.NOR: ORPREC, token.XOR: ORPREC, token.XNOR: ORPREC,
	token.AND: ANDPREC, token.NAND: ANDPREC,
	token.BOR: BORPREC, token.NBOR: BORPREC,
	token.BXOR: BXORPREC, token.NBXOR: BXORPREC,
	token.BAND: BANDPREC, token.NBAND: BANDPREC,

	token.EQ: CMPPREC, token.NOT_EQ: CMPPREC, token.LT: CMPPREC, token.LT_EQ: CMPPREC,
	token.GT: CMPPREC, token.GT_EQ: CMPPREC, token.TYPE_EQ: CMPPREC,

	token.PLUS: ADDPREC, token.MINUS: ADDPREC,
	token.ASTERISK: MULPREC, token.SLASH: MULPREC,

	token.LPAREN: CALLPREC, token.DOT: CALLPREC,
}

// nonAssociative marks precedence levels where the grammar allows at most
// one operator per level (spec.md §4.3: "Comparison... non-associative; at
// most one per level"). parseExpression consults this to refuse chaining
// `a == b == c` into `(a == b) == c` instead of silently accepting it.
var nonAssociative = map[int]bool{
	CMPPREC: true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser holds the scanning state: the lexer behind it and the current and
// peek tokens.
type Parser struct {
	l   *lexer.Lexer
	rep *report.Reporter

	cur  token.Token
	peek token.Token

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New builds a Parser reading from l, reporting syntax errors through rep.
func New(l *lexer.Lexer, rep *report.Reporter) *Parser {
	p := &Parser{l: l, rep: rep}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.INT:    p.parseIntegerLiteral,
		token.CHAR:   p.parseCharLiteral,
		token.STRING: p.parseStringLiteral,
		token.IDENT:  p.parseIdentifierOrCall,
		token.LPAREN: p.parseGroupedExpression,
		token.LBRACE: p.parseBlockExpression,
		token.IF:     p.parseIfExpression,
		token.MINUS:  p.parseUnaryExpression,
		token.NOT:    p.parseUnaryExpression,
		token.BNOT:   p.parseUnaryExpression,
		token.NNOT:   p.parseUnaryExpression,
		token.NBNOT:  p.parseUnaryExpression,
		token.ADDR:   p.parseUnaryExpression,
		token.DEREF:  p.parseUnaryExpression,
		token.ALLOC:  p.parseAllocExpression,
		token.NEW:    p.parseNewExpression,
		token.FREE:   p.parseFreeExpression,
	}

	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS: p.parseBinaryExpression, token.MINUS: p.parseBinaryExpression,
		token.ASTERISK: p.parseBinaryExpression, token.SLASH: p.parseBinaryExpression,
		token.EQ: p.parseBinaryExpression, token.NOT_EQ: p.parseBinaryExpression,
		token.LT: p.parseBinaryExpression, token.LT_EQ: p.parseBinaryExpression,
		token.GT: p.parseBinaryExpression, token.GT_EQ: p.parseBinaryExpression,
		token.TYPE_EQ: p.parseBinaryExpression,
		token.OR:      p.parseBinaryExpression, token.NOR: p.parseBinaryExpression,
		token.XOR: p.parseBinaryExpression, token.XNOR: p.parseBinaryExpression,
		token.AND: p.parseBinaryExpression, token.NAND: p.parseBinaryExpression,
		token.BOR: p.parseBinaryExpression, token.NBOR: p.parseBinaryExpression,
		token.BXOR: p.parseBinaryExpression, token.NBXOR: p.parseBinaryExpression,
		token.BAND: p.parseBinaryExpression, token.NBAND: p.parseBinaryExpression,
		token.DOT: p.parseMemberExpression,
		token.IF:  p.parseTernaryExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("E001", "expected next token to be %s, got %s instead", t, p.peek.Type)
	return false
}

func (p *Parser) errorf(code, format string, args ...interface{}) {
	if p.rep != nil {
		p.rep.Error(code, fmt.Sprintf(format, args...), p.peek)
	}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the whole file into a Program of top-level
// declarations.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		decl := p.parseDecl()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		if p.rep != nil && p.rep.HasErrors() {
			return prog
		}
		p.nextToken()
	}
	return prog
}

// parseDecl dispatches a top-level declaration: a constant, a struct
// definition, or a function.
func (p *Parser) parseDecl() ast.Decl {
	switch {
	case p.curTokenIs(token.CONST):
		return p.parseConstDecl()
	case p.curTokenIs(token.STRUCT):
		return p.parseStructDef()
	default:
		return p.parseFuncDecl()
	}
}

func (p *Parser) parseConstDecl() *ast.ConstDecl {
	tok := p.cur
	p.nextToken()
	ty := p.parseType()
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	init := p.parseExpression(LOWEST)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ConstDecl{Token: tok, Type: ty, Name: name, Init: init}
}

func (p *Parser) parseStructDef() *ast.StructDef {
	tok := p.cur
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	def := &ast.StructDef{Token: tok, Name: name}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		ty := p.parseType()
		if !p.expectPeek(token.IDENT) {
			return def
		}
		def.FieldNames = append(def.FieldNames, p.cur.Literal)
		def.FieldTypes = append(def.FieldTypes, ty)
		if !p.expectPeek(token.SEMICOLON) {
			return def
		}
	}
	p.expectPeek(token.RBRACE)
	return def
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	tok := p.cur
	retType := p.parseType()
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	fn := &ast.FuncDecl{Token: tok, ReturnType: retType, Name: name}
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		ty := p.parseType()
		if !p.expectPeek(token.IDENT) {
			return fn
		}
		fn.ParamNames = append(fn.ParamNames, p.cur.Literal)
		fn.ParamTypes = append(fn.ParamTypes, ty)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return fn
	}
	if !p.expectPeek(token.LBRACE) {
		return fn
	}
	fn.Body = p.parseBlockBody()
	return fn
}

// parseType consumes zero or more "ptr" modifiers followed by a base type
// name (int, char, or a struct identifier). It leaves cur on the last
// consumed token.
func (p *Parser) parseType() types.Type {
	level := 0
	for p.curTokenIs(token.PTR) {
		level++
		p.nextToken()
	}

	var base types.Base
	switch p.cur.Type {
	case token.INT_TYPE:
		base = types.Int
	case token.CHAR_TYPE:
		base = types.Char
	case token.IDENT:
		base = types.Base(p.cur.Literal)
	default:
		p.errorf("E017", "expected type, got %s instead", p.cur.Type)
	}
	return types.Type{Base: base, PointerLevel: level}
}

// ----------------------------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------------------------

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.CONST:
		return p.parseConstDecl()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.LOOP:
		return p.parseLoopStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.BREAK:
		return p.parseBreakStmt()
	case token.CONTINUE:
		return p.parseContinueStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	}

	if p.isVarDeclStart() {
		return p.parseVarDecl()
	}

	return p.parseExpressionOrAssignStmt()
}

// isVarDeclStart reports whether the current position begins a variable
// declaration: a type keyword, "mut", "ptr", or an identifier immediately
// followed by another identifier (a struct-typed declaration).
func (p *Parser) isVarDeclStart() bool {
	switch p.cur.Type {
	case token.INT_TYPE, token.CHAR_TYPE, token.MUT, token.PTR:
		return true
	case token.IDENT:
		return p.peekTokenIs(token.IDENT)
	}
	return false
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	tok := p.cur
	mutable := false
	if p.curTokenIs(token.MUT) {
		mutable = true
		p.nextToken()
	}
	ty := p.parseType()
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Literal

	decl := &ast.VarDecl{Token: tok, Type: ty, Name: name, Mutable: mutable}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		decl.Init = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return decl
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	tok := p.cur
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockBody()
	return &ast.WhileStmt{Token: tok, Cond: cond, Body: body}
}

func (p *Parser) parseLoopStmt() *ast.LoopStmt {
	tok := p.cur
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockBody()
	return &ast.LoopStmt{Token: tok, Body: body}
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	tok := p.cur
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	f := &ast.ForStmt{Token: tok}

	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) {
		f.Init = p.parseStatement()
		if !p.curTokenIs(token.SEMICOLON) && !p.expectPeek(token.SEMICOLON) {
			return f
		}
	}
	p.nextToken()

	if !p.curTokenIs(token.SEMICOLON) {
		f.Cond = p.parseExpression(LOWEST)
		if !p.expectPeek(token.SEMICOLON) {
			return f
		}
	}
	p.nextToken()

	if !p.curTokenIs(token.RPAREN) {
		f.Step = p.parseStatement()
	}
	if !p.curTokenIs(token.RPAREN) && !p.expectPeek(token.RPAREN) {
		return f
	}
	if !p.expectPeek(token.LBRACE) {
		return f
	}
	f.Body = p.parseBlockBody()
	return f
}

func (p *Parser) parseBreakStmt() *ast.BreakStmt {
	tok := p.cur
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return &ast.BreakStmt{Token: tok}
}

func (p *Parser) parseContinueStmt() *ast.ContinueStmt {
	tok := p.cur
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ContinueStmt{Token: tok}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	tok := p.cur
	r := &ast.ReturnStmt{Token: tok}
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		r.Value = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return r
}

// parseExpressionOrAssignStmt parses an expression; if it is immediately
// followed by "=", it is re-interpreted as an lvalue target and an
// assignment is produced instead of an expression statement.
func (p *Parser) parseExpressionOrAssignStmt() ast.Statement {
	tok := p.cur
	expr := p.parseExpression(LOWEST)

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		return &ast.AssignStmt{Token: tok, Target: expr, Value: value}
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ExpressionStmt{Token: tok, Expr: expr}
}

// ----------------------------------------------------------------------------------------------
// Blocks
// ----------------------------------------------------------------------------------------------

// parseBlockBody parses statements up to the matching "}". cur is the
// opening "{" on entry; on exit cur is the closing "}". If the final item
// parsed is an expression not terminated by ";" before the brace, it
// becomes the block's tail value instead of a statement.
func (p *Parser) parseBlockBody() *ast.BlockExpr {
	block := &ast.BlockExpr{Token: p.cur}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.isTailExpressionStart() {
			tok := p.cur
			expr := p.parseExpression(LOWEST)
			switch {
			case p.peekTokenIs(token.SEMICOLON):
				p.nextToken()
				block.Stmts = append(block.Stmts, &ast.ExpressionStmt{Token: tok, Expr: expr})
			case p.peekTokenIs(token.RBRACE):
				block.Tail = expr
			case p.peekTokenIs(token.ASSIGN):
				p.nextToken()
				p.nextToken()
				value := p.parseExpression(LOWEST)
				if p.peekTokenIs(token.SEMICOLON) {
					p.nextToken()
				}
				block.Stmts = append(block.Stmts, &ast.AssignStmt{Token: tok, Target: expr, Value: value})
			default:
				block.Stmts = append(block.Stmts, &ast.ExpressionStmt{Token: tok, Expr: expr})
			}
		} else {
			stmt := p.parseStatement()
			if stmt != nil {
				block.Stmts = append(block.Stmts, stmt)
			}
		}
		if p.rep != nil && p.rep.HasErrors() {
			break
		}
		p.nextToken()
	}
	return block
}

// isTailExpressionStart reports whether the current statement position
// looks like a bare expression (as opposed to a keyword-led statement or a
// variable declaration), the only shape that may become a block's tail
// value.
func (p *Parser) isTailExpressionStart() bool {
	switch p.cur.Type {
	case token.CONST, token.WHILE, token.LOOP, token.FOR, token.BREAK, token.CONTINUE, token.RETURN:
		return false
	}
	return !p.isVarDeclStart()
}

// ----------------------------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------------------------

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.errorf("E001", "no prefix parse function for %s found", p.cur.Type)
		return nil
	}
	left := prefix()

	consumedNonAssoc := false
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		peekPrec := p.peekPrecedence()
		if nonAssociative[peekPrec] {
			if consumedNonAssoc {
				break
			}
			consumedNonAssoc = true
		}
		infix := p.infixFns[p.peek.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.cur
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.errorf("E001", "could not parse %q as integer", tok.Literal)
		v = 0
	}
	return &ast.IntegerLiteral{Token: tok, Value: v}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	tok := p.cur
	var v byte
	if len(tok.Literal) > 0 {
		v = tok.Literal[0]
	}
	return &ast.CharLiteral{Token: tok, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.cur, Value: p.cur.Literal}
}

// parseIdentifierOrCall parses a bare identifier, unless it is immediately
// followed by "(", in which case it is a function call.
func (p *Parser) parseIdentifierOrCall() ast.Expression {
	tok := p.cur
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		return p.parseCallExpression(tok)
	}
	return &ast.Identifier{Token: tok, Name: tok.Literal}
}

func (p *Parser) parseCallExpression(callee token.Token) ast.Expression {
	call := &ast.CallExpr{Token: callee, Callee: callee.Literal}
	call.Args = p.parseCallArgs()
	return call
}

func (p *Parser) parseCallArgs() []ast.Expression {
	var args []ast.Expression
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(token.RPAREN) {
		return args
	}
	return args
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseBlockExpression() ast.Expression {
	return p.parseBlockBody()
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.cur
	p.nextToken()
	operand := p.parseExpression(UNARYPREC)
	return &ast.UnaryExpr{Token: tok, Op: tok.Type, Operand: operand}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpr{Token: tok, Op: tok.Type, Left: left, Right: right}
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	if !p.expectPeek(token.IDENT) {
		return left
	}
	return &ast.MemberExpr{Token: tok, Base: left, Field: p.cur.Literal}
}

// parseTernaryExpression handles the "THEN if COND else ELSE" suffix form,
// right-associative on its else branch.
func (p *Parser) parseTernaryExpression(then ast.Expression) ast.Expression {
	tok := p.cur
	p.nextToken()
	cond := p.parseExpression(TERNARY)
	if !p.expectPeek(token.ELSE) {
		return then
	}
	p.nextToken()
	elseExpr := p.parseExpression(LOWEST)

	return &ast.IfExpr{
		Token: tok,
		Cond:  cond,
		Then:  &ast.BlockExpr{Token: tok, Tail: then},
		Else:  &ast.BlockExpr{Token: tok, Tail: elseExpr},
	}
}

// parseIfExpression handles the statement-surface form:
// "if (E) B (elif (E) B)* [else B]". A missing else arm becomes an empty
// Else block.
func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.cur
	ifExpr := &ast.IfExpr{Token: tok}

	if !p.expectPeek(token.LPAREN) {
		return ifExpr
	}
	p.nextToken()
	ifExpr.Cond = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return ifExpr
	}
	if !p.expectPeek(token.LBRACE) {
		return ifExpr
	}
	ifExpr.Then = p.parseBlockBody()

	for p.peekTokenIs(token.ELIF) {
		p.nextToken()
		if !p.expectPeek(token.LPAREN) {
			return ifExpr
		}
		p.nextToken()
		cond := p.parseExpression(LOWEST)
		if !p.expectPeek(token.RPAREN) {
			return ifExpr
		}
		if !p.expectPeek(token.LBRACE) {
			return ifExpr
		}
		then := p.parseBlockBody()
		ifExpr.Elifs = append(ifExpr.Elifs, ast.ElifClause{Cond: cond, Then: then})
	}

	if !p.peekTokenIs(token.ELSE) {
		ifExpr.Else = &ast.BlockExpr{Token: tok}
		return ifExpr
	}
	p.nextToken()
	if !p.expectPeek(token.LBRACE) {
		return ifExpr
	}
	ifExpr.Else = p.parseBlockBody()
	return ifExpr
}

func (p *Parser) parseAllocExpression() ast.Expression {
	tok := p.cur
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	size := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return &ast.AllocExpr{Token: tok, Size: size}
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.cur
	p.nextToken()
	ty := p.parseType()
	return &ast.NewExpr{Token: tok, Type: ty}
}

func (p *Parser) parseFreeExpression() ast.Expression {
	tok := p.cur
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	ptr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return &ast.FreeExpr{Token: tok, Pointer: ptr}
}
