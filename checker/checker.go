// ==============================================================================================
// FILE: checker/checker.go
// ==============================================================================================
// PACKAGE: checker
// PURPOSE: The semantic pass between parsing and code generation: struct
//          registration, a scoped symbol table, type inference and
//          checking, lvalue/mutability rules, and dead-loop diagnostics.
//          Never mutates the AST; it only reports through the shared
//          Reporter and builds the struct-layout table that both code
//          generators receive through Structs.
// ==============================================================================================

package checker

import (
	"ignis/ast"
	"ignis/report"
	"ignis/token"
	"ignis/types"
)

// symbol is what the scope stack maps a name to: its Type and whether it
// was declared mutable. Constants and function parameters are never
// mutable.
type symbol struct {
	Type    types.Type
	Mutable bool
}

// funcSig is the checked signature of a user-defined function, built during
// the struct/function registration pre-pass so forward calls resolve.
type funcSig struct {
	ParamTypes []types.Type
	ReturnType types.Type
}

// Checker holds all state needed across the two passes described in the
// component design: struct registration, then a walk over every other
// top-level declaration.
type Checker struct {
	rep *report.Reporter

	structs map[string]types.Layout
	funcs   map[string]funcSig
	consts  map[string]symbol

	scopes []map[string]symbol

	curFuncReturn types.Type
}

// New builds a Checker that reports through rep.
func New(rep *report.Reporter) *Checker {
	return &Checker{
		rep:     rep,
		structs: map[string]types.Layout{},
		funcs:   map[string]funcSig{},
		consts:  map[string]symbol{},
	}
}

// Structs exposes the struct-layout table built during registration, for
// the code generators to consult.
func (c *Checker) Structs() map[string]types.Layout { return c.structs }

// Check runs both passes over prog. Callers must check rep.HasErrors()
// afterward; a failed check means no code generator should run.
func (c *Checker) Check(prog *ast.Program) {
	c.registerStructs(prog)
	if c.rep.HasErrors() {
		return
	}
	c.registerFuncsAndConsts(prog)
	if c.rep.HasErrors() {
		return
	}
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			c.checkFunc(n)
		case *ast.ConstDecl:
			// already type-checked during registration
		case *ast.StructDef:
			// already registered
		}
	}
}

// ----------------------------------------------------------------------------------------------
// Pass 1: struct registration
// ----------------------------------------------------------------------------------------------

func (c *Checker) registerStructs(prog *ast.Program) {
	for _, d := range prog.Decls {
		def, ok := d.(*ast.StructDef)
		if !ok {
			continue
		}
		if _, exists := c.structs[def.Name]; exists {
			c.rep.Error("SE001", "struct '"+def.Name+"' already declared", def.Token)
			continue
		}
		seen := map[string]bool{}
		for _, name := range def.FieldNames {
			if seen[name] {
				c.rep.Error("SE002", "duplicate field '"+name+"' in struct '"+def.Name+"'", def.Token)
			}
			seen[name] = true
		}
		layout := types.BuildLayout(def.Name, def.FieldNames, def.FieldTypes, c.lookupLayout)
		c.structs[def.Name] = layout
	}
}

func (c *Checker) lookupLayout(name string) (types.Layout, bool) {
	l, ok := c.structs[name]
	return l, ok
}

// registerFuncsAndConsts records every function's signature and every
// top-level constant's type up front, so forward references between
// functions (and a function referring to a constant declared later in the
// file) resolve without a third pass.
func (c *Checker) registerFuncsAndConsts(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			c.funcs[n.Name] = funcSig{ParamTypes: n.ParamTypes, ReturnType: n.ReturnType}
		case *ast.ConstDecl:
			c.pushScope() // const initializers may reference builtins only; no locals yet
			initType := c.checkExpr(n.Init)
			c.popScope()
			if !initType.Equal(n.Type) {
				c.rep.Error("SE007", "constant '"+n.Name+"' initializer type does not match declared type", n.Token)
			}
			c.consts[n.Name] = symbol{Type: n.Type, Mutable: false}
		}
	}
}

// ----------------------------------------------------------------------------------------------
// Scope stack
// ----------------------------------------------------------------------------------------------

func (c *Checker) pushScope() { c.scopes = append(c.scopes, map[string]symbol{}) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) declare(name string, sym symbol, tok token.Token) {
	top := c.scopes[len(c.scopes)-1]
	if _, exists := top[name]; exists {
		c.rep.Error("SE004", "'"+name+"' already declared in this scope", tok)
		return
	}
	top[name] = sym
}

// resolve walks the scope stack from innermost to outermost, then falls
// back to top-level constants.
func (c *Checker) resolve(name string) (symbol, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i][name]; ok {
			return sym, true
		}
	}
	if sym, ok := c.consts[name]; ok {
		return sym, true
	}
	return symbol{}, false
}

// ----------------------------------------------------------------------------------------------
// Pass 2: functions
// ----------------------------------------------------------------------------------------------

func (c *Checker) checkFunc(fn *ast.FuncDecl) {
	c.curFuncReturn = fn.ReturnType
	c.pushScope()
	for i, name := range fn.ParamNames {
		c.declare(name, symbol{Type: fn.ParamTypes[i], Mutable: false}, fn.Token)
	}
	c.checkBlockNoPush(fn.Body)
	c.popScope()
}

// checkBlock pushes one scope for the block, as the original checker's
// visit_Block does (one scope per block, not per statement), then pops it.
func (c *Checker) checkBlock(b *ast.BlockExpr) types.Type {
	c.pushScope()
	t := c.checkBlockNoPush(b)
	c.popScope()
	return t
}

func (c *Checker) checkBlockNoPush(b *ast.BlockExpr) types.Type {
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	if b.Tail != nil {
		return c.checkExpr(b.Tail)
	}
	return types.Scalar(types.Void)
}

// ----------------------------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------------------------

func (c *Checker) checkStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(n)
	case *ast.ConstDecl:
		t := c.checkExpr(n.Init)
		if !t.Equal(n.Type) {
			c.rep.Error("SE007", "constant '"+n.Name+"' initializer type does not match declared type", n.Token)
		}
		c.declare(n.Name, symbol{Type: n.Type, Mutable: false}, n.Token)
	case *ast.AssignStmt:
		c.checkAssign(n)
	case *ast.ReturnStmt:
		c.checkReturn(n)
	case *ast.WhileStmt:
		c.checkWhile(n)
	case *ast.LoopStmt:
		c.checkLoop(n)
	case *ast.ForStmt:
		c.checkFor(n)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// legality with respect to an enclosing loop is a back-end concern
		// (see the native code generator's label stack).
	case *ast.ExpressionStmt:
		c.checkExpr(n.Expr)
	}
}

func (c *Checker) checkVarDecl(n *ast.VarDecl) {
	if n.Init != nil {
		initType := c.checkExpr(n.Init)
		if !initType.Equal(n.Type) {
			c.rep.Error("SE007", "initializer type does not match declared type for '"+n.Name+"'", n.Token)
		}
	}
	c.declare(n.Name, symbol{Type: n.Type, Mutable: n.Mutable}, n.Token)
}

func (c *Checker) checkAssign(n *ast.AssignStmt) {
	targetType, mutable, ok := c.checkLvalue(n.Target)
	if !ok {
		return
	}
	if !mutable {
		c.rep.Error("SE009", "assignment to immutable binding", n.Token)
	}
	valueType := c.checkExpr(n.Value)
	if !valueType.Equal(targetType) {
		c.rep.Error("SE007", "assignment value type does not match target type", n.Token)
	}
}

// checkLvalue validates that target is exactly one of a variable
// reference, a member access, or a dereference of a pointer expression, and
// returns its Type and whether it is mutable.
func (c *Checker) checkLvalue(target ast.Expression) (types.Type, bool, bool) {
	switch n := target.(type) {
	case *ast.Identifier:
		sym, ok := c.resolve(n.Name)
		if !ok {
			c.rep.Error("SE003", "undefined variable '"+n.Name+"'", n.Token)
			return types.Type{}, false, false
		}
		return sym.Type, sym.Mutable, true
	case *ast.MemberExpr:
		t := c.checkExpr(n)
		return t, true, true
	case *ast.UnaryExpr:
		if n.Op == token.DEREF {
			t := c.checkExpr(n)
			return t, true, true
		}
		c.rep.Error("SE008-2", "invalid assignment target", n.Token)
		return types.Type{}, false, false
	default:
		c.rep.Error("SE008-1", "invalid assignment target", exprToken(target))
		return types.Type{}, false, false
	}
}

// exprToken extracts the representative token carried by an expression
// node, for diagnostics that have an expression but need a position.
func exprToken(e ast.Expression) token.Token {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return n.Token
	case *ast.CharLiteral:
		return n.Token
	case *ast.StringLiteral:
		return n.Token
	case *ast.Identifier:
		return n.Token
	case *ast.BinaryExpr:
		return n.Token
	case *ast.UnaryExpr:
		return n.Token
	case *ast.CallExpr:
		return n.Token
	case *ast.MemberExpr:
		return n.Token
	case *ast.AllocExpr:
		return n.Token
	case *ast.NewExpr:
		return n.Token
	case *ast.FreeExpr:
		return n.Token
	case *ast.BlockExpr:
		return n.Token
	case *ast.IfExpr:
		return n.Token
	default:
		return token.Token{}
	}
}

func (c *Checker) checkReturn(n *ast.ReturnStmt) {
	if n.Value == nil {
		return
	}
	t := c.checkExpr(n.Value)
	if !t.Equal(c.curFuncReturn) {
		c.rep.Error("SE007", "return value type does not match function return type", n.Token)
	}
}

func (c *Checker) checkWhile(n *ast.WhileStmt) {
	c.checkExpr(n.Cond)
	c.checkBlock(n.Body)

	if lit, ok := n.Cond.(*ast.IntegerLiteral); ok && lit.Value != 0 {
		if !hasBreak(n.Body) {
			c.rep.Warning("W002", "while loop with a non-zero constant condition and no break never terminates", n.Token)
		}
	}
}

func (c *Checker) checkLoop(n *ast.LoopStmt) {
	c.checkBlock(n.Body)
	if !hasBreak(n.Body) {
		c.rep.Warning("W001", "loop has no break and never terminates", n.Token)
	}
}

func (c *Checker) checkFor(n *ast.ForStmt) {
	c.pushScope()
	if n.Init != nil {
		c.checkStmt(n.Init)
	}
	if n.Cond != nil {
		c.checkExpr(n.Cond)
	}
	if n.Step != nil {
		c.checkStmt(n.Step)
	}
	c.checkBlockNoPush(n.Body)
	c.popScope()
}

