// ==============================================================================================
// FILE: codegen/cpp/cpp.go
// ==============================================================================================
// PACKAGE: cpp
// PURPOSE: Lowers a checked program to portable C++17, as an alternative to
//          the native x86-64 backend. Unlike the native generator this one
//          leans on the host compiler for everything it can: struct layout,
//          pointer arithmetic scaling, and control flow are all real C++
//          constructs rather than hand-emitted instructions.
// ==============================================================================================

package cpp

import (
	"fmt"
	"strings"

	"ignis/ast"
	"ignis/report"
	"ignis/types"
)

// Generator holds the struct layout table (only consulted for IsStruct/
// pointer-level checks; C++ handles the actual field offsets itself) and
// the per-function local type table needed to decide "." vs "->" on member
// access and to lower blocks-as-expressions. locals is a stack of scopes,
// innermost last, mirroring the checker's own scope stack (and the native
// backend's frame-slot scoping) so a shadowing inner declaration does not
// mislabel an outer one still in scope elsewhere in the same function; real
// C++ scoping keeps the emitted code itself correct regardless, but this
// table must still track which declaration a given identifier occurrence
// refers to, or "." vs "->" can be picked from the wrong type.
type Generator struct {
	rep     *report.Reporter
	structs map[string]types.Layout

	funcReturns map[string]types.Type
	locals      []map[string]types.Type
}

func (g *Generator) pushScope() { g.locals = append(g.locals, map[string]types.Type{}) }
func (g *Generator) popScope()  { g.locals = g.locals[:len(g.locals)-1] }

func (g *Generator) declareLocalType(name string, t types.Type) {
	g.locals[len(g.locals)-1][name] = t
}

func (g *Generator) lookupLocalType(name string) (types.Type, bool) {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if t, ok := g.locals[i][name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// Generate lowers prog to a complete translation unit, including the
// #include of the embedded runtime header.
func Generate(prog *ast.Program, structs map[string]types.Layout, rep *report.Reporter) (string, error) {
	g := &Generator{
		rep:         rep,
		structs:     structs,
		funcReturns: map[string]types.Type{},
	}

	var out strings.Builder
	out.WriteString("// Generated by ignisc cpp. Do not edit.\n")
	out.WriteString("#include \"ignis_runtime.h\"\n")
	out.WriteString("#include <cstdint>\n\n")

	for _, d := range prog.Decls {
		if sd, ok := d.(*ast.StructDef); ok {
			g.genStruct(sd, &out)
		}
	}

	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			g.funcReturns[fn.Name] = fn.ReturnType
		}
	}

	for _, d := range prog.Decls {
		if cd, ok := d.(*ast.ConstDecl); ok {
			g.genTopLevelConst(cd, &out)
		}
	}
	out.WriteString("\n")

	// Forward-declare every function so call order in the source does not
	// matter, matching the checker's own forward-reference guarantee.
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			fmt.Fprintf(&out, "%s;\n", g.funcSignature(fn))
		}
	}
	out.WriteString("\n")

	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			g.genFunc(fn, &out)
		}
	}

	return out.String(), nil
}

// cppType maps an Ignis type to its C++ spelling: int64_t for int, char for
// char, the struct name verbatim for a struct, each with PointerLevel
// trailing "*"s.
func cppType(t types.Type) string {
	var base string
	switch t.Base {
	case types.Int:
		base = "int64_t"
	case types.Char:
		base = "char"
	case types.Void:
		base = "void"
	default:
		base = string(t.Base)
	}
	return base + strings.Repeat("*", t.PointerLevel)
}

func (g *Generator) genStruct(sd *ast.StructDef, out *strings.Builder) {
	fmt.Fprintf(out, "struct %s {\n", sd.Name)
	for i, name := range sd.FieldNames {
		fmt.Fprintf(out, "    %s %s;\n", cppType(sd.FieldTypes[i]), name)
	}
	out.WriteString("};\n\n")
}

func (g *Generator) genTopLevelConst(cd *ast.ConstDecl, out *strings.Builder) {
	g.locals = nil
	g.pushScope()
	fmt.Fprintf(out, "constexpr %s %s = %s;\n", cppType(cd.Type), cd.Name, g.lowerExpr(cd.Init))
}

func (g *Generator) funcSignature(fn *ast.FuncDecl) string {
	params := make([]string, len(fn.ParamNames))
	for i, name := range fn.ParamNames {
		params[i] = fmt.Sprintf("%s %s", cppType(fn.ParamTypes[i]), name)
	}
	return fmt.Sprintf("%s %s(%s)", cppType(fn.ReturnType), fn.Name, strings.Join(params, ", "))
}

func (g *Generator) genFunc(fn *ast.FuncDecl, out *strings.Builder) {
	g.locals = nil
	g.pushScope()
	for i, name := range fn.ParamNames {
		g.declareLocalType(name, fn.ParamTypes[i])
	}

	fmt.Fprintf(out, "%s {\n", g.funcSignature(fn))
	g.genBlockStmts(fn.Body, out, 1)
	if fn.Body.Tail != nil {
		g.line(out, 1, fmt.Sprintf("return %s;", g.lowerExpr(fn.Body.Tail)))
	}
	out.WriteString("}\n\n")
	g.popScope()
}
