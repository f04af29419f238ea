package native

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"ignis/checker"
	"ignis/lexer"
	"ignis/parser"
	"ignis/report"
)

// compile lexes, parses, and checks src, then runs the native generator,
// returning the emitted assembly and the reporter so tests can assert on
// both the text and any diagnostics raised during codegen itself (break
// and continue outside a loop are only caught here, not by the checker).
func compile(t *testing.T, src string) (string, *report.Reporter) {
	t.Helper()
	rep := report.New("t.ig", src)
	l := lexer.New(src, rep)
	p := parser.New(l, rep)
	prog := p.ParseProgram()
	require.False(t, rep.HasErrors(), "parse errors: %v", rep.Diagnostics())

	c := checker.New(rep)
	c.Check(prog)
	require.False(t, rep.HasErrors(), "check errors: %v", rep.Diagnostics())

	asm, err := Generate(prog, c.Structs(), rep)
	require.NoError(t, err)
	return asm, rep
}

func TestGenerateSimpleMainExits(t *testing.T) {
	asm, rep := compile(t, `int main() { return 0; }`)
	require.False(t, rep.HasErrors())
	require.Contains(t, asm, "main:")
	require.Contains(t, asm, "_start:")
	require.Contains(t, asm, "syscall")
}

func TestGenerateArithmeticUsesStackMachine(t *testing.T) {
	asm, _ := compile(t, `int main() { print(2+3*4); return 0; }`)
	require.Contains(t, asm, "imul rax, rcx")
	require.Contains(t, asm, "add rax, rcx")
	require.Contains(t, asm, "call ignis_print_int")
}

func TestGeneratePointerArithmeticScalesByPointeeSize(t *testing.T) {
	asm, _ := compile(t, `int main() { mut ptr int p = new int; p = p + 1; return 0; }`)
	require.Contains(t, asm, "imul rcx, rcx, 8")
}

func TestGenerateShortCircuitAndEmitsLabels(t *testing.T) {
	asm, _ := compile(t, `int main() { mut int x = 1 and 0; print(x); return 0; }`)
	require.Contains(t, asm, "je L")
}

func TestGenerateStructAssignmentUsesMovsb(t *testing.T) {
	asm, _ := compile(t, `
struct Pt { int x; int y; }
int main() {
    mut Pt a;
    a.x = 1;
    a.y = 2;
    mut Pt b;
    b = a;
    print(b.x);
    return 0;
}`)
	require.Contains(t, asm, "rep movsb")
}

func TestGenerateTypeEqFoldedWithoutEvaluatingOperands(t *testing.T) {
	asm, _ := compile(t, `int main() { mut int v = 1 if (1 === 1) else 0; print(v); return 0; }`)
	require.Contains(t, asm, "push 1")
}

func TestGenerateBreakOutsideLoopReportsE013(t *testing.T) {
	rep := report.New("t.ig", "")
	src := `int main() { break; return 0; }`
	l := lexer.New(src, rep)
	p := parser.New(l, rep)
	prog := p.ParseProgram()
	require.False(t, rep.HasErrors())

	c := checker.New(rep)
	c.Check(prog)
	require.False(t, rep.HasErrors(), "checker must not itself reject a stray break")

	_, err := Generate(prog, c.Structs(), rep)
	require.NoError(t, err)
	require.True(t, rep.HasErrors())
	require.Equal(t, "E013", rep.Diagnostics()[0].Code)
}

func TestGenerateContinueOutsideLoopReportsE014(t *testing.T) {
	rep := report.New("t.ig", "")
	src := `int main() { continue; return 0; }`
	l := lexer.New(src, rep)
	p := parser.New(l, rep)
	prog := p.ParseProgram()
	c := checker.New(rep)
	c.Check(prog)
	require.False(t, rep.HasErrors())

	_, err := Generate(prog, c.Structs(), rep)
	require.NoError(t, err)
	require.True(t, rep.HasErrors())
	require.Equal(t, "E014", rep.Diagnostics()[0].Code)
}

func TestGenerateLoopWithBreakEmitsJumpToEndLabel(t *testing.T) {
	asm, _ := compile(t, `int main() { mut int i = 0; loop { i = i + 1; if (i > 3) { break; } } return 0; }`)
	require.Contains(t, asm, "jmp L")
}

func TestGenerateFunctionCallSpillsArgsIntoRegisters(t *testing.T) {
	asm, _ := compile(t, `
int add(int a, int b) { return a + b; }
int main() { print(add(1, 2)); return 0; }`)
	require.Contains(t, asm, "pop rdi")
	require.Contains(t, asm, "pop rsi")
	require.Contains(t, asm, "call add")
}

// TestGenerateShadowedLocalGetsItsOwnSlot guards against a flat name->slot
// map that would let an inner "mut x" in its own scope overwrite the frame
// offset of an outer "x" still live after the inner scope closes.
func TestGenerateShadowedLocalGetsItsOwnSlot(t *testing.T) {
	asm, rep := compile(t, `int main() { mut int x = 1; if (x == 1) { mut int x = 99; print(x); } return x; }`)
	require.False(t, rep.HasErrors())

	stores := regexp.MustCompile(`mov \[rbp(-\d+)\], rax`).FindAllStringSubmatch(asm, -1)
	offsets := map[string]bool{}
	for _, m := range stores {
		offsets[m[1]] = true
	}
	require.GreaterOrEqual(t, len(offsets), 2, "outer and inner x must not share a frame offset:\n%s", asm)
}

func TestGenerateTooManyParamsIsInternalCompilerError(t *testing.T) {
	rep := report.New("t.ig", "")
	src := `int f(int a, int b, int c, int d, int e, int f, int g) { return a; } int main() { return 0; }`
	l := lexer.New(src, rep)
	p := parser.New(l, rep)
	prog := p.ParseProgram()
	c := checker.New(rep)
	c.Check(prog)

	_, err := Generate(prog, c.Structs(), rep)
	require.Error(t, err)
}
