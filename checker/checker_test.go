package checker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ignis/lexer"
	"ignis/parser"
	"ignis/report"
)

func check(t *testing.T, src string) *report.Reporter {
	t.Helper()
	rep := report.New("t.ig", src)
	l := lexer.New(src, rep)
	p := parser.New(l, rep)
	prog := p.ParseProgram()
	require.False(t, rep.HasErrors(), "parse errors: %v", rep.Diagnostics())

	c := New(rep)
	c.Check(prog)
	return rep
}

func TestCheckArithmeticProgram(t *testing.T) {
	rep := check(t, `int main() { print(2+3*4); return 0; }`)
	require.False(t, rep.HasErrors())
}

func TestCheckImmutableAssignmentRejected(t *testing.T) {
	rep := check(t, `int main() { int x = 1; x = x + x; print(x); return 0; }`)
	require.True(t, rep.HasErrors())
	require.Equal(t, "SE009", rep.Diagnostics()[0].Code)
}

func TestCheckMutableAssignmentAllowed(t *testing.T) {
	rep := check(t, `int main() { mut int x = 1; x = x + x; print(x); return 0; }`)
	require.False(t, rep.HasErrors())
}

func TestCheckPointerRoundTrip(t *testing.T) {
	rep := check(t, `int main() { mut int x = 7; ptr int p = addr x; print(deref p); return 0; }`)
	require.False(t, rep.HasErrors())
}

func TestCheckStructFieldAccess(t *testing.T) {
	rep := check(t, `struct Pt { int x; int y; } int main() { mut Pt p; p.x = 3; p.y = 4; print(p.x + p.y); return 0; }`)
	require.False(t, rep.HasErrors())
}

func TestCheckUndefinedVariable(t *testing.T) {
	rep := check(t, `int main() { print(missing); return 0; }`)
	require.True(t, rep.HasErrors())
	require.Equal(t, "SE003", rep.Diagnostics()[0].Code)
}

func TestCheckDuplicateStruct(t *testing.T) {
	rep := check(t, `struct Pt { int x; } struct Pt { int y; } int main() { return 0; }`)
	require.True(t, rep.HasErrors())
	require.Equal(t, "SE001", rep.Diagnostics()[0].Code)
}

func TestCheckDuplicateField(t *testing.T) {
	rep := check(t, `struct Pt { int x; int x; } int main() { return 0; }`)
	require.True(t, rep.HasErrors())
	require.Equal(t, "SE002", rep.Diagnostics()[0].Code)
}

func TestCheckTypeMismatchAssignment(t *testing.T) {
	rep := check(t, `int main() { mut int x = 1; x = 'a'; return 0; }`)
	require.True(t, rep.HasErrors())
}

func TestCheckDeadLoopWarning(t *testing.T) {
	rep := check(t, `int main() { loop { print(1); } }`)
	require.False(t, rep.HasErrors())
	require.True(t, rep.HasWarnings())
	require.Equal(t, "W001", rep.Diagnostics()[0].Code)
}

func TestCheckLoopWithBreakNoWarning(t *testing.T) {
	rep := check(t, `int main() { mut int i = 0; loop { i = i + 1; if (i > 3) { break; } } return 0; }`)
	require.False(t, rep.HasWarnings())
}

func TestCheckNestedLoopBreakDoesNotSatisfyOuter(t *testing.T) {
	rep := check(t, `int main() { loop { loop { break; } } }`)
	require.True(t, rep.HasWarnings())
	require.Equal(t, "W001", rep.Diagnostics()[0].Code)
}

func TestCheckWhileNonZeroConstantNoBreak(t *testing.T) {
	rep := check(t, `int main() { while (1) { print(1); } return 0; }`)
	require.True(t, rep.HasWarnings())
	require.Equal(t, "W002", rep.Diagnostics()[0].Code)
}

func TestCheckLogicalOperatorTypeMismatch(t *testing.T) {
	rep := check(t, `struct Pt { int x; } int main() { mut Pt p; mut int v = 1 and p; return 0; }`)
	require.True(t, rep.HasErrors())
}

func TestCheckIfExpressionValue(t *testing.T) {
	rep := check(t, `int main() { int v = 1 if 3 > 2 else 0; print(v); return 0; }`)
	require.False(t, rep.HasErrors())
}
