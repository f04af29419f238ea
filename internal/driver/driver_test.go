package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileArithmeticProducesNativeAssembly(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main() { print(2+3*4); return 0; }`,
		Target:   TargetNative,
	})
	require.NoError(t, err)
	require.False(t, res.Reporter.HasErrors())
	require.Contains(t, res.Output, "ignis_print_int")
	require.Contains(t, res.Output, "global _start")
}

func TestCompileMutabilityRoundTripsThroughCPP(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main() { mut int x = 1; x = x + x; print(x); return 0; }`,
		Target:   TargetCPP,
	})
	require.NoError(t, err)
	require.False(t, res.Reporter.HasErrors())
	require.Contains(t, res.Output, "int64_t x = 1;")
}

func TestCompileImmutableReassignmentFailsWithSE009(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main() { int x = 1; x = x + x; print(x); return 0; }`,
		Target:   TargetNative,
	})
	require.NoError(t, err)
	require.True(t, res.Reporter.HasErrors())

	var codes []string
	for _, d := range res.Reporter.Diagnostics() {
		codes = append(codes, d.Code)
	}
	require.Contains(t, codes, "SE009")
	require.Empty(t, res.Output, "codegen must not run after a check failure")
}

func TestCompilePointerRoundTrip(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main() { mut int x = 7; ptr int p = addr x; print(deref p); return 0; }`,
		Target:   TargetNative,
	})
	require.NoError(t, err)
	require.False(t, res.Reporter.HasErrors())
	require.Contains(t, res.Output, "ignis_print_int")
}

func TestCompileStructFieldAccess(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source: `struct Pt { int x; int y; }
int main() { mut Pt p; p.x = 3; p.y = 4; print(p.x + p.y); return 0; }`,
		Target: TargetCPP,
	})
	require.NoError(t, err)
	require.False(t, res.Reporter.HasErrors())
	require.Contains(t, res.Output, "struct Pt {")
	require.Contains(t, res.Output, "(p).x = 3;")
}

func TestCompileIfExpression(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main() { int v = 1 if 3 > 2 else 0; print(v); return 0; }`,
		Target:   TargetNative,
	})
	require.NoError(t, err)
	require.False(t, res.Reporter.HasErrors())
}

func TestCompileDeadLoopEmitsW001ButStillGeneratesCode(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main() { loop { print(1); } }`,
		Target:   TargetNative,
	})
	require.NoError(t, err)
	require.False(t, res.Reporter.HasErrors())
	require.True(t, res.Reporter.HasWarnings())

	var codes []string
	for _, d := range res.Reporter.Diagnostics() {
		codes = append(codes, d.Code)
	}
	require.Contains(t, codes, "W001")
	require.NotEmpty(t, res.Output)
}

func TestCompileTargetNoneStopsBeforeCodegen(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main() { return 0; }`,
		Target:   TargetNone,
	})
	require.NoError(t, err)
	require.False(t, res.Reporter.HasErrors())
	require.Empty(t, res.Output)
	require.NotNil(t, res.Program)
}

func TestCompileParseErrorStopsBeforeChecking(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int main( { return 0; }`,
		Target:   TargetNative,
	})
	require.NoError(t, err)
	require.True(t, res.Reporter.HasErrors())
	require.Empty(t, res.Output)
}

func TestCompileTooManyParamsIsInternalCompilerError(t *testing.T) {
	res, err := Compile(Options{
		Filename: "t.ig",
		Source:   `int f(int a, int b, int c, int d, int e, int f, int g) { return a; } int main() { return 0; }`,
		Target:   TargetNative,
	})
	require.False(t, res.Reporter.HasErrors(), "7 params is a backend limit, not a checker diagnostic")
	require.Error(t, err)
}
