package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ignis/report"
	"ignis/token"
)

func collect(t *testing.T, input string) []token.Token {
	t.Helper()
	rep := report.New("test.ig", input)
	l := New(input, rep)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	input := `() { } ; , . = + - * / < > == != <= >= === !`
	toks := collect(t, input)

	want := []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.SEMICOLON,
		token.COMMA, token.DOT, token.ASSIGN, token.PLUS, token.MINUS,
		token.ASTERISK, token.SLASH, token.LT, token.GT, token.EQ, token.NOT_EQ,
		token.LT_EQ, token.GT_EQ, token.TYPE_EQ, token.BANG, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equal(t, w, toks[i].Type, "token %d", i)
	}
}

func TestNextTokenKeywordsAndIdent(t *testing.T) {
	input := `int char mut const return if else elif while loop for break continue ptr addr deref struct or and not xor bor band bnot bxor nor nand nnot xnor nbor nband nbnot nbxor count`
	toks := collect(t, input)
	want := []token.Type{
		token.INT_TYPE, token.CHAR_TYPE, token.MUT, token.CONST, token.RETURN,
		token.IF, token.ELSE, token.ELIF, token.WHILE, token.LOOP, token.FOR,
		token.BREAK, token.CONTINUE, token.PTR, token.ADDR, token.DEREF,
		token.STRUCT, token.OR, token.AND, token.NOT, token.XOR, token.BOR,
		token.BAND, token.BNOT, token.BXOR, token.NOR, token.NAND, token.NNOT,
		token.XNOR, token.NBOR, token.NBAND, token.NBNOT, token.NBXOR,
		token.IDENT, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equal(t, w, toks[i].Type, "token %d", i)
	}
	require.Equal(t, "count", toks[len(toks)-2].Literal)
}

func TestNextTokenIntegerLiteral(t *testing.T) {
	toks := collect(t, "42 007")
	require.Equal(t, token.INT, toks[0].Type)
	require.Equal(t, "42", toks[0].Literal)
	require.Equal(t, "007", toks[1].Literal)
}

func TestNextTokenCharLiteralEscapes(t *testing.T) {
	toks := collect(t, `'a' '\n' '\t' '\\' '\''`)
	require.Equal(t, "a", toks[0].Literal)
	require.Equal(t, "\n", toks[1].Literal)
	require.Equal(t, "\t", toks[2].Literal)
	require.Equal(t, "\\", toks[3].Literal)
	require.Equal(t, "'", toks[4].Literal)
	for _, tok := range toks[:5] {
		require.Equal(t, token.CHAR, tok.Type)
	}
}

func TestNextTokenStringLiteral(t *testing.T) {
	toks := collect(t, `"hello\nworld"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, "hello\nworld", toks[0].Literal)
}

func TestUnterminatedStringReportsE022(t *testing.T) {
	rep := report.New("t.ig", `"oops`)
	l := New(`"oops`, rep)
	tok := l.NextToken()
	require.Equal(t, token.ILLEGAL, tok.Type)
	require.True(t, rep.HasErrors())
	require.Equal(t, "E022", rep.Diagnostics()[0].Code)
}

func TestMultiCharLiteralReportsE021(t *testing.T) {
	rep := report.New("t.ig", `'ab'`)
	l := New(`'ab'`, rep)
	l.NextToken()
	require.True(t, rep.HasErrors())
	require.Equal(t, "E021", rep.Diagnostics()[0].Code)
}

func TestUnterminatedBlockCommentReportsE015(t *testing.T) {
	rep := report.New("t.ig", `/* never closes`)
	l := New(`/* never closes`, rep)
	tok := l.NextToken()
	require.Equal(t, token.EOF, tok.Type)
	require.True(t, rep.HasErrors())
	require.Equal(t, "E015", rep.Diagnostics()[0].Code)
}

func TestNestedBlockComments(t *testing.T) {
	toks := collect(t, "/* outer /* inner */ still outer */ 7")
	require.Equal(t, token.INT, toks[0].Type)
	require.Equal(t, "7", toks[0].Literal)
}

func TestInvalidCharacterReportsE016(t *testing.T) {
	rep := report.New("t.ig", "@")
	l := New("@", rep)
	tok := l.NextToken()
	require.Equal(t, token.ILLEGAL, tok.Type)
	require.True(t, rep.HasErrors())
	require.Equal(t, "E016", rep.Diagnostics()[0].Code)
}

func TestGreedyOperatorMatching(t *testing.T) {
	toks := collect(t, "= == === ! != < <= > >=")
	want := []token.Type{
		token.ASSIGN, token.EQ, token.TYPE_EQ, token.BANG, token.NOT_EQ,
		token.LT, token.LT_EQ, token.GT, token.GT_EQ, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equal(t, w, toks[i].Type, "token %d", i)
	}
}

func TestSingleLineCommentSkipped(t *testing.T) {
	toks := collect(t, "1 // ignored to end of line\n2")
	require.Equal(t, "1", toks[0].Literal)
	require.Equal(t, "2", toks[1].Literal)
}
