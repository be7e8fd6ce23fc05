package scanner_test

import (
	"testing"

	"github.com/loxlang/loxgo/lang/scanner"
	"github.com/loxlang/loxgo/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New(src)
	var toks []token.Token
	for {
		tok := s.ScanToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){},.-+;*/ ! != = == < <= > >=")
	want := []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMI, token.STAR, token.SLASH,
		token.BANG, token.BANG_EQ, token.EQ, token.EQ_EQ, token.LT, token.LT_EQ,
		token.GT, token.GT_EQ, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equalf(t, w, toks[i].Type, "token %d", i)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "and class else false for fun if nil or print return super this true var while orchid")
	want := []token.Type{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FOR, token.FUN,
		token.IF, token.NIL, token.OR, token.PRINT, token.RETURN, token.SUPER,
		token.THIS, token.TRUE, token.VAR, token.WHILE, token.IDENT, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equalf(t, w, toks[i].Type, "token %d", i)
	}
	require.Equal(t, "orchid", toks[16].Lexeme)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "123 45.67 8.")
	require.Equal(t, token.NUMBER, toks[0].Type)
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Type)
	require.Equal(t, "45.67", toks[1].Lexeme)
	// the '.' is only consumed when followed by a digit
	require.Equal(t, token.NUMBER, toks[2].Type)
	require.Equal(t, "8", toks[2].Lexeme)
	require.Equal(t, token.DOT, toks[3].Type)
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(t, `"hi there"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, `"hi there"`, toks[0].Lexeme)
}

func TestScanMultilineString(t *testing.T) {
	toks := scanAll(t, "\"a\nb\"\nprint")
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, token.PRINT, toks[1].Type)
	require.Equal(t, 3, toks[1].Line)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"unterminated`)
	require.Equal(t, token.ERROR, toks[0].Type)
	require.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestScanComments(t *testing.T) {
	toks := scanAll(t, "// line comment\nprint /* block\ncomment */ 1;")
	require.Equal(t, token.PRINT, toks[0].Type)
	require.Equal(t, 2, toks[0].Line)
	require.Equal(t, token.NUMBER, toks[1].Type)
	require.Equal(t, 3, toks[1].Line)
}

func TestScanEOFIsRepeatable(t *testing.T) {
	s := scanner.New("")
	for i := 0; i < 3; i++ {
		require.Equal(t, token.EOF, s.ScanToken().Type)
	}
}

func TestScanIllegalCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	require.Equal(t, token.ERROR, toks[0].Type)
	require.Equal(t, "Unexpected character.", toks[0].Lexeme)
}
