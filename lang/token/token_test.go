package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	for typ := Type(0); typ < maxType; typ++ {
		if typ.String() == "" {
			t.Errorf("missing string representation of token type %d", typ)
		}
	}
	require.Equal(t, "unknown token type", Type(127).String())
}

func TestLookup(t *testing.T) {
	for typ := AND; typ <= WHILE; typ++ {
		require.Equal(t, typ, Lookup(typ.String()))
	}
	require.Equal(t, IDENT, Lookup("notAKeyword"))
	require.Equal(t, IDENT, Lookup(""))
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: PLUS, Lexeme: "+", Line: 3}
	require.Equal(t, "+ +", tok.String())
}
