package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bfplang/bfp/compiler/token"
)

func TestLexBaseSymbols(t *testing.T) {
	ctx := context.Background()

	toks, err := Lex(ctx, []byte("><+-.,[]"))
	require.NoError(t, err)

	kinds := []token.Kind{
		token.MoveRight, token.MoveLeft,
		token.Inc, token.Dec,
		token.Output, token.Input,
		token.LoopOpen, token.LoopClose,
	}

	require.Len(t, toks, len(kinds))

	for i, k := range kinds {
		require.Equal(t, k, toks[i].Kind, "token %v", i)
		require.Equal(t, i, toks[i].Pos, "token %v", i)
	}
}

func TestLexSkipsWhitespace(t *testing.T) {
	ctx := context.Background()

	toks, err := Lex(ctx, []byte("+ \t\r\n+"))
	require.NoError(t, err)

	require.Equal(t, []token.Token{
		{Kind: token.Inc, Ch: '+', Pos: 0},
		{Kind: token.Inc, Ch: '+', Pos: 5},
	}, toks)
}

func TestLexMarkers(t *testing.T) {
	ctx := context.Background()

	toks, err := Lex(ctx, []byte("a+b"))
	require.NoError(t, err)

	require.Equal(t, []token.Token{
		{Kind: token.Proc, Ch: 'a', Pos: 0},
		{Kind: token.Inc, Ch: '+', Pos: 1},
		{Kind: token.Proc, Ch: 'b', Pos: 2},
	}, toks)
}

func TestLexMultibyteMarker(t *testing.T) {
	ctx := context.Background()

	toks, err := Lex(ctx, []byte("π+�"))
	require.NoError(t, err)

	require.Equal(t, []token.Token{
		{Kind: token.Proc, Ch: 'π', Pos: 0},
		{Kind: token.Inc, Ch: '+', Pos: 2},
		{Kind: token.Proc, Ch: '�', Pos: 3},
	}, toks)
}

func TestLexError(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		b   []byte
		pos int
	}{
		{b: []byte{0xff, '+'}, pos: 0},
		{b: []byte{'+', '-', 0xc3}, pos: 2},
	} {
		_, err := Lex(ctx, tc.b)

		var e LexError
		require.ErrorAs(t, err, &e, "input %q", tc.b)
		require.Equal(t, tc.pos, e.Pos, "input %q", tc.b)
	}
}
