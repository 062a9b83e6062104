package front

import (
	"context"
	"fmt"
	"unicode/utf8"

	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/token"
)

type (
	// LexError means the source is not valid utf-8.
	LexError struct {
		Pos int
	}
)

// Lex splits source text into tokens.
// The eight command runes map to their kinds, space, tab, cr and lf
// are dropped, and every other rune becomes a Proc marker carrying
// the rune itself. Byte offsets are preserved on each token.
func Lex(ctx context.Context, b []byte) (toks []token.Token, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lex", "size", len(b))
	defer tr.Finish("err", &err)

	toks = make([]token.Token, 0, len(b))

	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return nil, LexError{Pos: i}
		}

		if k := token.KindOf(r); k != token.Illegal {
			toks = append(toks, token.Token{Kind: k, Ch: r, Pos: i})
		} else if !isSpace(r) {
			toks = append(toks, token.Token{Kind: token.Proc, Ch: r, Pos: i})
		}

		i += size
	}

	tr.V("tokens").Printw("lexed", "toks", len(toks))

	return toks, nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}

	return false
}

func (e LexError) Error() string {
	return fmt.Sprintf("malformed utf-8 sequence at offset 0x%x", e.Pos)
}
