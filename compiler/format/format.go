package format

import (
	"context"
	"fmt"
	"unicode/utf8"

	"tlog.app/go/errors"

	"github.com/bfplang/bfp/compiler/ir"
	"github.com/bfplang/bfp/compiler/token"
)

// Tokens appends a token stream rendered back to source text.
// Base instructions render as their symbols, proc markers as their
// delimiter rune, so the result lexes into an equal stream.
func Tokens(ctx context.Context, b []byte, toks []token.Token) ([]byte, error) {
	for _, tk := range toks {
		c := tk.Ch

		if tk.Kind != token.Proc {
			var ok bool

			c, ok = tk.Kind.Symbol()
			if !ok {
				return nil, errors.New("unsupported token: %v", tk)
			}
		}

		b = utf8.AppendRune(b, c)
	}

	return b, nil
}

// Listing appends a program as an instruction listing, one line per
// instruction prefixed with its index.
func Listing(ctx context.Context, b []byte, p *ir.Program) ([]byte, error) {
	b = fmt.Appendf(b, "; tape %v cells %v, eof %v\n", p.Cells, p.Growth, p.EOF)

	for i, x := range p.Code {
		switch x := x.(type) {
		case ir.Move:
			b = fmt.Appendf(b, "%04d\tmove\t%v\n", i, x.Off)
		case ir.AddConst:
			b = fmt.Appendf(b, "%04d\tadd\t%v\n", i, x.Delta)
		case ir.Write:
			b = fmt.Appendf(b, "%04d\twrite\n", i)
		case ir.Read:
			b = fmt.Appendf(b, "%04d\tread\n", i)
		case ir.LoopStart:
			b = fmt.Appendf(b, "%04d\tloop %v\tstart\n", i, x.ID)
		case ir.LoopEnd:
			b = fmt.Appendf(b, "%04d\tloop %v\tend\n", i, x.ID)
		default:
			return nil, errors.New("unsupported instruction: %T", x)
		}
	}

	return b, nil
}
