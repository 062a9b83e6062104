package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/ir"
	"github.com/bfplang/bfp/compiler/token"
)

type (
	// Options selects the tape the lowered program assumes.
	// Zero value means the default fixed tape of ir.DefaultCells cells
	// with zero-filling reads at end of input.
	Options struct {
		Cells  int
		Growth ir.Growth
		EOF    ir.EOFPolicy
	}

	// UnbalancedLoopError means loop brackets do not pair up.
	UnbalancedLoopError struct {
		Pos  int
		Open bool
	}

	codegen struct {
		p    *ir.Program
		open []openLoop
		next ir.ID
	}

	openLoop struct {
		id  ir.ID
		pos int
	}
)

// Lower turns an expanded token stream into an ir.Program.
//
// Runs of moves and runs of adds are coalesced into single
// instructions, runs with zero net effect vanish. Loops get ids in
// the order their opens appear. The stream must be proc free, which
// is what front.Expand guarantees.
func Lower(ctx context.Context, toks []token.Token, opts Options) (p *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower", "toks", len(toks))
	defer tr.Finish("err", &err)

	if opts.Cells < 0 {
		return nil, errors.New("tape cells: %v", opts.Cells)
	}
	if opts.Cells == 0 {
		opts.Cells = ir.DefaultCells
	}

	c := &codegen{
		p: &ir.Program{
			Code:   make([]ir.Instr, 0, len(toks)),
			Cells:  opts.Cells,
			Growth: opts.Growth,
			EOF:    opts.EOF,
		},
	}

	for i := 0; i < len(toks); i++ {
		tk := toks[i]

		switch tk.Kind {
		case token.MoveRight, token.MoveLeft:
			i = c.run(toks, i, token.MoveRight, token.MoveLeft, func(off int) {
				c.p.Code = append(c.p.Code, ir.Move{Off: off})
			})
		case token.Inc, token.Dec:
			i = c.run(toks, i, token.Inc, token.Dec, func(d int) {
				c.p.Code = append(c.p.Code, ir.AddConst{Delta: d})
			})
		case token.Output:
			c.p.Code = append(c.p.Code, ir.Write{})
		case token.Input:
			c.p.Code = append(c.p.Code, ir.Read{})
		case token.LoopOpen:
			id := c.next
			c.next++

			c.open = append(c.open, openLoop{id: id, pos: tk.Pos})
			c.p.Code = append(c.p.Code, ir.LoopStart{ID: id})
		case token.LoopClose:
			if len(c.open) == 0 {
				return nil, UnbalancedLoopError{Pos: tk.Pos}
			}

			l := c.open[len(c.open)-1]
			c.open = c.open[:len(c.open)-1]

			c.p.Code = append(c.p.Code, ir.LoopEnd{ID: l.id})
		default:
			return nil, errors.New("unexpected token in expanded stream: %v (offset 0x%x)", tk, tk.Pos)
		}
	}

	if len(c.open) != 0 {
		l := c.open[len(c.open)-1]
		return nil, UnbalancedLoopError{Pos: l.pos, Open: true}
	}

	if tr.If("dump_ir") {
		for i, x := range c.p.Code {
			tr.Printw("ir", "i", i, "typ", tlog.FormatNext("%T"), x, "val", x)
		}
	}

	tr.V("ir").Printw("lowered", "instrs", len(c.p.Code), "loops", c.next)

	return c.p, nil
}

// run coalesces a run of pos and neg tokens starting at i and reports
// the index of its last token. The net count is handed to emit unless
// it is zero.
func (c *codegen) run(toks []token.Token, i int, pos, neg token.Kind, emit func(net int)) int {
	net := 0

	for ; i < len(toks); i++ {
		switch toks[i].Kind {
		case pos:
			net++
		case neg:
			net--
		default:
			if net != 0 {
				emit(net)
			}

			return i - 1
		}
	}

	if net != 0 {
		emit(net)
	}

	return i - 1
}

func (e UnbalancedLoopError) Error() string {
	if e.Open {
		return fmt.Sprintf("loop opened at offset 0x%x is never closed", e.Pos)
	}

	return fmt.Sprintf("unmatched loop close (offset 0x%x)", e.Pos)
}
