package front

import (
	"context"
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/token"
)

// MaxDepth bounds the call stack during expansion. Loop-guarded
// recursion is legal but static inlining cannot bound it, so past
// this depth it is reported the same as unconditional recursion.
const MaxDepth = 1024

type (
	// UndefinedProcError means a call marker has no body in the table.
	// Resolve never produces such a table, markers without a pair end
	// up strays or overlap errors, but hand-built tables can.
	UndefinedProcError struct {
		Ch  rune
		Pos int
	}

	// UnboundedRecursionError means inlining a call cannot terminate.
	// Depth is zero when the proc re-enters itself with no new loop
	// opened in between, which can never terminate. Otherwise the
	// recursion was loop-guarded and overran MaxDepth.
	UnboundedRecursionError struct {
		Ch    rune
		Pos   int
		Depth int
	}

	expander struct {
		toks  []token.Token
		procs *Procs

		out   []token.Token
		stack []expFrame
		loops int
	}

	expFrame struct {
		ch    rune
		pos   int
		loops int
		from  loc.PC
	}
)

// Expand inlines every call in toks and returns a stream of the eight
// command tokens only. Call sites stay pointer transparent: after a
// body is inlined, moves are appended to put the pointer back where
// the call found it.
func Expand(ctx context.Context, toks []token.Token, procs *Procs) (out []token.Token, err error) {
	if procs == nil {
		procs = NewProcs()
	}

	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "expand", "toks", len(toks), "procs", procs.Len())
	defer tr.Finish("err", &err)

	e := &expander{
		toks:  toks,
		procs: procs,
		out:   make([]token.Token, 0, len(toks)),
	}

	_, err = e.walk(ctx, Span{Lo: 0, Hi: len(toks)})
	if err != nil {
		return nil, err
	}

	tr.V("tokens").Printw("expanded", "in", len(toks), "out", len(e.out))

	return e.out, nil
}

// walk emits the commands of a token range and reports the net
// pointer displacement of the commands it saw. Inlined calls do not
// count: their own correction makes them net zero.
func (e *expander) walk(ctx context.Context, s Span) (disp int, err error) {
	for i := s.Lo; i < s.Hi; i++ {
		tk := e.toks[i]

		switch tk.Kind {
		case token.MoveRight:
			disp++
		case token.MoveLeft:
			disp--
		case token.LoopOpen:
			e.loops++
		case token.LoopClose:
			e.loops--
		case token.Proc:
			i, err = e.marker(ctx, i)
			if err != nil {
				return disp, err
			}

			continue
		}

		e.out = append(e.out, tk)
	}

	return disp, nil
}

// marker handles one non-command rune and returns the index to resume
// after. A stray is dropped, a defining occurrence skips its own body,
// anything else is a call.
func (e *expander) marker(ctx context.Context, i int) (int, error) {
	ch := e.toks[i].Ch

	if e.procs.Stray(ch) {
		return i, nil
	}

	b, ok := e.procs.Body(ch)
	if !ok {
		return i, UndefinedProcError{Ch: ch, Pos: e.toks[i].Pos}
	}

	if i == b.Lo-1 {
		return b.Hi, nil
	}

	return i, e.call(ctx, ch, i, b)
}

func (e *expander) call(ctx context.Context, ch rune, i int, b Span) (err error) {
	pos := e.toks[i].Pos

	if f := e.frame(ch); f != nil && e.loops <= f.loops {
		return UnboundedRecursionError{Ch: ch, Pos: pos}
	}
	if len(e.stack) >= MaxDepth {
		return UnboundedRecursionError{Ch: ch, Pos: pos, Depth: len(e.stack)}
	}

	e.stack = append(e.stack, expFrame{
		ch:    ch,
		pos:   pos,
		loops: e.loops,
		from:  loc.Caller(1),
	})

	tr := tlog.SpanFromContext(ctx)
	if tr.If("calls") {
		f := e.stack[len(e.stack)-1]
		tr.Printw("inline call", "proc", string(ch), "pos", pos, "depth", len(e.stack), "loops", e.loops, "from", tlog.FormatNext("%x"), f.from)
	}

	d, err := e.walk(ctx, b)
	if err != nil {
		return err
	}

	corr, n := token.MoveLeft, d
	if d < 0 {
		corr, n = token.MoveRight, -d
	}

	for j := 0; j < n; j++ {
		e.out = append(e.out, token.Token{Kind: corr, Ch: mustSymbol(corr), Pos: pos})
	}

	e.stack = e.stack[:len(e.stack)-1]

	return nil
}

// frame finds the deepest open frame of a proc.
func (e *expander) frame(ch rune) *expFrame {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].ch == ch {
			return &e.stack[i]
		}
	}

	return nil
}

func mustSymbol(k token.Kind) rune {
	r, ok := k.Symbol()
	if !ok {
		panic(k)
	}

	return r
}

func (e UndefinedProcError) Error() string {
	return fmt.Sprintf("undefined proc %q (offset 0x%x)", e.Ch, e.Pos)
}

func (e UnboundedRecursionError) Error() string {
	if e.Depth == 0 {
		return fmt.Sprintf("proc %q: recursive call cannot terminate (offset 0x%x)", e.Ch, e.Pos)
	}

	return fmt.Sprintf("proc %q: expansion exceeded depth %v (offset 0x%x)", e.Ch, e.Depth, e.Pos)
}
