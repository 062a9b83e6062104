package front

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/set"
	"github.com/bfplang/bfp/compiler/token"
)

type (
	// Procs maps proc delimiters to their bodies.
	//
	// A body is a half-open range of token indexes into the stream the
	// table was built from. The delimiter occurrences themselves sit
	// just outside the range, at Lo-1 and Hi.
	Procs struct {
		defs  map[rune]Span
		stray set.Bits[rune]
	}

	// Span is a half-open token index range.
	Span struct {
		Lo, Hi int
	}

	// DefinitionOverlapError means the first two occurrences of a
	// delimiter cannot form a definition because another definition
	// sits between them.
	DefinitionOverlapError struct {
		Ch  rune
		Pos int
	}
)

func NewProcs() *Procs {
	return &Procs{
		defs:  map[rune]Span{},
		stray: set.MakeBits[rune](),
	}
}

// Resolve builds the proc table for a token stream.
//
// The stream is scanned once. At most one definition is open at a
// time: a non-command rune seen at the top level opens one if the
// rune is still undefined and occurs again later, and the next
// occurrence of the same rune closes it. Markers inside an open body
// are left for the expander to resolve, which is what makes forward
// and mutual references work. A rune that occurs exactly once in the
// whole program is a stray and is dropped as a comment.
//
// After the scan every marker with two or more occurrences must have
// a definition. One that does not was trapped inside another body,
// so its would-be definition overlaps that one.
func Resolve(ctx context.Context, toks []token.Token) (p *Procs, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "resolve procs", "toks", len(toks))
	defer tr.Finish("err", &err)

	occ := map[rune]int{}

	for _, tk := range toks {
		if tk.Kind == token.Proc {
			occ[tk.Ch]++
		}
	}

	p = NewProcs()

	seen := map[rune]int{}
	first := map[rune]int{}

	open := rune(0)
	openIdx := 0
	opened := false

	for i, tk := range toks {
		if tk.Kind != token.Proc {
			continue
		}

		ch := tk.Ch

		if occ[ch] == 1 {
			p.stray.Set(ch)
			continue
		}

		if _, ok := first[ch]; !ok {
			first[ch] = i
		}

		prior := seen[ch]
		seen[ch] = prior + 1

		switch {
		case opened && ch == open:
			p.defs[open] = Span{Lo: openIdx + 1, Hi: i}
			opened = false
		case opened:
			// body marker. call or forward reference, expander's business
		default:
			if _, ok := p.defs[ch]; ok {
				continue // call site
			}
			if occ[ch]-prior-1 == 0 {
				continue // nothing left to close with, cannot define
			}

			open, openIdx, opened = ch, i, true
		}
	}

	bad, at := rune(0), -1

	for ch, n := range occ {
		if n < 2 {
			continue
		}
		if _, ok := p.defs[ch]; ok {
			continue
		}
		if at < 0 || first[ch] < at {
			bad, at = ch, first[ch]
		}
	}
	if at >= 0 {
		return nil, DefinitionOverlapError{Ch: bad, Pos: toks[at].Pos}
	}

	if tr.If("procs") {
		for ch, s := range p.defs {
			tr.Printw("proc", "proc", string(ch), "body_lo", s.Lo, "body_hi", s.Hi)
		}

		tr.Printw("strays", "strays", p.stray)
	}

	return p, nil
}

// Define adds a body range for a delimiter. It is how tools build
// tables without going through Resolve.
func (p *Procs) Define(ch rune, lo, hi int) {
	p.defs[ch] = Span{Lo: lo, Hi: hi}
}

// Body returns the body range of a defined proc.
func (p *Procs) Body(ch rune) (Span, bool) {
	s, ok := p.defs[ch]
	return s, ok
}

// Stray reports whether the rune occurred once and is comment noise.
func (p *Procs) Stray(ch rune) bool {
	return p.stray.IsSet(ch)
}

// Len is the number of defined procs.
func (p *Procs) Len() int {
	return len(p.defs)
}

func (e DefinitionOverlapError) Error() string {
	return fmt.Sprintf("proc %q: definition overlaps another definition (offset 0x%x)", e.Ch, e.Pos)
}
