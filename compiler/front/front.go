package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/token"
)

type (
	// Front drives the source half of the pipeline.
	// It owns the raw text, the token stream, the proc table and the
	// expanded stream, each filled in by the corresponding phase.
	Front struct {
		name string
		b    []byte

		toks  []token.Token
		procs *Procs
		flat  []token.Token
	}
)

func New() *Front {
	return &Front{}
}

// AddFile sets the source text. A program is a single file.
func (c *Front) AddFile(ctx context.Context, name string, text []byte) error {
	if c.b != nil {
		return errors.New("only single file programs are supported")
	}

	c.name = name
	c.b = text

	return nil
}

// Lex tokenizes the source added by AddFile.
func (c *Front) Lex(ctx context.Context) (err error) {
	c.toks, err = Lex(ctx, c.b)
	if err != nil {
		return errors.Wrap(err, "%v", c.name)
	}

	return nil
}

// Resolve builds the proc table from the token stream.
func (c *Front) Resolve(ctx context.Context) (err error) {
	c.procs, err = Resolve(ctx, c.toks)
	if err != nil {
		return errors.Wrap(err, "%v", c.name)
	}

	return nil
}

// Expand inlines all proc calls and returns the flat stream.
func (c *Front) Expand(ctx context.Context) (_ []token.Token, err error) {
	c.flat, err = Expand(ctx, c.toks, c.procs)
	if err != nil {
		return nil, errors.Wrap(err, "%v", c.name)
	}

	tr := tlog.SpanFromContext(ctx)
	if tr.If("dump_expanded") {
		tr.Printw("expanded stream", "toks", tlog.FormatNext("%v"), c.flat)
	}

	return c.flat, nil
}

// Tokens returns the raw token stream produced by Lex.
func (c *Front) Tokens() []token.Token { return c.toks }

// Procs returns the table built by Resolve.
func (c *Front) Procs() *Procs { return c.procs }

// Flat returns the proc-free stream produced by Expand.
func (c *Front) Flat() []token.Token { return c.flat }
