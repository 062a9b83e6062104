package compiler

import (
	"context"
	"io"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/arm64"
	"github.com/bfplang/bfp/compiler/back"
	"github.com/bfplang/bfp/compiler/format"
	"github.com/bfplang/bfp/compiler/front"
	"github.com/bfplang/bfp/compiler/ir"
	"github.com/bfplang/bfp/compiler/token"
	"github.com/bfplang/bfp/compiler/vm"
)

type (
	// Options is the configuration the pipeline threads through its
	// stages. Zero value means the defaults: a fixed tape of
	// ir.DefaultCells cells, reads storing zero at end of input, no
	// step limit.
	Options struct {
		back.Options

		// StepLimit bounds interpreted runs. Compiled programs are
		// not affected.
		StepLimit int
	}
)

func CompileFile(ctx context.Context, name string, opts Options) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, opts)
}

// Compile translates a program into arm64 assembly text.
func Compile(ctx context.Context, name string, text []byte, opts Options) (obj []byte, err error) {
	p, err := Lower(ctx, name, text, opts)
	if err != nil {
		return nil, err
	}

	obj, err = arm64.CompileProgram(ctx, nil, p)
	if err != nil {
		return nil, errors.Wrap(err, "compile program")
	}

	return obj, nil
}

func RunFile(ctx context.Context, name string, in io.Reader, out io.Writer, opts Options) (err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read file")
	}

	return Run(ctx, name, text, in, out, opts)
}

// Run compiles a program and interprets it right away.
func Run(ctx context.Context, name string, text []byte, in io.Reader, out io.Writer, opts Options) (err error) {
	p, err := Lower(ctx, name, text, opts)
	if err != nil {
		return err
	}

	m, err := vm.New(p, in, out, vm.Options{StepLimit: opts.StepLimit})
	if err != nil {
		return errors.Wrap(err, "new machine")
	}

	err = m.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "run")
	}

	return nil
}

// Lower takes a program through the front stages and lowering and
// returns the instruction sequence backends consume.
func Lower(ctx context.Context, name string, text []byte, opts Options) (p *ir.Program, err error) {
	flat, err := expand(ctx, name, text)
	if err != nil {
		return nil, err
	}

	p, err = back.Lower(ctx, flat, opts.Options)
	if err != nil {
		return nil, errors.Wrap(err, "lower")
	}

	return p, nil
}

// Expand runs the front stages only and renders the proc-free program
// back to source text.
func Expand(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	flat, err := expand(ctx, name, text)
	if err != nil {
		return nil, err
	}

	obj, err = format.Tokens(ctx, nil, flat)
	if err != nil {
		return nil, errors.Wrap(err, "format tokens")
	}

	return obj, nil
}

// Dump renders the lowered program as an instruction listing.
func Dump(ctx context.Context, name string, text []byte, opts Options) (obj []byte, err error) {
	p, err := Lower(ctx, name, text, opts)
	if err != nil {
		return nil, err
	}

	obj, err = format.Listing(ctx, nil, p)
	if err != nil {
		return nil, errors.Wrap(err, "format listing")
	}

	return obj, nil
}

func expand(ctx context.Context, name string, text []byte) (flat []token.Token, err error) {
	st := front.New()

	err = st.AddFile(ctx, name, text)
	if err != nil {
		return nil, errors.Wrap(err, "add file")
	}

	err = st.Lex(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "lex text")
	}

	err = st.Resolve(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resolve procs")
	}

	flat, err = st.Expand(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "expand")
	}

	return flat, nil
}
