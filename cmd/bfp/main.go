package main

import (
	"context"
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler"
	"github.com/bfplang/bfp/compiler/ir"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "translate programs into arm64 assembly",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "interpret programs",
		Action:      runAct,
		Args:        cli.Args{},
	}

	expandCmd := &cli.Command{
		Name:        "expand",
		Description: "print programs with all proc calls inlined",
		Action:      expandAct,
		Args:        cli.Args{},
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "print the lowered instruction listing",
		Action:      dumpAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "bfp",
		Description: "bfp is a tool for compiling and running bfp source code",
		Commands: []*cli.Command{
			compileCmd,
			runCmd,
			expandCmd,
			dumpCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func rootContext() context.Context {
	if v := env.Str("BFP_V"); v != "" {
		tlog.SetVerbosity(v)
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx
}

// options decodes pipeline configuration from the environment.
// BFP_EOF is the read behavior at end of input (zero, keep, fatal),
// BFP_TAPE_CELLS and BFP_TAPE_GROW size the tape, BFP_STEP_LIMIT
// bounds interpreted runs.
func options() (opts compiler.Options, err error) {
	opts.Cells = env.Int("BFP_TAPE_CELLS", 0)
	opts.StepLimit = env.Int("BFP_STEP_LIMIT", 0)

	opts.EOF, err = ir.ParseEOFPolicy(env.Str("BFP_EOF"))
	if err != nil {
		return opts, err
	}

	opts.Growth, err = ir.ParseGrowth(env.Str("BFP_TAPE_GROW"))
	if err != nil {
		return opts, err
	}

	return opts, nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := rootContext()

	opts, err := options()
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a, opts)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		if out := env.Str("BFP_OUT"); out != "" {
			err = os.WriteFile(out, obj, 0o644)
			if err != nil {
				return errors.Wrap(err, "write %v", out)
			}

			continue
		}

		fmt.Printf("%s", obj)
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := rootContext()

	opts, err := options()
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		err = compiler.RunFile(ctx, a, os.Stdin, os.Stdout, opts)
		if err != nil {
			return errors.Wrap(err, "run %v", a)
		}
	}

	return nil
}

func expandAct(c *cli.Command) (err error) {
	ctx := rootContext()

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		obj, err := compiler.Expand(ctx, a, text)
		if err != nil {
			return errors.Wrap(err, "expand %v", a)
		}

		fmt.Printf("%s\n", obj)
	}

	return nil
}

func dumpAct(c *cli.Command) (err error) {
	ctx := rootContext()

	opts, err := options()
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		obj, err := compiler.Dump(ctx, a, text, opts)
		if err != nil {
			return errors.Wrap(err, "dump %v", a)
		}

		fmt.Printf("%s", obj)
	}

	return nil
}
