package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bfplang/bfp/compiler/back"
	"github.com/bfplang/bfp/compiler/front"
)

func TestCompileProcEquivalence(t *testing.T) {
	ctx := context.Background()

	// the proc version and the hand-inlined version must produce
	// the same instructions and the same assembly
	withProc, err := Lower(ctx, "a.bfp", []byte("*>+.*+[*]"), Options{})
	require.NoError(t, err)

	inlined, err := Lower(ctx, "b.bfp", []byte("+[>+.<]"), Options{})
	require.NoError(t, err)

	require.Equal(t, inlined.Code, withProc.Code)

	a, err := Compile(ctx, "a.bfp", []byte("*>+.*+[*]"), Options{})
	require.NoError(t, err)

	b, err := Compile(ctx, "b.bfp", []byte("+[>+.<]"), Options{})
	require.NoError(t, err)

	require.Equal(t, string(b), string(a))
	require.Contains(t, string(a), "_start:")
}

func TestRunEcho(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer

	err := Run(ctx, "echo.bfp", []byte(",[.,]"), strings.NewReader("hi"), &out, Options{})
	require.NoError(t, err)
	require.Equal(t, "hi", out.String())
}

func TestRunProcProgram(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer

	err := Run(ctx, "proc.bfp", []byte("*+.**"), strings.NewReader(""), &out, Options{})
	require.NoError(t, err)
	require.Equal(t, "\x01", out.String())
}

func TestExpand(t *testing.T) {
	ctx := context.Background()

	obj, err := Expand(ctx, "a.bfp", []byte("*>+.*+[*]"))
	require.NoError(t, err)
	require.Equal(t, "+[>+.<]", string(obj))
}

func TestDump(t *testing.T) {
	ctx := context.Background()

	obj, err := Dump(ctx, "a.bfp", []byte("+[>+.<]"), Options{})
	require.NoError(t, err)

	require.Contains(t, string(obj), "add\t1")
	require.Contains(t, string(obj), "loop 0\tstart")
	require.Contains(t, string(obj), "loop 0\tend")

	t.Logf("listing:\n%s", obj)
}

func TestStageErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Compile(ctx, "a.bfp", []byte("+["), Options{})

	var loop back.UnbalancedLoopError
	require.ErrorAs(t, err, &loop)
	require.Equal(t, 1, loop.Pos)

	_, err = Compile(ctx, "a.bfp", []byte("@#@#"), Options{})

	var overlap front.DefinitionOverlapError
	require.ErrorAs(t, err, &overlap)

	_, err = Compile(ctx, "a.bfp", []byte{0xff}, Options{})

	var lex front.LexError
	require.ErrorAs(t, err, &lex)
}

func TestCompileFile(t *testing.T) {
	ctx := context.Background()

	name := filepath.Join(t.TempDir(), "prog.bfp")

	err := os.WriteFile(name, []byte("*>+.*+[*]"), 0o644)
	require.NoError(t, err)

	obj, err := CompileFile(ctx, name, Options{})
	require.NoError(t, err)
	require.Contains(t, string(obj), "_start:")

	_, err = CompileFile(ctx, filepath.Join(t.TempDir(), "missing.bfp"), Options{})
	require.Error(t, err)
}

func TestRunFile(t *testing.T) {
	ctx := context.Background()

	name := filepath.Join(t.TempDir(), "prog.bfp")

	err := os.WriteFile(name, []byte("+++."), 0o644)
	require.NoError(t, err)

	var out bytes.Buffer

	err = RunFile(ctx, name, strings.NewReader(""), &out, Options{})
	require.NoError(t, err)
	require.Equal(t, "\x03", out.String())
}
