package back

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bfplang/bfp/compiler/front"
	"github.com/bfplang/bfp/compiler/ir"
	"github.com/bfplang/bfp/compiler/token"
)

func lower(t *testing.T, src string, opts Options) (*ir.Program, error) {
	t.Helper()

	ctx := context.Background()

	toks, err := front.Lex(ctx, []byte(src))
	require.NoError(t, err)

	return Lower(ctx, toks, opts)
}

func TestLowerDefaults(t *testing.T) {
	p, err := lower(t, "", Options{})
	require.NoError(t, err)

	require.Empty(t, p.Code)
	require.Equal(t, ir.DefaultCells, p.Cells)
	require.Equal(t, ir.Fixed, p.Growth)
	require.Equal(t, ir.EOFZero, p.EOF)
}

func TestLowerOptions(t *testing.T) {
	p, err := lower(t, "", Options{Cells: 30000, Growth: ir.Grow, EOF: ir.EOFFatal})
	require.NoError(t, err)

	require.Equal(t, 30000, p.Cells)
	require.Equal(t, ir.Grow, p.Growth)
	require.Equal(t, ir.EOFFatal, p.EOF)

	_, err = lower(t, "", Options{Cells: -1})
	require.Error(t, err)
}

func TestLowerCoalescesRuns(t *testing.T) {
	p, err := lower(t, ">>><<", Options{})
	require.NoError(t, err)
	require.Equal(t, []ir.Instr{ir.Move{Off: 1}}, p.Code)

	p, err = lower(t, "++--+", Options{})
	require.NoError(t, err)
	require.Equal(t, []ir.Instr{ir.AddConst{Delta: 1}}, p.Code)
}

func TestLowerElidesNetZeroRuns(t *testing.T) {
	p, err := lower(t, "><", Options{})
	require.NoError(t, err)
	require.Empty(t, p.Code)

	p, err = lower(t, "+-", Options{})
	require.NoError(t, err)
	require.Empty(t, p.Code)
}

func TestLowerCarriesDeltaUnbounded(t *testing.T) {
	// wraparound is the backend's business, not the lowering's
	p, err := lower(t, strings.Repeat("+", 300), Options{})
	require.NoError(t, err)
	require.Equal(t, []ir.Instr{ir.AddConst{Delta: 300}}, p.Code)
}

func TestLowerProgram(t *testing.T) {
	p, err := lower(t, "+[>+.<],", Options{})
	require.NoError(t, err)

	require.Equal(t, []ir.Instr{
		ir.AddConst{Delta: 1},
		ir.LoopStart{ID: 0},
		ir.Move{Off: 1},
		ir.AddConst{Delta: 1},
		ir.Write{},
		ir.Move{Off: -1},
		ir.LoopEnd{ID: 0},
		ir.Read{},
	}, p.Code)
}

func TestLowerLoopIDs(t *testing.T) {
	p, err := lower(t, "[[][]]", Options{})
	require.NoError(t, err)

	require.Equal(t, []ir.Instr{
		ir.LoopStart{ID: 0},
		ir.LoopStart{ID: 1},
		ir.LoopEnd{ID: 1},
		ir.LoopStart{ID: 2},
		ir.LoopEnd{ID: 2},
		ir.LoopEnd{ID: 0},
	}, p.Code)
}

func TestLowerUnbalancedClose(t *testing.T) {
	_, err := lower(t, "+]", Options{})

	var e UnbalancedLoopError
	require.ErrorAs(t, err, &e)
	require.Equal(t, 1, e.Pos)
	require.False(t, e.Open)
}

func TestLowerUnbalancedOpen(t *testing.T) {
	_, err := lower(t, "+[+[", Options{})

	var e UnbalancedLoopError
	require.ErrorAs(t, err, &e)
	require.Equal(t, 3, e.Pos)
	require.True(t, e.Open)
}

func TestLowerRejectsMarkers(t *testing.T) {
	ctx := context.Background()

	toks := []token.Token{{Kind: token.Proc, Ch: '*', Pos: 0}}

	_, err := Lower(ctx, toks, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected token")
}
