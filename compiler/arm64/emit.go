package arm64

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/ir"
)

// Linux syscall numbers for aarch64.
const (
	sysRead  = 63
	sysWrite = 64
	sysExit  = 93
)

// addImmMax is the widest immediate ADD and SUB take in one instruction.
const addImmMax = 4095

type (
	compiler struct {
		reads int
	}
)

// CompileProgram appends GNU as source for an aarch64 linux
// standalone binary to b.
//
// The tape lives in bss and X19 walks it. Cell arithmetic is done in
// W0, io goes straight through read and write syscalls one byte at a
// time. Programs with a growing tape cannot be compiled this way.
func CompileProgram(ctx context.Context, b []byte, p *ir.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile arm64", "instrs", len(p.Code), "cells", p.Cells)
	defer tr.Finish("err", &err)

	if p.Growth == ir.Grow {
		return nil, errors.New("dynamic tape is not supported by the native backend")
	}

	c := &compiler{}

	b = fmt.Appendf(b, `	.global	_start
	.align	4

	.text
_start:
	LDR	X19, =tape

`)

	for i, x := range p.Code {
		b, err = c.instr(b, x, p.EOF)
		if err != nil {
			return nil, errors.Wrap(err, "instr %v", i)
		}
	}

	b = fmt.Appendf(b, `
	MOV	X0, #0
	MOV	X8, #%v	// exit
	SVC	#0

	.bss
	.align	4
tape:
	.skip	%v
`, sysExit, p.Cells)

	return b, nil
}

func (c *compiler) instr(b []byte, x ir.Instr, eof ir.EOFPolicy) (_ []byte, err error) {
	switch x := x.(type) {
	case ir.Move:
		b = addImm(b, "X19", x.Off)
	case ir.AddConst:
		d := x.Delta % (1 << ir.CellWidth)
		if d == 0 {
			break
		}

		b = fmt.Appendf(b, "	LDRB	W0, [X19]\n")
		b = addImm(b, "W0", d)
		b = fmt.Appendf(b, "	STRB	W0, [X19]\n")
	case ir.Write:
		b = fmt.Appendf(b, `	MOV	X0, #1
	MOV	X1, X19
	MOV	X2, #1
	MOV	X8, #%v	// write
	SVC	#0
`, sysWrite)
	case ir.Read:
		b = fmt.Appendf(b, `	MOV	X0, #0
	MOV	X1, X19
	MOV	X2, #1
	MOV	X8, #%v	// read
	SVC	#0
`, sysRead)

		b, err = c.eof(b, eof)
		if err != nil {
			return nil, err
		}
	case ir.LoopStart:
		b = fmt.Appendf(b, "L%v:\n	LDRB	W0, [X19]\n	CBZ	W0, E%v\n", x.ID, x.ID)
	case ir.LoopEnd:
		b = fmt.Appendf(b, "	B	L%v\nE%v:\n", x.ID, x.ID)
	default:
		return nil, errors.New("unsupported instruction: %T", x)
	}

	return b, nil
}

// eof appends the end of input handling after a read syscall.
// X0 still holds the byte count the kernel returned.
func (c *compiler) eof(b []byte, eof ir.EOFPolicy) (_ []byte, err error) {
	c.reads++

	switch eof {
	case ir.EOFKeep:
		// nothing was written, the cell keeps its value
	case ir.EOFZero:
		b = fmt.Appendf(b, "	CMP	X0, #0\n	B.GT	R%v\n	STRB	WZR, [X19]\nR%v:\n", c.reads, c.reads)
	case ir.EOFFatal:
		b = fmt.Appendf(b, "	CMP	X0, #0\n	B.GT	R%v\n	MOV	X0, #1\n	MOV	X8, #%v	// exit\n	SVC	#0\nR%v:\n", c.reads, sysExit, c.reads)
	default:
		return nil, errors.New("unsupported eof policy: %v", eof)
	}

	return b, nil
}

// addImm appends an add of n to a register, split into legal
// immediates. Negative n subtracts.
func addImm(b []byte, reg string, n int) []byte {
	op := "ADD"
	if n < 0 {
		op, n = "SUB", -n
	}

	for n > addImmMax {
		b = fmt.Appendf(b, "	%v	%v, %v, #%v\n", op, reg, reg, addImmMax)
		n -= addImmMax
	}

	if n != 0 {
		b = fmt.Appendf(b, "	%v	%v, %v, #%v\n", op, reg, reg, n)
	}

	return b
}
