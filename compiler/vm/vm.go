package vm

import (
	"context"
	"fmt"
	"io"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfplang/bfp/compiler/ir"
)

type (
	// Options bounds an execution. Zero value means no bound.
	Options struct {
		// StepLimit aborts the program after that many instructions.
		StepLimit int
	}

	// Machine executes an ir.Program directly.
	// The whole program state is the tape, the cell pointer and the
	// program counter.
	Machine struct {
		code []ir.Instr
		jump []int // pc of the paired bracket, loops only

		tape []byte
		ptr  int

		growth ir.Growth
		eof    ir.EOFPolicy

		in  io.Reader
		out io.Writer

		steps int
		limit int
	}

	// TapeError means the program moved the pointer off the tape.
	TapeError struct {
		PC   int
		Cell int
	}

	// StepLimitError means the program ran out of its step budget.
	StepLimitError struct {
		Steps int
	}

	// EOFError means a read hit end of input under the fatal policy.
	EOFError struct {
		PC int
	}
)

// ckevery is how often the step loop checks the context.
const ckevery = 0x400

// New builds a machine for a program. The whole instruction sequence
// is checked here: unknown instructions and unpaired loop brackets are
// construction errors, so Run starts from a verified program.
func New(p *ir.Program, in io.Reader, out io.Writer, opts Options) (*Machine, error) {
	cells := p.Cells
	if cells <= 0 {
		cells = ir.DefaultCells
	}

	m := &Machine{
		code: p.Code,
		jump: make([]int, len(p.Code)),

		tape: make([]byte, cells),

		growth: p.Growth,
		eof:    p.EOF,

		in:  in,
		out: out,

		limit: opts.StepLimit,
	}

	var open []int

	for pc, x := range p.Code {
		switch x := x.(type) {
		case ir.Move, ir.AddConst, ir.Write, ir.Read:
		case ir.LoopStart:
			open = append(open, pc)
		case ir.LoopEnd:
			if len(open) == 0 {
				return nil, errors.New("loop end with no start (pc %v)", pc)
			}

			st := open[len(open)-1]
			open = open[:len(open)-1]

			if id := p.Code[st].(ir.LoopStart).ID; id != x.ID {
				return nil, errors.New("loop %v closed by end %v (pc %v)", id, x.ID, pc)
			}

			m.jump[st] = pc
			m.jump[pc] = st
		default:
			return nil, errors.New("unsupported instruction: %T (pc %v)", x, pc)
		}
	}

	if len(open) != 0 {
		return nil, errors.New("loop start never closed (pc %v)", open[len(open)-1])
	}

	return m, nil
}

// Run executes the program to completion.
func (m *Machine) Run(ctx context.Context) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm: run", "instrs", len(m.code), "cells", len(m.tape))
	defer tr.Finish("steps", &m.steps, "err", &err)

	trace := tr.If("steps")

	var buf [1]byte

	for pc := 0; pc < len(m.code); pc++ {
		m.steps++

		if m.limit > 0 && m.steps > m.limit {
			return StepLimitError{Steps: m.steps - 1}
		}
		if m.steps%ckevery == 0 {
			if err = ctx.Err(); err != nil {
				return errors.Wrap(err, "step %v", m.steps)
			}
		}

		if trace {
			tr.Printw("step", "pc", pc, "ptr", m.ptr, "cell", m.tape[m.ptr], "instr", tlog.FormatNext("%+v"), m.code[pc])
		}

		switch x := m.code[pc].(type) {
		case ir.Move:
			err = m.move(pc, x.Off)
			if err != nil {
				return err
			}
		case ir.AddConst:
			m.tape[m.ptr] += byte(x.Delta)
		case ir.Write:
			buf[0] = m.tape[m.ptr]

			_, err = m.out.Write(buf[:])
			if err != nil {
				return errors.Wrap(err, "write (pc %v)", pc)
			}
		case ir.Read:
			err = m.read(pc, buf[:])
			if err != nil {
				return err
			}
		case ir.LoopStart:
			if m.tape[m.ptr] == 0 {
				pc = m.jump[pc]
			}
		case ir.LoopEnd:
			if m.tape[m.ptr] != 0 {
				pc = m.jump[pc]
			}
		}
	}

	return nil
}

func (m *Machine) move(pc, off int) error {
	p := m.ptr + off

	if p < 0 {
		return TapeError{PC: pc, Cell: p}
	}

	for p >= len(m.tape) {
		if m.growth != ir.Grow {
			return TapeError{PC: pc, Cell: p}
		}

		m.tape = append(m.tape, make([]byte, len(m.tape))...)
	}

	m.ptr = p

	return nil
}

func (m *Machine) read(pc int, buf []byte) error {
	_, err := io.ReadFull(m.in, buf[:1])

	switch {
	case err == nil:
		m.tape[m.ptr] = buf[0]
	case errors.Is(err, io.EOF):
		switch m.eof {
		case ir.EOFZero:
			m.tape[m.ptr] = 0
		case ir.EOFKeep:
		case ir.EOFFatal:
			return EOFError{PC: pc}
		}
	default:
		return errors.Wrap(err, "read (pc %v)", pc)
	}

	return nil
}

// Steps is how many instructions Run executed so far.
func (m *Machine) Steps() int { return m.steps }

func (e TapeError) Error() string {
	return fmt.Sprintf("pointer moved off the tape: cell %v (pc %v)", e.Cell, e.PC)
}

func (e StepLimitError) Error() string {
	return fmt.Sprintf("step limit exceeded: %v", e.Steps)
}

func (e EOFError) Error() string {
	return fmt.Sprintf("end of input (pc %v)", e.PC)
}
