package ir

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	// ID pairs a LoopStart with its LoopEnd.
	ID int

	// Instr is one lowered instruction. Exactly six concrete types
	// implement it: Move, AddConst, Write, Read, LoopStart, LoopEnd.
	// Backends must reject anything else.
	Instr any

	Move struct {
		Off int
	}

	AddConst struct {
		Delta int
	}

	Write struct{}
	Read  struct{}

	LoopStart struct {
		ID ID
	}

	LoopEnd struct {
		ID ID
	}

	// Program is the complete contract handed to a backend:
	// the instruction sequence plus the tape and input configuration.
	Program struct {
		Code []Instr

		Cells  int
		Growth Growth
		EOF    EOFPolicy
	}

	EOFPolicy int
	Growth    int
)

// CellWidth is fixed for the base dialect.
const CellWidth = 8

// DefaultCells is the tape allocation when no size is configured.
const DefaultCells = 1000

const (
	EOFZero EOFPolicy = iota // Read stores 0 at end of input
	EOFKeep                  // Read leaves the cell unchanged
	EOFFatal                 // Read aborts the program
)

const (
	Fixed Growth = iota // pre-allocated tape, bounds-checked
	Grow                // tape extends to the right on demand
)

func (p EOFPolicy) String() string {
	switch p {
	case EOFZero:
		return "zero"
	case EOFKeep:
		return "keep"
	case EOFFatal:
		return "fatal"
	}

	return fmt.Sprintf("eof(%d)", int(p))
}

func (g Growth) String() string {
	switch g {
	case Fixed:
		return "fixed"
	case Grow:
		return "dynamic"
	}

	return fmt.Sprintf("growth(%d)", int(g))
}

func ParseEOFPolicy(s string) (EOFPolicy, error) {
	switch s {
	case "zero", "zero-fill", "":
		return EOFZero, nil
	case "keep", "leave-unchanged":
		return EOFKeep, nil
	case "fatal", "signal-fatal":
		return EOFFatal, nil
	}

	return 0, errors.New("unknown eof policy: %q", s)
}

func ParseGrowth(s string) (Growth, error) {
	switch s {
	case "fixed", "":
		return Fixed, nil
	case "dynamic", "grow":
		return Grow, nil
	}

	return 0, errors.New("unknown tape growth: %q", s)
}
