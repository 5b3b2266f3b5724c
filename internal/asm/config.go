package asm

import (
	"rvasm/internal/errs"
	"rvasm/internal/memory"
)

// Config holds the options of an assembly run.
type Config struct {
	// ErrorLimit caps the number of errors recorded before assembly stops.
	ErrorLimit int
	// WarningsAreErrors makes any warning abort the run.
	WarningsAreErrors bool
	// ExtendedInstructions permits pseudo-instructions.
	ExtendedInstructions bool
	Layout               memory.Layout
}

func DefaultConfig() Config {
	return Config{
		ErrorLimit:           errs.DefaultLimit,
		ExtendedInstructions: true,
		Layout:               memory.DefaultLayout(),
	}
}
