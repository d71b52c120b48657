package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrPointerOutOfBounds is matched by every *PointerError.
	ErrPointerOutOfBounds = errors.New("cell pointer out of bounds")

	// ErrInputExhausted is returned when an input command finds the input
	// stream at EOF and the EOF policy is EOFError.
	ErrInputExhausted = errors.New("input exhausted")

	// ErrCancelled is returned when the run's context is done.
	ErrCancelled = errors.New("run cancelled")

	// ErrUnknownTier is returned for a tier outside TierScan..TierFolded.
	ErrUnknownTier = errors.New("unknown tier")
)

// PointerError reports a pointer move that left the tape under PointerFault.
type PointerError struct {
	PC  int // index of the faulting instruction in the active sequence
	Pos int // position the pointer would have moved to
}

func (e *PointerError) Error() string {
	return fmt.Sprintf("cell pointer out of bounds: move to %d at pc %d (tape is 0..%d)", e.Pos, e.PC, TapeSize-1)
}

func (e *PointerError) Unwrap() error {
	return ErrPointerOutOfBounds
}
