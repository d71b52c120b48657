package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/bfi/pkg/bytecode"
)

// Tier selects one of the three interchangeable execution strategies.
type Tier int

const (
	// TierScan interprets tokens and finds each loop partner with an inline
	// nesting scan every time a jump is taken.
	TierScan Tier = iota
	// TierJump interprets tokens using a jump table built once up front.
	TierJump
	// TierFolded interprets run-length folded instructions with jump
	// targets patched into the code.
	TierFolded
)

var tierNames = map[Tier]string{
	TierScan:   "scan",
	TierJump:   "jump",
	TierFolded: "folded",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// ParseTier accepts a tier number, its name, or the historical
// "simple"/"optimized" selectors.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "scan", "simple":
		return TierScan, nil
	case "1", "jump", "optimized":
		return TierJump, nil
	case "2", "folded":
		return TierFolded, nil
	default:
		return 0, fmt.Errorf("%w %q (want scan, jump or folded)", ErrUnknownTier, s)
	}
}

// Run executes tokens on a fresh machine with the chosen tier.
func Run(ctx context.Context, tier Tier, tokens []bytecode.Opcode, in io.Reader, out io.Writer, opts Options) error {
	return NewMachine(in, out, opts).Run(ctx, tier, tokens)
}

// RunProgram executes an already compiled program on a fresh machine with
// the folded tier.
func RunProgram(ctx context.Context, prog *bytecode.Program, in io.Reader, out io.Writer, opts Options) error {
	return NewMachine(in, out, opts).RunProgram(ctx, prog)
}

// Run executes tokens with the chosen tier. Program output is flushed
// whether or not the run succeeds; the trailing newline is written only on
// success.
func (m *Machine) Run(ctx context.Context, tier Tier, tokens []bytecode.Opcode) error {
	m.reset(ctx)

	var err error
	switch tier {
	case TierScan:
		err = m.runScan(tokens)
	case TierJump:
		err = m.runJump(tokens)
	case TierFolded:
		err = m.runFolded(tokens)
	default:
		err = fmt.Errorf("%w %d", ErrUnknownTier, int(tier))
	}
	return m.finish(tier, err)
}

// RunProgram executes a compiled program with the folded tier.
func (m *Machine) RunProgram(ctx context.Context, prog *bytecode.Program) error {
	m.reset(ctx)
	return m.finish(TierFolded, m.execProgram(prog))
}

func (m *Machine) reset(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	m.ctx = ctx
	m.tape = [TapeSize]byte{}
	m.ptr = 0
	m.pc = 0
	m.stats = Stats{}
}

func (m *Machine) finish(tier Tier, err error) error {
	if err == nil && m.opts.TrailingNewline {
		if werr := m.out.WriteByte('\n'); werr != nil {
			err = fmt.Errorf("write output: %w", werr)
		}
	}
	if ferr := m.out.Flush(); ferr != nil {
		err = errors.Join(err, fmt.Errorf("write output: %w", ferr))
	}
	if err != nil {
		log.Debugf("%s tier stopped at pc %d after %d steps: %s", tier, m.pc, m.stats.Steps, err)
		return err
	}
	log.Debugf("%s tier finished: %d steps, %d loops skipped, %d loop repeats",
		tier, m.stats.Steps, m.stats.ForwardJumps, m.stats.BackwardJumps)
	return nil
}
