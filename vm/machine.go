package vm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/bfi/pkg/bytecode"
)

var log = commonlog.GetLogger("bfi.vm")

// TapeSize is the number of cells on the tape.
const TapeSize = 30000

// cancelCheckInterval is how many backward jumps pass between context polls.
const cancelCheckInterval = 1024

// PointerPolicy decides what happens when the cell pointer leaves the tape.
type PointerPolicy int

const (
	// PointerFault stops the run with a *PointerError.
	PointerFault PointerPolicy = iota
	// PointerWrap reduces the pointer modulo TapeSize.
	PointerWrap
)

func (p PointerPolicy) String() string {
	switch p {
	case PointerFault:
		return "fault"
	case PointerWrap:
		return "wrap"
	default:
		return fmt.Sprintf("PointerPolicy(%d)", int(p))
	}
}

// ParsePointerPolicy parses "fault" or "wrap".
func ParsePointerPolicy(s string) (PointerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fault", "":
		return PointerFault, nil
	case "wrap":
		return PointerWrap, nil
	default:
		return 0, fmt.Errorf("unknown pointer policy %q (want fault or wrap)", s)
	}
}

// EOFPolicy decides what an input command does at the end of the input stream.
type EOFPolicy int

const (
	// EOFError stops the run with ErrInputExhausted.
	EOFError EOFPolicy = iota
	// EOFZero stores 0 in the current cell.
	EOFZero
	// EOFUnchanged leaves the current cell as it was.
	EOFUnchanged
)

func (p EOFPolicy) String() string {
	switch p {
	case EOFError:
		return "error"
	case EOFZero:
		return "zero"
	case EOFUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("EOFPolicy(%d)", int(p))
	}
}

// ParseEOFPolicy parses "error", "zero" or "unchanged".
func ParseEOFPolicy(s string) (EOFPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "":
		return EOFError, nil
	case "zero":
		return EOFZero, nil
	case "unchanged":
		return EOFUnchanged, nil
	default:
		return 0, fmt.Errorf("unknown eof policy %q (want error, zero or unchanged)", s)
	}
}

// Options configures a run. The zero value faults on pointer overflow,
// fails on EOF and writes no trailing newline.
type Options struct {
	Pointer         PointerPolicy
	EOF             EOFPolicy
	TrailingNewline bool
}

// DefaultOptions returns the options the bfi command uses when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Pointer:         PointerFault,
		EOF:             EOFError,
		TrailingNewline: true,
	}
}

// Stats counts the work done by a run.
type Stats struct {
	Steps         int // instructions dispatched
	ForwardJumps  int // loops skipped at '['
	BackwardJumps int // loop iterations repeated at ']'
}

// Machine holds the state of exactly one run: the tape, the cell pointer
// and the program counter. It is not safe for concurrent use; create one
// per run.
type Machine struct {
	tape [TapeSize]byte
	ptr  int
	pc   int

	in   io.ByteReader
	out  *bufio.Writer
	opts Options
	ctx  context.Context

	stats Stats
}

// NewMachine creates a machine reading from in and writing to out.
// A nil in behaves as an empty stream.
func NewMachine(in io.Reader, out io.Writer, opts Options) *Machine {
	if in == nil {
		in = strings.NewReader("")
	}
	br, ok := in.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &Machine{
		in:   br,
		out:  bufio.NewWriter(out),
		opts: opts,
		ctx:  context.Background(),
	}
}

// Cell returns the value of tape cell i.
func (m *Machine) Cell(i int) byte {
	return m.tape[i]
}

// Pointer returns the cell pointer.
func (m *Machine) Pointer() int {
	return m.ptr
}

// PC returns the program counter.
func (m *Machine) PC() int {
	return m.pc
}

// Stats returns the counters of the last run.
func (m *Machine) Stats() Stats {
	return m.stats
}

// exec applies one non-loop opcode n times.
func (m *Machine) exec(op bytecode.Opcode, n int) error {
	switch op {
	case bytecode.OpRight:
		return m.move(n)
	case bytecode.OpLeft:
		return m.move(-n)
	case bytecode.OpInc:
		m.tape[m.ptr] += byte(n)
	case bytecode.OpDec:
		m.tape[m.ptr] -= byte(n)
	case bytecode.OpOut:
		return m.output(n)
	case bytecode.OpIn:
		return m.input(n)
	}
	return nil
}

func (m *Machine) move(delta int) error {
	next := m.ptr + delta
	if next < 0 || next >= TapeSize {
		if m.opts.Pointer != PointerWrap {
			return &PointerError{PC: m.pc, Pos: next}
		}
		next = (next%TapeSize + TapeSize) % TapeSize
	}
	m.ptr = next
	return nil
}

func (m *Machine) output(n int) error {
	c := m.tape[m.ptr]
	for range n {
		if err := m.out.WriteByte(c); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

func (m *Machine) input(n int) error {
	// Anything printed so far is visible before we block.
	if err := m.out.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	for range n {
		b, err := m.in.ReadByte()
		if err == io.EOF {
			switch m.opts.EOF {
			case EOFZero:
				m.tape[m.ptr] = 0
				continue
			case EOFUnchanged:
				continue
			default:
				return fmt.Errorf("%w at pc %d", ErrInputExhausted, m.pc)
			}
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		m.tape[m.ptr] = b
	}
	return nil
}

// backEdge records a taken backward jump and polls the context.
func (m *Machine) backEdge() error {
	m.stats.BackwardJumps++
	if m.stats.BackwardJumps%cancelCheckInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
	}
	return nil
}
