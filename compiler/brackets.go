package compiler

import (
	"errors"
	"fmt"

	"github.com/chazu/bfi/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Bracket matching over any index-classified sequence
// ---------------------------------------------------------------------------

// ErrUnbalancedBracket is matched (via errors.Is) by every *BracketError.
var ErrUnbalancedBracket = errors.New("unbalanced bracket")

// BracketError reports a loop delimiter without a structural partner.
// Pos is an index into the sequence that was matched, so it is a token index
// for token sequences and an instruction index for folded code.
type BracketError struct {
	Pos  int
	Open bool // true for an unclosed '[', false for a stray ']'
}

func (e *BracketError) Error() string {
	if e.Open {
		return fmt.Sprintf("unbalanced bracket: '[' at %d is never closed", e.Pos)
	}
	return fmt.Sprintf("unbalanced bracket: ']' at %d has no matching '['", e.Pos)
}

func (e *BracketError) Unwrap() error {
	return ErrUnbalancedBracket
}

// Delim classifies a sequence element for bracket matching.
type Delim int8

const (
	DelimNone Delim = iota
	DelimOpen
	DelimClose
)

// OpcodeDelim classifies a token.
func OpcodeDelim(op bytecode.Opcode) Delim {
	switch op {
	case bytecode.OpLoopOpen:
		return DelimOpen
	case bytecode.OpLoopClose:
		return DelimClose
	default:
		return DelimNone
	}
}

// InstructionDelim classifies a folded instruction.
func InstructionDelim(in bytecode.Instruction) Delim {
	return OpcodeDelim(in.Op)
}

// JumpTable maps every loop delimiter index to its partner's index.
// Slots of non-delimiters hold -1.
type JumpTable []int

// Pair is one matched loop, by open and close index.
type Pair struct {
	Open, Close int
}

// Pairs returns the matched loops ordered by their open index.
func (jt JumpTable) Pairs() []Pair {
	var pairs []Pair
	for i, j := range jt {
		if j > i {
			pairs = append(pairs, Pair{Open: i, Close: j})
		}
	}
	return pairs
}

// MatchBrackets pairs every open with its structural close.
//
// Each open at i starts a forward scan with a nesting counter of 1 that
// rises on opens and falls on closes; the position j where it reaches 0 is
// the partner, and jump[i]=j, jump[j]=i. The leftmost delimiter that cannot
// be paired is reported as a *BracketError.
func MatchBrackets[T any](seq []T, classify func(T) Delim) (JumpTable, error) {
	jump := make(JumpTable, len(seq))
	for i := range jump {
		jump[i] = -1
	}

	unclosed := len(seq)
	for i := 0; i < len(seq); i++ {
		if classify(seq[i]) != DelimOpen {
			continue
		}
		nesting := 1
		j := i + 1
		for ; j < len(seq); j++ {
			switch classify(seq[j]) {
			case DelimOpen:
				nesting++
			case DelimClose:
				nesting--
			}
			if nesting == 0 {
				break
			}
		}
		if nesting != 0 {
			unclosed = i
			break
		}
		jump[i] = j
		jump[j] = i
	}

	// A close left unclaimed before the first unclosed open is the leftmost fault.
	for i := 0; i < unclosed; i++ {
		if classify(seq[i]) == DelimClose && jump[i] == -1 {
			return nil, &BracketError{Pos: i}
		}
	}
	if unclosed < len(seq) {
		return nil, &BracketError{Pos: unclosed, Open: true}
	}
	return jump, nil
}

// CheckBalance verifies that seq's delimiters nest properly without building
// a jump table. It reports the same fault MatchBrackets would.
func CheckBalance[T any](seq []T, classify func(T) Delim) error {
	var open []int
	for i, e := range seq {
		switch classify(e) {
		case DelimOpen:
			open = append(open, i)
		case DelimClose:
			if len(open) == 0 {
				return &BracketError{Pos: i}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return &BracketError{Pos: open[0], Open: true}
	}
	return nil
}
