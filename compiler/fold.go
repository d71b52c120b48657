package compiler

import (
	"fmt"

	"github.com/chazu/bfi/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Run-length folding: tokens -> counted instructions
// ---------------------------------------------------------------------------

// Fold collapses each maximal run of a repeatable opcode into one counted
// instruction. Loop delimiters and invalid opcodes are emitted one by one
// with count 1 and a placeholder target, so no run ever spans a loop boundary.
func Fold(tokens []bytecode.Opcode) []bytecode.Instruction {
	return foldInto(bytecode.NewProgram(), tokens).Code
}

func foldInto(p *bytecode.Program, tokens []bytecode.Opcode) *bytecode.Program {
	pc := 0
	for pc < len(tokens) {
		op := tokens[pc]
		if !op.IsRepeatable() {
			p.Emit(op, 1)
			pc++
			continue
		}
		start := pc
		for pc < len(tokens) && tokens[pc] == op {
			pc++
		}
		p.Emit(op, pc-start)
	}
	p.TokenCount = len(tokens)
	return p
}

// Expand replays every instruction Count times, recovering the token
// sequence that was folded.
func Expand(code []bytecode.Instruction) []bytecode.Opcode {
	n := 0
	for _, in := range code {
		n += in.Count
	}
	tokens := make([]bytecode.Opcode, 0, n)
	for _, in := range code {
		for range in.Count {
			tokens = append(tokens, in.Op)
		}
	}
	return tokens
}

// Compile folds tokens and patches every loop instruction with the index of
// its partner in the folded code. The bracket pass runs over folded
// positions, so a *BracketError from Compile carries an instruction index.
func Compile(tokens []bytecode.Opcode) (*bytecode.Program, error) {
	p := foldInto(bytecode.NewProgram(), tokens)

	jump, err := MatchBrackets(p.Code, InstructionDelim)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	for _, pair := range jump.Pairs() {
		p.PatchTarget(pair.Open, pair.Close)
		p.PatchTarget(pair.Close, pair.Open)
	}
	return p, nil
}
