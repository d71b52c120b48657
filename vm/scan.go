package vm

import (
	"github.com/chazu/bfi/compiler"
	"github.com/chazu/bfi/pkg/bytecode"
)

// runScan is the direct-scan tier. Nothing is precomputed beyond a balance
// check; every taken jump walks the tokens with a nesting counter.
func (m *Machine) runScan(tokens []bytecode.Opcode) error {
	if err := compiler.CheckBalance(tokens, compiler.OpcodeDelim); err != nil {
		return err
	}

	for m.pc = 0; m.pc < len(tokens); m.pc++ {
		m.stats.Steps++
		switch op := tokens[m.pc]; op {
		case bytecode.OpLoopOpen:
			if m.tape[m.ptr] != 0 {
				break
			}
			target, err := scanForward(tokens, m.pc)
			if err != nil {
				return err
			}
			m.stats.ForwardJumps++
			m.pc = target
		case bytecode.OpLoopClose:
			if m.tape[m.ptr] == 0 {
				break
			}
			target, err := scanBackward(tokens, m.pc)
			if err != nil {
				return err
			}
			m.pc = target
			if err := m.backEdge(); err != nil {
				return err
			}
		default:
			if err := m.exec(op, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// scanForward finds the ']' closing the '[' at pc.
func scanForward(tokens []bytecode.Opcode, pc int) (int, error) {
	nesting := 1
	i := pc
	for nesting > 0 {
		i++
		if i >= len(tokens) {
			return 0, &compiler.BracketError{Pos: pc, Open: true}
		}
		switch tokens[i] {
		case bytecode.OpLoopOpen:
			nesting++
		case bytecode.OpLoopClose:
			nesting--
		}
	}
	return i, nil
}

// scanBackward finds the '[' opening the ']' at pc.
func scanBackward(tokens []bytecode.Opcode, pc int) (int, error) {
	nesting := 1
	i := pc
	for nesting > 0 {
		i--
		if i < 0 {
			return 0, &compiler.BracketError{Pos: pc}
		}
		switch tokens[i] {
		case bytecode.OpLoopOpen:
			nesting--
		case bytecode.OpLoopClose:
			nesting++
		}
	}
	return i, nil
}
