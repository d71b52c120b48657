package vm

import (
	"github.com/chazu/bfi/compiler"
	"github.com/chazu/bfi/pkg/bytecode"
)

// runJump is the jump-table tier: tokens are matched once, then every loop
// crossing is a table lookup.
func (m *Machine) runJump(tokens []bytecode.Opcode) error {
	jump, err := compiler.MatchBrackets(tokens, compiler.OpcodeDelim)
	if err != nil {
		return err
	}

	for m.pc = 0; m.pc < len(tokens); m.pc++ {
		m.stats.Steps++
		switch op := tokens[m.pc]; op {
		case bytecode.OpLoopOpen:
			if m.tape[m.ptr] == 0 {
				m.stats.ForwardJumps++
				m.pc = jump[m.pc]
			}
		case bytecode.OpLoopClose:
			if m.tape[m.ptr] != 0 {
				m.pc = jump[m.pc]
				if err := m.backEdge(); err != nil {
					return err
				}
			}
		default:
			if err := m.exec(op, 1); err != nil {
				return err
			}
		}
	}
	return nil
}
