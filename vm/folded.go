package vm

import (
	"github.com/chazu/bfi/compiler"
	"github.com/chazu/bfi/pkg/bytecode"
)

// runFolded is the folded tier: tokens are folded into counted
// instructions, the brackets are matched a second time over the folded
// positions, and each instruction applies its whole count in one step.
func (m *Machine) runFolded(tokens []bytecode.Opcode) error {
	prog, err := compiler.Compile(tokens)
	if err != nil {
		return err
	}
	return m.execProgram(prog)
}

func (m *Machine) execProgram(prog *bytecode.Program) error {
	code := prog.Code
	for m.pc = 0; m.pc < len(code); m.pc++ {
		m.stats.Steps++
		in := code[m.pc]
		switch in.Op {
		case bytecode.OpLoopOpen:
			if m.tape[m.ptr] == 0 {
				m.stats.ForwardJumps++
				m.pc = in.Target
			}
		case bytecode.OpLoopClose:
			if m.tape[m.ptr] != 0 {
				m.pc = in.Target
				if err := m.backEdge(); err != nil {
					return err
				}
			}
		default:
			if err := m.exec(in.Op, in.Count); err != nil {
				return err
			}
		}
	}
	return nil
}
