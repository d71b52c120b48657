package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns a human-readable listing with a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; Folded program v%d\n", p.Version))
	sb.WriteString(fmt.Sprintf("; Flags: 0x%04X", p.Flags))
	if p.Flags&ProgramFlagHasLoops != 0 {
		sb.WriteString(" [LOOPS]")
	}
	if p.Flags&ProgramFlagHasInput != 0 {
		sb.WriteString(" [INPUT]")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("; Tokens: %d, instructions: %d\n\n", p.TokenCount, len(p.Code)))

	sb.WriteString("; Code:\n")
	for i := range p.Code {
		sb.WriteString(fmt.Sprintf("%04X  %s\n", i, p.DisassembleInstruction(i)))
	}

	return sb.String()
}

// DisassembleInstruction formats the single instruction at idx.
func (p *Program) DisassembleInstruction(idx int) string {
	if idx < 0 || idx >= len(p.Code) {
		return "<end of code>"
	}
	return p.Code[idx].String()
}

// String formats an instruction as it appears in a listing.
func (in Instruction) String() string {
	switch {
	case in.Op.IsLoop():
		if in.Target == NoTarget {
			return fmt.Sprintf("%-10s -> ????", in.Op)
		}
		return fmt.Sprintf("%-10s -> %04X", in.Op, in.Target)
	case in.Op.IsRepeatable():
		return fmt.Sprintf("%-10s x%d", in.Op, in.Count)
	default:
		return in.Op.String()
	}
}
