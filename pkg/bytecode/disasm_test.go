package bytecode

import (
	"strings"
	"testing"
)

// loopProgram builds "+++[>++<-]." by hand with patched targets.
func loopProgram() *Program {
	p := NewProgram()
	p.Emit(OpInc, 3)
	open := p.Emit(OpLoopOpen, 1)
	p.Emit(OpRight, 1)
	p.Emit(OpInc, 2)
	p.Emit(OpLeft, 1)
	p.Emit(OpDec, 1)
	closeIdx := p.Emit(OpLoopClose, 1)
	p.Emit(OpOut, 1)
	p.PatchTarget(open, closeIdx)
	p.PatchTarget(closeIdx, open)
	p.TokenCount = 11
	return p
}

func TestDisassembleEmpty(t *testing.T) {
	p := NewProgram()

	output := p.Disassemble()

	if !strings.Contains(output, "Folded program v1") {
		t.Error("Disassembly missing header")
	}
	if !strings.Contains(output, "instructions: 0") {
		t.Error("Disassembly missing instruction count")
	}
}

func TestDisassembleLoop(t *testing.T) {
	output := loopProgram().DisassembleWithName("loop")

	wants := []string{
		"; === loop ===",
		"[LOOPS]",
		"Tokens: 11, instructions: 8",
		"0000  INC",
		"x3",
		"0001  LOOP_OPEN  -> 0006",
		"0006  LOOP_CLOSE -> 0001",
		"0007  OUT",
	}
	for _, want := range wants {
		if !strings.Contains(output, want) {
			t.Errorf("Disassembly missing %q:\n%s", want, output)
		}
	}
}

func TestDisassembleUnpatchedLoop(t *testing.T) {
	p := NewProgram()
	p.Emit(OpLoopOpen, 1)

	if got := p.DisassembleInstruction(0); !strings.Contains(got, "????") {
		t.Errorf("unpatched loop = %q, want placeholder target", got)
	}
	if got := p.DisassembleInstruction(5); got != "<end of code>" {
		t.Errorf("out of range = %q, want <end of code>", got)
	}
}

func TestEmitFlags(t *testing.T) {
	p := NewProgram()
	p.Emit(OpInc, 1)
	if p.Flags != 0 {
		t.Errorf("Flags = 0x%04X after INC, want 0", p.Flags)
	}
	p.Emit(OpIn, 2)
	if p.Flags&ProgramFlagHasInput == 0 {
		t.Error("IN did not set ProgramFlagHasInput")
	}
	if idx := p.Emit(OpLoopOpen, 1); idx != 2 {
		t.Errorf("Emit index = %d, want 2", idx)
	}
	if p.Flags&ProgramFlagHasLoops == 0 {
		t.Error("LOOP_OPEN did not set ProgramFlagHasLoops")
	}
	if p.Code[2].Target != NoTarget {
		t.Errorf("new loop target = %d, want NoTarget", p.Code[2].Target)
	}
}
