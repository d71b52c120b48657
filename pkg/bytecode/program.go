package bytecode

// ProgramVersion is the current folded program format version.
// Increment when making incompatible changes to the format.
const ProgramVersion uint16 = 1

// NoTarget is the placeholder jump target carried by loop instructions until
// the bracket pass patches them, and by every non-loop instruction.
const NoTarget = -1

// ProgramFlags contains compilation flags for a program.
type ProgramFlags uint16

const (
	// ProgramFlagHasLoops indicates the program contains at least one loop.
	ProgramFlagHasLoops ProgramFlags = 1 << 0

	// ProgramFlagHasInput indicates the program reads from its input stream.
	ProgramFlagHasInput ProgramFlags = 1 << 1
)

// Instruction is one folded, counted operation.
//
// Count is the run length for the six repeatable opcodes and always 1 for
// loop delimiters and OpInvalid. Target is the index of the partner
// delimiter for loop instructions and NoTarget otherwise.
type Instruction struct {
	Op     Opcode `cbor:"1,keyasint"`
	Count  int    `cbor:"2,keyasint"`
	Target int    `cbor:"3,keyasint"`
}

// Program is a folded instruction sequence ready for the folded tier.
type Program struct {
	Version    uint16        `cbor:"1,keyasint"`
	Flags      ProgramFlags  `cbor:"2,keyasint"`
	Code       []Instruction `cbor:"3,keyasint"`
	TokenCount int           `cbor:"4,keyasint"` // length of the unfolded token sequence
}

// NewProgram creates an empty program with the current version.
func NewProgram() *Program {
	return &Program{
		Version: ProgramVersion,
		Code:    make([]Instruction, 0, 64),
	}
}

// Emit appends an instruction and returns its index.
func (p *Program) Emit(op Opcode, count int) int {
	idx := len(p.Code)
	p.Code = append(p.Code, Instruction{Op: op, Count: count, Target: NoTarget})
	switch {
	case op.IsLoop():
		p.Flags |= ProgramFlagHasLoops
	case op == OpIn:
		p.Flags |= ProgramFlagHasInput
	}
	return idx
}

// PatchTarget sets the jump target of the loop instruction at idx.
func (p *Program) PatchTarget(idx, target int) {
	p.Code[idx].Target = target
}

// Len returns the number of folded instructions.
func (p *Program) Len() int {
	return len(p.Code)
}
