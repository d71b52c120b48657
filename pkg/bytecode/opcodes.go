package bytecode

import "fmt"

// Opcode represents one command of the tape language. The same type is used
// for filtered source tokens and for the kind of a folded instruction.
type Opcode byte

const (
	OpInvalid   Opcode = 0x00 // Anything that is not a command; executes as a no-op
	OpRight     Opcode = 0x01 // >  move the cell pointer right
	OpLeft      Opcode = 0x02 // <  move the cell pointer left
	OpInc       Opcode = 0x03 // +  increment the current cell (mod 256)
	OpDec       Opcode = 0x04 // -  decrement the current cell (mod 256)
	OpOut       Opcode = 0x05 // .  write the current cell
	OpIn        Opcode = 0x06 // ,  read one byte into the current cell
	OpLoopOpen  Opcode = 0x07 // [  jump past the matching ] if the cell is zero
	OpLoopClose Opcode = 0x08 // ]  jump back to the matching [ if the cell is nonzero
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name       string // Human-readable name
	Symbol     byte   // Source character, 0 for OpInvalid
	Repeatable bool   // Whether adjacent runs may be folded into one instruction
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpInvalid:   {"INVALID", 0, false},
	OpRight:     {"RIGHT", '>', true},
	OpLeft:      {"LEFT", '<', true},
	OpInc:       {"INC", '+', true},
	OpDec:       {"DEC", '-', true},
	OpOut:       {"OUT", '.', true},
	OpIn:        {"IN", ',', true},
	OpLoopOpen:  {"LOOP_OPEN", '[', false},
	OpLoopClose: {"LOOP_CLOSE", ']', false},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Symbol returns the source character of an opcode, or '?' if it has none.
func (op Opcode) Symbol() byte {
	if s := GetOpcodeInfo(op).Symbol; s != 0 {
		return s
	}
	return '?'
}

// IsRepeatable reports whether runs of this opcode fold into one counted instruction.
func (op Opcode) IsRepeatable() bool {
	return GetOpcodeInfo(op).Repeatable
}

// IsLoop returns true for the two loop delimiters.
func (op Opcode) IsLoop() bool {
	return op == OpLoopOpen || op == OpLoopClose
}

// FromSymbol maps a source character to its opcode. Characters outside the
// command set map to OpInvalid.
func FromSymbol(c byte) Opcode {
	switch c {
	case '>':
		return OpRight
	case '<':
		return OpLeft
	case '+':
		return OpInc
	case '-':
		return OpDec
	case '.':
		return OpOut
	case ',':
		return OpIn
	case '[':
		return OpLoopOpen
	case ']':
		return OpLoopClose
	default:
		return OpInvalid
	}
}

// AllOpcodes returns a slice of all defined opcodes in numeric order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := OpInvalid; op <= OpLoopClose; op++ {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// Symbols renders a token sequence back into source text.
func Symbols(ops []Opcode) string {
	buf := make([]byte, len(ops))
	for i, op := range ops {
		buf[i] = op.Symbol()
	}
	return string(buf)
}
