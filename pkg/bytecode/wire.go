package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical encoding so equal programs encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProgram serializes a Program to CBOR bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalProgram deserializes a Program from CBOR bytes and checks that
// it is safe to execute.
func UnmarshalProgram(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if err := p.Verify(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Verify checks the structural invariants of a program: a supported
// version, counts that are positive and 1 for non-repeatable opcodes, and
// loop targets that pair up with each other and nest without crossing.
func (p *Program) Verify() error {
	if p.Version > ProgramVersion {
		return fmt.Errorf("bytecode: program version %d is newer than supported version %d", p.Version, ProgramVersion)
	}
	var open []int
	for i, in := range p.Code {
		if in.Count < 1 || (!in.Op.IsRepeatable() && in.Count != 1) {
			return fmt.Errorf("bytecode: instruction %04X (%s) has count %d", i, in.Op, in.Count)
		}
		if !in.Op.IsLoop() {
			continue
		}
		t := in.Target
		if t < 0 || t >= len(p.Code) {
			return fmt.Errorf("bytecode: instruction %04X jumps to %d, outside 0..%d", i, t, len(p.Code)-1)
		}
		partner := p.Code[t]
		if partner.Target != i || !partner.Op.IsLoop() || partner.Op == in.Op {
			return fmt.Errorf("bytecode: instruction %04X (%s) and %04X (%s) are not a loop pair", i, in.Op, t, partner.Op)
		}
		if in.Op == OpLoopOpen {
			if t < i {
				return fmt.Errorf("bytecode: loop open at %04X closes before it at %04X", i, t)
			}
			open = append(open, i)
			continue
		}
		if t > i {
			return fmt.Errorf("bytecode: loop open at %04X closes before it at %04X", t, i)
		}
		if top := len(open) - 1; top < 0 || open[top] != t {
			return fmt.Errorf("bytecode: loop %04X..%04X crosses another loop", t, i)
		}
		open = open[:len(open)-1]
	}
	return nil
}
