package server

import (
	"errors"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/bfi/compiler"
	"github.com/chazu/bfi/pkg/bytecode"
)

// document is an open editor buffer with its analyses.
type document struct {
	text      string
	tokens    []bytecode.Opcode
	positions []compiler.Position

	jump compiler.JumpTable // nil when the brackets do not balance
	err  error

	code  []bytecode.Instruction
	runOf []int // token index -> index of the folded instruction covering it
}

func analyze(text string) *document {
	d := &document{text: text}
	d.tokens, d.positions = compiler.LexWithPositions([]byte(text))
	d.jump, d.err = compiler.MatchBrackets(d.tokens, compiler.OpcodeDelim)

	d.code = compiler.Fold(d.tokens)
	d.runOf = make([]int, 0, len(d.tokens))
	for i, in := range d.code {
		for range in.Count {
			d.runOf = append(d.runOf, i)
		}
	}
	return d
}

// diagnostics reports the unbalanced bracket, if any.
func (d *document) diagnostics() []protocol.Diagnostic {
	var be *compiler.BracketError
	if !errors.As(d.err, &be) || be.Pos >= len(d.positions) {
		return []protocol.Diagnostic{}
	}
	severity := protocol.DiagnosticSeverityError
	source := lspName
	return []protocol.Diagnostic{{
		Range:    tokenRange(d.positions[be.Pos]),
		Severity: &severity,
		Source:   &source,
		Message:  be.Error(),
	}}
}

// tokenAt returns the index of the token under the cursor, or -1. A cursor
// directly after a token also selects it.
func (d *document) tokenAt(pos protocol.Position) int {
	line := int(pos.Line) + 1
	col := int(pos.Character) + 1
	after := -1
	for i, p := range d.positions {
		if p.Line != line {
			continue
		}
		if p.Column == col {
			return i
		}
		if p.Column == col-1 {
			after = i
		}
	}
	return after
}

// partner returns the matching bracket of token i, or -1.
func (d *document) partner(i int) int {
	if d.jump == nil || i < 0 || i >= len(d.jump) {
		return -1
	}
	return d.jump[i]
}

func tokenRange(p compiler.Position) protocol.Range {
	start := protocol.Position{
		Line:      protocol.UInteger(p.Line - 1),
		Character: protocol.UInteger(p.Column - 1),
	}
	end := start
	end.Character++
	return protocol.Range{Start: start, End: end}
}
