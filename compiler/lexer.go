package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/chazu/bfi/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Token filter: source text -> command tokens
// ---------------------------------------------------------------------------

// ErrSourceUnreadable is returned when program text cannot be read.
var ErrSourceUnreadable = errors.New("source unreadable")

// Position locates a token in the source text.
type Position struct {
	Offset int // byte offset (0-based)
	Line   int // line number (1-based)
	Column int // column (1-based), counted in UTF-16 code units as editors do
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Lex keeps the eight command characters of src, in order, and discards
// everything else as commentary.
func Lex(src []byte) []bytecode.Opcode {
	tokens := make([]bytecode.Opcode, 0, len(src))
	for _, c := range src {
		if op := bytecode.FromSymbol(c); op != bytecode.OpInvalid {
			tokens = append(tokens, op)
		}
	}
	return tokens
}

// LexWithPositions is Lex plus the source position of every kept token.
func LexWithPositions(src []byte) ([]bytecode.Opcode, []Position) {
	var (
		tokens    []bytecode.Opcode
		positions []Position
	)
	line, col := 1, 1
	for off := 0; off < len(src); {
		r, size := utf8.DecodeRune(src[off:])
		if op := bytecode.FromSymbol(src[off]); op != bytecode.OpInvalid && size == 1 {
			tokens = append(tokens, op)
			positions = append(positions, Position{Offset: off, Line: line, Column: col})
		}
		if r == '\n' {
			line++
			col = 1
		} else if n := utf16.RuneLen(r); n > 0 {
			col += n
		} else {
			col++
		}
		off += size
	}
	return tokens, positions
}

// LexReader reads all of r and filters it. Read failures are reported as
// ErrSourceUnreadable.
func LexReader(r io.Reader) ([]bytecode.Opcode, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return Lex(src), nil
}

// ReadSource returns the program text stored at path. Failures are
// reported as ErrSourceUnreadable.
func ReadSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return src, nil
}

// LexFile reads and filters the program stored at path.
func LexFile(path string) ([]bytecode.Opcode, error) {
	src, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return Lex(src), nil
}
