package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/chazu/bfi/compiler"
)

func TestLocate(t *testing.T) {
	tokens, positions := compiler.LexWithPositions([]byte("+\n  [-"))
	err := compiler.CheckBalance(tokens, compiler.OpcodeDelim)
	if err == nil {
		t.Fatal("expected unbalanced bracket")
	}
	if got := locate("prog.bf", positions, err); got != "prog.bf:2:3" {
		t.Errorf("locate = %q, want %q", got, "prog.bf:2:3")
	}
	if got := locate("prog.bf", positions, errors.New("other")); got != "prog.bf" {
		t.Errorf("locate for non-bracket error = %q, want %q", got, "prog.bf")
	}
}

func TestCompileThroughCache(t *testing.T) {
	tokens := compiler.Lex([]byte("+++[>+<-]"))

	direct, err := compile(settings{}, tokens)
	if err != nil {
		t.Fatalf("compile without cache: %v", err)
	}

	s := settings{cachePath: filepath.Join(t.TempDir(), "cache.db")}
	for i := 0; i < 2; i++ {
		prog, err := compile(s, tokens)
		if err != nil {
			t.Fatalf("compile with cache (pass %d): %v", i, err)
		}
		if prog.Disassemble() != direct.Disassemble() {
			t.Errorf("pass %d: cached program differs:\n%s\nwant:\n%s", i, prog.Disassemble(), direct.Disassemble())
		}
	}
}
