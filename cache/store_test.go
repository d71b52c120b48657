package cache

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/chazu/bfi/compiler"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "programs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKey(t *testing.T) {
	a := Key(compiler.Lex([]byte("+[-]")))
	b := Key(compiler.Lex([]byte("+ [ - ] comments do not matter")))
	c := Key(compiler.Lex([]byte("+[+]")))

	if len(a) != 64 {
		t.Errorf("len(Key) = %d, want 64", len(a))
	}
	if a != b {
		t.Error("programs differing only in comments should share a key")
	}
	if a == c {
		t.Error("different programs should not share a key")
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(Key(nil)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	tokens := compiler.Lex([]byte("++++++++[>++++++++<-]>+."))
	prog, err := compiler.Compile(tokens)
	if err != nil {
		t.Fatal(err)
	}

	key := Key(tokens)
	if err := s.Put(key, prog); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, prog) {
		t.Errorf("Get = %+v, want %+v", got, prog)
	}

	// Replacing an entry keeps one row.
	if err := s.Put(key, prog); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if n, err := s.Count(); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}
}

func TestCompileCaches(t *testing.T) {
	s := openTestStore(t)
	tokens := compiler.Lex([]byte("+++[>++<-]."))

	first, err := s.Compile(tokens)
	if err != nil {
		t.Fatalf("Compile (miss): %v", err)
	}
	if n, _ := s.Count(); n != 1 {
		t.Errorf("Count() after miss = %d, want 1", n)
	}

	second, err := s.Compile(tokens)
	if err != nil {
		t.Fatalf("Compile (hit): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached program %+v differs from compiled %+v", second, first)
	}
	if n, _ := s.Count(); n != 1 {
		t.Errorf("Count() after hit = %d, want 1", n)
	}
}

func TestCompileUnbalancedIsNotCached(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Compile(compiler.Lex([]byte("+[")))
	if !errors.Is(err, compiler.ErrUnbalancedBracket) {
		t.Errorf("Compile = %v, want ErrUnbalancedBracket", err)
	}
	if n, _ := s.Count(); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestCompileReplacesCorruptEntry(t *testing.T) {
	s := openTestStore(t)
	tokens := compiler.Lex([]byte("+."))
	key := Key(tokens)

	if _, err := s.db.Exec("INSERT INTO programs (hash, data, created_at) VALUES (?, ?, 0)", key, []byte{0xFF}); err != nil {
		t.Fatal(err)
	}

	prog, err := s.Compile(tokens)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if prog.Len() != 2 {
		t.Errorf("Len() = %d, want 2", prog.Len())
	}
	if _, err := s.Get(key); err != nil {
		t.Errorf("corrupt entry was not replaced: %v", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")
	tokens := compiler.Lex([]byte(",[.,]"))

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Compile(tokens); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Get(Key(tokens)); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestCompileRecompilesMalformedEntry(t *testing.T) {
	s := openTestStore(t)
	tokens := compiler.Lex([]byte("+[-]"))
	good, err := compiler.Compile(tokens)
	if err != nil {
		t.Fatal(err)
	}

	bad, err := compiler.Compile(tokens)
	if err != nil {
		t.Fatal(err)
	}
	bad.Code[1].Count = 4 // a loop open never repeats
	if err := s.Put(Key(tokens), bad); err != nil {
		t.Fatal(err)
	}

	got, err := s.Compile(tokens)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !reflect.DeepEqual(got, good) {
		t.Errorf("Compile = %+v, want freshly compiled %+v", got, good)
	}
}
