// Package cache stores compiled folded programs in SQLite, keyed by the
// content hash of their token sequence.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/bfi/compiler"
	"github.com/chazu/bfi/pkg/bytecode"
)

var log = commonlog.GetLogger("bfi.cache")

// ErrNotFound indicates no program is stored under the requested key.
var ErrNotFound = errors.New("program not found")

// Store is a SQLite-backed program cache.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Key returns the cache key for a token sequence: the hex SHA-256 of its
// command characters.
func Key(tokens []bytecode.Opcode) string {
	sum := sha256.Sum256([]byte(bytecode.Symbols(tokens)))
	return hex.EncodeToString(sum[:])
}

// Open opens (creating if needed) the cache database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		hash TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get loads the program stored under key.
func (s *Store) Get(key string) (*bytecode.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow("SELECT data FROM programs WHERE hash = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying program %s: %w", key, err)
	}

	prog, err := bytecode.UnmarshalProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", key, err)
	}
	return prog, nil
}

// Put stores prog under key, replacing any previous entry.
func (s *Store) Put(key string, prog *bytecode.Program) error {
	data, err := bytecode.MarshalProgram(prog)
	if err != nil {
		return fmt.Errorf("encoding program %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO programs (hash, data, created_at) VALUES (?, ?, ?)",
		key, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving program %s: %w", key, err)
	}
	return nil
}

// Count returns the number of cached programs.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM programs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting programs: %w", err)
	}
	return n, nil
}

// Compile returns the compiled program for tokens, from the cache when
// present, compiling and storing it otherwise. A cache entry that cannot be
// decoded is recompiled and overwritten. Failing to store is not an error.
func (s *Store) Compile(tokens []bytecode.Opcode) (*bytecode.Program, error) {
	key := Key(tokens)

	prog, err := s.Get(key)
	switch {
	case err == nil:
		log.Debugf("cache hit %s (%d instructions)", key[:12], prog.Len())
		return prog, nil
	case errors.Is(err, ErrNotFound):
		log.Debugf("cache miss %s", key[:12])
	default:
		log.Warningf("discarding cache entry: %s", err)
	}

	prog, err = compiler.Compile(tokens)
	if err != nil {
		return nil, err
	}
	if err := s.Put(key, prog); err != nil {
		log.Warningf("not caching program: %s", err)
	}
	return prog, nil
}
