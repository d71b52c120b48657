// Package manifest handles bfi.toml run configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/bfi/vm"
)

// FileName is the name of the configuration file Load and FindAndLoad look for.
const FileName = "bfi.toml"

// Manifest represents a bfi.toml configuration.
type Manifest struct {
	Run   Run   `toml:"run" json:"run"`
	Cache Cache `toml:"cache" json:"cache"`
	Log   Log   `toml:"log" json:"log"`

	// Dir is the directory containing the bfi.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Run configures execution.
type Run struct {
	Tier            string `toml:"tier" json:"tier"`
	Pointer         string `toml:"pointer" json:"pointer"`
	EOF             string `toml:"eof" json:"eof"`
	TrailingNewline bool   `toml:"trailing-newline" json:"trailing-newline"`
}

// Cache configures the compiled program cache.
type Cache struct {
	Path string `toml:"path" json:"path"`
}

// Log configures logging.
type Log struct {
	Verbosity int `toml:"verbosity" json:"verbosity"`
}

// Default returns the configuration used when no bfi.toml exists.
func Default() *Manifest {
	return &Manifest{
		Run: Run{
			Tier:            "folded",
			Pointer:         "fault",
			EOF:             "error",
			TrailingNewline: true,
		},
	}
}

// Load parses a bfi.toml file from the given directory. Keys absent from
// the file keep their Default values.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses and validates the configuration file at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	m.normalize()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return m, nil
}

// normalize folds enum values to the lowercase, trimmed form the schema
// lists, matching how the command-line flags are parsed.
func (m *Manifest) normalize() {
	for _, v := range []*string{&m.Run.Tier, &m.Run.Pointer, &m.Run.EOF} {
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
}

// FindAndLoad walks up from startDir to find a bfi.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Tier returns the configured execution tier.
func (m *Manifest) Tier() (vm.Tier, error) {
	return vm.ParseTier(m.Run.Tier)
}

// Options maps the run section onto engine options.
func (m *Manifest) Options() (vm.Options, error) {
	var opts vm.Options
	var err error
	if opts.Pointer, err = vm.ParsePointerPolicy(m.Run.Pointer); err != nil {
		return opts, err
	}
	if opts.EOF, err = vm.ParseEOFPolicy(m.Run.EOF); err != nil {
		return opts, err
	}
	opts.TrailingNewline = m.Run.TrailingNewline
	return opts, nil
}

// CachePath returns the cache database path, resolved against Dir when
// relative. An empty result means caching is disabled.
func (m *Manifest) CachePath() string {
	p := m.Cache.Path
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
