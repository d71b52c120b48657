package main

import (
	"github.com/chazu/bfi/manifest"
	"github.com/chazu/bfi/vm"
)

// cliFlags holds the command-line values that may override bfi.toml.
type cliFlags struct {
	tier, pointer, eof string
	noNewline          bool
	config, cache      string
	verbosity          int
	verbositySet       bool
}

// settings is the effective configuration of one invocation.
type settings struct {
	tier      vm.Tier
	opts      vm.Options
	cachePath string
	verbosity int
}

// resolveSettings layers flags over the manifest (explicit -config, else the
// nearest bfi.toml above dir, else defaults).
func resolveSettings(f cliFlags, dir string) (settings, error) {
	var (
		m   *manifest.Manifest
		err error
	)
	if f.config != "" {
		m, err = manifest.LoadFile(f.config)
	} else {
		m, err = manifest.FindAndLoad(dir)
	}
	if err != nil {
		return settings{}, err
	}
	if m == nil {
		m = manifest.Default()
	}

	if f.tier != "" {
		m.Run.Tier = f.tier
	}
	if f.pointer != "" {
		m.Run.Pointer = f.pointer
	}
	if f.eof != "" {
		m.Run.EOF = f.eof
	}
	if f.noNewline {
		m.Run.TrailingNewline = false
	}

	var s settings
	if s.tier, err = m.Tier(); err != nil {
		return settings{}, err
	}
	if s.opts, err = m.Options(); err != nil {
		return settings{}, err
	}
	s.cachePath = m.CachePath()
	if f.cache != "" {
		s.cachePath = f.cache
	}
	s.verbosity = m.Log.Verbosity
	if f.verbositySet {
		s.verbosity = f.verbosity
	}
	return s, nil
}
