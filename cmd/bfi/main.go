// bfi CLI - runs tape programs with one of three interpreter tiers
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	"github.com/chazu/bfi/cache"
	"github.com/chazu/bfi/compiler"
	"github.com/chazu/bfi/pkg/bytecode"
	"github.com/chazu/bfi/server"
	"github.com/chazu/bfi/vm"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("bfi.cli")

func main() {
	var f cliFlags
	flag.StringVar(&f.tier, "tier", "", "Execution tier: scan, jump or folded (default folded)")
	flag.StringVar(&f.pointer, "pointer", "", "Cell pointer policy at the tape edges: fault or wrap")
	flag.StringVar(&f.eof, "eof", "", "Input policy at end of input: error, zero or unchanged")
	flag.BoolVar(&f.noNewline, "no-newline", false, "Do not print a newline after the program's output")
	flag.StringVar(&f.config, "config", "", "Path to a bfi.toml (default: search upward from the program)")
	flag.StringVar(&f.cache, "cache", "", "Compiled program cache database (folded tier only)")
	flag.IntVar(&f.verbosity, "v", 0, "Log verbosity (0 notices, 1 info, 2 debug)")
	disasm := flag.Bool("disasm", false, "Print the folded program instead of running it")
	raw := flag.Bool("raw", false, "Read input keys unbuffered when stdin is a terminal")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bfi [options] program.bf\n\n")
		fmt.Fprintf(os.Stderr, "Runs a tape program. Characters other than ><+-.,[] are comments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bfi hello.bf                  # Run with the folded tier\n")
		fmt.Fprintf(os.Stderr, "  bfi -tier scan hello.bf       # Run with the direct-scan tier\n")
		fmt.Fprintf(os.Stderr, "  bfi -pointer wrap -eof zero rot13.bf\n")
		fmt.Fprintf(os.Stderr, "  bfi -disasm mandel.bf         # Show folded instructions\n")
		fmt.Fprintf(os.Stderr, "\nLanguage Server:\n")
		fmt.Fprintf(os.Stderr, "  bfi -lsp                      # Serve diagnostics on stdio\n")
	}
	flag.Parse()
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "v" {
			f.verbositySet = true
		}
	})

	if *lspMode {
		commonlog.Configure(f.verbosity, nil)
		if err := server.NewLSP(version).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	s, err := resolveSettings(f, filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	commonlog.Configure(s.verbosity, nil)

	src, err := compiler.ReadSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	tokens, positions := compiler.LexWithPositions(src)
	if err := compiler.CheckBalance(tokens, compiler.OpcodeDelim); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", locate(path, positions, err), err)
		os.Exit(1)
	}

	if *disasm {
		prog, err := compile(s, tokens)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(prog.DisassembleWithName(path))
		os.Exit(0)
	}

	if err := run(s, path, tokens, *raw); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
}

// run executes tokens, switching a terminal stdin to raw mode for the
// duration when asked to.
func run(s settings, path string, tokens []bytecode.Opcode, raw bool) error {
	if fd := int(os.Stdin.Fd()); raw && term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer term.Restore(fd, state)
	}

	ctx, stop := interruptible(context.Background())
	defer stop()

	runID := uuid.NewString()
	log.Infof("run %s: %s, %d tokens, %s tier, pointer=%s eof=%s",
		runID, path, len(tokens), s.tier, s.opts.Pointer, s.opts.EOF)

	var err error
	if s.tier == vm.TierFolded && s.cachePath != "" {
		var prog *bytecode.Program
		if prog, err = compile(s, tokens); err == nil {
			err = vm.RunProgram(ctx, prog, os.Stdin, os.Stdout, s.opts)
		}
	} else {
		err = vm.Run(ctx, s.tier, tokens, os.Stdin, os.Stdout, s.opts)
	}
	if err != nil {
		log.Infof("run %s failed: %s", runID, err)
		return err
	}
	log.Infof("run %s finished", runID)
	return nil
}

// interruptible returns a context cancelled by the first SIGINT. Once the
// context is done the default handler is restored, so a second Ctrl-C ends
// a run that is blocked reading input.
func interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// compile folds tokens, going through the cache when one is configured.
func compile(s settings, tokens []bytecode.Opcode) (*bytecode.Program, error) {
	if s.cachePath == "" {
		return compiler.Compile(tokens)
	}
	store, err := cache.Open(s.cachePath)
	if err != nil {
		log.Warningf("cache unavailable: %s", err)
		return compiler.Compile(tokens)
	}
	defer store.Close()
	return store.Compile(tokens)
}

// locate renders "path:line:col" for a bracket error over tokens.
func locate(path string, positions []compiler.Position, err error) string {
	var be *compiler.BracketError
	if errors.As(err, &be) && be.Pos < len(positions) {
		return fmt.Sprintf("%s:%s", path, positions[be.Pos])
	}
	return path
}
