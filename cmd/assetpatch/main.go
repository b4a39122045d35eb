// Package main is the entry point for the assetpatch command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/assetpatch/internal/logger"
	"github.com/dshills/assetpatch/internal/vfs"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1 // A document failed, or an operation errored
	exitUsage   = 2
)

// errUsage is returned by flag parsing when the usage text was printed.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// streams holds the process's standard streams.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// globalOptions are the flags accepted before the subcommand.
type globalOptions struct {
	ConfigPath string
	LogLevel   string
	NoColor    bool
}

func run(args []string, s streams) int {
	opts, rest, err := parseFlags(args, s.err)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts == nil {
		fmt.Fprintf(s.out, "assetpatch %s\n", version)
		fmt.Fprintf(s.out, "Commit: %s\n", commit)
		fmt.Fprintf(s.out, "Built: %s\n", date)
		return exitOK
	}

	if len(rest) == 0 {
		printUsage(s.err, nil)
		return exitUsage
	}

	cmd := lookupCommand(rest[0])
	if cmd == nil {
		fmt.Fprintf(s.err, "Error: unknown command %q\n\n", rest[0])
		printUsage(s.err, nil)
		return exitUsage
	}

	a, err := newApp(vfs.NewOSFS(), *opts, s)
	if err != nil {
		fmt.Fprintf(s.err, "Error: %v\n", err)
		return exitFailure
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.run(ctx, a, rest[1:])
}

// parseFlags parses the global flags. A nil options value with a nil
// error means -version was given.
func parseFlags(args []string, stderr io.Writer) (*globalOptions, []string, error) {
	var opts globalOptions
	var showVersion bool

	fs := flag.NewFlagSet("assetpatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (default ./assetpatch.toml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.NoColor, "no-color", false, "Disable coloured diff output")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if showVersion {
		return nil, nil, nil
	}

	if opts.LogLevel != "" && !logger.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return nil, nil, errUsage
	}

	return &opts, fs.Args(), nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "assetpatch - apply line patches to text assets\n\n")
	fmt.Fprintf(w, "Usage: assetpatch [options] <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	if fs != nil {
		fmt.Fprintf(w, "\nOptions:\n")
		fs.PrintDefaults()
	}
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  assetpatch check fix.json          Validate a document\n")
	fmt.Fprintf(w, "  assetpatch test -diff fix.json     Dry-run and show the changes\n")
	fmt.Fprintf(w, "  assetpatch apply -y fix.json       Apply without asking\n")
	fmt.Fprintf(w, "  assetpatch group apply all.yaml    Apply every document of a group\n")
	fmt.Fprintf(w, "  assetpatch watch fix.json          Re-test on every change\n")
}
