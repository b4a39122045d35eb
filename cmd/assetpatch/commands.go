package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dshills/assetpatch/internal/interp"
	"github.com/dshills/assetpatch/internal/patch/format"
	"github.com/dshills/assetpatch/internal/patcher"
)

// command is a subcommand.
type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) int
}

var commands []*command

func init() {
	commands = []*command{
		{"check", "check <document>...", "Validate documents and their targets", runCheck},
		{"test", "test [-V] [-diff] <document>...", "Run documents without writing", runTest},
		{"apply", "apply [-V] [-y] <document>...", "Run documents and write their targets", runApply},
		{"group", "group test|apply [-V] [-y] <group>", "Run every document of a group in order", runGroup},
		{"watch", "watch [-diff] <document>", "Re-test a document whenever it or its target changes", runWatch},
		{"new", "new <document> <target>", "Create an empty document", runNew},
		{"edit", "edit <document> add|set|rm|up|down|mark ...", "Edit a document's instructions", runEdit},
		{"purge", "purge <document>...", "Delete instructions staged for removal", runPurge},
		{"fmt", "fmt [-to json|yaml|toml] [-o file] <document>", "Rewrite or convert a document", runFmt},
		{"map", "map add <id> <path> | get <id> | list", "Manage the asset manifest", runMap},
	}
}

func lookupCommand(name string) *command {
	for _, c := range commands {
		if c.name == name {
			return c
		}
	}
	return nil
}

// flags returns a flag set for the command that prints its usage line.
func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.err)
	c := lookupCommand(name)
	fs.Usage = func() {
		fmt.Fprintf(a.err, "Usage: assetpatch %s\n", c.usage)
		fs.PrintDefaults()
	}
	return fs
}

// usageError prints a message and the command's usage.
func (a *app) usageError(name, msg string, args ...any) int {
	fmt.Fprintf(a.err, "Error: %s\n", fmt.Sprintf(msg, args...))
	if c := lookupCommand(name); c != nil {
		fmt.Fprintf(a.err, "Usage: assetpatch %s\n", c.usage)
	}
	return exitUsage
}

func (a *app) fail(err error) int {
	fmt.Fprintf(a.err, "Error: %v\n", err)
	return exitFailure
}

func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}

func runCheck(_ context.Context, a *app, args []string) int {
	fs := a.flags("check")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() == 0 {
		return a.usageError("check", "no documents given")
	}

	code := exitOK
	for _, path := range fs.Args() {
		doc, err := format.Load(a.fsys, path)
		if err != nil {
			fmt.Fprintf(a.out, "check FAILED: %v\n", err)
			code = exitFailure
			continue
		}
		c := a.patcher.Check(doc)
		a.printCheck(path, doc, c)
		if !c.OK() {
			code = exitFailure
		}
	}
	return code
}

func runTest(_ context.Context, a *app, args []string) int {
	fs := a.flags("test")
	verbose := fs.Bool("V", false, "Print the execution trace")
	showDiff := fs.Bool("diff", a.cfg.Output.Diff, "Print the changes a commit would write")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() == 0 {
		return a.usageError("test", "no documents given")
	}

	code := exitOK
	for _, path := range fs.Args() {
		if !a.testDocument(path, *verbose, *showDiff) {
			code = exitFailure
		}
	}
	return code
}

// testDocument runs one document in test mode and reports whether it
// succeeded.
func (a *app) testDocument(path string, verbose, showDiff bool) bool {
	doc, err := format.Load(a.fsys, path)
	if err != nil {
		fmt.Fprintf(a.out, "test FAILED: %v\n", err)
		return false
	}
	report, err := a.patcher.Test(doc, verbose)
	if err != nil {
		fmt.Fprintf(a.out, "test FAILED: %s: %v\n", path, err)
		return false
	}
	a.printReport(path, report, verbose)
	if showDiff {
		a.showDiff(report)
	}
	return report.OK()
}

func (a *app) showDiff(r *patcher.Report) {
	diff, err := r.Diff()
	if err != nil {
		a.log.Warn("diff %s: %v", r.Path, err)
		return
	}
	a.printDiff(diff)
}

func runApply(_ context.Context, a *app, args []string) int {
	fs := a.flags("apply")
	verbose := fs.Bool("V", false, "Print the execution trace")
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	fs.BoolVar(yes, "yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() == 0 {
		return a.usageError("apply", "no documents given")
	}

	code := exitOK
	for _, path := range fs.Args() {
		if !a.applyDocument(path, *verbose, *yes) {
			code = exitFailure
		}
	}
	return code
}

// applyDocument dry-runs a document, asks for confirmation, then commits
// it. It reports whether the document was applied or skipped cleanly.
func (a *app) applyDocument(path string, verbose, yes bool) bool {
	doc, err := format.Load(a.fsys, path)
	if err != nil {
		fmt.Fprintf(a.out, "commit FAILED: %v\n", err)
		return false
	}

	if !yes {
		dry, err := a.patcher.Test(doc, false)
		if err != nil {
			fmt.Fprintf(a.out, "commit FAILED: %s: %v\n", path, err)
			return false
		}
		if !dry.OK() {
			a.printReport(path, dry, false)
			fmt.Fprintf(a.out, "  not applied\n")
			return false
		}
		a.showDiff(dry)
		if !a.confirm(fmt.Sprintf("Apply %s to %s (%s)?", path, dry.Path, dry.Stats())) {
			fmt.Fprintf(a.out, "skipped %s\n", path)
			return true
		}
	}

	report, err := a.patcher.Commit(doc, verbose)
	if report != nil {
		a.printReport(path, report, verbose)
	}
	if err != nil {
		if report == nil || !errors.Is(err, patcher.ErrAborted) {
			fmt.Fprintf(a.out, "commit FAILED: %s: %v\n", path, err)
		}
		return false
	}
	return true
}

func runGroup(ctx context.Context, a *app, args []string) int {
	if len(args) == 0 {
		return a.usageError("group", "missing test or apply")
	}

	var mode interp.Mode
	switch args[0] {
	case "test":
		mode = interp.ModeTest
	case "apply":
		mode = interp.ModeCommit
	default:
		return a.usageError("group", "unknown group action %q", args[0])
	}

	fs := a.flags("group")
	verbose := fs.Bool("V", false, "Print the execution traces")
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	fs.BoolVar(yes, "yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args[1:]); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 1 {
		return a.usageError("group", "expected one group file")
	}

	g, entries, err := patcher.LoadGroup(a.fsys, fs.Arg(0))
	if err != nil {
		return a.fail(err)
	}

	if mode == interp.ModeCommit && !*yes {
		if !a.confirm(fmt.Sprintf("Apply %d documents of group %s?", len(entries), g.Name)) {
			fmt.Fprintf(a.out, "skipped group %s\n", g.Name)
			return exitOK
		}
	}

	report, err := a.patcher.ApplyAll(ctx, g.Name, entries, patcher.Options{Mode: mode, Verbose: *verbose})
	a.printGroup(report, *verbose)
	if err != nil {
		return a.fail(err)
	}
	if !report.OK() {
		return exitFailure
	}
	return exitOK
}

func runMap(_ context.Context, a *app, args []string) int {
	if len(args) == 0 {
		return a.usageError("map", "missing add, get or list")
	}

	switch args[0] {
	case "get":
		if len(args) != 2 {
			return a.usageError("map", "get takes one id")
		}
		path, ok := a.resolver.Resolve(args[1])
		if !ok {
			fmt.Fprintf(a.err, "%s: not mapped\n", args[1])
			return exitFailure
		}
		fmt.Fprintln(a.out, path)
		return exitOK
	}

	if a.manifest == nil {
		return a.fail(errors.New("no manifest configured (set resolver.manifest)"))
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return a.usageError("map", "add takes an id and a path")
		}
		if err := a.manifest.Register(args[1], args[2]); err != nil {
			return a.fail(err)
		}
		fmt.Fprintf(a.out, "%s -> %s\n", args[1], args[2])
	case "list":
		entries, err := a.manifest.Entries()
		if err != nil {
			return a.fail(err)
		}
		for _, e := range entries {
			fmt.Fprintf(a.out, "%s\t%s\n", e.ID, e.Path)
		}
	default:
		return a.usageError("map", "unknown map action %q", args[0])
	}
	return exitOK
}
