package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dshills/assetpatch/internal/patch/format"
	"github.com/dshills/assetpatch/internal/watcher"
)

// runWatch tests a document once, then again whenever the document or
// its target changes, until interrupted.
func runWatch(ctx context.Context, a *app, args []string) int {
	fs := a.flags("watch")
	showDiff := fs.Bool("diff", a.cfg.Output.Diff, "Print the changes a commit would write")
	verbose := fs.Bool("V", false, "Print the execution trace")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 1 {
		return a.usageError("watch", "expected one document")
	}
	docPath := fs.Arg(0)

	w, err := watcher.New(watcher.WithDebounceDelay(a.cfg.DebounceDelay()))
	if err != nil {
		return a.fail(err)
	}
	defer w.Close()

	s := &watchSession{app: a, w: w, docPath: docPath, verbose: *verbose, showDiff: *showDiff}
	if err := w.Watch(docPath); err != nil {
		return a.fail(fmt.Errorf("watch %s: %w", docPath, err))
	}
	s.rerun()

	log := a.log.WithComponent("watch")
	err = watcher.Run(ctx, w, func(ev watcher.Event) {
		log.Debug("%s %s", ev.Op, ev.Path)
		fmt.Fprintf(a.out, "\n%s changed\n", ev.Path)
		if samePath(ev.Path, docPath) {
			s.refreshResolvers()
		}
		s.rerun()
	}, func(err error) {
		log.Warn("watcher: %v", err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return a.fail(err)
	}
	return exitOK
}

// watchSession tracks the target currently watched for a document.
type watchSession struct {
	app      *app
	w        watcher.Watcher
	docPath  string
	target   string
	verbose  bool
	showDiff bool
}

// rerun reloads the document, follows a changed target and runs a test.
func (s *watchSession) rerun() {
	a := s.app
	doc, err := format.Load(a.fsys, s.docPath)
	if err != nil {
		fmt.Fprintf(a.out, "test FAILED: %v\n", err)
		return
	}

	if target := a.patcher.Resolve(doc); target != s.target {
		s.follow(target)
	}

	report, err := a.patcher.Test(doc, s.verbose)
	if err != nil {
		fmt.Fprintf(a.out, "test FAILED: %s: %v\n", s.docPath, err)
		return
	}
	a.printReport(s.docPath, report, s.verbose)
	if s.showDiff {
		a.showDiff(report)
	}
}

// refreshResolvers drops cached target mappings so a document whose
// target was edited resolves against current data.
func (s *watchSession) refreshResolvers() {
	a := s.app
	if a.manifest != nil {
		a.manifest.Reload()
	}
	if a.meta != nil {
		if err := a.meta.Refresh(); err != nil {
			a.log.Warn("refresh %s: %v", a.cfg.Resolver.MetaRoot, err)
		}
	}
}

func (s *watchSession) follow(target string) {
	if s.target != "" && !samePath(s.target, s.docPath) {
		if err := s.w.Unwatch(s.target); err != nil {
			s.app.log.Debug("unwatch %s: %v", s.target, err)
		}
	}
	s.target = target
	if samePath(target, s.docPath) {
		return
	}
	if err := s.w.Watch(target); err != nil {
		s.app.log.Warn("watch %s: %v", target, err)
	}
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
