package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/assetpatch/internal/interp"
	"github.com/dshills/assetpatch/internal/patch"
	"github.com/dshills/assetpatch/internal/patcher"
	"github.com/dshills/assetpatch/internal/preview"
)

// printReport writes the outcome of one run.
func (a *app) printReport(docPath string, r *patcher.Report, verbose bool) {
	w := a.out

	status := "ok"
	if !r.OK() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s %s: %s -> %s\n", r.Mode, status, docPath, r.Path)

	res := r.Result
	if res == nil {
		return
	}
	if verbose {
		printTrace(w, res.Trace)
	}
	for i := range res.Diagnostics {
		printDiagnostic(w, &res.Diagnostics[i])
	}

	switch {
	case res.Aborted:
		fmt.Fprintf(w, "  aborted at instruction %d, %s left unchanged\n", res.AbortedAt, r.Path)
	case r.Written:
		fmt.Fprintf(w, "  wrote %s (%s)", r.Path, r.Stats())
		if r.BackupPath != "" {
			fmt.Fprintf(w, ", backup %s", r.BackupPath)
		}
		fmt.Fprintln(w)
	default:
		fmt.Fprintf(w, "  %d instructions ran, %s\n", res.Executed, r.Stats())
	}
}

func printTrace(w io.Writer, trace []interp.Step) {
	for _, s := range trace {
		mark := " "
		if s.Err != nil {
			mark = "!"
		}
		fmt.Fprintf(w, "  %s %3d %-24s cursor %d -> %d, %d lines\n",
			mark, s.Index, s.Instruction, s.CursorBefore, s.CursorAfter, s.LinesAfter)
	}
}

func printDiagnostic(w io.Writer, d *interp.Diagnostic) {
	fmt.Fprintf(w, "  %-7s %v (cursor %d)\n", d.Severity, d, d.Cursor)
}

// printDiff writes a unified diff, coloured when the output is a
// terminal and colour is enabled.
func (a *app) printDiff(diff string) {
	if diff == "" {
		return
	}
	if a.color {
		if err := preview.Highlight(a.out, diff, a.cfg.Output.Style); err == nil {
			return
		}
	}
	fmt.Fprint(a.out, diff)
	if !strings.HasSuffix(diff, "\n") {
		fmt.Fprintln(a.out)
	}
}

// printCheck writes the outcome of a check.
func (a *app) printCheck(docPath string, doc *patch.Document, c *patcher.CheckReport) {
	w := a.out
	status := "ok"
	if !c.OK() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "check %s: %s (%d instructions)\n", status, docPath, doc.Len())

	if c.TargetExists {
		fmt.Fprintf(w, "  target %s -> %s\n", c.Target, c.Path)
	} else {
		fmt.Fprintf(w, "  target %s -> %s: not found\n", c.Target, c.Path)
	}
	for _, err := range c.Invalid {
		fmt.Fprintf(w, "  invalid %v\n", err)
	}
	if len(c.Invalid) > 0 {
		fmt.Fprintf(w, "  %d invalid instructions\n", len(c.Invalid))
	}
	for _, i := range c.Marked {
		fmt.Fprintf(w, "  marked  instruction %d is staged for removal\n", i)
	}
}

// printGroup writes a one-line summary per group entry.
func (a *app) printGroup(r *patcher.GroupReport, verbose bool) {
	for _, res := range r.Results {
		switch {
		case res.Report != nil:
			a.printReport(res.Path, res.Report, verbose)
			if res.Err != nil && res.Report.Result != nil && res.Report.Result.OK() {
				fmt.Fprintf(a.out, "  error: %v\n", res.Err)
			}
		case res.Err != nil:
			fmt.Fprintf(a.out, "FAILED %s: %v\n", res.Path, res.Err)
		}
	}
	fmt.Fprintf(a.out, "group %s: %d documents, %d failed\n", r.Name, len(r.Results), r.Failed())
}
