package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/assetpatch/internal/patch"
	"github.com/dshills/assetpatch/internal/patch/format"
)

func runNew(_ context.Context, a *app, args []string) int {
	if len(args) != 2 {
		return a.usageError("new", "expected a document path and a target")
	}
	path, target := args[0], args[1]
	if a.fsys.Exists(path) {
		return a.fail(fmt.Errorf("%s already exists", path))
	}
	if err := format.Save(a.fsys, path, patch.New(target)); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "created %s for %s\n", path, target)
	return exitOK
}

// runEdit applies one editing action to a document and saves it.
//
//	edit doc.json show
//	edit doc.json add [op [content]]
//	edit doc.json insert <i> <op> [content]
//	edit doc.json set <i> <op> [content]
//	edit doc.json rm|up|down|mark <i>
//	edit doc.json target <ref>
func runEdit(_ context.Context, a *app, args []string) int {
	if len(args) < 2 {
		return a.usageError("edit", "expected a document and an action")
	}
	path, action, rest := args[0], args[1], args[2:]

	doc, err := format.Load(a.fsys, path)
	if err != nil {
		return a.fail(err)
	}

	switch action {
	case "show":
		a.printDocument(doc)
		return exitOK

	case "add":
		if len(rest) == 0 {
			doc.Add()
			break
		}
		in, err := parseInstruction(rest)
		if err != nil {
			return a.usageError("edit", "%v", err)
		}
		err = doc.Insert(doc.Len(), in)
		if err != nil {
			return a.fail(err)
		}

	case "insert", "set":
		if len(rest) < 2 {
			return a.usageError("edit", "%s takes an index and an opcode", action)
		}
		i, err := strconv.Atoi(rest[0])
		if err != nil {
			return a.usageError("edit", "invalid index %q", rest[0])
		}
		in, err := parseInstruction(rest[1:])
		if err != nil {
			return a.usageError("edit", "%v", err)
		}
		if action == "set" {
			err = doc.RemoveAt(i)
		}
		if err == nil {
			err = doc.Insert(i, in)
		}
		if err != nil {
			return a.fail(err)
		}

	case "rm", "up", "down", "mark":
		if len(rest) != 1 {
			return a.usageError("edit", "%s takes an index", action)
		}
		i, err := strconv.Atoi(rest[0])
		if err != nil {
			return a.usageError("edit", "invalid index %q", rest[0])
		}
		switch action {
		case "rm":
			err = doc.RemoveAt(i)
		case "up":
			err = doc.MoveUp(i)
		case "down":
			err = doc.MoveDown(i)
		case "mark":
			err = markForRemoval(doc, i)
		}
		if err != nil {
			return a.fail(err)
		}

	case "target":
		if len(rest) != 1 {
			return a.usageError("edit", "target takes a reference")
		}
		doc.Target = rest[0]

	default:
		return a.usageError("edit", "unknown edit action %q", action)
	}

	if err := format.Save(a.fsys, path, doc); err != nil {
		return a.fail(err)
	}
	a.printDocument(doc)
	return exitOK
}

// parseInstruction parses "op [content]".
func parseInstruction(args []string) (patch.Instruction, error) {
	if len(args) > 2 {
		return patch.Instruction{}, fmt.Errorf("too many arguments, quote content that contains spaces")
	}
	op, err := patch.ParseOpcode(args[0])
	if err != nil {
		return patch.Instruction{}, err
	}
	in := patch.Instruction{Op: op}
	if len(args) == 2 {
		in.Content = args[1]
	}
	return in, nil
}

// markForRemoval stages instruction i for removal by a later purge.
func markForRemoval(doc *patch.Document, i int) error {
	if i < 0 || i >= doc.Len() {
		return fmt.Errorf("%w: %d (document has %d)", patch.ErrIndexOutOfRange, i, doc.Len())
	}
	doc.Instructions[i].Op = patch.OpMark
	return nil
}

func (a *app) printDocument(doc *patch.Document) {
	fmt.Fprintf(a.out, "target %s\n", doc.Target)
	for i, in := range doc.Instructions {
		flag := " "
		if !in.Valid() {
			flag = "!"
		}
		fmt.Fprintf(a.out, "%s %3d %s\n", flag, i, in)
	}
}

func runPurge(_ context.Context, a *app, args []string) int {
	if len(args) == 0 {
		return a.usageError("purge", "no documents given")
	}

	code := exitOK
	for _, path := range args {
		doc, err := format.Load(a.fsys, path)
		if err != nil {
			fmt.Fprintf(a.err, "Error: %v\n", err)
			code = exitFailure
			continue
		}
		n := doc.PurgeMarked()
		if n > 0 {
			if err := format.Save(a.fsys, path, doc); err != nil {
				fmt.Fprintf(a.err, "Error: %v\n", err)
				code = exitFailure
				continue
			}
		}
		fmt.Fprintf(a.out, "%s: purged %d instructions\n", path, n)
	}
	return code
}

func runFmt(_ context.Context, a *app, args []string) int {
	fs := a.flags("fmt")
	to := fs.String("to", "", "Convert to this format (json, yaml, toml)")
	out := fs.String("o", "", "Write to this file instead of in place")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 1 {
		return a.usageError("fmt", "expected one document")
	}
	path := fs.Arg(0)

	doc, err := format.Load(a.fsys, path)
	if err != nil {
		return a.fail(err)
	}

	dest := path
	switch {
	case *out != "":
		dest = *out
	case *to != "":
		f, err := format.ParseFormat(*to)
		if err != nil {
			return a.usageError("fmt", "%v", err)
		}
		dest = strings.TrimSuffix(path, filepath.Ext(path)) + "." + f.String()
	}

	if *to != "" && *out != "" {
		want, err := format.ParseFormat(*to)
		if err != nil {
			return a.usageError("fmt", "%v", err)
		}
		if got, err := format.FormatFor(dest); err != nil || got != want {
			return a.usageError("fmt", "-o %s does not match -to %s", dest, *to)
		}
	}

	if err := format.Save(a.fsys, dest, doc); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "wrote %s\n", dest)
	return exitOK
}
