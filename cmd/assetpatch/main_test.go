package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/assetpatch/internal/patch"
	"github.com/dshills/assetpatch/internal/patch/format"
	"github.com/dshills/assetpatch/internal/vfs"
)

type fixture struct {
	dir    string
	config string
	target string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		config: filepath.Join(dir, "assetpatch.toml"),
		target: filepath.Join(dir, "settings.ini"),
	}
	f.write(t, "settings.ini", "[General]\nname = old\nsize = 1\n")
	f.write(t, "assetpatch.toml", "[output]\ncolor = false\n\n[resolver]\nmanifest = \""+
		filepath.ToSlash(filepath.Join(dir, "assets.json"))+"\"\n")
	return f
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) doc(t *testing.T, name, target string, ins ...patch.Instruction) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, format.Save(vfs.NewOSFS(), path, patch.New(target, ins...)))
	return path
}

func (f *fixture) run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	all := append([]string{"-config", f.config}, args...)
	code := run(all, streams{in: strings.NewReader(stdin), out: &out, err: &errOut})
	return code, out.String(), errOut.String()
}

func in(op patch.Opcode, content string) patch.Instruction {
	return patch.Instruction{Op: op, Content: content}
}

func goodInstructions() []patch.Instruction {
	return []patch.Instruction{
		in(patch.OpFind, "name = old"),
		in(patch.OpReplace, "name = new"),
	}
}

func TestVersionAndUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	s := streams{in: strings.NewReader(""), out: &out, err: &errOut}

	assert.Equal(t, exitOK, run([]string{"-version"}, s))
	assert.Contains(t, out.String(), "assetpatch dev")

	assert.Equal(t, exitUsage, run(nil, s))
	assert.Contains(t, errOut.String(), "Commands:")

	errOut.Reset()
	assert.Equal(t, exitUsage, run([]string{"frobnicate"}, s))
	assert.Contains(t, errOut.String(), `unknown command "frobnicate"`)

	assert.Equal(t, exitUsage, run([]string{"-log-level", "loud", "check"}, s))
}

func TestMissingConfigFile(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"-config", filepath.Join(t.TempDir(), "none.toml"), "check", "x.json"},
		streams{in: strings.NewReader(""), out: &out, err: &errOut})
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut.String(), "does not exist")
}

func TestTestCommand(t *testing.T) {
	f := newFixture(t)
	docPath := f.doc(t, "fix.json", f.target, goodInstructions()...)

	code, out, _ := f.run(t, "", "test", "-V", "-diff", docPath)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "test ok")
	assert.Contains(t, out, "+name = new")
	assert.Contains(t, out, "cursor 0 -> 1")
	assert.Equal(t, "[General]\nname = old\nsize = 1\n", f.read(t, "settings.ini"))
}

func TestTestCommandFailure(t *testing.T) {
	f := newFixture(t)
	docPath := f.doc(t, "bad.yaml", f.target,
		in(patch.OpFind, "missing"),
		in(patch.OpSkip, "10"),
	)

	code, out, _ := f.run(t, "", "test", docPath)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "test FAILED")
	assert.Contains(t, out, "instruction 0 (find): line not found")
	assert.Contains(t, out, "instruction 1 (skip): cursor out of range")
}

func TestApplyCommand(t *testing.T) {
	f := newFixture(t)
	docPath := f.doc(t, "fix.toml", f.target, goodInstructions()...)

	code, out, _ := f.run(t, "n\n", "apply", docPath)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "skipped")
	assert.Equal(t, "[General]\nname = old\nsize = 1\n", f.read(t, "settings.ini"))

	code, out, _ = f.run(t, "y\n", "apply", docPath)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "wrote")
	assert.Equal(t, "[General]\nname = new\nsize = 1\n", f.read(t, "settings.ini"))
	assert.Equal(t, "[General]\nname = old\nsize = 1\n", f.read(t, "settings.ini.bak"))
}

func TestApplyCommandAborts(t *testing.T) {
	f := newFixture(t)
	docPath := f.doc(t, "bad.json", f.target,
		in(patch.OpReplace, "first"),
		in(patch.OpGoto, "99"),
	)

	code, out, _ := f.run(t, "", "apply", "-y", docPath)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "aborted at instruction 1")
	assert.Equal(t, "[General]\nname = old\nsize = 1\n", f.read(t, "settings.ini"))
	assert.NoFileExists(t, f.target+".bak")
}

func TestCheckCommand(t *testing.T) {
	f := newFixture(t)
	good := f.doc(t, "good.json", f.target, goodInstructions()...)
	bad := f.doc(t, "bad.json", "Assets/none.ini",
		in(patch.OpSkip, "two"),
		in(patch.OpMark, ""),
	)

	code, out, _ := f.run(t, "", "check", good)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "check ok")

	code, out, _ = f.run(t, "", "check", bad)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "1 invalid instructions")
	assert.Contains(t, out, "instruction 1 is staged for removal")
}

func TestMapCommand(t *testing.T) {
	f := newFixture(t)

	code, _, _ := f.run(t, "", "map", "add", "9c4e", f.target)
	require.Equal(t, exitOK, code)

	code, out, _ := f.run(t, "", "map", "get", "9c4e")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, f.target+"\n", out)

	code, out, _ = f.run(t, "", "map", "list")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "9c4e\t")

	code, _, _ = f.run(t, "", "map", "get", "nope")
	assert.Equal(t, exitFailure, code)

	docPath := f.doc(t, "byid.json", "9c4e", goodInstructions()...)
	code, out, _ = f.run(t, "", "test", docPath)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "-> "+f.target)
}

func TestEditCommands(t *testing.T) {
	f := newFixture(t)
	docPath := filepath.Join(f.dir, "new.yaml")

	code, _, _ := f.run(t, "", "new", docPath, f.target)
	require.Equal(t, exitOK, code)
	code, _, errOut := f.run(t, "", "new", docPath, f.target)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "already exists")

	steps := [][]string{
		{"add", "find", "size = 1"},
		{"add"},
		{"set", "1", "replace", "size = 2"},
		{"insert", "0", "goto", "0"},
		{"add", "append", "extra = 1"},
		{"down", "0"},
		{"up", "1"},
		{"mark", "3"},
	}
	for _, s := range steps {
		code, _, errOut := f.run(t, "", append([]string{"edit", docPath}, s...)...)
		require.Equal(t, exitOK, code, "edit %v: %s", s, errOut)
	}

	doc, err := format.Load(vfs.NewOSFS(), docPath)
	require.NoError(t, err)
	assert.Equal(t, []patch.Instruction{
		in(patch.OpGoto, "0"),
		in(patch.OpFind, "size = 1"),
		in(patch.OpReplace, "size = 2"),
		in(patch.OpMark, "extra = 1"),
	}, doc.Instructions)

	code, out, _ := f.run(t, "", "purge", docPath)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "purged 1 instructions")

	code, _, _ = f.run(t, "", "edit", docPath, "rm", "9")
	assert.Equal(t, exitFailure, code)
	code, _, _ = f.run(t, "", "edit", docPath, "add", "jump", "x")
	assert.Equal(t, exitUsage, code)
}

func TestFmtCommand(t *testing.T) {
	f := newFixture(t)
	docPath := f.doc(t, "fix.json", f.target, goodInstructions()...)

	code, out, _ := f.run(t, "", "fmt", "-to", "toml", docPath)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "fix.toml")

	doc, err := format.Load(vfs.NewOSFS(), filepath.Join(f.dir, "fix.toml"))
	require.NoError(t, err)
	assert.Equal(t, goodInstructions(), doc.Instructions)

	code, _, _ = f.run(t, "", "fmt", "-to", "yaml", "-o", filepath.Join(f.dir, "x.json"), docPath)
	assert.Equal(t, exitUsage, code)
}

func TestGroupCommand(t *testing.T) {
	f := newFixture(t)
	f.doc(t, "one.json", f.target, goodInstructions()...)
	f.doc(t, "two.yaml", f.target, in(patch.OpFind, "size = 1"), in(patch.OpReplace, "size = 2"))
	groupPath := filepath.Join(f.dir, "all.yaml")
	require.NoError(t, format.SaveGroup(vfs.NewOSFS(), groupPath, &patch.Group{
		Name:      "all",
		Documents: []string{"one.json", "two.yaml"},
	}))

	code, out, _ := f.run(t, "", "group", "test", groupPath)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "group all: 2 documents, 0 failed")

	code, _, _ = f.run(t, "", "group", "apply", "-y", groupPath)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "[General]\nname = new\nsize = 2\n", f.read(t, "settings.ini"))

	code, _, _ = f.run(t, "", "group", "deploy", groupPath)
	assert.Equal(t, exitUsage, code)
}

func TestWatchRunsOnceBeforeCancel(t *testing.T) {
	f := newFixture(t)
	docPath := f.doc(t, "fix.json", f.target, goodInstructions()...)

	var out, errOut bytes.Buffer
	a, err := newApp(vfs.NewOSFS(), globalOptions{ConfigPath: f.config},
		streams{in: strings.NewReader(""), out: &out, err: &errOut})
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, exitOK, runWatch(ctx, a, []string{docPath}))
	assert.Contains(t, out.String(), "test ok")
}
