package patch

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dshills/assetpatch/internal/resolve"
)

func TestParseOpcode(t *testing.T) {
	tests := []struct {
		in      string
		want    Opcode
		wantErr bool
	}{
		{"find", OpFind, false},
		{"FIND", OpFind, false},
		{" skip ", OpSkip, false},
		{"remove", OpRemove, false},
		{"replace", OpReplace, false},
		{"patch", OpReplace, false},
		{"append", OpAppend, false},
		{"goto", OpGoto, false},
		{"mark", OpMark, false},
		{"mark-for-removal", OpMark, false},
		{"MarkAsRemove", OpMark, false},
		{"jump", OpInvalid, true},
		{"", OpInvalid, true},
	}

	for _, tt := range tests {
		got, err := ParseOpcode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOpcode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownOpcode) {
			t.Errorf("ParseOpcode(%q) error = %v, want ErrUnknownOpcode", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseOpcode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpcodeStringRoundTrip(t *testing.T) {
	for _, op := range Opcodes() {
		if !op.Valid() {
			t.Errorf("%v.Valid() = false", op)
		}
		got, err := ParseOpcode(op.String())
		if err != nil || got != op {
			t.Errorf("ParseOpcode(%q) = %v, %v; want %v", op.String(), got, err, op)
		}
	}

	if OpInvalid.Valid() {
		t.Error("OpInvalid.Valid() = true")
	}
	if got := Opcode(99).String(); got != "opcode(99)" {
		t.Errorf("Opcode(99).String() = %q", got)
	}
}

func TestExpectedContentKind(t *testing.T) {
	tests := []struct {
		op   Opcode
		want ContentKind
	}{
		{OpFind, KindText},
		{OpReplace, KindText},
		{OpAppend, KindText},
		{OpMark, KindText},
		{OpSkip, KindInteger},
		{OpRemove, KindInteger},
		{OpGoto, KindInteger},
		{OpInvalid, KindNone},
		{Opcode(42), KindNone},
	}

	for _, tt := range tests {
		if got := ExpectedContentKind(tt.op); got != tt.want {
			t.Errorf("ExpectedContentKind(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestIsContentValid(t *testing.T) {
	tests := []struct {
		op      Opcode
		content string
		want    bool
	}{
		{OpFind, "", true},
		{OpFind, "anything at all", true},
		{OpMark, "", true},
		{OpSkip, "3", true},
		{OpSkip, "-2", true},
		{OpSkip, "+4", true},
		{OpSkip, " 7 ", true},
		{OpSkip, "", false},
		{OpSkip, "1.5", false},
		{OpRemove, "two", false},
		{OpGoto, "0", true},
		{OpGoto, "99999999999999999999", false},
		{OpInvalid, "", true},
		{OpInvalid, "x", false},
	}

	for _, tt := range tests {
		if got := IsContentValid(tt.op, tt.content); got != tt.want {
			t.Errorf("IsContentValid(%v, %q) = %v, want %v", tt.op, tt.content, got, tt.want)
		}
	}
}

func TestParseInteger(t *testing.T) {
	n, err := ParseInteger(" -3 ")
	if err != nil || n != -3 {
		t.Errorf("ParseInteger(\" -3 \") = %d, %v; want -3, nil", n, err)
	}

	_, err = ParseInteger("three")
	if !errors.Is(err, ErrContentTypeMismatch) {
		t.Errorf("ParseInteger(\"three\") error = %v, want ErrContentTypeMismatch", err)
	}
}

func TestDocumentValidate(t *testing.T) {
	doc := New("target",
		Instruction{OpFind, "a"},
		Instruction{OpSkip, "x"},
		Instruction{OpReplace, "b"},
		Instruction{OpGoto, ""},
	)

	errs := doc.Validate()
	if len(errs) != 2 {
		t.Fatalf("Validate() returned %d errors, want 2: %v", len(errs), errs)
	}

	var mismatch *ContentTypeMismatchError
	if !errors.As(errs[0], &mismatch) {
		t.Fatalf("errs[0] = %T, want *ContentTypeMismatchError", errs[0])
	}
	if mismatch.Index != 1 || mismatch.Op != OpSkip || mismatch.Expected != KindInteger {
		t.Errorf("errs[0] = %+v", mismatch)
	}
	if !errors.Is(errs[1], ErrContentTypeMismatch) {
		t.Errorf("errs[1] does not wrap ErrContentTypeMismatch")
	}

	want := `instruction 3 (goto): content "" is not integer`
	if got := errs[1].Error(); got != want {
		t.Errorf("errs[1].Error() = %q, want %q", got, want)
	}

	if errs := New("t", Instruction{OpFind, "a"}).Validate(); errs != nil {
		t.Errorf("Validate() on valid document = %v, want nil", errs)
	}
}

func TestDocumentResolveTarget(t *testing.T) {
	r := resolve.Map{"guid-1": "/proj/Assets/a.txt"}

	if got := New("guid-1").ResolveTarget(r); got != "/proj/Assets/a.txt" {
		t.Errorf("ResolveTarget() = %q", got)
	}
	if got := New("plain/path.txt").ResolveTarget(r); got != "plain/path.txt" {
		t.Errorf("ResolveTarget() on miss = %q, want the reference", got)
	}
	if got := New("x").ResolveTarget(nil); got != "x" {
		t.Errorf("ResolveTarget(nil) = %q", got)
	}
}

func TestDocumentAdd(t *testing.T) {
	doc := New("t")

	if i := doc.Add(); i != 0 {
		t.Errorf("Add() = %d, want 0", i)
	}
	if doc.Instructions[0] != (Instruction{Op: OpFind}) {
		t.Errorf("first added instruction = %v, want empty find", doc.Instructions[0])
	}

	doc.Instructions[0] = Instruction{OpSkip, "2"}
	doc.Add()
	if doc.Instructions[1] != (Instruction{Op: OpSkip}) {
		t.Errorf("second added instruction = %v, want empty skip", doc.Instructions[1])
	}
}

func TestDocumentEditing(t *testing.T) {
	a := Instruction{OpFind, "a"}
	b := Instruction{OpReplace, "b"}
	c := Instruction{OpAppend, "c"}
	m := Instruction{OpMark, ""}

	doc := New("t", a, b, c)

	if err := doc.MoveUp(2); err != nil {
		t.Fatalf("MoveUp(2) error = %v", err)
	}
	if want := []Instruction{a, c, b}; !reflect.DeepEqual(doc.Instructions, want) {
		t.Errorf("after MoveUp(2) = %v, want %v", doc.Instructions, want)
	}

	if err := doc.MoveDown(0); err != nil {
		t.Fatalf("MoveDown(0) error = %v", err)
	}
	if want := []Instruction{c, a, b}; !reflect.DeepEqual(doc.Instructions, want) {
		t.Errorf("after MoveDown(0) = %v, want %v", doc.Instructions, want)
	}

	// Moving past either end is a no-op.
	if err := doc.MoveUp(0); err != nil {
		t.Errorf("MoveUp(0) error = %v", err)
	}
	if err := doc.MoveDown(2); err != nil {
		t.Errorf("MoveDown(2) error = %v", err)
	}
	if want := []Instruction{c, a, b}; !reflect.DeepEqual(doc.Instructions, want) {
		t.Errorf("after edge moves = %v, want %v", doc.Instructions, want)
	}

	if err := doc.Insert(1, m); err != nil {
		t.Fatalf("Insert(1) error = %v", err)
	}
	if err := doc.Insert(4, m); err != nil {
		t.Fatalf("Insert(4) error = %v", err)
	}
	if got := doc.Marked(); !reflect.DeepEqual(got, []int{1, 4}) {
		t.Errorf("Marked() = %v, want [1 4]", got)
	}

	if n := doc.PurgeMarked(); n != 2 {
		t.Errorf("PurgeMarked() = %d, want 2", n)
	}
	if want := []Instruction{c, a, b}; !reflect.DeepEqual(doc.Instructions, want) {
		t.Errorf("after PurgeMarked = %v, want %v", doc.Instructions, want)
	}

	if err := doc.RemoveAt(1); err != nil {
		t.Fatalf("RemoveAt(1) error = %v", err)
	}
	if want := []Instruction{c, b}; !reflect.DeepEqual(doc.Instructions, want) {
		t.Errorf("after RemoveAt(1) = %v, want %v", doc.Instructions, want)
	}

	for _, fn := range []func(int) error{doc.RemoveAt, doc.MoveUp, doc.MoveDown} {
		if err := fn(5); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("out of range edit error = %v, want ErrIndexOutOfRange", err)
		}
	}
	if err := doc.Insert(-1, a); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Insert(-1) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestDocumentClone(t *testing.T) {
	doc := New("t", Instruction{OpFind, "a"})
	clone := doc.Clone()
	clone.Instructions[0].Content = "changed"
	clone.Target = "other"

	if doc.Instructions[0].Content != "a" || doc.Target != "t" {
		t.Errorf("Clone shares state with the original: %+v", doc)
	}
}

func TestInstructionString(t *testing.T) {
	if got := (Instruction{OpFind, "x y"}).String(); got != `find "x y"` {
		t.Errorf("String() = %q", got)
	}
	if got := (Instruction{Op: OpMark}).String(); got != "mark" {
		t.Errorf("String() = %q", got)
	}
}

func TestGroupPaths(t *testing.T) {
	g := &Group{Documents: []string{"a.json", "sub/b.yaml", "/abs/c.toml"}}

	got := g.Paths("/proj/patches")
	want := []string{
		filepath.Join("/proj/patches", "a.json"),
		filepath.Join("/proj/patches", "sub/b.yaml"),
		"/abs/c.toml",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}

	if got := g.Paths(""); got[0] != "a.json" {
		t.Errorf("Paths(\"\")[0] = %q, want a.json", got[0])
	}
}
