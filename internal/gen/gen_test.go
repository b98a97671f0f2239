package gen

import (
	stderrors "errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/schema"
)

func statusFile() *schema.File {
	return &schema.File{
		Package: "regs",
		Definitions: []schema.Definition{{
			Name: "Status",
			Doc:  "Controller status register.",
			Base: bitfield.U32,
			Decls: []bitfield.Decl{
				bitfield.F("field1", 3),
				bitfield.F("field2", 9),
				bitfield.Skip(6),
				bitfield.F("field3", 1),
			},
		}},
	}
}

// squash collapses whitespace so checks survive gofmt alignment.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// runtimeStub declares the slice of the runtime package that generated
// code may reference.
const runtimeStub = `package bitfield

type Uint128 struct{ Hi, Lo uint64 }

func (u Uint128) And(v Uint128) Uint128    { return u }
func (u Uint128) Or(v Uint128) Uint128     { return u }
func (u Uint128) AndNot(v Uint128) Uint128 { return u }
func (u Uint128) Lsh(n uint) Uint128       { return u }
func (u Uint128) Rsh(n uint) Uint128       { return u }
func (u Uint128) IsZero() bool             { return true }
func (u Uint128) String() string           { return "" }
`

var stdImporter = importer.ForCompiler(token.NewFileSet(), "source", nil)

type checkImporter struct {
	fset *token.FileSet
}

func (i checkImporter) Import(path string) (*types.Package, error) {
	if path != runtimeImport {
		return stdImporter.Import(path)
	}
	file, err := parser.ParseFile(i.fset, "bitfield.go", runtimeStub, 0)
	if err != nil {
		return nil, err
	}
	var conf types.Config
	return conf.Check(runtimeImport, i.fset, []*ast.File{file}, nil)
}

// typecheck fails the test unless src is a valid Go package on its own.
func typecheck(t *testing.T, src []byte) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "gen.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	conf := types.Config{Importer: checkImporter{fset: fset}}
	if _, err := conf.Check(file.Name.Name, fset, []*ast.File{file}, nil); err != nil {
		t.Fatalf("generated source does not type-check: %v\n%s", err, src)
	}
}

func generate(t *testing.T, f *schema.File, opts Options) string {
	t.Helper()
	src, err := Generate(f, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	typecheck(t, src)
	return string(src)
}

// tokens lists the tokens of src, ignoring layout.
func tokens(t *testing.T, src []byte) []string {
	t.Helper()
	fset := token.NewFileSet()
	file := fset.AddFile("src.go", fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) {
		t.Errorf("%s: %s", pos, msg)
	}, scanner.ScanComments)

	var out []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			return out
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		out = append(out, tok.String()+" "+lit)
	}
}

func TestGenerate_Native(t *testing.T) {
	src := generate(t, statusFile(), Options{Source: "regs.yaml"})
	got := squash(src)

	for _, want := range []string{
		"// Code generated by bitfield generate from regs.yaml. DO NOT EDIT.",
		"package regs",
		`"fmt"`,
		"// Controller status register.",
		"type Status uint32",
		"StatusField1Offset = 0",
		"StatusField2Offset = 3",
		"StatusField3Offset = 18",
		"StatusField2Width = 9",
		"StatusField2Mask Status = 0x1ff",
		"func NewStatus(v uint32) Status { return Status(v) }",
		"func (b Status) Raw() uint32 { return uint32(b) }",
		"func (b Status) Field2() uint32 {",
		"// Field2 returns bits 3..11.",
		"// Field3 returns bit 18.",
		"func (b *Status) SetField3(v uint32) {",
		"func (b Status) IsField3Set() bool { return b.Field3() != 0 }",
		`return fmt.Sprintf("Status{field1: %d, field2: %d, field3: %d}", b.Field1(), b.Field2(), b.Field3())`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
	if strings.Contains(src, "wippyai/bitfield") {
		t.Error("native-only output should not import the runtime package")
	}
}

// The committed Status file is the generator's output for statusFile; it
// compiles with this package's tests.
func TestGenerate_MatchesCommittedOutput(t *testing.T) {
	want, err := os.ReadFile("status_gen_test.go")
	if err != nil {
		t.Fatal(err)
	}
	got := generate(t, statusFile(), Options{Package: "gen", Source: "regs.yaml"})
	if diff := cmp.Diff(tokens(t, want), tokens(t, []byte(got))); diff != "" {
		t.Errorf("generated output drifted from status_gen_test.go (-want +got):\n%s", diff)
	}
}

func TestGeneratedStatus(t *testing.T) {
	s := NewStatus(12345)
	if s.Field1() != 1 || s.Field2() != 7 || s.Field3() != 0 {
		t.Fatalf("fields = %d, %d, %d, want 1, 7, 0", s.Field1(), s.Field2(), s.Field3())
	}
	if !s.IsField2Set() || s.IsField3Set() {
		t.Error("Is*Set disagrees with the getters")
	}

	s.SetField1(0)
	if s.Raw() != 12344 {
		t.Errorf("after SetField1(0): %d, want 12344", s.Raw())
	}
	s.SetField2(0x3ff)
	if s.Field2() != 0x1ff || s.Field1() != 0 || s.Field3() != 0 {
		t.Errorf("SetField2 leaked outside its bits: %s", s)
	}
	s.SetField3(1)
	if s.Raw()&(1<<18) == 0 {
		t.Errorf("SetField3(1) did not set bit 18: %#x", s.Raw())
	}
	if got, want := NewStatus(12344).String(), "Status{field1: 0, field2: 7, field3: 0}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGenerate_Uint128(t *testing.T) {
	f := &schema.File{Definitions: []schema.Definition{{
		Name:  "wide_reg",
		Base:  bitfield.U128,
		Decls: []bitfield.Decl{bitfield.F("lo", 60), bitfield.F("hi", 68)},
	}}}
	got := squash(generate(t, f, Options{Package: "hw"}))

	for _, want := range []string{
		"package hw",
		`"github.com/wippyai/bitfield"`,
		"type WideReg struct{ v bitfield.Uint128 }",
		"func NewWideReg(v bitfield.Uint128) WideReg { return WideReg{v: v} }",
		"func (b WideReg) Raw() bitfield.Uint128 { return b.v }",
		"WideRegLoMask = bitfield.Uint128{Hi: 0x0, Lo: 0xfffffffffffffff}",
		"WideRegHiMask = bitfield.Uint128{Hi: 0xf, Lo: 0xffffffffffffffff}",
		"return b.v.Rsh(WideRegHiOffset).And(WideRegHiMask)",
		"b.v = b.v.AndNot(WideRegLoMask.Lsh(WideRegLoOffset)).Or(v.And(WideRegLoMask).Lsh(WideRegLoOffset))",
		"func (b WideReg) IsHiSet() bool { return !b.Hi().IsZero() }",
		`"wide_reg{lo: %s, hi: %s}"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestGenerate_MixedBases(t *testing.T) {
	f := statusFile()
	f.Definitions = append(f.Definitions, schema.Definition{
		Name:  "Wide",
		Base:  bitfield.U128,
		Decls: []bitfield.Decl{bitfield.F("hi", 64), bitfield.F("lo", 64)},
	})
	got := generate(t, f, Options{})
	if !strings.Contains(got, `"fmt"`) || !strings.Contains(got, `"github.com/wippyai/bitfield"`) {
		t.Errorf("expected both imports:\n%s", got)
	}
}

func TestGenerate_DefaultPackageAndEmpty(t *testing.T) {
	f := &schema.File{Definitions: []schema.Definition{{Name: "Reserved", Base: bitfield.U8}}}
	got := squash(generate(t, f, Options{}))
	if !strings.Contains(got, "package bitfields") {
		t.Error("expected default package name")
	}
	if !strings.Contains(got, `return "Reserved{}"`) {
		t.Errorf("empty bitfield String missing:\n%s", got)
	}
	if strings.Contains(got, `"fmt"`) {
		t.Error("unused fmt import should be removed")
	}
}

func TestGenerate_Errors(t *testing.T) {
	defs := func(ds ...schema.Definition) *schema.File {
		return &schema.File{Definitions: ds}
	}
	u8 := func(name string, fields ...string) schema.Definition {
		d := schema.Definition{Name: name, Base: bitfield.U8}
		for _, f := range fields {
			d.Decls = append(d.Decls, bitfield.F(f, 1))
		}
		return d
	}

	tests := []struct {
		name string
		file *schema.File
		opts Options
		want *errors.Error
	}{
		{
			name: "invalid package",
			file: statusFile(),
			opts: Options{Package: "my-pkg"},
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindInvalidInput},
		},
		{
			name: "overflow",
			file: defs(schema.Definition{Name: "Small", Base: bitfield.U8, Decls: []bitfield.Decl{bitfield.F("a", 9)}}),
			want: &errors.Error{Phase: errors.PhaseDefine, Kind: errors.KindOverflow},
		},
		{
			name: "method collision",
			file: defs(u8("S", "raw")),
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindDuplicateField},
		},
		{
			name: "setter collision",
			file: defs(u8("S", "mode", "set_mode")),
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindDuplicateField},
		},
		{
			name: "case collision",
			file: defs(u8("S", "a_b", "aB")),
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindDuplicateField},
		},
		{
			name: "type names differing in case",
			file: defs(u8("status", "a"), u8("Status", "b")),
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindRegistration},
		},
		{
			name: "constants across definitions",
			file: defs(u8("A", "bC"), u8("AB", "c")),
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindRegistration},
		},
		{
			name: "type shadows constructor",
			file: defs(u8("Reg"), u8("NewReg")),
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindRegistration},
		},
		{
			name: "type shadows constant",
			file: defs(u8("S", "x"), u8("SXMask")),
			want: &errors.Error{Phase: errors.PhaseGenerate, Kind: errors.KindRegistration},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.file, tt.opts)
			if !stderrors.Is(err, tt.want) {
				t.Errorf("Generate error = %v, want %s/%s", err, tt.want.Phase, tt.want.Kind)
			}
		})
	}
}

func TestExported(t *testing.T) {
	tests := map[string]string{
		"field1":   "Field1",
		"set_uid":  "SetUid",
		"readOnly": "ReadOnly",
		"_x":       "X",
		"9lives":   "F9lives",
	}
	for in, want := range tests {
		if got := Exported(in); got != want {
			t.Errorf("Exported(%q) = %q, want %q", in, got, want)
		}
	}
}
