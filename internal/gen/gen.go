// Package gen emits Go source with typed accessors for bitfield
// definitions.
package gen

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/internal/layout"
	"github.com/wippyai/bitfield/schema"
)

const runtimeImport = "github.com/wippyai/bitfield"

// Options control the generated file.
type Options struct {
	Package string // defaults to the file's package, then "bitfields"
	Source  string // file name recorded in the header
}

// Generate renders every definition of f into one formatted Go file.
func Generate(f *schema.File, opts Options) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = f.Package
	}
	if pkg == "" {
		pkg = "bitfields"
	}
	if !layout.IsIdentifier(pkg) {
		return nil, errors.InvalidInput(errors.PhaseGenerate, nil, fmt.Sprintf("package name %q is not an identifier", pkg))
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	// Types, constructors and constants share the file scope, so names
	// derived from distinct definitions may still collide.
	scope := make(map[string]string)
	gens := make([]*generator, 0, len(f.Definitions))
	var needFmt, needRuntime bool
	for _, def := range f.Definitions {
		res, err := def.Resolve()
		if err != nil {
			return nil, err
		}
		g := &generator{def: def, res: res}
		if err := g.names(scope); err != nil {
			return nil, err
		}
		needFmt = needFmt || len(g.fields) > 0
		needRuntime = needRuntime || def.Base == bitfield.U128
		gens = append(gens, g)
	}

	var out strings.Builder
	if opts.Source != "" {
		fmt.Fprintf(&out, "// Code generated by bitfield generate from %s. DO NOT EDIT.\n\n", opts.Source)
	} else {
		out.WriteString("// Code generated by bitfield generate. DO NOT EDIT.\n\n")
	}
	fmt.Fprintf(&out, "package %s\n", pkg)
	switch {
	case needFmt && needRuntime:
		fmt.Fprintf(&out, "\nimport (\n\t\"fmt\"\n\n\t%q\n)\n", runtimeImport)
	case needFmt:
		out.WriteString("\nimport \"fmt\"\n")
	case needRuntime:
		fmt.Fprintf(&out, "\nimport %q\n", runtimeImport)
	}

	for _, g := range gens {
		g.out = &out
		g.emit()
	}

	src, err := imports.Process("", []byte(out.String()), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidData, err, "format generated source")
	}

	bitfield.Logger().Debug("generated accessors",
		zap.String("package", pkg),
		zap.Int("bitfields", len(f.Definitions)),
		zap.Int("bytes", len(src)))
	return src, nil
}

type generator struct {
	def    schema.Definition
	res    *layout.Result
	out    *strings.Builder
	name   string
	base   string
	fields []fieldNames
}

type fieldNames struct {
	resolved              layout.Resolved
	get, set, is          string
	offset, width, maskID string
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(g.out, format, args...)
}

func (g *generator) wide() bool { return g.def.Base == bitfield.U128 }

func (g *generator) emit() {
	g.printf("\n")
	g.printf("// %s is a packed bitfield over %s.\n", g.name, g.base)
	if g.def.Doc != "" {
		g.printf("//\n")
		for _, line := range strings.Split(g.def.Doc, "\n") {
			g.printf("// %s\n", strings.TrimSpace(line))
		}
	}

	if g.wide() {
		// Wrapping keeps the Hi and Lo fields of Uint128 out of the
		// method set.
		g.printf("type %s struct{ v %s }\n\n", g.name, g.base)
		g.emitConsts128()
		g.printf("// New%s returns a %s holding v verbatim.\n", g.name, g.name)
		g.printf("func New%s(v %s) %s { return %s{v: v} }\n\n", g.name, g.base, g.name, g.name)
		g.printf("// Raw returns the base value, including bits outside any field.\n")
		g.printf("func (b %s) Raw() %s { return b.v }\n\n", g.name, g.base)
	} else {
		g.printf("type %s %s\n\n", g.name, g.base)
		g.emitConsts()
		g.printf("// New%s returns a %s holding v verbatim.\n", g.name, g.name)
		g.printf("func New%s(v %s) %s { return %s(v) }\n\n", g.name, g.base, g.name, g.name)
		g.printf("// Raw returns the base value, including bits outside any field.\n")
		g.printf("func (b %s) Raw() %s { return %s(b) }\n\n", g.name, g.base, g.base)
	}

	for _, f := range g.fields {
		if g.wide() {
			g.emitField128(f)
		} else {
			g.emitField(f)
		}
	}
	g.emitString()
}

// names derives identifiers for the type and every field. Methods must be
// unique within the type; the type, its constructor and its constants must
// be unique across scope, which is shared by all definitions of a file.
func (g *generator) names(scope map[string]string) error {
	g.name = Exported(g.def.Name)
	g.base = g.def.Base.GoType()

	declare := func(id, owner string) error {
		if prev, ok := scope[id]; ok {
			return errors.New(errors.PhaseGenerate, errors.KindRegistration).
				Path(owner).
				Detail("identifier %s already declared by %s", id, prev).
				Build()
		}
		scope[id] = owner
		return nil
	}
	if err := declare(g.name, g.def.Name); err != nil {
		return err
	}
	if err := declare("New"+g.name, g.def.Name); err != nil {
		return err
	}

	methods := map[string]string{"Raw": "method", "String": "method"}
	claim := func(id, owner string) error {
		if prev, ok := methods[id]; ok {
			return errors.New(errors.PhaseGenerate, errors.KindDuplicateField).
				Path(g.def.Name, owner).
				Detail("identifier %s already used by %s", id, prev).
				Build()
		}
		methods[id] = owner
		return nil
	}

	g.fields = make([]fieldNames, 0, len(g.res.Fields))
	for _, r := range g.res.Fields {
		id := Exported(r.Name)
		n := fieldNames{
			resolved: r,
			get:      id,
			set:      "Set" + id,
			is:       "Is" + id + "Set",
			offset:   g.name + id + "Offset",
			width:    g.name + id + "Width",
			maskID:   g.name + id + "Mask",
		}
		for _, m := range []string{n.get, n.set, n.is} {
			if err := claim(m, r.Name); err != nil {
				return err
			}
		}
		for _, c := range []string{n.offset, n.width, n.maskID} {
			if err := declare(c, g.def.Name+"."+r.Name); err != nil {
				return err
			}
		}
		g.fields = append(g.fields, n)
	}
	return nil
}

func (g *generator) emitConsts() {
	if len(g.fields) == 0 {
		return
	}
	g.printf("const (\n")
	for _, f := range g.fields {
		g.printf("\t%s = %d\n", f.offset, f.resolved.Offset)
		g.printf("\t%s = %d\n", f.width, f.resolved.Width)
		g.printf("\t%s %s = %#x\n", f.maskID, g.name, maskOf(f.resolved.Width))
	}
	g.printf(")\n\n")
}

func (g *generator) emitConsts128() {
	if len(g.fields) == 0 {
		return
	}
	g.printf("const (\n")
	for _, f := range g.fields {
		g.printf("\t%s = %d\n", f.offset, f.resolved.Offset)
		g.printf("\t%s = %d\n", f.width, f.resolved.Width)
	}
	g.printf(")\n\n")
	g.printf("var (\n")
	for _, f := range g.fields {
		hi, lo := mask128(f.resolved.Width)
		g.printf("\t%s = bitfield.Uint128{Hi: %#x, Lo: %#x}\n", f.maskID, hi, lo)
	}
	g.printf(")\n\n")
}

func (g *generator) emitField(f fieldNames) {
	r := f.resolved
	g.printf("// %s returns %s.\n", f.get, bitRange(r))
	g.printf("func (b %s) %s() %s {\n", g.name, f.get, g.base)
	g.printf("\treturn %s(b>>%s&%s)\n", g.base, f.offset, f.maskID)
	g.printf("}\n\n")

	g.printf("// %s writes the low %d bits of v into %s.\n", f.set, r.Width, bitRange(r))
	g.printf("func (b *%s) %s(v %s) {\n", g.name, f.set, g.base)
	g.printf("\t*b = *b&^(%s<<%s) | (%s(v)&%s)<<%s\n", f.maskID, f.offset, g.name, f.maskID, f.offset)
	g.printf("}\n\n")

	g.printf("func (b %s) %s() bool { return b.%s() != 0 }\n\n", g.name, f.is, f.get)
}

func (g *generator) emitField128(f fieldNames) {
	r := f.resolved
	g.printf("// %s returns %s.\n", f.get, bitRange(r))
	g.printf("func (b %s) %s() bitfield.Uint128 {\n", g.name, f.get)
	g.printf("\treturn b.v.Rsh(%s).And(%s)\n", f.offset, f.maskID)
	g.printf("}\n\n")

	g.printf("// %s writes the low %d bits of v into %s.\n", f.set, r.Width, bitRange(r))
	g.printf("func (b *%s) %s(v bitfield.Uint128) {\n", g.name, f.set)
	g.printf("\tb.v = b.v.AndNot(%s.Lsh(%s)).Or(v.And(%s).Lsh(%s))\n", f.maskID, f.offset, f.maskID, f.offset)
	g.printf("}\n\n")

	g.printf("func (b %s) %s() bool { return !b.%s().IsZero() }\n\n", g.name, f.is, f.get)
}

func (g *generator) emitString() {
	verb := "%d"
	if g.wide() {
		verb = "%s"
	}

	parts := make([]string, len(g.fields))
	args := make([]string, len(g.fields))
	for i, f := range g.fields {
		parts[i] = f.resolved.Name + ": " + verb
		args[i] = "b." + f.get + "()"
	}

	g.printf("func (b %s) String() string {\n", g.name)
	if len(g.fields) == 0 {
		g.printf("\treturn %q\n", g.def.Name+"{}")
	} else {
		g.printf("\treturn fmt.Sprintf(%q, %s)\n", g.def.Name+"{"+strings.Join(parts, ", ")+"}", strings.Join(args, ", "))
	}
	g.printf("}\n")
}

// Exported converts a snake_case or camelCase name to an exported Go
// identifier.
func Exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if s == "" || unicode.IsDigit(rune(s[0])) {
		s = "F" + s
	}
	return s
}

func bitRange(r layout.Resolved) string {
	if r.Width == 1 {
		return fmt.Sprintf("bit %d", r.Offset)
	}
	return fmt.Sprintf("bits %d..%d", r.Offset, r.End()-1)
}

func maskOf(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<width - 1
}

func mask128(width int) (hi, lo uint64) {
	if width <= 64 {
		return 0, maskOf(width)
	}
	return maskOf(width - 64), ^uint64(0)
}
