// Package witflags converts between WIT flags types and bitfield
// definitions.
//
// A flags type with n flags is a bitfield of n one-bit fields packed from
// bit 0, stored in the smallest of u8, u16, u32 or u64 that holds n bits.
// Flag names are kebab-case in WIT and snake_case in definitions.
package witflags

import (
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/schema"
)

// MaxFlags is the largest flags type carried in a single integer.
const MaxFlags = 64

// Kind returns the base type that stores f.
func Kind(f *wit.Flags) (bitfield.Kind, error) {
	return kindOf(len(f.Flags), nil)
}

func kindOf(n int, path []string) (bitfield.Kind, error) {
	switch {
	case n <= 8:
		return bitfield.U8, nil
	case n <= 16:
		return bitfield.U16, nil
	case n <= 32:
		return bitfield.U32, nil
	case n <= MaxFlags:
		return bitfield.U64, nil
	}
	return bitfield.KindInvalid, errors.New(errors.PhaseDefine, errors.KindUnsupported).
		Path(path...).
		Detail("flags type has %d flags, maximum is %d", n, MaxFlags).
		Value(n).
		Build()
}

// FromFlags builds a definition named name from f.
func FromFlags(name string, f *wit.Flags) (schema.Definition, error) {
	kind, err := kindOf(len(f.Flags), []string{name})
	if err != nil {
		return schema.Definition{}, err
	}
	def := schema.Definition{Name: name, Base: kind}
	for _, fl := range f.Flags {
		def.Decls = append(def.Decls, bitfield.F(FieldName(fl.Name), 1))
	}
	return def, nil
}

// FromTypeDef builds a definition from a named flags type definition.
func FromTypeDef(t *wit.TypeDef) (schema.Definition, error) {
	f, ok := t.Kind.(*wit.Flags)
	if !ok {
		return schema.Definition{}, errors.New(errors.PhaseDefine, errors.KindTypeMismatch).
			GoType(typeName(t)).
			Detail("not a flags type").
			Build()
	}
	if t.Name == nil || *t.Name == "" {
		return schema.Definition{}, errors.InvalidInput(errors.PhaseDefine, nil, "flags type has no name")
	}
	def, err := FromFlags(TypeName(*t.Name), f)
	if err != nil {
		return def, err
	}
	def.Doc = t.Docs.Contents
	return def, nil
}

// ToTypeDef converts a definition back into a WIT flags type. Only
// definitions made entirely of one-bit fields without skip regions qualify.
func ToTypeDef(d schema.Definition) (*wit.TypeDef, error) {
	flags := &wit.Flags{}
	for _, decl := range d.Decls {
		if decl.IsSkip() || decl.Width != 1 {
			return nil, errors.New(errors.PhaseDefine, errors.KindUnsupported).
				Path(d.Name, decl.Name).
				Detail("flags need contiguous one-bit fields, got width %d", decl.Width).
				Build()
		}
		flags.Flags = append(flags.Flags, wit.Flag{Name: WITName(decl.Name)})
	}
	if len(flags.Flags) > MaxFlags {
		return nil, errors.CapacityExceeded([]string{d.Name}, "flags", len(flags.Flags), MaxFlags)
	}
	name := WITName(d.Name)
	return &wit.TypeDef{
		Name: &name,
		Kind: flags,
		Docs: wit.Docs{Contents: d.Doc},
	}, nil
}

// Encode sets the named flags in a zero value of l.
func Encode(l *bitfield.Layout[uint64], names ...string) (uint64, error) {
	var v uint64
	for _, name := range names {
		f, err := l.Lookup(FieldName(name))
		if err != nil {
			return 0, err
		}
		f.Set(&v, 1)
	}
	return v, nil
}

// Decode lists the set flags of v in declaration order, using WIT names.
func Decode(l *bitfield.Layout[uint64], v uint64) []string {
	var names []string
	for _, f := range l.Fields() {
		if f.IsSet(v) {
			names = append(names, WITName(f.Name()))
		}
	}
	return names
}

// FieldName maps a kebab-case WIT name to a field name.
func FieldName(witName string) string {
	return strings.ReplaceAll(witName, "-", "_")
}

// WITName maps a field or bitfield name to kebab-case.
func WITName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteByte('-')
		case r >= 'A' && r <= 'Z':
			if i > 0 && name[i-1] != '_' {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TypeName maps a kebab-case WIT type name to an exported Go-style name.
func TypeName(witName string) string {
	var b strings.Builder
	upper := true
	for _, r := range witName {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

func typeName(t *wit.TypeDef) string {
	if t.Name != nil {
		return *t.Name
	}
	return "anonymous type"
}
