package bitfield

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/internal/layout"
)

// Layout128 is a resolved bitfield definition over Uint128.
type Layout128 struct {
	index  map[string]int
	name   string
	fields []Field128
	used   int
}

// Define128 resolves decls against a 128-bit base.
func Define128(name string, decls ...Decl) (*Layout128, error) {
	res, err := layout.Resolve(layout.Target{Name: name, Base: U128.String(), Capacity: U128.Bits()}, decls)
	if err != nil {
		return nil, err
	}

	l := &Layout128{
		index:  make(map[string]int, len(res.Fields)),
		name:   name,
		fields: make([]Field128, len(res.Fields)),
		used:   res.Used,
	}
	for i, r := range res.Fields {
		l.fields[i] = newField128(r)
		l.index[r.Name] = i
	}

	Logger().Debug("bitfield defined",
		zap.String("name", name),
		zap.Stringer("base", U128),
		zap.Int("fields", len(l.fields)),
		zap.Int("used_bits", res.Used))
	return l, nil
}

// MustDefine128 is like Define128 but panics on error.
func MustDefine128(name string, decls ...Decl) *Layout128 {
	l, err := Define128(name, decls...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Layout128) Name() string { return l.name }
func (l *Layout128) Kind() Kind { return U128 }
func (l *Layout128) Capacity() int { return U128.Bits() }
func (l *Layout128) Used() int { return l.used }

func (l *Layout128) Fields() []Field128 {
	out := make([]Field128, len(l.fields))
	copy(out, l.fields)
	return out
}

func (l *Layout128) Field(name string) (Field128, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field128{}, false
	}
	return l.fields[i], true
}

func (l *Layout128) Lookup(name string) (Field128, error) {
	f, ok := l.Field(name)
	if !ok {
		return f, errors.FieldUnknown(errors.PhaseLookup, []string{l.name}, name)
	}
	return f, nil
}

func (l *Layout128) MustField(name string) Field128 {
	f, err := l.Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}

func (l *Layout128) New(v Uint128) Uint128 { return v }
func (l *Layout128) Raw(a Uint128) Uint128 { return a }

// Format renders v as Name{field: value, ...}.
func (l *Layout128) Format(v Uint128) string {
	var b strings.Builder
	b.WriteString(l.name)
	b.WriteByte('{')
	for i, f := range l.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.name)
		b.WriteString(": ")
		b.WriteString(f.Get(v).String())
	}
	b.WriteByte('}')
	return b.String()
}
