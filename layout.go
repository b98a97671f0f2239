package bitfield

import (
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/internal/layout"
)

// Decl declares one field, or a skip region when Name is "_".
type Decl = layout.Decl

// F declares a named field of the given width.
func F(name string, width int) Decl {
	return Decl{Name: name, Width: width}
}

// Skip declares width reserved bits with no accessor.
func Skip(width int) Decl {
	return Decl{Name: layout.SkipName, Width: width}
}

// Layout is a resolved bitfield definition over base type B. It is
// immutable and safe for concurrent use.
type Layout[B Unsigned] struct {
	index   map[string]int
	binding *structBinding
	name    string
	fields  []Field[B]
	kind    Kind
	used    int
}

// Define resolves decls against the full width of B.
func Define[B Unsigned](name string, decls ...Decl) (*Layout[B], error) {
	return DefineAs[B](name, KindOf[B](), decls...)
}

// MustDefine is like Define but panics on error. It is meant for
// package-level layout variables.
func MustDefine[B Unsigned](name string, decls ...Decl) *Layout[B] {
	l, err := Define[B](name, decls...)
	if err != nil {
		panic(err)
	}
	return l
}

// DefineAs resolves decls against kind while storing values in B. This lets a
// wider Go type carry a narrower declared base, e.g. a u8 layout in uint64.
func DefineAs[B Unsigned](name string, kind Kind, decls ...Decl) (*Layout[B], error) {
	if !kind.Native() {
		return nil, errors.UnsupportedBase(errors.PhaseDefine, kind.String())
	}
	goType := reflect.TypeFor[B]().String()
	if kind.Bits() > BitsOf[B]() {
		return nil, errors.New(errors.PhaseDefine, errors.KindTypeMismatch).
			Path(name).
			GoType(goType).
			Base(kind.String()).
			Detail("%d-bit carrier cannot hold a %d-bit base", BitsOf[B](), kind.Bits()).
			Build()
	}

	res, err := layout.Resolve(layout.Target{Name: name, Base: kind.String(), Capacity: kind.Bits()}, decls)
	if err != nil {
		return nil, err
	}

	l := &Layout[B]{
		index:  make(map[string]int, len(res.Fields)),
		name:   name,
		fields: make([]Field[B], len(res.Fields)),
		kind:   kind,
		used:   res.Used,
	}
	for i, r := range res.Fields {
		l.fields[i] = newField[B](r)
		l.index[r.Name] = i
	}

	Logger().Debug("bitfield defined",
		zap.String("name", name),
		zap.Stringer("base", kind),
		zap.String("go_type", goType),
		zap.Int("fields", len(l.fields)),
		zap.Int("used_bits", res.Used))
	return l, nil
}

func (l *Layout[B]) Name() string { return l.name }

// Kind returns the declared base type.
func (l *Layout[B]) Kind() Kind { return l.kind }

// Capacity returns the bit width of the declared base type.
func (l *Layout[B]) Capacity() int { return l.kind.Bits() }

// Used returns the number of bits consumed by fields and skip regions.
func (l *Layout[B]) Used() int { return l.used }

// Fields returns the named fields in declaration order.
func (l *Layout[B]) Fields() []Field[B] {
	out := make([]Field[B], len(l.fields))
	copy(out, l.fields)
	return out
}

// Field returns the field with the given name.
func (l *Layout[B]) Field(name string) (Field[B], bool) {
	i, ok := l.index[name]
	if !ok {
		return Field[B]{}, false
	}
	return l.fields[i], true
}

// Lookup is like Field but reports a missing field as an error.
func (l *Layout[B]) Lookup(name string) (Field[B], error) {
	f, ok := l.Field(name)
	if !ok {
		return f, errors.FieldUnknown(errors.PhaseLookup, []string{l.name}, name)
	}
	return f, nil
}

// MustField is like Field but panics when the field does not exist.
func (l *Layout[B]) MustField(name string) Field[B] {
	f, err := l.Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Access binds the named field to the aggregate p points to.
func (l *Layout[B]) Access(p *B, name string) (Accessor[B], error) {
	f, err := l.Lookup(name)
	if err != nil {
		return Accessor[B]{}, err
	}
	return f.Of(p), nil
}

// New returns an aggregate holding v verbatim. No bits are masked, so
// skip regions and untracked high bits survive a round trip.
func (l *Layout[B]) New(v B) B { return v }

// Raw returns the base value of an aggregate.
func (l *Layout[B]) Raw(a B) B { return a }

// FieldValue is one field's position and value within an aggregate.
type FieldValue[B Unsigned] struct {
	Name   string
	Offset int
	Width  int
	Value  B
}

// Values extracts every named field of v in declaration order.
func (l *Layout[B]) Values(v B) []FieldValue[B] {
	out := make([]FieldValue[B], len(l.fields))
	for i, f := range l.fields {
		out[i] = FieldValue[B]{Name: f.name, Offset: f.Offset(), Width: f.Size(), Value: f.Get(v)}
	}
	return out
}

// Format renders v as Name{field: value, ...}.
func (l *Layout[B]) Format(v B) string {
	var b strings.Builder
	b.WriteString(l.name)
	b.WriteByte('{')
	for i, f := range l.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.name)
		b.WriteString(": ")
		b.WriteString(strconv.FormatUint(uint64(f.Get(v)), 10))
	}
	b.WriteByte('}')
	return b.String()
}
