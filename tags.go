package bitfield

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/bitfield/errors"
)

// TagName is the struct tag key read by DefineStruct.
const TagName = "bitfield"

type structBinding struct {
	typ    reflect.Type
	fields []int // struct field index for each layout field
}

type structKey struct {
	typ  reflect.Type
	base reflect.Type
}

// Shared by every DefineStruct call.
var (
	parsedStructs     = make(map[structKey]any)
	parsedStructsLock sync.RWMutex
)

// DefineStruct derives a layout from a struct type whose fields carry
// `bitfield:"bits:N"` tags. Fields are packed in declaration order; blank
// (`_`) fields are skip regions; `name:x` overrides the field name and `-`
// omits a field. The result is cached per struct type and base type.
//
//	type statusBits struct {
//		Mode  uint8 `bitfield:"bits:3"`
//		_     uint8 `bitfield:"bits:5"`
//		Ready bool  `bitfield:"bits:1"`
//	}
//	l, err := bitfield.DefineStruct[uint16](statusBits{})
func DefineStruct[B Unsigned](proto any) (*Layout[B], error) {
	t := reflect.TypeOf(proto)
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseDefine, nil, "nil struct prototype")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseDefine, nil, t.String(), KindOf[B]().String())
	}

	key := structKey{typ: t, base: reflect.TypeFor[B]()}
	parsedStructsLock.RLock()
	if l, ok := parsedStructs[key]; ok {
		parsedStructsLock.RUnlock()
		return l.(*Layout[B]), nil
	}
	parsedStructsLock.RUnlock()

	parsedStructsLock.Lock()
	defer parsedStructsLock.Unlock()
	// Double check.
	if l, ok := parsedStructs[key]; ok {
		return l.(*Layout[B]), nil
	}

	l, err := parseStruct[B](t)
	if err != nil {
		return nil, err
	}
	parsedStructs[key] = l
	return l, nil
}

func parseStruct[B Unsigned](t reflect.Type) (*Layout[B], error) {
	var decls []Decl
	byName := make(map[string]int)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, tagged := field.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		path := []string{t.Name(), field.Name}
		if !tagged {
			return nil, errors.InvalidInput(errors.PhaseDefine, path, "field is untagged")
		}
		name, width, err := parseTag(path, tag)
		if err != nil {
			return nil, err
		}

		if field.Name == "_" {
			decls = append(decls, Skip(width))
			continue
		}
		if !field.IsExported() {
			return nil, errors.InvalidInput(errors.PhaseDefine, path, "field is unexported")
		}
		if err := checkFieldType(path, field.Type, width); err != nil {
			return nil, err
		}
		if name == "" {
			name = field.Name
		}
		byName[name] = i
		decls = append(decls, F(name, width))
	}

	l, err := Define[B](t.Name(), decls...)
	if err != nil {
		return nil, err
	}

	b := &structBinding{typ: t, fields: make([]int, len(l.fields))}
	for i, f := range l.fields {
		b.fields[i] = byName[f.name]
	}
	l.binding = b
	return l, nil
}

func parseTag(path []string, tag string) (name string, width int, err error) {
	for _, spec := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(spec), ":")
		switch key {
		case "bits":
			if width != 0 {
				return "", 0, errors.InvalidInput(errors.PhaseDefine, path, `duplicated spec "bits"`)
			}
			if !hasValue {
				return "", 0, errors.InvalidInput(errors.PhaseDefine, path, `spec "bits" has no value`)
			}
			width, err = strconv.Atoi(value)
			if err != nil {
				return "", 0, errors.New(errors.PhaseDefine, errors.KindInvalidInput).
					Path(path...).
					Detail(`spec "bits" has invalid value %q`, value).
					Cause(err).
					Build()
			}
			if width <= 0 {
				return "", 0, errors.ZeroWidth(path, width)
			}
		case "name":
			if name != "" {
				return "", 0, errors.InvalidInput(errors.PhaseDefine, path, `duplicated spec "name"`)
			}
			if !hasValue || value == "" {
				return "", 0, errors.InvalidInput(errors.PhaseDefine, path, `spec "name" has no value`)
			}
			name = value
		default:
			return "", 0, errors.InvalidInput(errors.PhaseDefine, path, "unknown spec "+strconv.Quote(key))
		}
	}
	if width == 0 {
		return "", 0, errors.InvalidInput(errors.PhaseDefine, path, `spec "bits" is required`)
	}
	return name, width, nil
}

func checkFieldType(path []string, t reflect.Type, width int) error {
	switch t.Kind() {
	case reflect.Bool:
		if width == 1 {
			return nil
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		if width <= t.Bits() {
			return nil
		}
	}
	return errors.New(errors.PhaseDefine, errors.KindTypeMismatch).
		Path(path...).
		GoType(t.String()).
		Detail("cannot hold a %d-bit field", width).
		Build()
}

func (l *Layout[B]) bound(v reflect.Value) (reflect.Value, error) {
	if l.binding == nil {
		return v, errors.Unsupported(errors.PhaseLookup, "layout "+l.name+" was not defined from a struct")
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return v, errors.InvalidInput(errors.PhaseLookup, []string{l.name}, "nil pointer")
		}
		v = v.Elem()
	}
	if v.Type() != l.binding.typ {
		return v, errors.TypeMismatch(errors.PhaseLookup, []string{l.name}, v.Type().String(), l.binding.typ.String())
	}
	return v, nil
}

// Pack builds an aggregate from a struct of the type the layout was defined
// from. Values wider than their field are truncated.
func (l *Layout[B]) Pack(src any) (B, error) {
	var out B
	if src == nil {
		return out, errors.InvalidInput(errors.PhaseLookup, []string{l.name}, "nil source")
	}
	v, err := l.bound(reflect.ValueOf(src))
	if err != nil {
		return out, err
	}
	for i, f := range l.fields {
		f.Set(&out, B(toUint64(v.Field(l.binding.fields[i]))))
	}
	return out, nil
}

// Unpack copies every field of a into the struct dst points to.
func (l *Layout[B]) Unpack(a B, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr {
		return errors.InvalidInput(errors.PhaseLookup, []string{l.name}, "destination must be a pointer")
	}
	v, err := l.bound(rv)
	if err != nil {
		return err
	}
	for i, f := range l.fields {
		setUint64(v.Field(l.binding.fields[i]), uint64(f.Get(a)))
	}
	return nil
}

func toUint64(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return uint64(v.Int())
	default:
		return v.Uint()
	}
}

func setUint64(v reflect.Value, x uint64) {
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(x != 0)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		v.SetInt(int64(x))
	default:
		v.SetUint(x)
	}
}
