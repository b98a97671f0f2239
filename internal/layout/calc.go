package layout

import (
	"strconv"
	"unicode"

	"github.com/wippyai/bitfield/errors"
)

// MaxCapacity is the widest base the resolver accepts.
const MaxCapacity = 128

// SkipName marks a declaration that reserves bits without naming them.
const SkipName = "_"

// Decl is one entry of an ordered field declaration list.
type Decl struct {
	Name  string
	Width int
}

// IsSkip reports whether d is a skip region.
func (d Decl) IsSkip() bool {
	return d.Name == SkipName
}

// Resolved is a named field placed within the base value.
type Resolved struct {
	Name   string
	Offset int
	Width  int
}

// End returns the first bit index above the field.
func (r Resolved) End() int {
	return r.Offset + r.Width
}

// Target describes what a declaration list is resolved against.
type Target struct {
	Name     string // bitfield name, used in error paths
	Base     string // base type name, used in error messages
	Capacity int    // bit width of the base
}

type Result struct {
	index    map[string]int
	Name     string
	Base     string
	Fields   []Resolved
	Used     int
	Capacity int
}

// Lookup returns the resolved field with the given name.
func (r *Result) Lookup(name string) (Resolved, bool) {
	i, ok := r.index[name]
	if !ok {
		return Resolved{}, false
	}
	return r.Fields[i], true
}

// Free returns the number of high bits not covered by any declaration.
func (r *Result) Free() int {
	return r.Capacity - r.Used
}

// Resolve walks decls once, assigning each field the running offset.
// Skip regions consume offset space but produce no field.
func Resolve(t Target, decls []Decl) (*Result, error) {
	if t.Capacity <= 0 || t.Capacity > MaxCapacity {
		return nil, errors.New(errors.PhaseDefine, errors.KindUnsupported).
			Path(t.Name).
			Base(t.Base).
			Detail("capacity %d outside 1..%d", t.Capacity, MaxCapacity).
			Value(t.Capacity).
			Build()
	}

	res := &Result{
		index:    make(map[string]int, len(decls)),
		Name:     t.Name,
		Base:     t.Base,
		Capacity: t.Capacity,
	}

	offset := 0
	for i, d := range decls {
		if d.Width <= 0 {
			return nil, errors.ZeroWidth([]string{t.Name, declLabel(d, i)}, d.Width)
		}
		if !d.IsSkip() {
			if !IsIdentifier(d.Name) {
				return nil, errors.InvalidInput(errors.PhaseDefine, []string{t.Name},
					"field name "+strconv.Quote(d.Name)+" is not an identifier")
			}
			if first, dup := res.index[d.Name]; dup {
				return nil, errors.DuplicateField([]string{t.Name, d.Name}, d.Name, first)
			}
			res.index[d.Name] = len(res.Fields)
			res.Fields = append(res.Fields, Resolved{Name: d.Name, Offset: offset, Width: d.Width})
		}
		offset += d.Width
	}

	if offset > t.Capacity {
		return nil, errors.CapacityExceeded([]string{t.Name}, t.Base, offset, t.Capacity)
	}
	res.Used = offset
	return res, nil
}

// IsIdentifier reports whether s can name a field.
func IsIdentifier(s string) bool {
	if s == "" || s == SkipName {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

func declLabel(d Decl, i int) string {
	if d.Name == "" {
		return "#" + strconv.Itoa(i)
	}
	return d.Name
}
