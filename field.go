package bitfield

import "github.com/wippyai/bitfield/internal/layout"

// Field is a handle to one named bit range of a layout. It carries only the
// field's position, so the same handle serves every aggregate of the layout.
type Field[B Unsigned] struct {
	name   string
	offset uint8
	width  uint8
	mask   B
}

func newField[B Unsigned](r layout.Resolved) Field[B] {
	return Field[B]{
		name:   r.Name,
		offset: uint8(r.Offset),
		width:  uint8(r.Width),
		mask:   mask[B](r.Width),
	}
}

// Name returns the declared field name.
func (f Field[B]) Name() string { return f.name }

// Offset returns the index of the field's least significant bit.
func (f Field[B]) Offset() int { return int(f.offset) }

// Size returns the field width in bits.
func (f Field[B]) Size() int { return int(f.width) }

// Mask returns the unshifted all-ones pattern of the field's width.
func (f Field[B]) Mask() B { return f.mask }

// Get extracts the field from v. Only the low Size() bits of the result can
// be non-zero.
func (f Field[B]) Get(v B) B {
	return (v >> f.offset) & f.mask
}

// IsSet reports whether the field is non-zero in v.
func (f Field[B]) IsSet(v B) bool {
	return f.Get(v) != 0
}

// With returns v with the field replaced by the low Size() bits of x.
// Bits of v outside the field are preserved.
func (f Field[B]) With(v, x B) B {
	return v&^(f.mask<<f.offset) | (x&f.mask)<<f.offset
}

// Set writes x into the field of the aggregate p points to. Extra bits of x
// are truncated.
func (f Field[B]) Set(p *B, x B) {
	*p = f.With(*p, x)
}

// Of binds the field to an aggregate. The accessor must not outlive *p.
func (f Field[B]) Of(p *B) Accessor[B] {
	return Accessor[B]{p: p, f: f}
}

// Accessor reads and writes one field of one aggregate through a borrowed
// pointer.
type Accessor[B Unsigned] struct {
	p *B
	f Field[B]
}

func (a Accessor[B]) Get() B { return a.f.Get(*a.p) }
func (a Accessor[B]) Set(x B) { a.f.Set(a.p, x) }
func (a Accessor[B]) IsSet() bool { return a.f.IsSet(*a.p) }
func (a Accessor[B]) Mask() B { return a.f.mask }
func (a Accessor[B]) Size() int { return a.f.Size() }
func (a Accessor[B]) Offset() int { return a.f.Offset() }
func (a Accessor[B]) Field() Field[B] { return a.f }
