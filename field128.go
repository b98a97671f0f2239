package bitfield

import "github.com/wippyai/bitfield/internal/layout"

// Field128 is the 128-bit counterpart of Field.
type Field128 struct {
	name   string
	offset uint8
	width  uint8
	mask   Uint128
}

func newField128(r layout.Resolved) Field128 {
	return Field128{
		name:   r.Name,
		offset: uint8(r.Offset),
		width:  uint8(r.Width),
		mask:   mask128(r.Width),
	}
}

func (f Field128) Name() string { return f.name }
func (f Field128) Offset() int { return int(f.offset) }
func (f Field128) Size() int { return int(f.width) }
func (f Field128) Mask() Uint128 { return f.mask }

// Get extracts the field from v.
func (f Field128) Get(v Uint128) Uint128 {
	return v.Rsh(uint(f.offset)).And(f.mask)
}

func (f Field128) IsSet(v Uint128) bool {
	return !f.Get(v).IsZero()
}

// With returns v with the field replaced by the low Size() bits of x.
func (f Field128) With(v, x Uint128) Uint128 {
	off := uint(f.offset)
	return v.AndNot(f.mask.Lsh(off)).Or(x.And(f.mask).Lsh(off))
}

func (f Field128) Set(p *Uint128, x Uint128) {
	*p = f.With(*p, x)
}

// Of binds the field to an aggregate. The accessor must not outlive *p.
func (f Field128) Of(p *Uint128) Accessor128 {
	return Accessor128{p: p, f: f}
}

// Accessor128 is the 128-bit counterpart of Accessor.
type Accessor128 struct {
	p *Uint128
	f Field128
}

func (a Accessor128) Get() Uint128 { return a.f.Get(*a.p) }
func (a Accessor128) Set(x Uint128) { a.f.Set(a.p, x) }
func (a Accessor128) IsSet() bool { return a.f.IsSet(*a.p) }
func (a Accessor128) Mask() Uint128 { return a.f.mask }
func (a Accessor128) Size() int { return a.f.Size() }
func (a Accessor128) Offset() int { return a.f.Offset() }
func (a Accessor128) Field() Field128 { return a.f }
