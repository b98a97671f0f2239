package bitfield

import (
	"math/bits"
	"reflect"
	"strings"
	"unsafe"

	"github.com/wippyai/bitfield/errors"
)

// Kind enumerates the supported base types.
type Kind uint8

const (
	KindInvalid Kind = iota
	U8
	U16
	U32
	U64
	U128
	Uint    // platform-width uint
	Uintptr // platform-width uintptr
)

// Unsigned is the set of native Go types a layout can be defined over.
// Named types such as `type Status uint32` are accepted so the aggregate
// can carry its own identity.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Bits returns the bit capacity of the base type.
func (k Kind) Bits() int {
	switch k {
	case U8:
		return 8
	case U16:
		return 16
	case U32:
		return 32
	case U64:
		return 64
	case U128:
		return 128
	case Uint:
		return bits.UintSize
	case Uintptr:
		return int(unsafe.Sizeof(uintptr(0))) * 8
	default:
		return 0
	}
}

// String returns the short name used in definition files.
func (k Kind) String() string {
	switch k {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	case Uint:
		return "uint"
	case Uintptr:
		return "uintptr"
	default:
		return "invalid"
	}
}

// GoType returns the Go spelling of the base type. The 128-bit kind maps to
// this package's Uint128.
func (k Kind) GoType() string {
	switch k {
	case U8:
		return "uint8"
	case U16:
		return "uint16"
	case U32:
		return "uint32"
	case U64:
		return "uint64"
	case U128:
		return "bitfield.Uint128"
	case Uint:
		return "uint"
	case Uintptr:
		return "uintptr"
	default:
		return ""
	}
}

// Native reports whether the kind is carried by a built-in Go integer.
func (k Kind) Native() bool {
	return k != KindInvalid && k != U128 && k <= Uintptr
}

// ParseKind maps a base type name to its Kind. Both the short names
// (u8..u128, usize) and Go names (uint8..uint64, uint, uintptr) are accepted.
func ParseKind(name string) (Kind, error) {
	switch strings.TrimSpace(name) {
	case "u8", "uint8", "byte":
		return U8, nil
	case "u16", "uint16":
		return U16, nil
	case "u32", "uint32":
		return U32, nil
	case "u64", "uint64":
		return U64, nil
	case "u128", "uint128":
		return U128, nil
	case "usize", "uint":
		return Uint, nil
	case "uintptr":
		return Uintptr, nil
	}
	return KindInvalid, errors.UnsupportedBase(errors.PhaseDefine, name)
}

// BitsOf returns the bit capacity of B.
func BitsOf[B Unsigned]() int {
	var zero B
	return int(unsafe.Sizeof(zero)) * 8
}

// KindOf returns the Kind matching B's underlying type.
func KindOf[B Unsigned]() Kind {
	switch reflect.TypeFor[B]().Kind() {
	case reflect.Uint8:
		return U8
	case reflect.Uint16:
		return U16
	case reflect.Uint32:
		return U32
	case reflect.Uint64:
		return U64
	case reflect.Uint:
		return Uint
	case reflect.Uintptr:
		return Uintptr
	default:
		return KindInvalid
	}
}

// mask returns the width-bit all-ones pattern in B. A full-width mask is
// produced without shifting by the type's width.
func mask[B Unsigned](width int) B {
	if width >= BitsOf[B]() {
		return ^B(0)
	}
	return B(1)<<width - 1
}

// Bits extracts bits lo (inclusive) to hi (exclusive) from v. A negative
// lo is treated as 0; an empty or reversed range yields 0.
func Bits[B Unsigned](v B, lo, hi int) B {
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return 0
	}
	return (v >> lo) & mask[B](hi-lo)
}
