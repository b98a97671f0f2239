package bitfield

import (
	"math/bits"
	"testing"
)

type register uint16

func TestKindBits(t *testing.T) {
	tests := []struct {
		kind Kind
		bits int
		name string
	}{
		{U8, 8, "u8"},
		{U16, 16, "u16"},
		{U32, 32, "u32"},
		{U64, 64, "u64"},
		{U128, 128, "u128"},
		{Uint, bits.UintSize, "uint"},
		{Uintptr, bits.UintSize, "uintptr"},
		{KindInvalid, 0, "invalid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.kind.Bits() != tc.bits {
				t.Errorf("bits: got %d, want %d", tc.kind.Bits(), tc.bits)
			}
			if tc.kind.String() != tc.name {
				t.Errorf("name: got %q, want %q", tc.kind.String(), tc.name)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"u8", U8, true},
		{"byte", U8, true},
		{"uint16", U16, true},
		{" u32 ", U32, true},
		{"u64", U64, true},
		{"u128", U128, true},
		{"usize", Uint, true},
		{"uint", Uint, true},
		{"uintptr", Uintptr, true},
		{"i32", KindInvalid, false},
		{"u7", KindInvalid, false},
		{"", KindInvalid, false},
	}
	for _, tc := range tests {
		got, err := ParseKind(tc.in)
		if got != tc.want || (err == nil) != tc.ok {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, ok=%v", tc.in, got, err, tc.want, tc.ok)
		}
	}
}

func TestKindOf(t *testing.T) {
	if KindOf[uint8]() != U8 || KindOf[register]() != U16 || KindOf[uint32]() != U32 ||
		KindOf[uint64]() != U64 || KindOf[uint]() != Uint || KindOf[uintptr]() != Uintptr {
		t.Error("KindOf mismatch")
	}
	if BitsOf[register]() != 16 || BitsOf[uint64]() != 64 {
		t.Error("BitsOf mismatch")
	}
}

func TestKindNative(t *testing.T) {
	for _, k := range []Kind{U8, U16, U32, U64, Uint, Uintptr} {
		if !k.Native() {
			t.Errorf("%v should be native", k)
		}
	}
	for _, k := range []Kind{U128, KindInvalid, Kind(99)} {
		if k.Native() {
			t.Errorf("%v should not be native", k)
		}
	}
}

func TestMaskFullWidth(t *testing.T) {
	if mask[uint8](8) != 0xFF || mask[uint32](32) != ^uint32(0) || mask[uint64](64) != ^uint64(0) {
		t.Error("full-width mask is not all ones")
	}
	if mask[uint32](1) != 1 || mask[uint32](31) != 0x7FFFFFFF {
		t.Error("partial mask mismatch")
	}
}
