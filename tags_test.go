package bitfield

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/bitfield/errors"
)

type controlBits struct {
	Mode    uint8  `bitfield:"bits:3"`
	Channel uint16 `bitfield:"bits:9,name:chan"`
	_       uint8  `bitfield:"bits:6"`
	Enabled bool   `bitfield:"bits:1"`
	Note    string `bitfield:"-"`
}

func TestDefineStruct(t *testing.T) {
	l, err := DefineStruct[uint32](controlBits{})
	if err != nil {
		t.Fatalf("DefineStruct: %v", err)
	}
	if l.Name() != "controlBits" {
		t.Errorf("name: got %q", l.Name())
	}

	var got []string
	for _, f := range l.Fields() {
		got = append(got, f.Name())
	}
	if diff := cmp.Diff([]string{"Mode", "chan", "Enabled"}, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if l.MustField("Enabled").Offset() != 18 {
		t.Errorf("Enabled offset: got %d, want 18", l.MustField("Enabled").Offset())
	}

	again, err := DefineStruct[uint32](&controlBits{})
	if err != nil || again != l {
		t.Error("second DefineStruct should return the cached layout")
	}
	other, err := DefineStruct[uint64](controlBits{})
	if err != nil || other == nil || other.Kind() != U64 {
		t.Errorf("different base should get its own layout: %v", err)
	}
}

func TestPackUnpack(t *testing.T) {
	l, err := DefineStruct[uint32](controlBits{})
	if err != nil {
		t.Fatalf("DefineStruct: %v", err)
	}

	v, err := l.Pack(controlBits{Mode: 1, Channel: 7})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if v != 57 {
		t.Errorf("Pack: got %d, want 57", v)
	}

	var out controlBits
	if err := l.Unpack(12345|1<<18, &out); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	want := controlBits{Mode: 1, Channel: 7, Enabled: true}
	if out != want {
		t.Errorf("Unpack: got %+v, want %+v", out, want)
	}

	// Channel is 16 bits wide in Go but 9 bits in the layout.
	v, err = l.Pack(&controlBits{Channel: 0xFFFF})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if l.MustField("chan").Get(v) != 0x1FF || l.MustField("Mode").Get(v) != 0 {
		t.Errorf("Pack truncation: got %#x", v)
	}
}

func TestPackErrors(t *testing.T) {
	l, err := DefineStruct[uint32](controlBits{})
	if err != nil {
		t.Fatalf("DefineStruct: %v", err)
	}
	if _, err := l.Pack(struct{ A int }{}); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLookup, Kind: errors.KindTypeMismatch}) {
		t.Errorf("Pack wrong type: %v", err)
	}
	if err := l.Unpack(0, controlBits{}); err == nil {
		t.Error("Unpack into a non-pointer should fail")
	}
	if err := l.Unpack(0, (*controlBits)(nil)); err == nil {
		t.Error("Unpack into nil should fail")
	}
	if _, err := l.Pack(nil); err == nil {
		t.Error("Pack(nil) should fail")
	}

	plain := MustDefine[uint32]("Plain", F("a", 1))
	if _, err := plain.Pack(controlBits{}); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLookup, Kind: errors.KindUnsupported}) {
		t.Errorf("Pack on a non-struct layout: %v", err)
	}
}

func TestDefineStructErrors(t *testing.T) {
	type untagged struct {
		A uint8
	}
	type tooNarrow struct {
		A uint8 `bitfield:"bits:9"`
	}
	type wideBool struct {
		A bool `bitfield:"bits:2"`
	}
	type overflow struct {
		A uint8 `bitfield:"bits:8"`
		B uint8 `bitfield:"bits:1"`
	}
	type badSpec struct {
		A uint8 `bitfield:"bits:x"`
	}
	type unknownSpec struct {
		A uint8 `bitfield:"bits:1,zlib"`
	}
	type zero struct {
		A uint8 `bitfield:"bits:0"`
	}
	type unexported struct {
		a uint8 `bitfield:"bits:1"`
	}
	type floaty struct {
		A float32 `bitfield:"bits:4"`
	}

	tests := []struct {
		name  string
		proto any
		kind  errors.Kind
	}{
		{"untagged", untagged{}, errors.KindInvalidInput},
		{"too_narrow", tooNarrow{}, errors.KindTypeMismatch},
		{"wide_bool", wideBool{}, errors.KindTypeMismatch},
		{"overflow", overflow{}, errors.KindOverflow},
		{"bad_spec", badSpec{}, errors.KindInvalidInput},
		{"unknown_spec", unknownSpec{}, errors.KindInvalidInput},
		{"zero", zero{}, errors.KindZeroWidth},
		{"unexported", unexported{}, errors.KindInvalidInput},
		{"float", floaty{}, errors.KindTypeMismatch},
		{"not_struct", 42, errors.KindTypeMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DefineStruct[uint8](tc.proto)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDefine, Kind: tc.kind}) {
				t.Errorf("got %v, want %s", err, tc.kind)
			}
		})
	}

	if _, err := DefineStruct[uint8](nil); err == nil {
		t.Error("nil prototype should fail")
	}
}
