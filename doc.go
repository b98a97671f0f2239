// Package bitfield provides C-style packed bitfields over fixed-width
// unsigned integers.
//
// A bitfield is a named set of contiguous bit ranges inside one base value.
// Each range is read and written independently, while the aggregate stays an
// ordinary integer with no size overhead: converting it to its base type and
// back is a no-op, including bits that belong to no field.
//
// # Architecture Overview
//
//	bitfield/            Root package: base types, layouts, field accessors
//	├── internal/layout/ Layout resolver: declarations to bit offsets
//	├── internal/gen/    Go source generator for typed accessors
//	├── schema/          Definition files (YAML and the bitfield DSL)
//	├── witflags/        WIT flags types to and from bitfield definitions
//	├── wasmhost/        wazero host module exposing layouts to guests
//	├── errors/          Structured error types
//	└── cmd/bitfield/    generate, check, inspect, exports and run commands
//
// # Quick Start
//
// Declare a layout once, usually as a package-level variable:
//
//	type Status uint32
//
//	var statusLayout = bitfield.MustDefine[Status]("Status",
//	    bitfield.F("field1", 3),  // bits 0..2
//	    bitfield.F("field2", 9),  // bits 3..11
//	    bitfield.Skip(6),         // bits 12..17, reserved
//	    bitfield.F("field3", 1),  // bit 18
//	)
//
//	var field1 = statusLayout.MustField("field1")
//
//	s := statusLayout.New(12345)
//	field1.Get(s)   // 1
//	field1.Set(&s, 0)
//	uint32(s)       // 12344
//
// Fields are packed from the least significant bit upward in declaration
// order. Definition fails, and no layout is produced, when a width is not
// positive, a name repeats, or the fields need more bits than the base has.
//
// # Field Access
//
// A Field is a position handle shared by every aggregate of its layout.
// Get and With are pure; Set writes through a pointer. Of binds a field to
// one aggregate and returns an Accessor that must not outlive it:
//
//	mode := field1.Of(&s)
//	mode.Set(5)
//	mode.Get() // 5
//
// Set never fails: bits of the new value beyond the field width are
// truncated. Callers needing range checks must do them before Set.
//
// # Base Types
//
// Layouts can be defined over uint8, uint16, uint32, uint64, uint and
// uintptr (and named types over them). The 128-bit base uses Uint128 with
// Define128. DefineAs carries a narrower declared base in a wider Go type.
//
// # Thread Safety
//
// Layouts and fields are immutable and safe for concurrent use. Aggregates
// are plain values; concurrent writes to one aggregate need external
// synchronization, exactly as for any shared integer.
package bitfield
