// Package layout resolves ordered bitfield declarations into bit offsets.
//
// Fields are packed from the least significant bit upward in declaration
// order. Skip regions (declarations named "_") consume offset space but
// produce no field. Resolution fails when a width is not positive, a name
// repeats or is not an identifier, or the declarations need more bits than
// the base provides.
//
// # Usage
//
//	res, err := layout.Resolve(layout.Target{Name: "Status", Base: "u32", Capacity: 32}, decls)
//	// res.Fields, res.Used available
//
// This package is internal to the bitfield module.
package layout
