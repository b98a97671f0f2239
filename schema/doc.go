// Package schema loads bitfield definitions from files.
//
// Two formats are accepted. YAML files (.yaml, .yml) list bitfields under a
// top-level key:
//
//	package: regs
//	bitfields:
//	  - name: Status
//	    base: u32
//	    doc: Controller status register.
//	    fields:
//	      - field1: 3
//	      - field2: 9
//	      - _: 6
//	      - {name: field3, bits: 1}
//
// Any other file is read as the compact DSL described on ParseDSL.
//
// Parsing only checks syntax and base type names. Validate resolves every
// definition and reports all layout errors at once; Register loads a file
// into a bitfield.Registry.
package schema
