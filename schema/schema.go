package schema

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/internal/layout"
)

// Definition is one bitfield declared in a definition file.
type Definition struct {
	Name  string
	Doc   string
	Decls []bitfield.Decl
	Base  bitfield.Kind
	Line  int // 1-based source line, 0 when unknown
}

// Resolve computes the definition's field offsets.
func (d Definition) Resolve() (*layout.Result, error) {
	if d.Base == bitfield.KindInvalid {
		return nil, errors.New(errors.PhaseDefine, errors.KindUnsupported).
			Path(d.Name).
			Detail("no base type").
			Build()
	}
	return layout.Resolve(layout.Target{Name: d.Name, Base: d.Base.String(), Capacity: d.Base.Bits()}, d.Decls)
}

// Layout builds a layout carried in uint64. 128-bit definitions must use
// Layout128 instead.
func (d Definition) Layout() (*bitfield.Layout[uint64], error) {
	return bitfield.DefineAs[uint64](d.Name, d.Base, d.Decls...)
}

// Layout128 builds a layout over Uint128.
func (d Definition) Layout128() (*bitfield.Layout128, error) {
	if d.Base != bitfield.U128 {
		return nil, errors.TypeMismatch(errors.PhaseDefine, []string{d.Name}, "bitfield.Uint128", d.Base.String())
	}
	return bitfield.Define128(d.Name, d.Decls...)
}

// File is a parsed definition file.
type File struct {
	Package     string
	Definitions []Definition
}

// Lookup returns the definition with the given name.
func (f *File) Lookup(name string) (Definition, bool) {
	for _, d := range f.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Names returns definition names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Definitions))
	for i, d := range f.Definitions {
		names[i] = d.Name
	}
	return names
}

// Validate resolves every definition and reports all failures together.
func (f *File) Validate() error {
	var errs error
	seen := make(map[string]bool, len(f.Definitions))
	for _, d := range f.Definitions {
		if seen[d.Name] {
			errs = multierr.Append(errs, errors.New(errors.PhaseParse, errors.KindRegistration).
				Path(d.Name).
				Detail("bitfield defined more than once").
				Build())
			continue
		}
		seen[d.Name] = true
		if _, err := d.Resolve(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Register defines every native-width definition in r. 128-bit definitions
// cannot be carried by a registry and are reported as errors.
func (f *File) Register(r *bitfield.Registry) error {
	var errs error
	for _, d := range f.Definitions {
		if _, err := r.Define(d.Name, d.Base, d.Decls...); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Parse decodes data as YAML when name ends in .yaml or .yml and as the
// bitfield DSL otherwise.
func Parse(name string, data []byte) (*File, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(name, data)
	default:
		return ParseDSL(name, data)
	}
}

// Load reads and parses a definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	return Parse(path, data)
}
