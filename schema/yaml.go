package schema

import (
	"fmt"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
)

type yamlFile struct {
	Package   string         `yaml:"package"`
	Bitfields []yamlBitfield `yaml:"bitfields"`
}

type yamlBitfield struct {
	Name   string      `yaml:"name"`
	Base   string      `yaml:"base"`
	Doc    string      `yaml:"doc"`
	Fields []yamlField `yaml:"fields"`
}

// yamlField accepts both `- field1: 3` and `- {name: field1, bits: 3}`.
type yamlField struct {
	Name string
	Bits int
}

func (f *yamlField) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var m yaml.MapSlice
	if err := unmarshal(&m); err != nil {
		return err
	}

	if len(m) == 1 {
		if key, ok := m[0].Key.(string); ok && key != "bits" && key != "name" {
			bits, ok := m[0].Value.(int)
			if !ok {
				return fmt.Errorf("field %q: width must be an integer, got %v", key, m[0].Value)
			}
			f.Name = key
			f.Bits = bits
			return nil
		}
	}

	var full struct {
		Name string `yaml:"name"`
		Bits int    `yaml:"bits"`
	}
	if err := unmarshal(&full); err != nil {
		return err
	}
	if full.Name == "" {
		return fmt.Errorf("field entry %v has no name", m)
	}
	f.Name = full.Name
	f.Bits = full.Bits
	return nil
}

// ParseYAML decodes a YAML definition file. Unknown keys are rejected.
func ParseYAML(name string, data []byte) (*File, error) {
	var raw yamlFile
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return nil, errors.ParseFailed(name, err)
	}

	file := &File{Package: raw.Package}
	var errs error
	for _, b := range raw.Bitfields {
		if b.Name == "" {
			errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseParse, []string{name}, "bitfield without a name"))
			continue
		}
		kind, err := bitfield.ParseKind(b.Base)
		if err != nil {
			errs = multierr.Append(errs, errors.New(errors.PhaseParse, errors.KindUnsupported).
				Path(b.Name).
				Base(b.Base).
				Detail("not a supported unsigned base type").
				Build())
			continue
		}
		def := Definition{Name: b.Name, Doc: b.Doc, Base: kind}
		for _, f := range b.Fields {
			def.Decls = append(def.Decls, bitfield.F(f.Name, f.Bits))
		}
		file.Definitions = append(file.Definitions, def)
	}
	if errs != nil {
		return nil, errs
	}
	return file, nil
}
