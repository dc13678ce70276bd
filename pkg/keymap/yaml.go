package keymap

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either a plain scalar (shorthand for a spec
// with only a primary label) or a mapping with explicit fields.
func (s *KeySpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*s = KeySpec{}
			return nil
		}
		*s = KeySpec{Label: value.Value}
		return nil
	case yaml.MappingNode:
		type raw KeySpec // avoid recursing into this method
		var r raw
		if err := value.Decode(&r); err != nil {
			return err
		}
		*s = KeySpec(r)
		return nil
	default:
		return fmt.Errorf("%w: key spec must be a string or mapping (line %d)", ErrInvalidLayer, value.Line)
	}
}

// MarshalYAML emits the scalar shorthand when only the primary label
// is set, keeping written keymaps editable.
func (s KeySpec) MarshalYAML() (any, error) {
	if len(s.Secondary) == 0 && s.Style == "" {
		return s.Label, nil
	}
	type raw KeySpec
	return raw(s), nil
}

// Read decodes and validates a keymap descriptor from r.
func Read(r io.Reader) (*Keymap, error) {
	var km Keymap
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&km); err != nil {
		return nil, fmt.Errorf("decode keymap: %w", err)
	}
	if err := km.Validate(); err != nil {
		return nil, err
	}
	return &km, nil
}

// ReadFile decodes a keymap descriptor from the YAML file at path.
func ReadFile(path string) (*Keymap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes the keymap as YAML to w.
func Write(km *Keymap, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(km); err != nil {
		return fmt.Errorf("encode keymap: %w", err)
	}
	return enc.Close()
}

// WriteFile encodes the keymap as YAML to the file at path.
func WriteFile(km *Keymap, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(km, f)
}
