package presets

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// Decode reads presets declared in YAML:
//
//	presets:
//	  - kind: teachers
//	    label: Liste des enseignants
//	    filename: enseignants
//	    columns:
//	      - field: matricule
//	        header: Matricule
//	        required: true
//	        rules: max=32
func Decode(r io.Reader) ([]Preset, error) {
	var file presetFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	for i := range file.Presets {
		p := &file.Presets[i]
		for j := range p.Columns {
			if p.Columns[j].Type == "" {
				p.Columns[j].Type = FieldText
			}
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Presets, nil
}

// LoadFile decodes the presets of a YAML file and registers them.
// Nothing is registered when any preset is invalid or already known.
func LoadFile(path string) ([]Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()

	loaded, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	seen := make(map[string]bool, len(loaded))
	for _, p := range loaded {
		if _, exists := Get(p.Kind); exists || seen[p.Kind] {
			return nil, fmt.Errorf("%s: preset already registered: %s", path, p.Kind)
		}
		seen[p.Kind] = true
	}
	for _, p := range loaded {
		Register(p)
	}
	return loaded, nil
}
