package framemap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteFile writes a sequence table to a YAML file.
func WriteFile(seq *Sequence, path string) error {
	data, err := yaml.Marshal(seq)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadFile reads a sequence table from a YAML file and validates it.
func LoadFile(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seq Sequence
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("parse sequence %s: %w", path, err)
	}
	if seq.Prefix == "" {
		seq.Prefix = DefaultPrefix
	}
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sequence %s: %w", path, err)
	}

	return &seq, nil
}
