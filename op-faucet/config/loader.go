package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlLoader reads faucet settings from a YAML file. Keys the file does not
// set keep their current value; unknown keys are an error.
type YamlLoader struct {
	Path string
}

func (l *YamlLoader) Load(cfg *Config) error {
	f, err := os.Open(l.Path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode config file %q: %w", l.Path, err)
	}
	return nil
}
