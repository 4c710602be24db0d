package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads and parses a Parameters file, starting from Defaults() so a
// partial file only overrides what it sets.
func Load(path string) (Parameters, error) {
	p := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, errors.Wrapf(err, "reading config file %q", path)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, errors.Wrapf(err, "parsing config file %q", path)
	}
	if err := p.Validate(); err != nil {
		return p, errors.Wrap(err, "invalid configuration")
	}
	return p, nil
}
