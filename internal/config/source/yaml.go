package source

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/julienandreu/switchboard/internal/config"
)

// NewYAMLSource builds a Source backed by a YAML file at path.
func NewYAMLSource(path string) Source {
	return &fileSource{path: path, name: "yaml", unmarshal: unmarshalYAML}
}

func unmarshalYAML(raw []byte, cfg *config.Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}
