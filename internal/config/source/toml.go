package source

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"

	"github.com/julienandreu/switchboard/internal/config"
)

// NewTOMLSource builds a Source backed by a TOML file at path.
func NewTOMLSource(path string) Source {
	return &fileSource{path: path, name: "toml", unmarshal: unmarshalTOML}
}

func unmarshalTOML(raw []byte, cfg *config.Config) error {
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}
