package source

import (
	"bytes"
	"encoding/json"

	"github.com/julienandreu/switchboard/internal/config"
)

// NewJSONSource builds a Source backed by a JSON file at path.
func NewJSONSource(path string) Source {
	return &fileSource{path: path, name: "json", unmarshal: unmarshalJSON}
}

func unmarshalJSON(raw []byte, cfg *config.Config) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}
