package source

import (
	"bytes"
	"encoding/json"

	"github.com/julienandreu/switchboard/internal/config"
)

// ParseValidateHash is the shared pipeline every database-backed source
// funnels through: the stored payload is always a JSON string,
// regardless of which database holds it, so deserialization, structural
// validation, and hashing are implemented exactly once here.
//
// label identifies the source in wrapped errors (e.g. "postgres",
// "redis") — it is NOT the namespace, which callers attach separately
// when they need it for logging.
func ParseValidateHash(raw []byte, label string) (*config.Config, config.Version, error) {
	var cfg config.Config
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, config.Version{}, config.NewSourceError(config.ErrKindParse, label, err)
	}

	cfg = cfg.Defaulted()
	if err := cfg.Validate(); err != nil {
		return nil, config.Version{}, config.NewSourceError(config.ErrKindValidation, label, err)
	}

	return &cfg, config.HashPayload(raw), nil
}
