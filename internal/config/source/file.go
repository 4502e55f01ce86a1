package source

import (
	"context"
	"os"

	"github.com/julienandreu/switchboard/internal/config"
)

// fileSource is the shared shape of the three file-backed sources; only
// the unmarshal function differs between YAML, JSON, and TOML.
type fileSource struct {
	path      string
	name      string
	unmarshal func([]byte, *config.Config) error
}

func (s *fileSource) Name() string { return s.name }

func (s *fileSource) readFile() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, config.NewSourceError(config.ErrKindNotFound, s.name, err)
		}
		return nil, config.NewSourceError(config.ErrKindIO, s.name, err)
	}
	return raw, nil
}

func (s *fileSource) Load(_ context.Context) (*config.Config, config.Version, error) {
	raw, err := s.readFile()
	if err != nil {
		return nil, config.Version{}, err
	}

	var cfg config.Config
	if err := s.unmarshal(raw, &cfg); err != nil {
		return nil, config.Version{}, config.NewSourceError(config.ErrKindParse, s.name, err)
	}

	cfg = cfg.Defaulted()
	if err := cfg.Validate(); err != nil {
		return nil, config.Version{}, config.NewSourceError(config.ErrKindValidation, s.name, err)
	}

	return &cfg, config.HashPayload(raw), nil
}

func (s *fileSource) HasChanged(_ context.Context, current config.Version) (bool, error) {
	raw, err := s.readFile()
	if err != nil {
		return false, err
	}
	return !config.HashPayload(raw).Equal(current), nil
}
