// Package resolver orders a primary and an optional fallback Config
// Source.
package resolver

import (
	"context"
	"log/slog"

	"github.com/julienandreu/switchboard/internal/config"
	"github.com/julienandreu/switchboard/internal/config/source"
)

// Resolver loads from a primary Source, falling back to a secondary one
// on failure. File-on-disk is the natural fallback for a remote backend
// that is temporarily unavailable.
type Resolver struct {
	primary  source.Source
	fallback source.Source
	logger   *slog.Logger
}

// New builds a Resolver. fallback may be nil.
func New(primary, fallback source.Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{primary: primary, fallback: fallback, logger: logger}
}

// PrimarySource returns the primary Source, used by the refresher's
// change-detection poll and the health endpoint.
func (r *Resolver) PrimarySource() source.Source { return r.primary }

// PrimaryName returns the primary Source's stable name.
func (r *Resolver) PrimaryName() string { return r.primary.Name() }

// LoadWithFallback calls primary.Load(); on failure, if a fallback is
// configured, it logs the primary failure and tries the fallback. If
// both fail, the primary's error is returned — it best describes the
// site's intended operational source of truth.
func (r *Resolver) LoadWithFallback(ctx context.Context) (*config.Config, config.Version, error) {
	cfg, v, err := r.primary.Load(ctx)
	if err == nil {
		return cfg, v, nil
	}

	if r.fallback == nil {
		return nil, config.Version{}, err
	}

	r.logger.Warn("primary config source failed, trying fallback",
		"primary", r.primary.Name(),
		"fallback", r.fallback.Name(),
		"error", err,
	)

	cfg, v, fbErr := r.fallback.Load(ctx)
	if fbErr != nil {
		return nil, config.Version{}, err
	}
	return cfg, v, nil
}
