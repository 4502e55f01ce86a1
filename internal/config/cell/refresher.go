package cell

import (
	"context"
	"log/slog"
	"time"

	"github.com/julienandreu/switchboard/internal/config"
	"github.com/julienandreu/switchboard/internal/config/resolver"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 30 * time.Second

// Refresher polls the resolver's primary source on a fixed interval and
// swaps the Cell's contents when the payload changes. It observes a
// single shutdown signal (ctx cancellation) shared with the server.
type Refresher struct {
	cell     *Cell
	resolver *resolver.Resolver
	interval time.Duration
	logger   *slog.Logger

	// onReload, when set, is invoked after every successful swap — the
	// caller uses it to bump the forwarded/failed-adjacent config.reloads
	// counter without the cell package needing to know about metrics.
	onReload func()
}

// NewRefresher builds a Refresher. interval <= 0 falls back to DefaultInterval.
func NewRefresher(c *Cell, r *resolver.Resolver, interval time.Duration, logger *slog.Logger, onReload func()) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{cell: c, resolver: r, interval: interval, logger: logger, onReload: onReload}
}

// Run blocks, polling until ctx is cancelled. The first tick fires after
// one full interval has elapsed — startup already installed the initial
// config, so an immediate reload attempt would be redundant.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	current := r.cell.Snapshot()

	changed, err := r.resolver.PrimarySource().HasChanged(ctx, current.Version)
	if err != nil {
		r.logger.Error("config change check failed, retaining current config",
			"source", r.resolver.PrimaryName(), "error", err)
		return
	}
	if !changed {
		return
	}

	cfg, version, err := r.resolver.LoadWithFallback(ctx)
	if err != nil {
		r.logger.Error("config reload failed, retaining previous config",
			"source", r.resolver.PrimaryName(), "error", err)
		return
	}

	cfg.Reloads = current.Config.Reloads + 1
	next := &config.Loaded{
		Config:     *cfg,
		Version:    version,
		SourceName: current.SourceName,
		Namespace:  current.Namespace,
		LoadedAt:   timeNow(),
	}
	r.cell.Swap(next)

	r.logger.Info("config reloaded",
		"source", r.resolver.PrimaryName(),
		"version", version.Short(),
		"routes", len(cfg.Routes),
	)

	if r.onReload != nil {
		r.onReload()
	}
}

// timeNow is a seam for tests; production always uses time.Now.
var timeNow = func() time.Time { return time.Now() }
