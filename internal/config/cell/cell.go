// Package cell holds the live config cell: the single point of truth
// for the current, validated, active Config snapshot.
package cell

import (
	"sync/atomic"

	"github.com/julienandreu/switchboard/internal/config"
)

// Cell holds the current Loaded config behind an atomic pointer.
// Readers never block a writer for longer than a pointer load; the
// writer (the Refresher) replaces the whole value in one atomic store,
// so no reader ever observes a half-updated Config.
type Cell struct {
	current atomic.Pointer[config.Loaded]
}

// New creates a Cell pre-populated with the initial Loaded config.
func New(initial *config.Loaded) *Cell {
	c := &Cell{}
	c.current.Store(initial)
	return c
}

// Snapshot returns the currently installed Loaded config. The returned
// pointer is stable and safe to read after the call returns even if a
// concurrent Swap has since replaced the cell's contents — the caller
// holds its own reference, so later snapshots never retroactively
// affect in-flight requests.
func (c *Cell) Snapshot() *config.Loaded {
	return c.current.Load()
}

// Swap installs next as the current Loaded config, observed by readers
// as a single atomic transition.
func (c *Cell) Swap(next *config.Loaded) {
	c.current.Store(next)
}
