package server

import "sync/atomic"

// stats tracks the counters the /health endpoint reports. Prometheus
// carries the detailed, labeled view; these are the plain totals
// health consumers poll without scraping /metrics.
type stats struct {
	forwarded atomic.Uint64
	failed    atomic.Uint64
}

func (s *stats) recordForwarded() { s.forwarded.Add(1) }
func (s *stats) recordFailed()    { s.failed.Add(1) }

func (s *stats) snapshot() (forwarded, failed uint64) {
	return s.forwarded.Load(), s.failed.Load()
}
