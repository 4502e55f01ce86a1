package config

import "time"

// Loaded is the live config cell's payload: a Config snapshot plus the
// bookkeeping needed by the health endpoint and the refresher.
type Loaded struct {
	Config     Config
	Version    Version
	SourceName string
	Namespace  string
	LoadedAt   time.Time
}

// RouteCount and TargetCount back the /health wire contract's
// config.routes / config.targets fields.
func (l *Loaded) RouteCount() int { return len(l.Config.Routes) }

func (l *Loaded) TargetCount() int {
	n := 0
	for _, r := range l.Config.Routes {
		n += len(r.Targets)
	}
	return n
}
