package cell

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julienandreu/switchboard/internal/config"
	"github.com/julienandreu/switchboard/internal/config/resolver"
)

type stubSource struct {
	name    string
	cfg     *config.Config
	version config.Version
	changed bool
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Load(context.Context) (*config.Config, config.Version, error) {
	return s.cfg, s.version, nil
}
func (s *stubSource) HasChanged(context.Context, config.Version) (bool, error) {
	return s.changed, nil
}

func TestRefresher_SwapsOnChange(t *testing.T) {
	initial := &config.Loaded{Version: config.Version{Hash: "v1"}}
	c := New(initial)

	src := &stubSource{
		name:    "yaml",
		cfg:     &config.Config{Routes: []config.Route{{Path: "/b"}}},
		version: config.Version{Hash: "v2"},
		changed: true,
	}
	r := resolver.New(src, nil, nil)

	var reloads int32
	refresher := NewRefresher(c, r, 5*time.Millisecond, nil, func() { atomic.AddInt32(&reloads, 1) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	refresher.Run(ctx)

	snap := c.Snapshot()
	if snap.Version.Hash != "v2" {
		t.Fatalf("expected swap to v2, got %s", snap.Version.Hash)
	}
	if atomic.LoadInt32(&reloads) == 0 {
		t.Fatal("expected onReload to fire at least once")
	}
}

func TestRefresher_NoSwapWhenUnchanged(t *testing.T) {
	initial := &config.Loaded{Version: config.Version{Hash: "v1"}}
	c := New(initial)

	src := &stubSource{name: "yaml", changed: false}
	r := resolver.New(src, nil, nil)
	refresher := NewRefresher(c, r, 5*time.Millisecond, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	refresher.Run(ctx)

	if c.Snapshot().Version.Hash != "v1" {
		t.Fatal("expected no swap when source reports unchanged")
	}
}
