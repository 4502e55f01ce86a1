package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const yamlDoc = `
defaults:
  timeout_ms: 1000
routes:
  - path: /a
    methods: ["GET"]
    targets:
      - url: http://localhost:9000/a
        primary: true
`

const jsonDoc = `{
  "defaults": {"timeout_ms": 1000},
  "routes": [
    {"path": "/a", "methods": ["GET"], "targets": [{"url": "http://localhost:9000/a", "primary": true}]}
  ]
}`

const tomlDoc = `
[defaults]
timeout_ms = 1000

[[routes]]
path = "/a"
methods = ["GET"]

[[routes.targets]]
url = "http://localhost:9000/a"
primary = true
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLSource(t *testing.T) {
	path := writeTemp(t, "config.yaml", yamlDoc)
	s := NewYAMLSource(path)
	cfg, v1, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Routes) != 1 || cfg.Routes[0].Path != "/a" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	changed, err := s.HasChanged(context.Background(), v1)
	if err != nil {
		t.Fatalf("has_changed: %v", err)
	}
	if changed {
		t.Fatal("expected no change for identical payload")
	}
}

func TestJSONSource(t *testing.T) {
	path := writeTemp(t, "config.json", jsonDoc)
	s := NewJSONSource(path)
	cfg, _, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Routes[0].Targets[0].Primary != true {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestTOMLSource(t *testing.T) {
	path := writeTemp(t, "config.toml", tomlDoc)
	s := NewTOMLSource(path)
	cfg, _, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Routes[0].Path != "/a" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestFileSource_NotFound(t *testing.T) {
	s := NewYAMLSource(filepath.Join(t.TempDir(), "missing.yaml"))
	_, _, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestFileSource_UnknownKeyRejected(t *testing.T) {
	path := writeTemp(t, "config.yaml", yamlDoc+"\nbogus_top_level: true\n")
	s := NewYAMLSource(path)
	_, _, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected parse error for unknown top-level key")
	}
}

func TestFileSource_HasChangedAfterEdit(t *testing.T) {
	path := writeTemp(t, "config.yaml", yamlDoc)
	s := NewYAMLSource(path)
	_, v1, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(yamlDoc+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err := s.HasChanged(context.Background(), v1)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected change to be detected after edit")
	}
}
