package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/codeatlas/pkg/errors"
)

func TestLoadMissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Language != "" || cfg.Layout != "" || len(cfg.Exclude) != 0 {
		t.Errorf("cfg = %+v, want zero value", cfg)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `language = "python"
layout = "layered"
exclude = ["generated", "migrations"]
output = "atlas.graph.json"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Language != "python" || cfg.Layout != "layered" || cfg.Output != "atlas.graph.json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !slices.Equal(cfg.Exclude, []string{"generated", "migrations"}) {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("language = [oops"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load() expected error for malformed TOML")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}
