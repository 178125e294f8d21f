package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	ResetCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SimilarityThreshold != DefaultSimilarityThreshold {
		t.Errorf("SimilarityThreshold = %f", cfg.SimilarityThreshold)
	}
	if cfg.RateLimit != DefaultRateLimit {
		t.Errorf("RateLimit = %f", cfg.RateLimit)
	}
	if !cfg.EnrichmentEnabled {
		t.Error("enrichment should default to enabled")
	}
	if len(cfg.ExportFormats) == 0 {
		t.Error("export formats should have a default")
	}
	if cfg.DatabasePath == "" {
		t.Error("database path should have a default")
	}
}

func TestLoadFromFile(t *testing.T) {
	ResetCache()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `database_path: /tmp/custom.db
similarity_threshold: 0.9
enrichment_enabled: false
rate_limit: 2
mailto: dev@example.org
export_formats: [ris, csv]
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabasePath != "/tmp/custom.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %f", cfg.SimilarityThreshold)
	}
	if cfg.EnrichmentEnabled {
		t.Error("enrichment should be disabled by the file")
	}
	if cfg.RateLimit != 2 {
		t.Errorf("RateLimit = %f", cfg.RateLimit)
	}
	if cfg.Mailto != "dev@example.org" {
		t.Errorf("Mailto = %q", cfg.Mailto)
	}
	if len(cfg.ExportFormats) != 2 || cfg.ExportFormats[0] != "ris" {
		t.Errorf("ExportFormats = %v", cfg.ExportFormats)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	ResetCache()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("export_formats: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("want error for malformed config")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/data/refs.db", filepath.Join(home, "data", "refs.db")},
		{"~", home},
		{"/absolute/path.db", "/absolute/path.db"},
		{"relative.db", "relative.db"},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.in); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
