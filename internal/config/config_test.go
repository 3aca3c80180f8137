package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(t.TempDir())

	if got := cfg.EffectiveProjectName("/tmp/billing"); got != "billing" {
		t.Errorf("project name = %q", got)
	}
	if cfg.EffectiveIncludeDependencies() {
		t.Error("include_dependencies must default to false")
	}
	if cfg.EffectiveExportedAPI() {
		t.Error("exported_api must default to false")
	}
	if !cfg.EffectiveCache() {
		t.Error("cache must default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
scan:
  project_name: billing-core
  skip_dirs: [generated, "*.gen"]
  include_dependencies: true
  exported_api: true
  cache: false
  cache_path: /var/cache/callsight.db
`)

	cfg := Load(dir)
	if got := cfg.EffectiveProjectName(dir); got != "billing-core" {
		t.Errorf("project name = %q", got)
	}
	if len(cfg.Scan.SkipDirs) != 2 {
		t.Errorf("skip_dirs = %v", cfg.Scan.SkipDirs)
	}
	if !cfg.EffectiveIncludeDependencies() {
		t.Error("include_dependencies override lost")
	}
	if !cfg.EffectiveExportedAPI() {
		t.Error("exported_api override lost")
	}
	if cfg.EffectiveCache() {
		t.Error("cache: false override lost")
	}
	if got := cfg.EffectiveCachePath(dir); got != "/var/cache/callsight.db" {
		t.Errorf("cache path = %q", got)
	}
}

func TestLoadInvalidYAMLUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "scan: [not: a: mapping")

	cfg := Load(dir)
	if !cfg.EffectiveCache() || cfg.Scan.ProjectName != "" {
		t.Error("invalid YAML must fall back to defaults")
	}
}

func TestEffectiveCachePathDefault(t *testing.T) {
	cfg := Default()
	want := filepath.Join("/some/root", ".callsight.db")
	if got := cfg.EffectiveCachePath("/some/root"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}
