// Package config holds user-overridable scan settings, loaded from
// callsight.yaml in the project root.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the project root.
const ConfigFileName = "callsight.yaml"

// Config holds per-project scan settings.
type Config struct {
	Scan ScanConfig `yaml:"scan"`
}

// ScanConfig holds scan-specific settings.
type ScanConfig struct {
	// ProjectName overrides the qualified-name prefix. Default: root
	// directory base name.
	ProjectName string `yaml:"project_name"`

	// SkipDirs are directory names/globs skipped in addition to the
	// built-in set.
	SkipDirs []string `yaml:"skip_dirs"`

	// IncludeDependencies descends into vendored dependency trees.
	// Default: false.
	IncludeDependencies *bool `yaml:"include_dependencies"`

	// ExportedAPI treats public top-level functions as entrypoints, for
	// library projects. Default: false.
	ExportedAPI *bool `yaml:"exported_api"`

	// Cache enables the per-file extraction cache. Default: true.
	Cache *bool `yaml:"cache"`

	// CachePath overrides the cache database location.
	// Default: <root>/.callsight.db.
	CachePath string `yaml:"cache_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{}
}

// Load reads callsight.yaml from the given directory. Returns defaults when
// the file is absent or invalid.
func Load(dir string) *Config {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default()
	}
	return cfg
}

// EffectiveProjectName returns the configured project name, or the root
// directory's base name.
func (c *Config) EffectiveProjectName(root string) string {
	if c.Scan.ProjectName != "" {
		return c.Scan.ProjectName
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

// EffectiveIncludeDependencies returns the dependency-descent setting.
func (c *Config) EffectiveIncludeDependencies() bool {
	if c.Scan.IncludeDependencies != nil {
		return *c.Scan.IncludeDependencies
	}
	return false
}

// EffectiveExportedAPI returns the library-mode entrypoint setting.
func (c *Config) EffectiveExportedAPI() bool {
	if c.Scan.ExportedAPI != nil {
		return *c.Scan.ExportedAPI
	}
	return false
}

// EffectiveCache returns whether the extraction cache is enabled.
func (c *Config) EffectiveCache() bool {
	if c.Scan.Cache != nil {
		return *c.Scan.Cache
	}
	return true
}

// EffectiveCachePath returns the cache database location.
func (c *Config) EffectiveCachePath(root string) string {
	if c.Scan.CachePath != "" {
		return c.Scan.CachePath
	}
	return filepath.Join(root, ".callsight.db")
}
