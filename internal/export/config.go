// Package export implements static-site wiki export (spec.md §4.14):
// rendering generated articles and Tier-A entity pages as a markdown source
// tree with YAML front matter, plus a generated site-config file. Grounded
// on the teacher's internal/export/config.go shape (storage-backed config
// with an error policy and manifest flag); the policy here governs
// per-file write failures during rendering rather than JSONL sync retries,
// since a local markdown tree has no transient-failure surface to retry
// against.
package export

import (
	"context"
	"fmt"

	"github.com/kgraphdb/kgraph/internal/storage"
)

// ErrorPolicy controls how Export reacts to a failure writing one file.
type ErrorPolicy string

const (
	// PolicyStrict aborts the whole export on the first write failure.
	PolicyStrict ErrorPolicy = "strict"
	// PolicyBestEffort records the failure and keeps rendering the rest.
	PolicyBestEffort ErrorPolicy = "best-effort"
)

// IsValid reports whether p is a recognized policy value.
func (p ErrorPolicy) IsValid() bool {
	return p == PolicyStrict || p == PolicyBestEffort
}

const (
	DefaultErrorPolicy   = PolicyBestEffort
	DefaultOutputDir     = ".kg/site"
	DefaultTheme         = "material"
	DefaultWriteManifest = true
)

const (
	ConfigKeyErrorPolicy   = "export.policy"
	ConfigKeyOutputDir     = "export.dir"
	ConfigKeyTheme         = "export.theme"
	ConfigKeyWriteManifest = "export.write_manifest"
)

// ConfigStore is the minimal storage surface LoadConfig needs.
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// Config is the persisted export configuration.
type Config struct {
	Policy        ErrorPolicy
	OutputDir     string
	Theme         string
	WriteManifest bool
}

// LoadConfig reads export configuration from storage, falling back to
// defaults for anything unset.
func LoadConfig(ctx context.Context, store ConfigStore) (*Config, error) {
	cfg := &Config{
		Policy:        DefaultErrorPolicy,
		OutputDir:     DefaultOutputDir,
		Theme:         DefaultTheme,
		WriteManifest: DefaultWriteManifest,
	}

	if val, err := store.GetConfig(ctx, ConfigKeyErrorPolicy); err == nil && val != "" {
		policy := ErrorPolicy(val)
		if policy.IsValid() {
			cfg.Policy = policy
		}
	}
	if val, err := store.GetConfig(ctx, ConfigKeyOutputDir); err == nil && val != "" {
		cfg.OutputDir = val
	}
	if val, err := store.GetConfig(ctx, ConfigKeyTheme); err == nil && val != "" {
		cfg.Theme = val
	}
	if val, err := store.GetConfig(ctx, ConfigKeyWriteManifest); err == nil {
		cfg.WriteManifest = val == "true"
	}

	return cfg, nil
}

// SetPolicy sets the export error policy.
func SetPolicy(ctx context.Context, store storage.Storage, policy ErrorPolicy) error {
	if !policy.IsValid() {
		return fmt.Errorf("invalid error policy: %s (valid: strict, best-effort)", policy)
	}
	return store.SetConfig(ctx, ConfigKeyErrorPolicy, string(policy))
}

// SetOutputDir sets the default export output directory.
func SetOutputDir(ctx context.Context, store storage.Storage, dir string) error {
	if dir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	return store.SetConfig(ctx, ConfigKeyOutputDir, dir)
}

// SetTheme sets the site-config theme name.
func SetTheme(ctx context.Context, store storage.Storage, theme string) error {
	if theme == "" {
		return fmt.Errorf("theme must not be empty")
	}
	return store.SetConfig(ctx, ConfigKeyTheme, theme)
}

// SetWriteManifest sets whether Export writes a manifest.json listing the
// files it rendered.
func SetWriteManifest(ctx context.Context, store storage.Storage, write bool) error {
	val := "false"
	if write {
		val = "true"
	}
	return store.SetConfig(ctx, ConfigKeyWriteManifest, val)
}
