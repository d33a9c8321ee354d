// Package config loads layered configuration for the knowledge graph CLI,
// following the teacher's internal/config/config.go viper-singleton pattern:
// project config file found by walking up from the working directory, then
// user config dir, then home dir, with KG_-prefixed environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton. Should be called
// once at application startup, before any Get* call.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	// 1. Walk up from CWD looking for .kg/config.yaml, so commands work from
	// subdirectories of the project root.
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".kg", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	// 2. User config directory (~/.config/kg/config.yaml).
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "kg", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// 3. Home directory (~/.kg/config.yaml).
	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, ".kg", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	v.SetEnvPrefix("KG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("json", false)
	v.SetDefault("db", "")
	v.SetDefault("actor", "")

	v.SetDefault("llm.cli", "claude")
	v.SetDefault("llm.model", "sonnet")
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("cache.documents.capacity", 500)
	v.SetDefault("cache.documents.ttl", "5m")
	v.SetDefault("cache.tags.capacity", 200)
	v.SetDefault("cache.tags.ttl", "10m")
	v.SetDefault("cache.search.capacity", 300)
	v.SetDefault("cache.search.ttl", "2m")
	v.SetDefault("cache.aggregations.capacity", 100)
	v.SetDefault("cache.aggregations.ttl", "5m")

	v.SetDefault("export.dir", ".kg/site")
	v.SetDefault("audience", "team")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return nil
}

func ensure() *viper.Viper {
	if v == nil {
		v = viper.New()
	}
	return v
}

// BindFlag makes a persistent CLI flag override the config value at key,
// when the flag was explicitly set. Called once per global flag from
// cmd/kg's root command after Initialize.
func BindFlag(key string, flag *pflag.Flag) error {
	return ensure().BindPFlag(key, flag)
}

// DatabasePath resolves the configured database path, defaulting to
// .kg/graph.db under the current directory.
func DatabasePath() string {
	if p := ensure().GetString("db"); p != "" {
		return p
	}
	return filepath.Join(".kg", "graph.db")
}

// JSONOutput reports whether structured JSON output was requested.
func JSONOutput() bool {
	return ensure().GetBool("json")
}

// Actor returns the configured actor name for provenance fields.
func Actor() string {
	if a := ensure().GetString("actor"); a != "" {
		return a
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// LLMCLI returns the configured LLM CLI executable name or path.
func LLMCLI() string {
	return ensure().GetString("llm.cli")
}

// LLMModel returns the configured default model shorthand.
func LLMModel() string {
	s := ensure().GetString("llm.model")
	if s == "" {
		return "sonnet"
	}
	return s
}

// LLMTimeout returns the configured per-call subprocess timeout.
func LLMTimeout() time.Duration {
	s := ensure().GetString("llm.timeout")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// CacheSpec describes one named cache's capacity and TTL.
type CacheSpec struct {
	Capacity int
	TTL      time.Duration
}

// Caches returns the configured named-cache specs for the cache manager.
func Caches() map[string]CacheSpec {
	names := []string{"documents", "tags", "search", "aggregations"}
	out := make(map[string]CacheSpec, len(names))
	for _, name := range names {
		capacity := ensure().GetInt("cache." + name + ".capacity")
		ttlStr := ensure().GetString("cache." + name + ".ttl")
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			ttl = 5 * time.Minute
		}
		if capacity <= 0 {
			capacity = 100
		}
		out[name] = CacheSpec{Capacity: capacity, TTL: ttl}
	}
	return out
}

// ExportDir returns the configured static-site export directory.
func ExportDir() string {
	d := ensure().GetString("export.dir")
	if d == "" {
		return ".kg/site"
	}
	return d
}

// Audience returns the configured default privacy audience mode.
func Audience() string {
	a := ensure().GetString("audience")
	if a == "" {
		return "team"
	}
	return a
}
