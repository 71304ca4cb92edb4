// Package config loads project-level settings from a .codeatlas.toml file at
// the analysis root. CLI flags take precedence over file values; the file
// exists so per-repository choices (language override, excluded directories,
// preferred layout) don't have to be repeated on every invocation.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/codeatlas/pkg/errors"
)

// FileName is the per-project configuration file looked up at the root.
const FileName = ".codeatlas.toml"

// Config holds project-level analysis settings. The zero value is a valid
// configuration meaning "detect everything, exclude nothing extra".
type Config struct {
	// Language forces a parser adapter instead of auto-detection.
	Language string `toml:"language"`
	// Layout selects the default layout engine ("pack" or "layered").
	Layout string `toml:"layout"`
	// Exclude lists extra directory names to skip during scanning,
	// in addition to the built-in hidden/build directory rules.
	Exclude []string `toml:"exclude"`
	// Output is the default path for the exported graph document.
	Output string `toml:"output"`
	// Cache configures the result cache.
	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects and parameterizes the cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none". Empty means "file".
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Empty means a default under the
	// user cache dir.
	Dir string `toml:"dir"`
	// RedisURL is the redis backend's connection string.
	RedisURL string `toml:"redis_url"`
}

// Load reads the configuration file under root. A missing file yields the
// zero Config and no error; a malformed file is an ErrCodeInvalidConfig.
func Load(root string) (Config, error) {
	var cfg Config
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return cfg, nil
}
