// Package config reads the user-editable settings record. Only
// loading is handled here; merging and persistence belong to the
// editor side.
package config

import (
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Settings are the knobs the core consumes. Field defaults come from
// Default; a settings file only needs the keys it overrides.
type Settings struct {
	// DefaultNamespace applies to resource references without one.
	DefaultNamespace string `toml:"default-namespace"`

	// IgnoredDirs are directory names excluded from scanning and
	// existence checks.
	IgnoredDirs []string `toml:"ignored-dirs"`

	// CheckExistence enables stat-based existence diagnostics for
	// referenced functions.
	CheckExistence bool `toml:"check-existence"`

	// MaxFileSize is the per-file scan size cap in bytes.
	MaxFileSize int64 `toml:"max-file-size"`

	// MaxDocuments and MaxLinesPerDocument bound the line cache.
	MaxDocuments        int `toml:"max-documents"`
	MaxLinesPerDocument int `toml:"max-lines-per-document"`

	// CacheTTLSeconds is the line-cache entry expiry backstop.
	CacheTTLSeconds int `toml:"cache-ttl-seconds"`
}

func Default() Settings {
	return Settings{
		DefaultNamespace:    "minecraft",
		IgnoredDirs:         []string{".git"},
		CheckExistence:      true,
		MaxFileSize:         1 << 20,
		MaxDocuments:        32,
		MaxLinesPerDocument: 2048,
		CacheTTLSeconds:     300,
	}
}

// CacheTTL returns the TTL as a duration.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// Load reads settings from path over the defaults. A missing file is
// not an error; every other failure is.
func Load(path string) (Settings, error) {
	settings := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, errors.Wrapf(err, "reading %q", path)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Default(), errors.Wrapf(err, "parsing %q", path)
	}
	return settings, nil
}
