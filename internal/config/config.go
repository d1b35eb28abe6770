package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given. It may be absent.
const DefaultFile = "baseliner.yaml"

// DefaultCachePath is the cache location relative to the scanned root.
const DefaultCachePath = ".baseliner-cache.json"

// fingerprintFormat is bumped when the meaning of a fingerprinted field changes.
const fingerprintFormat = 1

type Config struct {
	// Targets are browserslist queries. Empty means look for project targets.
	Targets []string `yaml:"targets"`

	Cache struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"cache"`

	Features struct {
		Disabled       []string `yaml:"disabled"`
		RefineBaseline bool     `yaml:"refine_baseline"`
	} `yaml:"features"`

	// UnsupportedThreshold downgrades needs-guard findings whose unsupported
	// share is at or below it. Nil disables the downgrade.
	UnsupportedThreshold *float64 `yaml:"unsupported_threshold"`

	Data struct {
		Caniuse     string `yaml:"caniuse"`
		WebFeatures string `yaml:"web_features"`
	} `yaml:"data"`

	Scan struct {
		Ignore    []string `yaml:"ignore"`
		BatchSize int      `yaml:"batch_size"`

		// Gitignore skips paths matched by .gitignore files under the root.
		Gitignore bool `yaml:"gitignore"`
	} `yaml:"scan"`

	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Cache.Enabled = true
	cfg.Cache.Path = DefaultCachePath
	cfg.Scan.Gitignore = true
	return cfg
}

// LoadConfig reads path over the defaults, then applies .env and environment
// overrides. An empty path reads DefaultFile if it exists.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	optional := path == ""
	if optional {
		path = DefaultFile
	}
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// 3. Override with Environment Variables if present
	if targets := os.Getenv("BASELINER_TARGETS"); targets != "" {
		cfg.Targets = splitList(targets)
	}
	if cachePath := os.Getenv("BASELINER_CACHE"); cachePath != "" {
		cfg.Cache.Path = cachePath
	}
	if debug := os.Getenv("BASELINER_DEBUG"); debug != "" {
		v, err := strconv.ParseBool(debug)
		if err != nil {
			return nil, fmt.Errorf("invalid BASELINER_DEBUG %q: %w", debug, err)
		}
		cfg.Debug = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no scan can use.
func (c *Config) Validate() error {
	if t := c.UnsupportedThreshold; t != nil && (*t < 0 || *t > 100) {
		return fmt.Errorf("unsupported_threshold must be within 0..100, got %v", *t)
	}
	if c.Scan.BatchSize < 0 {
		return fmt.Errorf("scan.batch_size must not be negative, got %d", c.Scan.BatchSize)
	}
	return nil
}

// Fingerprint identifies the settings that change what the engine reports for
// identical input. Cached findings from a different fingerprint are discarded.
func (c *Config) Fingerprint() string {
	disabled := append([]string(nil), c.Features.Disabled...)
	sort.Strings(disabled)

	payload, _ := json.Marshal(struct {
		Format         int      `json:"format"`
		Disabled       []string `json:"disabled"`
		RefineBaseline bool     `json:"refineBaseline"`
		Threshold      *float64 `json:"threshold"`
		Caniuse        string   `json:"caniuse"`
		WebFeatures    string   `json:"webFeatures"`
	}{fingerprintFormat, disabled, c.Features.RefineBaseline, c.UnsupportedThreshold, c.Data.Caniuse, c.Data.WebFeatures})

	sum := blake3.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// CachePath resolves the cache location against root.
func (c *Config) CachePath(root string) string {
	if filepath.IsAbs(c.Cache.Path) {
		return c.Cache.Path
	}
	return filepath.Join(root, c.Cache.Path)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
