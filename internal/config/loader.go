package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultProfileFile is the default profile file name.
const DefaultProfileFile = ".onionharvest"

// Profile is a reusable preset of crawl inputs loaded from a YAML file.
// It covers the free-form inputs that are tedious to retype as flags;
// explicit flags always win over profile values.
type Profile struct {
	// Query is the default directory search query.
	Query string `yaml:"query,omitempty"`

	// Keywords filter extracted text.
	Keywords []string `yaml:"keywords,omitempty"`

	// Selectors are CSS extraction rules, evaluated in order.
	Selectors []string `yaml:"selectors,omitempty"`

	// Depth overrides the crawl depth when non-zero.
	Depth int `yaml:"depth,omitempty"`

	// DelaySeconds overrides the pacing delay when non-zero.
	// Expressed in seconds because YAML has no duration type.
	DelaySeconds float64 `yaml:"delaySeconds,omitempty"`

	// MaxItems overrides the per-page item cap when non-zero.
	MaxItems int `yaml:"maxItems,omitempty"`

	// MaxPages overrides the page cap when non-zero.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// LoadProfile loads a crawl profile from a YAML file.
// Returns ErrProfileNotFound when the file does not exist; the caller
// decides whether that is fatal based on whether the path was explicit.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided profile path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// FindProfile resolves the profile file path: an explicit path is used
// as-is, otherwise DefaultProfileFile is looked up in the current and
// then the home directory. Returns an empty string when nothing exists.
func FindProfile(path string) string {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Apply overlays profile values onto a Config, filling only fields the
// user did not already set to a non-default value via flags.
func (p *Profile) Apply(cfg *Config) {
	if cfg.Query == "" {
		cfg.Query = p.Query
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = p.Keywords
	}
	if len(cfg.Selectors) == 0 {
		cfg.Selectors = p.Selectors
	}
	if p.Depth != 0 && cfg.MaxDepth == DefaultMaxDepth {
		cfg.MaxDepth = p.Depth
	}
	if p.DelaySeconds != 0 && cfg.Delay == DefaultDelay {
		cfg.Delay = time.Duration(p.DelaySeconds * float64(time.Second))
	}
	if p.MaxItems != 0 && cfg.MaxItemsPerPage == DefaultMaxItemsPerPage {
		cfg.MaxItemsPerPage = p.MaxItems
	}
	if p.MaxPages != 0 && cfg.MaxPages == DefaultMaxPages {
		cfg.MaxPages = p.MaxPages
	}
}
