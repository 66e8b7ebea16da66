package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests that defaults are applied.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.ProxyAddress != DefaultProxyAddress {
		t.Errorf("unexpected proxy address: %s", cfg.ProxyAddress)
	}
	if cfg.Delay != DefaultDelay {
		t.Errorf("unexpected delay: %s", cfg.Delay)
	}
	if cfg.MaxItemsPerPage != DefaultMaxItemsPerPage {
		t.Errorf("unexpected max items: %d", cfg.MaxItemsPerPage)
	}
	if cfg.DomainMarker != DefaultDomainMarker {
		t.Errorf("unexpected domain marker: %s", cfg.DomainMarker)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Query = "forum market"
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("seeds without query are enough", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Seeds = []string{"http://example.onion/"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing query and seeds", func(c *Config) { c.Query = "" }, ErrNoQuery},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }, ErrInvalidDelay},
		{"zero max items", func(c *Config) { c.MaxItemsPerPage = 0 }, ErrInvalidMaxItems},
		{"negative total items", func(c *Config) { c.MaxTotalItems = -1 }, ErrInvalidMaxItems},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, ErrInvalidDepth},
		{"depth above bound", func(c *Config) { c.MaxDepth = MaxCrawlDepth + 1 }, ErrInvalidDepth},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, ErrInvalidMaxPages},
		{"zero seed limit", func(c *Config) { c.SeedLimit = 0 }, ErrInvalidSeedLimit},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, ErrInvalidTimeout},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"unknown format", func(c *Config) { c.Format = "xml" }, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestTotalItemCap tests the overall cap defaulting rule.
func TestTotalItemCap(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.MaxItemsPerPage = 7
	if got := cfg.TotalItemCap(); got != 7 {
		t.Errorf("expected per-page cap to carry over, got %d", got)
	}

	cfg.MaxTotalItems = 50
	if got := cfg.TotalItemCap(); got != 50 {
		t.Errorf("expected explicit total cap, got %d", got)
	}
}

// TestLoadProfile tests YAML profile loading.
func TestLoadProfile(t *testing.T) {
	t.Parallel()

	t.Run("loads and applies profile", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "profile.yaml")
		content := `query: forum market
keywords:
  - market
  - forum
selectors:
  - ".post .title"
depth: 2
maxItems: 5
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write profile: %v", err)
		}

		profile, err := LoadProfile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		profile.Apply(cfg)

		if cfg.Query != "forum market" {
			t.Errorf("unexpected query: %q", cfg.Query)
		}
		if len(cfg.Keywords) != 2 {
			t.Errorf("unexpected keywords: %v", cfg.Keywords)
		}
		if len(cfg.Selectors) != 1 {
			t.Errorf("unexpected selectors: %v", cfg.Selectors)
		}
		if cfg.MaxDepth != 2 {
			t.Errorf("unexpected depth: %d", cfg.MaxDepth)
		}
		if cfg.MaxItemsPerPage != 5 {
			t.Errorf("unexpected max items: %d", cfg.MaxItemsPerPage)
		}
	})

	t.Run("flags win over profile", func(t *testing.T) {
		t.Parallel()

		profile := &Profile{Query: "profile words", Depth: 3}
		cfg := NewConfig()
		cfg.Query = "flag words"
		cfg.MaxDepth = 0 // explicitly set, differs from default

		profile.Apply(cfg)
		if cfg.Query != "flag words" {
			t.Errorf("profile overrode explicit query: %q", cfg.Query)
		}
		if cfg.MaxDepth != 0 {
			t.Errorf("profile overrode explicit depth: %d", cfg.MaxDepth)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("query: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write profile: %v", err)
		}
		if _, err := LoadProfile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}
