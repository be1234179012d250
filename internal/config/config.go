// Package config loads and validates the sitepress build configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ActiveLinkType selects how active navigation state is written to anchors.
type ActiveLinkType string

const (
	ActiveLinkClass     ActiveLinkType = "class"
	ActiveLinkAttribute ActiveLinkType = "attribute"
)

// Config is the top-level build configuration.
type Config struct {
	Src        string         `yaml:"src"`
	Dist       string         `yaml:"dist"`
	Production bool           `yaml:"production"`
	Data       map[string]any `yaml:"data,omitempty"` // page data for ${key} interpolation

	IncludeAttr string `yaml:"include_attr,omitempty"`
	InlineAttr  string `yaml:"inline_attr,omitempty"`

	ConvertPageToDirectory ConvertConfig    `yaml:"convert_page_to_directory,omitempty"`
	Bundle                 BundleConfig     `yaml:"bundle,omitempty"`
	ActiveLink             ActiveLinkConfig `yaml:"active_link,omitempty"`
	Sitemap                SitemapConfig    `yaml:"sitemap,omitempty"`

	Plugins []string `yaml:"plugins,omitempty"` // plugin identifiers resolved from the registry
	Exclude []string `yaml:"exclude,omitempty"` // source path prefixes skipped entirely
}

// ConvertConfig controls rewriting name.html into name/index.html.
type ConvertConfig struct {
	Disabled     bool     `yaml:"disabled,omitempty"`
	ExcludePaths []string `yaml:"exclude_paths,omitempty"`
}

// BundleConfig controls the two-phase asset bundling engine.
type BundleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DistPath string `yaml:"dist_path,omitempty"` // dist-relative directory for bundle outputs
	Force    bool   `yaml:"force,omitempty"`     // bundle even outside production mode
}

// ActiveLinkConfig controls navigation active-state annotation.
type ActiveLinkConfig struct {
	Type        ActiveLinkType `yaml:"type,omitempty"`
	ActiveState string         `yaml:"active_state,omitempty"`
	ParentState string         `yaml:"parent_state,omitempty"`
}

// SitemapConfig controls sitemap.xml generation.
type SitemapConfig struct {
	Disabled bool     `yaml:"disabled,omitempty"`
	BaseURL  string   `yaml:"base_url,omitempty"`
	Exclude  []string `yaml:"exclude,omitempty"` // path substrings excluded from the sitemap
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just note it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyDefaults fills in zero-value options with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Src == "" {
		c.Src = "./src"
	}
	if c.Dist == "" {
		c.Dist = "./dist"
	}
	if c.IncludeAttr == "" {
		c.IncludeAttr = "include"
	}
	if c.InlineAttr == "" {
		c.InlineAttr = "inline"
	}
	if c.Bundle.DistPath == "" {
		c.Bundle.DistPath = "/bundles"
	}
	if c.ActiveLink.Type == "" {
		c.ActiveLink.Type = ActiveLinkClass
	}
	if c.ActiveLink.ActiveState == "" {
		c.ActiveLink.ActiveState = "active"
	}
	if c.ActiveLink.ParentState == "" {
		c.ActiveLink.ParentState = "active-parent"
	}
	if c.Data == nil {
		c.Data = map[string]any{}
	}
}

// Validate checks option combinations that would produce a broken build.
func (c *Config) Validate() error {
	if c.Src == c.Dist {
		return fmt.Errorf("src and dist must differ: %s", c.Src)
	}
	switch c.ActiveLink.Type {
	case ActiveLinkClass, ActiveLinkAttribute:
	default:
		return fmt.Errorf("active_link.type must be class or attribute, got %q", c.ActiveLink.Type)
	}
	if c.Bundle.Enabled && !strings.HasPrefix(c.Bundle.DistPath, "/") {
		return fmt.Errorf("bundle.dist_path must be dist-root relative (start with /): %s", c.Bundle.DistPath)
	}
	return nil
}

// ShouldBundle reports whether the bundle add/build phases run for this build.
// Bundling is a production concern; non-production builds need the explicit
// force flag so local output stays debuggable.
func (c *Config) ShouldBundle() bool {
	if !c.Bundle.Enabled {
		return false
	}
	return c.Production || c.Bundle.Force
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Src:        "./src",
		Dist:       "./dist",
		Production: false,
		Data: map[string]any{
			"siteName": "My Site",
		},
		Bundle: BundleConfig{
			Enabled:  true,
			DistPath: "/bundles",
		},
		ActiveLink: ActiveLinkConfig{
			Type:        ActiveLinkClass,
			ActiveState: "active",
			ParentState: "active-parent",
		},
		Sitemap: SitemapConfig{
			BaseURL: "https://example.com",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// loadEnvFile loads a .env file from the working directory when present.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
