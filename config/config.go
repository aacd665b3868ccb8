// Package config loads, validates and writes the obsidit YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// ContentMarker must appear in every note template.
const ContentMarker = "${content}"

// DefaultTemplate wraps the clipped content in front matter.
const DefaultTemplate = `---
date: ${date}
url: ${url}
type: ${type}
---
${content}
`

// Config holds all obsidit configuration.
type Config struct {
	// Path is the vault folder new notes are created in.
	Path     string       `json:"path" yaml:"path"`
	Template string       `json:"template" yaml:"template"`
	Thread   ThreadConfig `json:"thread" yaml:"thread"`
	Fetch    FetchConfig  `json:"fetch" yaml:"fetch"`
	Log      LogConfig    `json:"log" yaml:"log"`
}

// ThreadConfig controls thread reconstruction.
type ThreadConfig struct {
	Hosts  []string `json:"hosts" yaml:"hosts"`
	Mirror string   `json:"mirror" yaml:"mirror"`
}

// FetchConfig controls outbound HTTP.
type FetchConfig struct {
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent     string        `json:"user_agent" yaml:"user_agent"`
	MaxPageBytes  int64         `json:"max_page_bytes" yaml:"max_page_bytes"`
	MaxImageBytes int64         `json:"max_image_bytes" yaml:"max_image_bytes"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{
		Path:     "Clippings",
		Template: DefaultTemplate,
	}
	cfg.defaults()
	return cfg
}

// defaults fills zero operational fields. The user-facing path and template
// are left alone so Validate can report them.
func (c *Config) defaults() {
	if len(c.Thread.Hosts) == 0 {
		c.Thread.Hosts = []string{"twitter.com"}
	}
	if c.Thread.Mirror == "" {
		c.Thread.Mirror = "https://nitter.it"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "obsidit/1.0"
	}
	if c.Fetch.MaxPageBytes <= 0 {
		c.Fetch.MaxPageBytes = 10 * 1024 * 1024
	}
	if c.Fetch.MaxImageBytes <= 0 {
		c.Fetch.MaxImageBytes = 10 * 1024 * 1024
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, nil
}

// Validate checks the fields a user edits by hand.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Template, validation.Required, validation.By(func(value any) error {
			if !strings.Contains(value.(string), ContentMarker) {
				return validation.NewError("config.template.content_marker", "template must include "+ContentMarker)
			}
			return nil
		})),
		validation.Field(&c.Thread),
		validation.Field(&c.Log),
	)
}

// Validate checks the mirror is an absolute http(s) URL.
func (t ThreadConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Hosts, validation.Required),
		validation.Field(&t.Mirror, validation.Required, validation.By(func(value any) error {
			u, err := url.Parse(value.(string))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return errors.New("must be an absolute http(s) URL")
			}
			return nil
		})),
	)
}

// Validate checks the level is one slog understands.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// Write stores cfg as YAML at path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the per-user config location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "obsidit", "config.yaml"), nil
}
