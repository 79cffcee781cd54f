// Package config loads settings for the journal CLI and dev backend.
//
// Precedence, lowest first: built-in defaults, an optional TOML file, then
// JOURNAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const envPrefix = "JOURNAL"

// FileName is looked up in the state directory when no explicit path is given.
const FileName = "config.toml"

// Config holds every tunable. Environment variables carry the JOURNAL_ prefix,
// e.g. JOURNAL_BASE_URL, JOURNAL_PAGE_SIZE.
type Config struct {
	// Backend
	BaseURL     string        `envconfig:"BASE_URL"     default:"http://localhost:11545" toml:"base_url"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"                    toml:"http_timeout"`

	// Timeline
	PageSize          int `envconfig:"PAGE_SIZE"          default:"50" toml:"page_size"`
	UploadConcurrency int `envconfig:"UPLOAD_CONCURRENCY" default:"4"  toml:"upload_concurrency"`

	// Local state; empty means ~/.mycelian-journal
	StateDir string `envconfig:"STATE_DIR" toml:"state_dir"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"  toml:"log_level"`
	Debug    bool   `envconfig:"DEBUG"     default:"false" toml:"debug"`

	// Dev backend
	DevAddr      string `envconfig:"DEV_ADDR"       default:":11545" toml:"dev_addr"`
	DevPublicURL string `envconfig:"DEV_PUBLIC_URL"                  toml:"dev_public_url"`
}

// Load builds a Config. path names a TOML file; when empty, FileName in
// StateDir is used if it exists.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	explicit := path != ""
	if !explicit && cfg.StateDir != "" {
		path = filepath.Join(cfg.StateDir, FileName)
	}
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overlayFile applies values from the TOML file at path, except where the
// matching environment variable is set.
func (c *Config) overlayFile(path string) error {
	var fc Config
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("reading config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	for _, key := range md.Keys() {
		name := key.String()
		if _, set := os.LookupEnv(envPrefix + "_" + strings.ToUpper(name)); set {
			continue
		}
		switch name {
		case "base_url":
			c.BaseURL = fc.BaseURL
		case "http_timeout":
			c.HTTPTimeout = fc.HTTPTimeout
		case "page_size":
			c.PageSize = fc.PageSize
		case "upload_concurrency":
			c.UploadConcurrency = fc.UploadConcurrency
		case "state_dir":
			c.StateDir = fc.StateDir
		case "log_level":
			c.LogLevel = fc.LogLevel
		case "debug":
			c.Debug = fc.Debug
		case "dev_addr":
			c.DevAddr = fc.DevAddr
		case "dev_public_url":
			c.DevPublicURL = fc.DevPublicURL
		}
	}
	return nil
}

// Validate rejects values the client would refuse at construction time.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be > 0")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0")
	}
	if c.UploadConcurrency <= 0 {
		return fmt.Errorf("upload_concurrency must be > 0")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel; Debug forces debug level.
func (c *Config) Level() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
