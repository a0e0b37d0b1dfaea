// Package config loads viewer settings from a YAML file, a .env file and
// RECIPEBOOK_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Env var names.
const (
	EnvSource       = "RECIPEBOOK_SOURCE"
	EnvMetadataPath = "RECIPEBOOK_METADATA_PATH"
	EnvDetailPath   = "RECIPEBOOK_DETAIL_PATH"
	EnvFetchTimeout = "RECIPEBOOK_FETCH_TIMEOUT"
	EnvLogLevel     = "RECIPEBOOK_LOG_LEVEL"
	EnvLogFile      = "RECIPEBOOK_LOG_FILE"
	EnvServeAddr    = "RECIPEBOOK_SERVE_ADDR"
)

// IDPlaceholder is replaced by the recipe identifier in DetailPath.
const IDPlaceholder = "{id}"

// Config holds every tunable.
type Config struct {
	// Source is either an http(s) base URL or a local directory holding
	// the asset tree.
	Source       string      `yaml:"source"`
	MetadataPath string      `yaml:"metadata_path"`
	DetailPath   string      `yaml:"detail_path"`
	Fetch        FetchConfig `yaml:"fetch"`
	Log          LogConfig   `yaml:"log"`
	Serve        ServeConfig `yaml:"serve"`
	Index        IndexConfig `yaml:"index"`
}

// FetchConfig tunes document retrieval. A zero Timeout means none.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig selects verbosity and destination ("stderr" logs to console).
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ServeConfig configures the asset host.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// IndexConfig configures the index generator.
type IndexConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in settings, matching the asset layout the
// index generator writes.
func Default() Config {
	return Config{
		Source:       ".",
		MetadataPath: "asset/Info.json",
		DetailPath:   "recipes/" + IDPlaceholder + ".json",
		Log: LogConfig{
			Level: "normal",
			File:  ".recipebook-logs/recipebook.log",
		},
		Serve: ServeConfig{Addr: ":8080"},
		Index: IndexConfig{Dir: "."},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), a .env file in the working
// directory, and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(EnvSource, &c.Source)
	setString(EnvMetadataPath, &c.MetadataPath)
	setString(EnvDetailPath, &c.DetailPath)
	setString(EnvLogLevel, &c.Log.Level)
	setString(EnvLogFile, &c.Log.File)
	setString(EnvServeAddr, &c.Serve.Addr)

	if v := os.Getenv(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		c.Fetch.Timeout = d
	}
	return nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	if c.Source == "" {
		return errors.New("config: source is empty")
	}
	if c.MetadataPath == "" {
		return errors.New("config: metadata_path is empty")
	}
	if !strings.Contains(c.DetailPath, IDPlaceholder) {
		return fmt.Errorf("config: detail_path %q has no %s placeholder", c.DetailPath, IDPlaceholder)
	}
	if c.Fetch.Timeout < 0 {
		return errors.New("config: fetch.timeout is negative")
	}
	return nil
}

// DetailPathFor returns the detail document path for a recipe identifier.
// For a remote source the identifier is path-escaped so '#', '?' and '%'
// stay part of the file name.
func (c Config) DetailPathFor(id string) string {
	if c.IsRemote() {
		id = url.PathEscape(id)
	}
	return strings.ReplaceAll(c.DetailPath, IDPlaceholder, id)
}

// IsRemote reports whether Source is an http(s) URL.
func (c Config) IsRemote() bool {
	return strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://")
}
